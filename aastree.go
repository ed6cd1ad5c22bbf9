package aastree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/aastree/internal/logging"
	"github.com/aretw0/aastree/pkg/adapters/aasfile"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/model"
	"github.com/aretw0/aastree/pkg/ports"
	"github.com/aretw0/aastree/pkg/registry"
	"github.com/aretw0/aastree/pkg/tree"
	"github.com/google/uuid"
)

// Editor is the high-level entry point of the library. It owns the package
// view model that holds every opened package and builds detail models for
// single items of it.
// Like the models it creates, an Editor is not safe for concurrent use.
type Editor struct {
	pack     *model.Model
	reg      *registry.Registry
	store    ports.PackageStore
	logger   *slog.Logger
	hooks    domain.EditHooks
	signals  model.Signals
	shim     model.CompatShim
	maxUndos int

	details map[uuid.UUID]*model.Model
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets a custom structured logger for the editor and its models.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithRegistry replaces the AAS presentation registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Editor) {
		e.reg = reg
	}
}

// WithMaxUndos bounds the undo stack of every model.
func WithMaxUndos(n int) Option {
	return func(e *Editor) {
		e.maxUndos = n
	}
}

// WithHooks registers edit observers on every model.
func WithHooks(hooks domain.EditHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithSignals registers structural observers on the package view model.
func WithSignals(signals model.Signals) Option {
	return func(e *Editor) {
		e.signals = signals
	}
}

// WithCompatShim replaces the coercion repair step of detail models.
func WithCompatShim(shim model.CompatShim) Option {
	return func(e *Editor) {
		e.shim = shim
	}
}

// WithoutCompatShim disables the coercion repair step.
func WithoutCompatShim() Option {
	return func(e *Editor) {
		e.shim = nil
	}
}

// WithStore sets the store used by Push and Pull.
func WithStore(store ports.PackageStore) Option {
	return func(e *Editor) {
		e.store = store
	}
}

// New creates an Editor without opened packages.
func New(opts ...Option) *Editor {
	e := &Editor{
		reg:      registry.AAS(),
		logger:   logging.NewNop(),
		shim:     ValueTypeShim,
		maxUndos: model.DefaultMaxUndos,
		details:  make(map[uuid.UUID]*model.Model),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.pack = model.New(tree.NewRoot(tree.PackageView, e.reg, nil),
		model.WithLogger(e.logger.With("view", "package")),
		model.WithMaxUndos(e.maxUndos),
		model.WithHooks(e.hooks),
		model.WithSignals(e.signals),
	)
	return e
}

// Model returns the package view model.
func (e *Editor) Model() *model.Model { return e.pack }

// Registry returns the presentation registry shared by all models.
func (e *Editor) Registry() *registry.Registry { return e.reg }

// Store returns the configured package store, or nil.
func (e *Editor) Store() ports.PackageStore { return e.store }

// Open reads the package file at path and adds it to the package view.
// Opening a file twice fails with domain.ErrAlreadyOpen.
func (e *Editor) Open(path string) (model.Index, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return model.Index{}, fmt.Errorf("invalid path: %w", err)
	}
	for _, f := range e.OpenedFiles() {
		if f == abs {
			return model.Index{}, fmt.Errorf("%w: %s", domain.ErrAlreadyOpen, path)
		}
	}
	pkg, err := aasfile.Read(abs)
	if err != nil {
		return model.Index{}, err
	}
	e.logger.Info("Package opened", "file", abs)
	return e.pack.Add(pkg, model.Index{})
}

// NewPackage writes an empty package to path and opens it.
func (e *Editor) NewPackage(path string) (model.Index, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return model.Index{}, fmt.Errorf("invalid path: %w", err)
	}
	pkg := domain.NewPackage("")
	if err := aasfile.Write(pkg, abs); err != nil {
		return model.Index{}, fmt.Errorf("failed to create package: %w", err)
	}
	pkg.File = abs
	return e.pack.Add(pkg, model.Index{})
}

// Save writes the package owning idx back to its file and clears the change
// markers of its row.
func (e *Editor) Save(idx model.Index) error {
	item, pkg, err := e.packageItem(idx)
	if err != nil {
		return err
	}
	if pkg.File == "" {
		return fmt.Errorf("package %s has no file", pkg)
	}
	return e.write(item, pkg, pkg.File)
}

// SaveAs writes the package owning idx to path, which becomes its file.
func (e *Editor) SaveAs(idx model.Index, path string) error {
	item, pkg, err := e.packageItem(idx)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	return e.write(item, pkg, abs)
}

func (e *Editor) write(item model.Index, pkg *domain.Package, path string) error {
	if err := aasfile.Write(pkg, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", pkg, err)
	}
	pkg.File = path
	e.pack.SetUnchanged(item)
	e.logger.Info("Package saved", "file", path)
	return nil
}

// SaveAll saves every opened package that has a file.
func (e *Editor) SaveAll() error {
	var errs []error
	for _, idx := range e.packageItems() {
		pkg := e.pack.Data(idx, tree.RoleObject).(*domain.Package)
		if pkg.File == "" {
			continue
		}
		if err := e.write(idx, pkg, pkg.File); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close removes the package owning idx from the view. Closing is not an
// edit and cannot be undone.
func (e *Editor) Close(idx model.Index) error {
	item, pkg, err := e.packageItem(idx)
	if err != nil {
		return err
	}
	e.pack.RemoveRows(item.Row(), 1, model.Index{})
	e.logger.Info("Package closed", "package", pkg.String())
	return nil
}

// CloseAll removes every opened package from the view.
func (e *Editor) CloseAll() {
	if n := e.pack.RowCount(model.Index{}); n > 0 {
		e.pack.RemoveRows(0, n, model.Index{})
	}
}

// OpenedPackages returns the packages in view order.
func (e *Editor) OpenedPackages() []*domain.Package {
	items := e.packageItems()
	out := make([]*domain.Package, 0, len(items))
	for _, idx := range items {
		out = append(out, e.pack.Data(idx, tree.RoleObject).(*domain.Package))
	}
	return out
}

// OpenedFiles returns the absolute files of the opened packages that have one.
func (e *Editor) OpenedFiles() []string {
	var out []string
	for _, pkg := range e.OpenedPackages() {
		if pkg.File == "" {
			continue
		}
		abs, err := filepath.Abs(pkg.File)
		if err != nil {
			abs = pkg.File
		}
		out = append(out, abs)
	}
	return out
}

func (e *Editor) packageItems() []model.Index {
	var out []model.Index
	for row := range e.pack.RowCount(model.Index{}) {
		idx := e.pack.Index(row, 0, model.Index{})
		if _, ok := e.pack.Data(idx, tree.RoleObject).(*domain.Package); ok {
			out = append(out, idx)
		}
	}
	return out
}

// PackageItem returns the top-level row of the package owning idx.
func (e *Editor) PackageItem(idx model.Index) (model.Index, error) {
	item, _, err := e.packageItem(idx)
	return item, err
}

func (e *Editor) packageItem(idx model.Index) (model.Index, *domain.Package, error) {
	pkg, _ := e.pack.Data(idx, tree.RolePackage).(*domain.Package)
	if pkg == nil {
		return model.Index{}, nil, fmt.Errorf("%w: no package selected", domain.ErrNotFound)
	}
	for _, item := range e.packageItems() {
		if e.pack.Data(item, tree.RoleObject) == pkg {
			return item, pkg, nil
		}
	}
	return model.Index{}, nil, fmt.Errorf("%w: package %s is not open", domain.ErrNotFound, pkg)
}

// Detail returns the nested model over the object under idx. Edits made
// through it mark the package view item as changed, and links resolve against
// the package view. The model is kept while its item stays in the view, so
// its undo history survives between calls.
func (e *Editor) Detail(idx model.Index) (*model.Model, error) {
	if !idx.IsValid() {
		return nil, fmt.Errorf("%w: no item selected", domain.ErrNotFound)
	}
	e.pruneDetails()
	obj := e.pack.Data(idx, tree.RoleObject)
	if m, ok := e.details[idx.Node().ID()]; ok && m.Root().Value() == obj {
		return m, nil
	}
	root := tree.NewRoot(tree.Nested, e.reg, obj)
	if pkg, ok := e.pack.Data(idx, tree.RolePackage).(*domain.Package); ok {
		root.SetPackage(pkg)
	}
	opts := []model.Option{
		model.WithLogger(e.logger.With("view", "detail", "item", e.pack.Data(idx, tree.RoleName))),
		model.WithMaxUndos(e.maxUndos),
		model.WithHooks(e.hooks),
		model.WithLinkModel(e.pack),
		model.WithPackItem(e.pack, idx.Sibling(0)),
	}
	if e.shim != nil {
		opts = append(opts, model.WithCompatShim(e.shim))
	}
	m := model.New(root, opts...)
	e.details[idx.Node().ID()] = m
	return m, nil
}

// pruneDetails drops the detail models of items no longer in the view.
func (e *Editor) pruneDetails() {
	for id, m := range e.details {
		item, _ := m.Data(model.Index{}, tree.RolePackItem).(model.Index)
		if !item.IsValid() || !item.Node().Attached() {
			delete(e.details, id)
		}
	}
}

// Push saves the package owning idx to the configured store under name.
// An empty name uses the package name.
func (e *Editor) Push(ctx context.Context, idx model.Index, name string) error {
	if e.store == nil {
		return errors.New("no package store configured")
	}
	_, pkg, err := e.packageItem(idx)
	if err != nil {
		return err
	}
	if name == "" {
		name = pkg.String()
	}
	if err := e.store.Save(ctx, name, pkg); err != nil {
		return fmt.Errorf("failed to push %s: %w", name, err)
	}
	e.logger.Info("Package pushed", "name", name)
	return nil
}

// Pull loads the package stored under name and adds it to the view. The
// package takes the store name and has no file until it is saved with SaveAs.
func (e *Editor) Pull(ctx context.Context, name string) (model.Index, error) {
	if e.store == nil {
		return model.Index{}, errors.New("no package store configured")
	}
	pkg, err := e.store.Load(ctx, name)
	if err != nil {
		return model.Index{}, err
	}
	pkg.Name = name
	pkg.File = ""
	e.logger.Info("Package pulled", "name", name)
	return e.pack.Add(pkg, model.Index{})
}
