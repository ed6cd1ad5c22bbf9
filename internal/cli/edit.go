package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/aastree/internal/presentation/tui"
	"github.com/aretw0/aastree/internal/validator"
	"github.com/aretw0/aastree/pkg/adapters/aasfile"
	"github.com/aretw0/aastree/pkg/session"
)

// EditOptions addresses a row of a package file. Item is relative to the
// package row; Path, when set, addresses the detail model of Item.
type EditOptions struct {
	File  string
	Item  string
	Path  string
	Depth int
	Plain bool
}

// openFile opens the package file in a fresh session.
func openFile(env *Env, path string) (*session.Session, session.PackageInfo, error) {
	sess := env.NewSession()
	info, err := sess.Open(path)
	if err != nil {
		return nil, session.PackageInfo{}, err
	}
	return sess, info, nil
}

// targetOf turns the package-relative options into a session target.
func targetOf(info session.PackageInfo, opts EditOptions) session.Target {
	item := info.Name
	if rel := strings.Trim(opts.Item, "/"); rel != "" {
		item += "/" + rel
	}
	return session.Target{Item: item, Path: opts.Path}
}

func (opts EditOptions) printer(out io.Writer) *tui.TreePrinter {
	if opts.Plain {
		return tui.NewPlainTreePrinter(out)
	}
	return tui.NewTreePrinter(out)
}

// RunTree prints the rows under the target.
func RunTree(env *Env, out io.Writer, opts EditOptions) error {
	sess, info, err := openFile(env, opts.File)
	if err != nil {
		return err
	}
	v, err := sess.Get(targetOf(info, opts), opts.Depth)
	if err != nil {
		return err
	}
	opts.printer(out).Print(v)
	return nil
}

// RunShow prints the target row and its children as a markdown document.
// Unless plain output is requested the document is rendered for the terminal.
func RunShow(env *Env, out io.Writer, opts EditOptions) error {
	sess, info, err := openFile(env, opts.File)
	if err != nil {
		return err
	}
	v, err := sess.Get(targetOf(info, opts), 1)
	if err != nil {
		return err
	}
	md := tui.NodeMarkdown(v)
	if !opts.Plain {
		if md, err = tui.NewRenderer()(md); err != nil {
			return fmt.Errorf("failed to render: %w", err)
		}
	}
	_, err = io.WriteString(out, md)
	return err
}

// RunSet parses value against the target's current value, stores it and
// saves the file.
func RunSet(env *Env, out io.Writer, opts EditOptions, value string) error {
	return edit(env, out, opts, func(sess *session.Session, t session.Target) (session.NodeView, error) {
		return sess.Set(t, value)
	})
}

// RunAdd parses value, inserts it under the target and saves the file.
func RunAdd(env *Env, out io.Writer, opts EditOptions, value string) error {
	return edit(env, out, opts, func(sess *session.Session, t session.Target) (session.NodeView, error) {
		return sess.Add(t, value)
	})
}

// RunClear removes or resets the target row and saves the file.
func RunClear(env *Env, out io.Writer, opts EditOptions) error {
	return edit(env, out, opts, func(sess *session.Session, t session.Target) (session.NodeView, error) {
		return session.NodeView{Name: t.String()}, sess.Clear(t)
	})
}

func edit(env *Env, out io.Writer, opts EditOptions, fn func(*session.Session, session.Target) (session.NodeView, error)) error {
	sess, info, err := openFile(env, opts.File)
	if err != nil {
		return err
	}
	v, err := fn(sess, targetOf(info, opts))
	if err != nil {
		return err
	}
	if err := sess.Save(info.Name); err != nil {
		return err
	}
	opts.printer(out).Print(v)
	return nil
}

// RunFind lists the rows under the target whose name contains query.
func RunFind(env *Env, out io.Writer, opts EditOptions, query string, limit int) error {
	sess, info, err := openFile(env, opts.File)
	if err != nil {
		return err
	}
	hits, err := sess.Find(targetOf(info, opts), query, opts.Depth, limit)
	if err != nil {
		return err
	}
	opts.printer(out).PrintList(hits)
	return nil
}

// RunGraph prints the package as a Mermaid flowchart.
func RunGraph(env *Env, out io.Writer, file, focus string) error {
	sess, info, err := openFile(env, file)
	if err != nil {
		return err
	}
	g, err := sess.Graph(info.Name, focus)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, g)
	return err
}

// RunConvert rewrites a package file in the format given by the extension of dst.
func RunConvert(env *Env, src, dst string) error {
	sess, info, err := openFile(env, src)
	if err != nil {
		return err
	}
	return sess.SaveAs(info.Name, dst)
}

// RunPush stores the package file under name. An empty name uses the file
// base name.
func RunPush(ctx context.Context, env *Env, out io.Writer, file, name string) error {
	sess, info, err := openFile(env, file)
	if err != nil {
		return err
	}
	if name == "" {
		name = info.Name
	}
	if err := sess.Push(ctx, info.Name, name); err != nil {
		return err
	}
	printSystemMessage(out, "Pushed '%s' as '%s'.", filepath.Base(file), name)
	return nil
}

// RunPull writes the package stored under name to the file dst.
func RunPull(ctx context.Context, env *Env, out io.Writer, name, dst string) error {
	sess := env.NewSession()
	info, err := sess.Pull(ctx, name)
	if err != nil {
		return err
	}
	if err := sess.SaveAs(info.Name, dst); err != nil {
		return err
	}
	printSystemMessage(out, "Pulled '%s' into '%s'.", name, dst)
	return nil
}

// RunList prints the names held by the store.
func RunList(ctx context.Context, env *Env, out io.Writer) error {
	names, err := env.Store.List(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		printSystemMessage(out, "No stored packages.")
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(out, "- "+n)
	}
	return nil
}

// RunRemove deletes the package stored under name.
func RunRemove(ctx context.Context, env *Env, out io.Writer, name string) error {
	if err := env.Store.Delete(ctx, name); err != nil {
		return err
	}
	printSystemMessage(out, "Removed '%s'.", name)
	return nil
}

// RunValidate checks the references and property values of a package file.
func RunValidate(out io.Writer, file string) error {
	pkg, err := aasfile.Read(file)
	if err != nil {
		return err
	}
	if err := validator.ValidatePackage(pkg); err != nil {
		return err
	}
	printSystemMessage(out, "'%s' is valid.", filepath.Base(file))
	return nil
}
