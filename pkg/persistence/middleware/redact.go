package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/ports"
)

// Masked replaces redacted string values.
const Masked = "***"

type redactMiddleware struct {
	next     ports.PackageStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that blanks the values of
// properties whose idShort matches one of the patterns before saving.
// String values become Masked, any other value becomes nil.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.PackageStore) ports.PackageStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, name string, pkg *domain.Package) error {
	// The caller keeps editing pkg, so only the clone is masked.
	cloned := pkg.Clone()
	for _, sm := range cloned.Submodels() {
		m.maskElements(sm.Elements)
	}
	return m.next.Save(ctx, name, cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, name string) (*domain.Package, error) {
	return m.next.Load(ctx, name)
}

func (m *redactMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactMiddleware) maskElements(elems *domain.Set) {
	if elems == nil {
		return
	}
	for _, it := range elems.Items() {
		switch e := it.(type) {
		case *domain.Property:
			if m.matches(e.IDShort) {
				if e.ValueType == domain.ValueTypeString {
					e.Value = Masked
				} else {
					e.Value = nil
				}
			}
		case *domain.Collection:
			m.maskElements(e.Value)
		}
	}
}

func (m *redactMiddleware) matches(idShort string) bool {
	for _, p := range m.patterns {
		if p.MatchString(idShort) {
			return true
		}
	}
	return false
}
