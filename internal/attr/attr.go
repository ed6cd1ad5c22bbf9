// Package attr reads and writes named attributes of domain objects through reflection.
//
// An attribute is an exported struct field, addressed by its json tag or by the
// snake_case form of its name, or a method without arguments addressed the same way.
package attr

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/aastree/pkg/domain"
)

// Names returns the attribute names of the exported fields of v, in declaration order.
func Names(v any) []string {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return nil
	}
	var names []string
	t := rv.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name := fieldName(f)
		if name == "-" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Get returns the value and declared type of the attribute name on v.
func Get(v any, name string) (any, reflect.Type, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, nil, fmt.Errorf("%w: attribute %q of nil", domain.ErrNotFound, name)
	}
	if sv := indirect(rv); sv.IsValid() && sv.Kind() == reflect.Struct {
		if f, ok := field(sv, name); ok {
			return f.Interface(), f.Type(), nil
		}
	}
	if m := rv.MethodByName(CamelCase(name)); m.IsValid() {
		mt := m.Type()
		if mt.NumIn() == 0 && (mt.NumOut() == 1 || (mt.NumOut() == 2 && mt.Out(1) == errorType)) {
			out := m.Call(nil)
			if len(out) == 2 && !out[1].IsNil() {
				return nil, nil, out[1].Interface().(error)
			}
			return out[0].Interface(), mt.Out(0), nil
		}
	}
	return nil, nil, fmt.Errorf("%w: attribute %q of %s", domain.ErrNotFound, name, TypeName(rv.Type()))
}

// Set assigns value to the attribute name of v, coercing it to the field type.
// Objects implementing domain.AttributeSetter validate the assignment first.
func Set(v any, name string, value any) error {
	if s, ok := v.(domain.AttributeSetter); ok {
		err := s.SetAttr(name, value)
		if !errors.Is(err, domain.ErrUnhandledAttr) {
			return err
		}
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: %T is not addressable", domain.ErrCoercion, v)
	}
	f, ok := field(rv.Elem(), name)
	if !ok {
		return fmt.Errorf("%w: attribute %q of %s", domain.ErrNotFound, name, TypeName(rv.Type()))
	}
	cv, err := Coerce(value, f.Type())
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", name, err)
	}
	f.Set(cv)
	return nil
}

// Coerce converts value to t. Numbers convert without loss, strings parse into scalars.
func Coerce(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: nil to %s", domain.ErrCoercion, TypeName(t))
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	switch {
	case isNumber(v.Kind()) && isNumber(t.Kind()):
		if flipsSign(v, t.Kind()) {
			return reflect.Value{}, fmt.Errorf("%w: %v does not fit %s", domain.ErrCoercion, value, TypeName(t))
		}
		cv := v.Convert(t)
		if cv.Convert(v.Type()).Interface() != v.Interface() {
			return reflect.Value{}, fmt.Errorf("%w: %v does not fit %s", domain.ErrCoercion, value, TypeName(t))
		}
		return cv, nil
	case v.Kind() == reflect.String && t.Kind() == reflect.String,
		v.Kind() == reflect.Bool && t.Kind() == reflect.Bool:
		return v.Convert(t), nil
	case v.Kind() == reflect.String:
		parsed, err := parse(v.String(), t.Kind())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %q to %s", domain.ErrCoercion, v.String(), TypeName(t))
		}
		return Coerce(parsed, t)
	}
	return reflect.Value{}, fmt.Errorf("%w: %s to %s", domain.ErrCoercion, TypeName(v.Type()), TypeName(t))
}

// TypeName returns a short display name for t. Pointers are shown as their element.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "None"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// SnakeCase converts a Go identifier to its attribute form: SemanticID becomes semantic_id.
func SnakeCase(s string) string {
	rs := []rune(s)
	var b strings.Builder
	for i, r := range rs {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(rs[i-1])
			nextLower := i > 0 && i+1 < len(rs) && unicode.IsUpper(rs[i-1]) && unicode.IsLower(rs[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CamelCase converts an attribute name to an exported Go identifier.
func CamelCase(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(s, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	return b.String()
}

var errorType = reflect.TypeFor[error]()

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func fieldName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("json"); ok {
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			return name
		}
	}
	return SnakeCase(f.Name)
}

func field(sv reflect.Value, name string) (reflect.Value, bool) {
	t := sv.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if f.IsExported() && fieldName(f) == name {
			return sv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func isNumber(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}

// flipsSign reports whether converting v to kind k would wrap around zero.
// The round trip through k cannot catch it: -1 survives int -> uint64 -> int.
func flipsSign(v reflect.Value, k reflect.Kind) bool {
	switch {
	case k >= reflect.Uint && k <= reflect.Uintptr:
		if v.CanInt() {
			return v.Int() < 0
		}
		if v.CanFloat() {
			return v.Float() < 0
		}
	case k >= reflect.Int && k <= reflect.Int64:
		return v.CanUint() && v.Uint() > math.MaxInt64
	}
	return false
}

func parse(s string, k reflect.Kind) (any, error) {
	switch {
	case k >= reflect.Int && k <= reflect.Int64:
		return strconv.ParseInt(s, 10, 64)
	case k >= reflect.Uint && k <= reflect.Uintptr:
		return strconv.ParseUint(s, 10, 64)
	case k == reflect.Float32 || k == reflect.Float64:
		return strconv.ParseFloat(s, 64)
	case k == reflect.Bool:
		return strconv.ParseBool(s)
	}
	return nil, strconv.ErrSyntax
}
