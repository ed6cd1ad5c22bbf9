package attr_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/aretw0/aastree/internal/attr"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Count    int     `json:"count"`
	Ratio    float64 `json:"ratio,omitempty"`
	ObjStore string
	Hidden   string `json:"-"`
	internal string
}

func (s *sample) Doubled() int { return s.Count * 2 }

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"count", "ratio", "obj_store"}, attr.Names(&sample{}))
	assert.Nil(t, attr.Names(42))
}

func TestGet(t *testing.T) {
	s := &sample{Count: 3}

	v, typ, err := attr.Get(s, "count")
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, reflect.TypeFor[int](), typ)

	v, _, err = attr.Get(s, "doubled")
	require.NoError(t, err)
	assert.Equal(t, 6, v)

	_, _, err = attr.Get(s, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSet(t *testing.T) {
	tests := []struct {
		name    string
		attr    string
		value   any
		check   func(t *testing.T, s *sample)
		wantErr error
	}{
		{"assignable", "count", 7, func(t *testing.T, s *sample) { assert.Equal(t, 7, s.Count) }, nil},
		{"lossless number", "count", 4.0, func(t *testing.T, s *sample) { assert.Equal(t, 4, s.Count) }, nil},
		{"lossy number", "count", 4.5, nil, domain.ErrCoercion},
		{"parsed string", "ratio", "0.25", func(t *testing.T, s *sample) { assert.Equal(t, 0.25, s.Ratio) }, nil},
		{"bad string", "count", "many", nil, domain.ErrCoercion},
		{"nil scalar", "count", nil, nil, domain.ErrCoercion},
		{"unknown", "nope", 1, nil, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &sample{}
			err := attr.Set(s, tt.attr, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		typ     reflect.Type
		want    any
		wantErr bool
	}{
		{"int to uint", 7, reflect.TypeFor[uint](), uint(7), false},
		{"negative int to uint", -1, reflect.TypeFor[uint](), nil, true},
		{"negative int8 to uint64", int8(-3), reflect.TypeFor[uint64](), nil, true},
		{"negative float to uint", -2.0, reflect.TypeFor[uint32](), nil, true},
		{"large uint64 to int64", uint64(math.MaxUint64), reflect.TypeFor[int64](), nil, true},
		{"uint64 to int", uint64(42), reflect.TypeFor[int](), 42, false},
		{"overflow into int8", 300, reflect.TypeFor[int8](), nil, true},
		{"parsed negative to uint", "-5", reflect.TypeFor[uint](), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := attr.Coerce(tt.value, tt.typ)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrCoercion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Interface())
		})
	}
}

func TestSet_UsesAttributeSetter(t *testing.T) {
	p := domain.NewProperty("speed", domain.ValueTypeInt, 1)

	assert.ErrorIs(t, attr.Set(p, "value", "fast"), domain.ErrCoercion)
	require.NoError(t, attr.Set(p, "id_short", "velocity"))
	assert.Equal(t, "velocity", p.IDShort)
}

func TestSet_NotAddressable(t *testing.T) {
	err := attr.Set(sample{}, "count", 1)
	assert.ErrorIs(t, err, domain.ErrCoercion)
}

func TestCaseConversion(t *testing.T) {
	assert.Equal(t, "semantic_id", attr.SnakeCase("SemanticID"))
	assert.Equal(t, "id_short", attr.SnakeCase("IDShort"))
	assert.Equal(t, "obj_store", attr.SnakeCase("ObjStore"))
	assert.Equal(t, "ConceptDescriptions", attr.CamelCase("concept_descriptions"))
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "Submodel", attr.TypeName(reflect.TypeOf(&domain.Submodel{})))
	assert.Equal(t, "None", attr.TypeName(nil))
	assert.Equal(t, "[]domain.Key", attr.TypeName(reflect.TypeFor[[]domain.Key]()))
}
