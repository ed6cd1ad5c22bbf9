package dto_test

import (
	"testing"

	"github.com/aretw0/aastree/internal/dto"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLiteral_Scalars(t *testing.T) {
	tests := []struct {
		text string
		like any
		want any
	}{
		{"42", 0, 42},
		{"4.5", nil, 4.5},
		{"true", false, true},
		{"42", "old", "42"},
		{"hello world", nil, "hello world"},
		{"de", domain.KeyValue{Key: "en", Value: "x"}, "de"},
		{"[1, 2]", nil, []any{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := dto.ParseLiteral(tt.text, tt.like)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLiteral_Objects(t *testing.T) {
	v, err := dto.ParseLiteral(`{modelType: Property, idShort: MaxRPM, valueType: "xs:int", value: 4500}`, nil)
	require.NoError(t, err)
	prop, ok := v.(*domain.Property)
	require.True(t, ok)
	assert.Equal(t, "MaxRPM", prop.IDShort)
	assert.Equal(t, 4500, prop.Value)

	v, err = dto.ParseLiteral(`{modelType: Submodel, id: "urn:sm:new", idShort: New}`, nil)
	require.NoError(t, err)
	sm, ok := v.(*domain.Submodel)
	require.True(t, ok)
	assert.Equal(t, "urn:sm:new", sm.ID)
	assert.Equal(t, 0, sm.Elements.Len())

	v, err = dto.ParseLiteral(`{keys: [{type: Submodel, value: "urn:sm:new", local: true}]}`, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.NewReference(domain.Key{Type: domain.KeySubmodel, Value: "urn:sm:new", Local: true}), v)

	v, err = dto.ParseLiteral(`{key: de, value: Motor}`, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.KeyValue{Key: "de", Value: "Motor"}, v)
}

func TestParseLiteral_Errors(t *testing.T) {
	_, err := dto.ParseLiteral(`{modelType: Blob}`, nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = dto.ParseLiteral(`{color: red}`, nil)
	assert.ErrorIs(t, err, domain.ErrCoercion)

	_, err = dto.ParseLiteral(`{unclosed`, nil)
	assert.ErrorIs(t, err, domain.ErrCoercion)
}
