package domain_test

import (
	"testing"

	"github.com/aretw0/aastree/pkg/domain"
	"github.com/mohae/deepcopy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_InsertAndRemove(t *testing.T) {
	l := domain.NewList("a", "c")
	l.Insert(1, "b")
	assert.Equal(t, []any{"a", "b", "c"}, l.Items())

	removed := l.RemoveAt(0)
	assert.Equal(t, "a", removed)
	assert.Equal(t, 1, l.Index("c"))

	l.Insert(99, "z")
	assert.Equal(t, "z", l.At(l.Len()-1))
}

func TestSet_Identity(t *testing.T) {
	p1 := domain.NewProperty("x", domain.ValueTypeInt, 1)
	p2 := domain.NewProperty("x", domain.ValueTypeInt, 1)

	s := domain.NewSet(p1)
	assert.Equal(t, 0, s.IndexOf(p1))
	// Equal but distinct members are found by deep equality.
	assert.Equal(t, 0, s.IndexOf(p2))
	assert.ErrorIs(t, s.Add(p1), domain.ErrDuplicate)

	require.NoError(t, s.InsertAt(0, "first"))
	assert.Equal(t, []any{"first", p1}, s.Items())

	require.NoError(t, s.Replace("first", "second"))
	assert.Equal(t, 0, s.IndexOf("second"))
	assert.True(t, s.Discard("second"))
	assert.False(t, s.Discard("second"))
}

func TestDict_KeepsOrder(t *testing.T) {
	d := domain.NewDict()
	d.Put("b", 2)
	d.Put("a", 1)
	d.InsertAt(0, "c", 3)
	assert.Equal(t, []any{"c", "b", "a"}, d.Keys())

	v, ok := d.Delete("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, -1, d.IndexOf("b"))

	cp := d.DeepCopy().(*domain.Dict)
	cp.Put("d", 4)
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, 3, cp.Len())
}

func TestSame(t *testing.T) {
	a := []int{1}
	assert.False(t, domain.Same(a, a), "slices are not comparable")
	assert.True(t, domain.Equal(a, []int{1}))
	assert.True(t, domain.Same(nil, nil))
	assert.False(t, domain.Same(1, int64(1)))
}

func TestDeepCopy(t *testing.T) {
	prop := domain.NewProperty("x", domain.ValueTypeInt, 1)
	s := domain.NewSet(prop)

	cp := deepcopy.Copy(s).(*domain.Set)
	require.Equal(t, 1, cp.Len())
	copied := cp.Items()[0].(*domain.Property)
	assert.NotSame(t, prop, copied)
	copied.Value = 2
	assert.Equal(t, 1, prop.Value)
}
