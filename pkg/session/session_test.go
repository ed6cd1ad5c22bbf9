package session_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/aretw0/aastree"
	"github.com/aretw0/aastree/pkg/adapters/aasfile"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const techData = "motor/submodels/TechnicalData"

func openMotor(t *testing.T) (*session.Session, string) {
	t.Helper()
	pkg := domain.NewPackage("")
	sm := domain.NewSubmodel("urn:sm:tech", "TechnicalData",
		domain.NewProperty("MaxRPM", domain.ValueTypeInt, 3000))
	shell := domain.NewShell("urn:shell:motor", "Motor")
	require.NoError(t, shell.Submodels.Add(domain.ReferenceTo(sm)))
	require.NoError(t, pkg.Add(shell))
	require.NoError(t, pkg.Add(sm))
	path := filepath.Join(t.TempDir(), "motor.json")
	require.NoError(t, aasfile.Write(pkg, path))

	s := session.New(aastree.New())
	info, err := s.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "motor", info.Name)
	return s, path
}

func TestSession_GetAndFind(t *testing.T) {
	s, _ := openMotor(t)

	v, err := s.Get(session.Target{Item: "motor"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "motor", v.Name)
	assert.True(t, v.HasChildren)
	require.NotEmpty(t, v.Children)

	prop, err := s.Get(session.Target{Item: techData, Path: "submodel_element/Property 0/value"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "3000", prop.Value)
	assert.True(t, prop.TypeOK)

	hits, err := s.Find(session.Target{Item: "motor"}, "technical", 4, 0)
	require.NoError(t, err)
	var paths []string
	for _, h := range hits {
		paths = append(paths, h.Path)
	}
	assert.Contains(t, paths, techData)

	_, err = s.Get(session.Target{Item: "motor/nothing"}, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSession_SetUndoRedo(t *testing.T) {
	s, path := openMotor(t)
	target := session.Target{Item: techData, Path: "submodel_element/Property 0/value"}
	stack := session.Target{Item: techData, Path: "/"}

	v, err := s.Set(target, "4500")
	require.NoError(t, err)
	assert.Equal(t, "4500", v.Value)
	assert.True(t, v.Changed)
	assert.True(t, s.Packages()[0].Changed)

	h, err := s.History(stack)
	require.NoError(t, err)
	assert.Equal(t, session.History{Undo: 1}, h)

	ok, err := s.Undo(stack)
	require.NoError(t, err)
	assert.True(t, ok)
	v, err = s.Get(target, 0)
	require.NoError(t, err)
	assert.Equal(t, "3000", v.Value)

	ok, err = s.Redo(stack)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Save("motor"))
	assert.False(t, s.Packages()[0].Changed)
	saved, err := aasfile.Read(path)
	require.NoError(t, err)
	rpm, _ := saved.Submodels()[0].Element("MaxRPM")
	assert.Equal(t, 4500, rpm.(*domain.Property).Value)

	ok, err = s.Undo(session.Target{})
	require.NoError(t, err)
	assert.False(t, ok, "the package view has no edits")
}

func TestSession_AddAndClear(t *testing.T) {
	s, _ := openMotor(t)
	elems := session.Target{Item: techData, Path: "submodel_element"}

	added, err := s.Add(elems, `{modelType: Property, idShort: Weight, valueType: "xs:double", value: 12.5}`)
	require.NoError(t, err)
	assert.True(t, added.New)

	parent, err := s.Get(elems, 1)
	require.NoError(t, err)
	assert.Len(t, parent.Children, 2)

	require.NoError(t, s.Clear(session.Target{Item: techData, Path: added.Path}))
	parent, err = s.Get(elems, 1)
	require.NoError(t, err)
	assert.Len(t, parent.Children, 1)

	_, err = s.Set(session.Target{Item: techData, Path: "submodel_element/Property 0/value"}, "{broken")
	assert.ErrorIs(t, err, domain.ErrCoercion)
}

func TestSession_Close(t *testing.T) {
	s, path := openMotor(t)
	require.NoError(t, s.Close("motor"))
	assert.Empty(t, s.Packages())

	_, err := s.Open(path)
	require.NoError(t, err)
	assert.Len(t, s.Packages(), 1)
}

func TestSession_ConcurrentEdits(t *testing.T) {
	s, _ := openMotor(t)
	target := session.Target{Item: techData, Path: "submodel_element/Property 0/value"}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = s.Set(target, "1")
			} else {
				_, _ = s.Get(session.Target{Item: "motor"}, 3)
			}
		}()
	}
	wg.Wait()

	h, err := s.History(session.Target{Item: techData, Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, 10, h.Undo)
}

func TestSession_Graph(t *testing.T) {
	s, _ := openMotor(t)

	out, err := s.Graph("motor", "urn:shell:motor")
	require.NoError(t, err)
	assert.Contains(t, out, "urn_shell_motor --> urn_sm_tech")
	assert.Contains(t, out, "class urn_shell_motor focus;")
	assert.NotContains(t, out, "changed;")

	_, err = s.Set(session.Target{Item: techData, Path: "submodel_element/Property 0/value"}, "4500")
	require.NoError(t, err)
	out, err = s.Graph(techData, "")
	require.NoError(t, err)
	assert.Contains(t, out, "class urn_sm_tech changed;")

	_, err = s.Graph("nowhere", "")
	assert.Error(t, err)
}
