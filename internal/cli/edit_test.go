package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/aastree/pkg/adapters/aasfile"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serialPath = "submodel_element/Property 0/value"

func memoryEnv(t *testing.T) *Env {
	t.Helper()
	cfg := testConfig(t)
	cfg.Store.Kind = "memory"
	env, err := NewEnv(cfg, false)
	require.NoError(t, err)
	return env
}

func plateFile(t *testing.T, ext string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plate"+ext)
	require.NoError(t, aasfile.Write(plate("SN-1"), path))
	return path
}

func TestRunTree(t *testing.T) {
	env := memoryEnv(t)
	var out bytes.Buffer
	err := RunTree(env, &out, EditOptions{File: plateFile(t, ".json"), Item: "submodels", Depth: 1, Plain: true})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "submodels")
	assert.Contains(t, out.String(), "└── Nameplate")

	err = RunTree(env, &out, EditOptions{File: plateFile(t, ".json"), Item: "nowhere", Plain: true})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunShow(t *testing.T) {
	var out bytes.Buffer
	err := RunShow(memoryEnv(t), &out, EditOptions{
		File: plateFile(t, ".yaml"), Item: "submodels/Nameplate", Path: serialPath, Plain: true,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "# value")
	assert.Contains(t, out.String(), "| Value | SN-1 |")
}

func TestRunSetAddClear(t *testing.T) {
	env := memoryEnv(t)
	path := plateFile(t, ".json")
	nameplate := EditOptions{File: path, Item: "submodels/Nameplate", Plain: true}
	var out bytes.Buffer

	serial := nameplate
	serial.Path = serialPath
	require.NoError(t, RunSet(env, &out, serial, "SN-2"))
	assert.Contains(t, out.String(), "value = SN-2")

	elements := nameplate
	elements.Path = "submodel_element"
	require.NoError(t, RunAdd(env, &out, elements,
		`{modelType: Property, idShort: Weight, valueType: "xs:double", value: 12.5}`))

	saved, err := aasfile.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "SN-2", serialOf(t, saved))
	assert.Equal(t, 2, saved.Submodels()[0].Elements.Len())

	elements.Path = "submodel_element/Property 1"
	require.NoError(t, RunClear(env, &out, elements))
	saved, err = aasfile.Read(path)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Submodels()[0].Elements.Len())

	assert.ErrorIs(t, RunSet(env, &out, EditOptions{File: path, Item: "nowhere"}, "x"), domain.ErrNotFound)
}

func TestRunFindAndGraph(t *testing.T) {
	env := memoryEnv(t)
	path := plateFile(t, ".json")
	var out bytes.Buffer

	require.NoError(t, RunFind(env, &out, EditOptions{File: path, Depth: 4, Plain: true}, "name", 0))
	assert.Contains(t, out.String(), "Nameplate")

	out.Reset()
	require.NoError(t, RunGraph(env, &out, path, ""))
	assert.Contains(t, out.String(), `urn_sm_plate[["Nameplate"]]`)
}

func TestRunConvertPushPull(t *testing.T) {
	env := memoryEnv(t)
	ctx := context.Background()
	src := plateFile(t, ".json")
	var out bytes.Buffer

	dst := filepath.Join(t.TempDir(), "plate.aasx")
	require.NoError(t, RunConvert(env, src, dst))
	converted, err := aasfile.Read(dst)
	require.NoError(t, err)
	assert.Equal(t, "SN-1", serialOf(t, converted))

	require.NoError(t, RunPush(ctx, env, &out, src, ""))
	require.NoError(t, RunList(ctx, env, &out))
	assert.Contains(t, out.String(), "- plate")

	pulled := filepath.Join(t.TempDir(), "copy.yaml")
	require.NoError(t, RunPull(ctx, env, &out, "plate", pulled))
	copied, err := aasfile.Read(pulled)
	require.NoError(t, err)
	assert.Equal(t, "SN-1", serialOf(t, copied))

	require.NoError(t, RunRemove(ctx, env, &out, "plate"))
	assert.ErrorIs(t, RunPull(ctx, env, &out, "plate", pulled), domain.ErrPackageNotFound)
}

func TestRunValidate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RunValidate(&out, plateFile(t, ".json")))
	assert.Contains(t, out.String(), "'plate.json' is valid.")

	pkg := plate("SN-1")
	shell := domain.NewShell("urn:shell:plate", "Plate")
	require.NoError(t, shell.Submodels.Add(domain.NewReference(domain.Key{Type: domain.KeySubmodel, Value: "urn:sm:ghost"})))
	require.NoError(t, pkg.Add(shell))
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, aasfile.Write(pkg, path))
	assert.ErrorContains(t, RunValidate(&out, path), "Broken reference")
}
