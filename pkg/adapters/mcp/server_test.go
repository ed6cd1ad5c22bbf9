package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/aretw0/aastree"
	"github.com/aretw0/aastree/pkg/adapters/aasfile"
	"github.com/aretw0/aastree/pkg/adapters/memory"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const techData = "motor/submodels/TechnicalData"

type toolResult struct {
	IsError           bool            `json:"isError"`
	StructuredContent json.RawMessage `json:"structuredContent"`
	Content           []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	pkg := domain.NewPackage("")
	require.NoError(t, pkg.Add(domain.NewSubmodel("urn:sm:tech", "TechnicalData",
		domain.NewProperty("MaxRPM", domain.ValueTypeInt, 3000))))
	path := filepath.Join(t.TempDir(), "motor.yaml")
	require.NoError(t, aasfile.Write(pkg, path))
	return NewServer(session.New(aastree.New(aastree.WithStore(memory.NewStore())))), path
}

func call(t *testing.T, s *Server, tool string, args map[string]any) toolResult {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": tool, "arguments": args},
	})
	require.NoError(t, err)
	resp := s.MCPServer().HandleMessage(context.Background(), raw)
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var envelope struct {
		Result toolResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &envelope), string(data))
	return envelope.Result
}

func structured[T any](t *testing.T, r toolResult) T {
	t.Helper()
	require.False(t, r.IsError, "%+v", r.Content)
	var v T
	require.NoError(t, json.Unmarshal(r.StructuredContent, &v))
	return v
}

func TestTools_EditCycle(t *testing.T) {
	s, path := newTestServer(t)

	pkgs := structured[PackagesResponse](t, call(t, s, "open_package", map[string]any{"path": path}))
	require.Len(t, pkgs.Packages, 1)
	assert.Equal(t, "motor", pkgs.Packages[0].Name)

	node := structured[NodeResponse](t, call(t, s, "get_node", map[string]any{"item": techData}))
	assert.Equal(t, "TechnicalData", node.Node.Name)
	assert.NotEmpty(t, node.Node.Children)

	rpm := map[string]any{"item": techData, "path": "submodel_element/Property 0/value"}
	node = structured[NodeResponse](t, call(t, s, "set_value", map[string]any{
		"item": techData, "path": rpm["path"], "value": "4500",
	}))
	assert.Equal(t, "4500", node.Node.Value)

	detail := map[string]any{"item": techData, "path": "/"}
	step := structured[StepResponse](t, call(t, s, "undo", detail))
	assert.True(t, step.Applied)
	assert.Equal(t, session.History{Redo: 1}, step.History)

	step = structured[StepResponse](t, call(t, s, "redo", detail))
	assert.True(t, step.Applied)

	node = structured[NodeResponse](t, call(t, s, "add_value", map[string]any{
		"item": techData, "path": "submodel_element",
		"value": `{modelType: Property, idShort: Label, valueType: "xs:string", value: motor}`,
	}))
	assert.True(t, node.Node.New)

	found := structured[FindResponse](t, call(t, s, "find_nodes", map[string]any{
		"item": techData, "path": "/", "query": "property",
	}))
	assert.Len(t, found.Nodes, 2)

	step = structured[StepResponse](t, call(t, s, "clear_node", map[string]any{"item": techData, "path": node.Node.Path}))
	assert.Equal(t, 3, step.History.Undo)

	structured[PackagesResponse](t, call(t, s, "save_package", map[string]any{"name": "motor"}))
	saved, err := aasfile.Read(path)
	require.NoError(t, err)
	value, _ := saved.Submodels()[0].Element("MaxRPM")
	assert.Equal(t, 4500, value.(*domain.Property).Value)
	assert.Equal(t, 1, saved.Submodels()[0].Elements.Len())
}

func TestTools_Packages(t *testing.T) {
	s, path := newTestServer(t)
	structured[PackagesResponse](t, call(t, s, "open_package", map[string]any{"path": path}))

	r := call(t, s, "open_package", map[string]any{"path": path})
	assert.True(t, r.IsError, "opening twice fails")

	structured[PackagesResponse](t, call(t, s, "push_package", map[string]any{"name": "motor", "as": "copy"}))
	pkgs := structured[PackagesResponse](t, call(t, s, "close_package", map[string]any{"name": "motor"}))
	assert.Empty(t, pkgs.Packages)

	pkgs = structured[PackagesResponse](t, call(t, s, "pull_package", map[string]any{"name": "copy"}))
	require.Len(t, pkgs.Packages, 1)
	assert.Equal(t, "copy", pkgs.Packages[0].Name)

	pkgs = structured[PackagesResponse](t, call(t, s, "list_packages", nil))
	assert.Len(t, pkgs.Packages, 1)

	r = call(t, s, "get_node", map[string]any{"item": "nowhere"})
	assert.True(t, r.IsError)
	r = call(t, s, "set_value", map[string]any{"item": "copy/submodels/TechnicalData", "path": "submodel_element/Property 0/value", "value": "[broken"})
	assert.True(t, r.IsError)
}

func TestResources_Packages(t *testing.T) {
	s, path := newTestServer(t)
	structured[PackagesResponse](t, call(t, s, "open_package", map[string]any{"path": path}))

	raw, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "resources/read",
		"params":  map[string]any{"uri": PackagesURI},
	})
	require.NoError(t, err)
	data, err := json.Marshal(s.MCPServer().HandleMessage(context.Background(), raw))
	require.NoError(t, err)
	assert.Contains(t, string(data), `\"name\":\"motor\"`)
}
