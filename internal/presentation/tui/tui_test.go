package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/aastree/pkg/session"
	"github.com/stretchr/testify/assert"
)

var techData = session.NodeView{
	Name: "TechnicalData", Path: "motor/submodels/TechnicalData", Type: "Submodel", TypeOK: true, HasChildren: true,
	Children: []session.NodeView{
		{Name: "id", Path: "motor/submodels/TechnicalData/id", Value: "urn:sm:tech", Type: "str", TypeOK: true},
		{Name: "submodel_element", Path: "motor/submodels/TechnicalData/submodel_element", Type: "Set", TypeOK: true, HasChildren: true, Changed: true},
		{Name: "semantic_id", Value: "Submodel:urn:x", Type: "Reference", TypeOK: true, IsLink: true, Linked: "motor/submodels/X"},
	},
}

func TestTreePrinter_Plain(t *testing.T) {
	var buf bytes.Buffer
	NewPlainTreePrinter(&buf).Print(techData)

	want := strings.Join([]string{
		"TechnicalData (Submodel)",
		"├── id = urn:sm:tech (str)",
		"├── submodel_element … (Set)",
		"└── semantic_id = Submodel:urn:x (Reference)",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTreePrinter_List(t *testing.T) {
	var buf bytes.Buffer
	NewPlainTreePrinter(&buf).PrintList(techData.Children[:1])
	assert.Equal(t, "id = urn:sm:tech (str) motor/submodels/TechnicalData/id\n", buf.String())
}

func TestTreePrinter_Truncate(t *testing.T) {
	p := &TreePrinter{width: 20}
	assert.Equal(t, "short", p.truncate("short", 4))
	got := p.truncate(strings.Repeat("x", 40), 4)
	assert.Len(t, []rune(got), 16)
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestNodeMarkdown(t *testing.T) {
	md := NodeMarkdown(session.NodeView{
		Name: "MaxRPM", Path: "submodel_element/MaxRPM", Value: "a|b", Type: "Property",
		Changed: true, Linked: "motor/x",
		Children: techData.Children[:1],
	})

	assert.Contains(t, md, "# MaxRPM")
	assert.Contains(t, md, `| Value | a\|b |`)
	assert.Contains(t, md, "| Type check | **mismatch** |")
	assert.Contains(t, md, "| Links to | `motor/x` |")
	assert.Contains(t, md, "| State | changed |")
	assert.Contains(t, md, "| id | urn:sm:tech | str |")
}

func TestNewRenderer(t *testing.T) {
	out, err := NewRenderer()("# Title")
	assert.NoError(t, err)
	assert.Contains(t, out, "Title")
}
