package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/aastree/internal/presentation/graph"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func motorPackage(t *testing.T) *domain.Package {
	t.Helper()
	pkg := domain.NewPackage("motor")
	cd := domain.NewConceptDescription("urn:cd:rpm", "RPM")
	rpm := domain.NewProperty("MaxRPM", domain.ValueTypeInt, 3000)
	rpm.SemanticID = domain.ReferenceTo(cd)
	sm := domain.NewSubmodel("urn:sm:tech", "TechnicalData", rpm,
		domain.NewReferenceElement("Manual", domain.NewReference(domain.Key{Type: domain.KeySubmodel, Value: "urn:sm:docs"})))
	asset := domain.NewAsset("urn:asset:motor", "MotorAsset")
	shell := domain.NewShell("urn:shell:motor", "Motor")
	shell.Asset = domain.ReferenceTo(asset)
	require.NoError(t, shell.Submodels.Add(domain.ReferenceTo(sm)))
	for _, obj := range []any{shell, asset, sm, cd} {
		require.NoError(t, pkg.Add(obj))
	}
	return pkg
}

func TestGenerateMermaid(t *testing.T) {
	got := graph.GenerateMermaid(motorPackage(t), nil)

	tests := []struct {
		name     string
		contains []string
	}{
		{
			name: "Node Shapes",
			contains: []string{
				`urn_shell_motor(("Motor"))`,
				`urn_sm_tech[["TechnicalData"]]`,
				`urn_asset_motor[/"MotorAsset"/]`,
				`urn_cd_rpm{{"RPM"}}`,
			},
		},
		{
			name: "Structural Edges",
			contains: []string{
				"urn_shell_motor --> urn_asset_motor",
				"urn_shell_motor --> urn_sm_tech",
			},
		},
		{
			name: "Semantic Edges",
			contains: []string{
				`urn_sm_tech -. "semantic_id" .-> urn_cd_rpm`,
			},
		},
		{
			name: "Dangling Reference",
			contains: []string{
				`urn_sm_tech -. "Manual" .-> missing_urn_sm_docs`,
				`missing_urn_sm_docs["urn:sm:docs"]`,
				"class missing_urn_sm_docs missing;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
	assert.NotContains(t, got, "Overlay Styles")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	got := graph.GenerateMermaid(motorPackage(t), &graph.GraphOverlay{
		Changed: []string{"urn:sm:tech", "urn:sm:tech", "urn:unknown"},
		Focus:   "urn:shell:motor",
	})

	assert.Equal(t, 1, strings.Count(got, "class urn_sm_tech changed;"))
	assert.NotContains(t, got, "urn_unknown")
	assert.Contains(t, got, "class urn_shell_motor focus;")
}

func TestGenerateMermaid_Escaping(t *testing.T) {
	pkg := domain.NewPackage("")
	require.NoError(t, pkg.Add(domain.NewSubmodel("urn:sm/a b", `Say "hi"`)))

	got := graph.GenerateMermaid(pkg, nil)
	assert.Contains(t, got, `urn_sm_a_b[["Say 'hi'"]]`)
}
