package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/aastree/pkg/domain"
)

// GraphOverlay contains editing state to visualize on the graph.
type GraphOverlay struct {
	Changed []string
	Focus   string
}

// GenerateMermaid produces a Mermaid flowchart of the identifiables of pkg
// and the references between them.
// It applies semantic styling:
// - Shell: ((Circle))
// - Submodel: [[Subroutine]]
// - Asset: [/Parallelogram/]
// - Concept description: {{Hexagon}}
// Structural references (shell submodels and asset) are solid arrows, semantic
// and derivation references are dotted, and reference elements carry their
// short name as label. References that do not resolve point at a placeholder node.
func GenerateMermaid(pkg *domain.Package, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := map[string]bool{}
	for _, item := range pkg.ObjStore.Items() {
		obj, ok := item.(domain.Identifiable)
		if !ok {
			continue
		}
		ids[obj.Identifier()] = true

		opener, closer := "[", "]"
		switch obj.(type) {
		case *domain.Shell:
			opener, closer = "((", "))"
		case *domain.Submodel:
			opener, closer = "[[", "]]"
		case *domain.Asset:
			opener, closer = "[/", "/]"
		case *domain.ConceptDescription:
			opener, closer = "{{", "}}"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(obj.Identifier()), opener, label(obj), closer))
	}

	dangling := map[string]string{}
	edge := func(from string, ref *domain.Reference, name string, dotted bool) {
		if ref == nil || len(ref.Keys) == 0 {
			return
		}
		safeFrom := sanitizeMermaidID(from)
		to := ref.Keys[0].Value
		safeTo := sanitizeMermaidID(to)
		if _, err := ref.Resolve(pkg.ObjStore); err != nil {
			safeTo = "missing_" + safeTo
			dangling[safeTo] = to
			dotted = true
		}
		arrow := "-->"
		if dotted {
			arrow = "-.->"
		}
		if name != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", quote(name))
			if dotted {
				arrow = fmt.Sprintf("-. \"%s\" .->", quote(name))
			}
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	for _, shell := range pkg.Shells() {
		edge(shell.ID, shell.Asset, "", false)
		edge(shell.ID, shell.DerivedFrom, "derived_from", true)
		if shell.Submodels == nil {
			continue
		}
		for _, item := range shell.Submodels.Items() {
			if ref, ok := item.(*domain.Reference); ok {
				edge(shell.ID, ref, "", false)
			}
		}
	}
	for _, sm := range pkg.Submodels() {
		edge(sm.ID, sm.SemanticID, "semantic_id", true)
		walkElements(sm.Elements, func(name string, ref *domain.Reference, semantic bool) {
			edge(sm.ID, ref, name, semantic)
		})
	}
	for _, cd := range pkg.ConceptDescriptions() {
		if cd.IsCaseOf == nil {
			continue
		}
		for _, item := range cd.IsCaseOf.Items() {
			if ref, ok := item.(*domain.Reference); ok {
				edge(cd.ID, ref, "is_case_of", true)
			}
		}
	}

	if len(dangling) > 0 {
		missing := make([]string, 0, len(dangling))
		for id := range dangling {
			missing = append(missing, id)
		}
		sort.Strings(missing)
		for _, id := range missing {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, quote(dangling[id])))
		}
		sb.WriteString("    classDef missing fill:#ffebee,stroke:#c62828,stroke-dasharray:4,color:#000;\n")
		for _, id := range missing {
			sb.WriteString(fmt.Sprintf("    class %s missing;\n", id))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef changed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef focus fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		changed := make(map[string]bool)
		for _, id := range overlay.Changed {
			if !ids[id] || changed[id] {
				continue
			}
			changed[id] = true
			sb.WriteString(fmt.Sprintf("    class %s changed;\n", sanitizeMermaidID(id)))
		}
		if overlay.Focus != "" && ids[overlay.Focus] {
			sb.WriteString(fmt.Sprintf("    class %s focus;\n", sanitizeMermaidID(overlay.Focus)))
		}
	}

	return sb.String()
}

// walkElements reports the references held by elems and nested collections.
// semantic is true for semantic ids.
func walkElements(elems *domain.Set, fn func(name string, ref *domain.Reference, semantic bool)) {
	if elems == nil {
		return
	}
	for _, item := range elems.Items() {
		switch el := item.(type) {
		case *domain.ReferenceElement:
			fn(el.IDShort, el.Value, false)
		case *domain.Property:
			fn("semantic_id", el.SemanticID, true)
		case *domain.Collection:
			fn("semantic_id", el.SemanticID, true)
			walkElements(el.Value, fn)
		}
	}
}

func label(obj domain.Identifiable) string {
	if name := obj.IDShortName(); name != "" {
		return quote(name)
	}
	return quote(obj.Identifier())
}

func quote(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", ":", "_", "#", "_", " ", "_")
	return r.Replace(id)
}
