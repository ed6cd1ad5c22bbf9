package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/aastree/pkg/session"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// It picks the style from the terminal background.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// NodeMarkdown describes a row and its direct children as a markdown document.
func NodeMarkdown(v session.NodeView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", mdEscape(v.Name))
	fmt.Fprintf(&sb, "`%s`\n\n", v.Path)

	sb.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Value | %s |\n", mdEscape(v.Value))
	fmt.Fprintf(&sb, "| Type | %s |\n", mdEscape(v.Type))
	if v.TypeHint != "" {
		fmt.Fprintf(&sb, "| Type hint | %s |\n", mdEscape(v.TypeHint))
	}
	if !v.TypeOK {
		sb.WriteString("| Type check | **mismatch** |\n")
	}
	if v.Linked != "" {
		fmt.Fprintf(&sb, "| Links to | `%s` |\n", v.Linked)
	}
	if state := stateOf(v); state != "" {
		fmt.Fprintf(&sb, "| State | %s |\n", state)
	}

	if len(v.Children) > 0 {
		sb.WriteString("\n## Children\n\n| Name | Value | Type |\n|---|---|---|\n")
		for _, c := range v.Children {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", mdEscape(c.Name), mdEscape(c.Value), mdEscape(c.Type))
		}
	}
	return sb.String()
}

func stateOf(v session.NodeView) string {
	switch {
	case v.New:
		return "new"
	case v.Changed:
		return "changed"
	}
	return ""
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
