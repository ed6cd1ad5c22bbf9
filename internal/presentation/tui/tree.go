package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/aastree/pkg/session"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// TreePrinter draws node views as an indented tree. Colors follow the
// foreground roles of the model: type mismatches red, links blue, new rows
// green and changed rows cyan.
type TreePrinter struct {
	out     io.Writer
	profile termenv.Profile
	width   int
}

// NewTreePrinter writes to w. Colors and value truncation are enabled only
// when w is a terminal.
func NewTreePrinter(w io.Writer) *TreePrinter {
	p := &TreePrinter{out: w, profile: termenv.Ascii}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.profile = termenv.EnvColorProfile()
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			p.width = width
		}
	}
	return p
}

// NewPlainTreePrinter writes without colors and without truncation.
func NewPlainTreePrinter(w io.Writer) *TreePrinter {
	return &TreePrinter{out: w, profile: termenv.Ascii}
}

// Print draws v and its loaded children.
func (p *TreePrinter) Print(v session.NodeView) {
	fmt.Fprintln(p.out, p.line(v, ""))
	p.children(v.Children, "")
}

// PrintList draws each view on its own line with its path.
func (p *TreePrinter) PrintList(views []session.NodeView) {
	for _, v := range views {
		fmt.Fprintln(p.out, p.line(v, ""), p.profile.String(v.Path).Faint())
	}
}

func (p *TreePrinter) children(views []session.NodeView, indent string) {
	for i, c := range views {
		branch, next := "├── ", "│   "
		if i == len(views)-1 {
			branch, next = "└── ", "    "
		}
		fmt.Fprintln(p.out, p.line(c, indent+branch))
		p.children(c.Children, indent+next)
	}
}

func (p *TreePrinter) line(v session.NodeView, prefix string) string {
	name := p.profile.String(v.Name).Bold()
	switch {
	case v.New:
		name = name.Foreground(p.profile.Color("#22c55e"))
	case v.Changed:
		name = name.Foreground(p.profile.Color("#06b6d4"))
	}

	text := prefix + name.String()
	if v.HasChildren && len(v.Children) == 0 {
		text += p.profile.String(" …").Faint().String()
	}

	value := v.Value
	if value != "" {
		value = p.truncate(value, len(prefix)+len(v.Name)+len(v.Type)+6)
		s := p.profile.String(value).Italic()
		switch {
		case !v.TypeOK:
			s = s.Foreground(p.profile.Color("#ef4444"))
		case v.IsLink:
			s = s.Foreground(p.profile.Color("#3b82f6")).Underline()
		}
		text += " = " + s.String()
	}
	if v.Type != "" {
		text += " " + p.profile.String("("+v.Type+")").Faint().String()
	}
	return text
}

func (p *TreePrinter) truncate(s string, used int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if p.width == 0 {
		return s
	}
	room := p.width - used
	if room < 8 {
		room = 8
	}
	runes := []rune(s)
	if len(runes) <= room {
		return s
	}
	return string(runes[:room-1]) + "…"
}
