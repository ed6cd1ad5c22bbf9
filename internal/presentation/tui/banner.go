package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the aastree banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct{ text, color string }{
		{"    _   _   ___ _             ", "#0ea5e9"},
		{"   /_\\ /_\\ / __| |_ _ _ ___ ___", "#06b6d4"},
		{"  / _ \\/ _ \\\\__ \\  _| '_/ -_) -_)", "#14b8a6"},
		{" /_/ \\_\\/ \\_\\___/\\__|_| \\___\\___|", "#10b981"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  "+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
