package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Tandem banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _____                _               ", "#818cf8"},
		{"|_   _|_ _ _ __   __| | ___ _ __ ___  ", "#a78bfa"},
		{"  | |/ _` | '_ \\ / _` |/ _ \\ '_ ` _ \\ ", "#c084fc"},
		{"  | | (_| | | | | (_| |  __/ | | | | |", "#e879f9"},
		{"  |_|\\__,_|_| |_|\\__,_|\\___|_| |_| |_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  "+version).Faint())
	fmt.Fprintln(w)
}
