package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"              _ _       _                           _ ",
	"  _____      _(_) |_ ___| |__  _   _  __ _ _ __ __| |",
	" / __\\ \\ /\\ / / | __/ __| '_ \\| | | |/ _` | '__/ _` |",
	" \\__ \\\\ V  V /| | || (__| | | | |_| | (_| | | | (_| |",
	" |___/ \\_/\\_/ |_|\\__\\___|_| |_|\\__, |\\__,_|_|  \\__,_|",
	"                               |___/                 ",
}

// Gradient from teal to indigo, one colour per banner line.
var bannerColors = []string{"#2dd4bf", "#22d3ee", "#38bdf8", "#60a5fa", "#818cf8", "#a78bfa"}

// PrintBanner writes the ASCII art banner and the version to w.
// Colours degrade with the terminal profile of w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(out.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, out.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
