package logger

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Box-drawing glyphs for Banner, grounded on internal/logger/console.go's
// box-drawing constants.
const (
	boxTopLeft     = "┌"
	boxTopRight    = "┐"
	boxBottomLeft  = "└"
	boxBottomRight = "┘"
	boxHorizontal  = "─"
	boxVertical    = "│"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// terminalWidth returns the current terminal width with sensible bounds,
// grounded on internal/logger/console.go's getTerminalWidth.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 60 {
		return 80
	}
	if width > 120 {
		return 120
	}
	return width
}

// visibleWidth measures a string's terminal column width, stripping ANSI
// escapes and accounting for wide runes, grounded on console.go's
// visibleLength.
func visibleWidth(s string) int {
	return runewidth.StringWidth(ansiRegex.ReplaceAllString(s, ""))
}

func boxLine(content string, width int) string {
	visible := visibleWidth(content)
	padding := width - 4 - visible
	if padding < 0 {
		clean := ansiRegex.ReplaceAllString(content, "")
		content = runewidth.Truncate(clean, width-7, "...")
		padding = width - 4 - visibleWidth(content)
	}
	return boxVertical + " " + content + strings.Repeat(" ", padding) + " " + boxVertical
}

// Banner writes a terminal-width-bounded, box-drawn summary: a title line
// followed by each of lines, to w. It is independent of level filtering
// (always printed) since it's a final, user-facing summary rather than a
// progress log line.
func Banner(w io.Writer, title string, lines []string) {
	width := terminalWidth()
	fmt.Fprintln(w, boxTopLeft+strings.Repeat(boxHorizontal, width-2)+boxTopRight)
	fmt.Fprintln(w, boxLine(title, width))
	for _, l := range lines {
		fmt.Fprintln(w, boxLine(l, width))
	}
	fmt.Fprintln(w, boxBottomLeft+strings.Repeat(boxHorizontal, width-2)+boxBottomRight)
}
