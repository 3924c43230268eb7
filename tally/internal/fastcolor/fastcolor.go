// Package fastcolor writes fixed-width terminal columns wrapped in ANSI
// colour sequences.
package fastcolor

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an ANSI SGR sequence. The zero value writes plain text.
type Color string

const (
	Reset Color = "\x1b[0m"
	Bold  Color = "\x1b[1m"
)

var (
	FgRed   = mustHex("#d93333")
	FgGreen = mustHex("#4db34d")
	FgBlue  = mustHex("#4d80f2")
	FgGray  = mustHex("#8c8c8c")
)

// Enabled turns colour output on or off for every Color.
var Enabled = true

// fg is a 24-bit foreground colour.
func fg(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color(fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b))
}

// hex parses a "#rrggbb" foreground colour.
func hex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return "", err
	}
	return fg(c), nil
}

func mustHex(s string) Color {
	c, err := hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// WriteStringFixed writes s padded or cut to exactly width runes. Cut text
// ends with '~'.
func (c Color) WriteStringFixed(w io.StringWriter, s string, width int, rightAlign bool) {
	if width <= 0 {
		return
	}
	n := utf8.RuneCountInString(s)
	if n > width {
		s = string([]rune(s)[:width-1]) + "~"
		n = width
	}
	pad := strings.Repeat(" ", width-n)

	colored := Enabled && c != "" && c != Reset
	if colored {
		w.WriteString(string(c))
	}
	if rightAlign {
		w.WriteString(pad)
		w.WriteString(s)
	} else {
		w.WriteString(s)
		w.WriteString(pad)
	}
	if colored {
		w.WriteString(string(Reset))
	}
}
