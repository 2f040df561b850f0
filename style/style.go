// Package style holds the shared Style/Color/Attr types and the
// measurement helpers the layout, render, and drawlist packages need for
// grapheme-aware width and truncation (§4.F style attrs, §4.E text sizing).
// It generalizes the teacher's basement/style.go (named-color ANSI escape
// lookup) into packed RGB colors plus a bitmask of attrs, and replaces its
// byte-counting width logic with charmbracelet/x/ansi's grapheme-aware
// measurement.
package style

import (
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// Attr is a bitmask of text attributes (§4.F: bit0 bold, 1 italic,
// 2 underline, 3 inverse, 4 dim, 5 strikethrough, 6 overline, 7 blink).
type Attr uint32

const (
	AttrBold Attr = 1 << iota
	AttrItalic
	AttrUnderline
	AttrInverse
	AttrDim
	AttrStrike
	AttrOverline
	AttrBlink
)

// Color is packed as 0x00RRGGBB (§4.F).
type Color uint32

// RGB packs r, g, b (0-255 each) into a Color.
func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Style is the shared visual style record threaded from VNode props through
// layout/render into the drawlist's style{fg,bg,attrs} payload.
type Style struct {
	Fg    Color
	Bg    Color
	Attrs Attr
}

// namedColors mirrors the teacher's basement.GetColorCode table, repurposed
// from ANSI escape strings to packed RGB so the same palette feeds the
// binary drawlist instead of a direct terminal write.
var namedColors = map[string]Color{
	"black":   RGB(0, 0, 0),
	"red":     RGB(205, 0, 0),
	"green":   RGB(0, 205, 0),
	"yellow":  RGB(205, 205, 0),
	"blue":    RGB(0, 0, 238),
	"magenta": RGB(205, 0, 205),
	"cyan":    RGB(0, 205, 205),
	"white":   RGB(229, 229, 229),
	"grey":    RGB(127, 127, 127),
	"gray":    RGB(127, 127, 127),
}

// NamedColor resolves a palette name to a packed Color, and whether it was
// recognized.
func NamedColor(name string) (Color, bool) {
	c, ok := namedColors[name]
	return c, ok
}

// Width returns the terminal display width of s (grapheme-aware, wide-rune
// aware), per charmbracelet/x/ansi.
func Width(s string) int {
	return ansi.StringWidth(s)
}

// Truncate clips s to at most width display cells, appending tail (e.g.
// "…") when truncation occurs.
func Truncate(s string, width int, tail string) string {
	return ansi.Truncate(s, width, tail)
}

// FirstRune splits s into its first rune and the remainder, along with that
// rune's display width.
func FirstRune(s string) (head rune, rest string, width int) {
	r, size := utf8.DecodeRuneInString(s)
	head = r
	rest = s[size:]
	width = ansi.StringWidth(string(r))
	return head, rest, width
}
