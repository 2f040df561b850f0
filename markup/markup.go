// Package markup implements the inline style-markup mini-language accepted
// inside a `text` VNode's content (§4.G rendering, generalized from the
// teacher's basement.ParseInline). Where the teacher's parser rewrote
// tokens directly into ANSI escapes, this one resolves them into
// style.Style-tagged segments that render.DrawTextRun consumes as ZRDL v1
// text-run blob segments — markup never touches a terminal directly.
package markup

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/RtlZeroMemory/Rezi-sub007/style"
)

// Segment is one run of text sharing a single resolved style.
type Segment struct {
	Text  string
	Style style.Style
}

var inlineTokenRe = regexp.MustCompile(`(\*\*.+?\*\*)|(\*.+?\*)|(__.+?__)|(~~.+?~~)|(--.+?--)|(!?#[a-zA-Z0-9]{3,8}\(.+?\))`)

// Parse tokenizes src into styled segments, recursively resolving nested
// markup (e.g. `**bold #red(and red)**`) by merging the outer style into
// each inner segment.
func Parse(src string) []Segment {
	return parse(src, style.Style{})
}

func parse(src string, base style.Style) []Segment {
	var out []Segment
	last := 0
	for _, m := range inlineTokenRe.FindAllStringIndex(src, -1) {
		start, end := m[0], m[1]
		if start > last {
			out = append(out, Segment{Text: src[last:start], Style: base})
		}
		out = append(out, resolveToken(src[start:end], base)...)
		last = end
	}
	if last < len(src) {
		out = append(out, Segment{Text: src[last:], Style: base})
	}
	return mergeAdjacent(out)
}

func resolveToken(token string, base style.Style) []Segment {
	switch {
	case strings.HasPrefix(token, "**"):
		s := base
		s.Attrs |= style.AttrBold
		return parse(token[2:len(token)-2], s)
	case strings.HasPrefix(token, "__"):
		s := base
		s.Attrs |= style.AttrUnderline
		return parse(token[2:len(token)-2], s)
	case strings.HasPrefix(token, "~~"):
		s := base
		s.Attrs |= style.AttrStrike
		return parse(token[2:len(token)-2], s)
	case strings.HasPrefix(token, "--"):
		s := base
		s.Attrs |= style.AttrDim
		return parse(token[2:len(token)-2], s)
	case strings.HasPrefix(token, "*"):
		s := base
		s.Attrs |= style.AttrItalic
		return parse(token[1:len(token)-1], s)
	case strings.Contains(token, "#"):
		return resolveColorToken(token, base)
	}
	return []Segment{{Text: token, Style: base}}
}

func resolveColorToken(token string, base style.Style) []Segment {
	isBg := strings.HasPrefix(token, "!")
	rest := token
	if isBg {
		rest = rest[1:]
	}
	startParen := strings.Index(rest, "(")
	endParen := strings.LastIndex(rest, ")")
	if startParen < 0 || endParen <= startParen {
		return []Segment{{Text: token, Style: base}}
	}
	name := rest[1:startParen]
	content := rest[startParen+1 : endParen]

	c, ok := resolveColor(name)
	if !ok {
		return []Segment{{Text: token, Style: base}}
	}
	s := base
	if isBg {
		s.Bg = c
	} else {
		s.Fg = c
	}
	return parse(content, s)
}

// resolveColor accepts either a palette name (style.NamedColor) or a 6-digit
// hex RGB triple, e.g. "ff8800".
func resolveColor(name string) (style.Color, bool) {
	if c, ok := style.NamedColor(name); ok {
		return c, true
	}
	if len(name) == 6 {
		if v, err := strconv.ParseUint(name, 16, 32); err == nil {
			return style.RGB(uint8(v>>16), uint8(v>>8), uint8(v)), true
		}
	}
	return 0, false
}

func mergeAdjacent(segs []Segment) []Segment {
	if len(segs) == 0 {
		return segs
	}
	out := segs[:1]
	for _, s := range segs[1:] {
		last := &out[len(out)-1]
		if last.Style == s.Style {
			last.Text += s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}
