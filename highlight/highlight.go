// Package highlight renders source text for a `code` VNode into styled
// segments (§3 widget kinds), generalizing the teacher's
// tui/highlight_chroma.go / tui/highlight_default.go build-tag split from
// Span{Text, basement.Style} (ANSI-16 heuristics) to markup.Segment backed
// by packed RGB style.Color, since ZRDL v1 styles carry full RGB rather
// than terminal-native color names.
package highlight

import "github.com/RtlZeroMemory/Rezi-sub007/markup"

// Highlight tokenizes code (declared language lang, "" to guess) into
// styled segments ready for render.DrawTextRun. The concrete
// implementation is selected by the `chroma` build tag, exactly as the
// teacher selects between highlight_chroma.go and highlight_default.go.
func Highlight(code, lang string) []markup.Segment {
	return highlight(code, lang)
}
