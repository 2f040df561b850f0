//go:build chroma

package highlight

import (
	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"

	"github.com/RtlZeroMemory/Rezi-sub007/markup"
	"github.com/RtlZeroMemory/Rezi-sub007/style"
)

func highlight(code, lang string) []markup.Segment {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	st := styles.Get("monokai")
	if st == nil {
		st = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return []markup.Segment{{Text: code, Style: style.Style{Attrs: style.AttrDim}}}
	}

	var segs []markup.Segment
	for _, token := range iterator.Tokens() {
		entry := st.Get(token.Type)
		segs = append(segs, markup.Segment{Text: token.Value, Style: entryStyle(entry)})
	}
	return segs
}

func entryStyle(entry chroma.StyleEntry) style.Style {
	var s style.Style
	if entry.Bold == chroma.Yes {
		s.Attrs |= style.AttrBold
	}
	if entry.Underline == chroma.Yes {
		s.Attrs |= style.AttrUnderline
	}
	if entry.Italic == chroma.Yes {
		s.Attrs |= style.AttrItalic
	}
	if entry.Colour.IsSet() {
		s.Fg = style.RGB(entry.Colour.Red(), entry.Colour.Green(), entry.Colour.Blue())
	}
	if entry.Background.IsSet() {
		s.Bg = style.RGB(entry.Background.Red(), entry.Background.Green(), entry.Background.Blue())
	}
	return s
}
