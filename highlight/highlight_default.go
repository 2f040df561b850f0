//go:build !chroma

package highlight

import (
	"github.com/RtlZeroMemory/Rezi-sub007/markup"
	"github.com/RtlZeroMemory/Rezi-sub007/style"
)

// highlight without the chroma build tag returns the code as a single dim
// run, matching the teacher's dependency-free fallback.
func highlight(code, lang string) []markup.Segment {
	return []markup.Segment{{Text: code, Style: style.Style{Attrs: style.AttrDim}}}
}
