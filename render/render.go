// Package render walks a layout tree depth-first and emits ZRDL v1 drawlist
// ops (§4.G), generalizing the teacher's Buffer.Render direct-terminal-write
// loop (tui/screen.go) into a codec-agnostic command stream consumed by the
// drawlist builder.
package render

import (
	"github.com/RtlZeroMemory/Rezi-sub007/drawlist"
	"github.com/RtlZeroMemory/Rezi-sub007/highlight"
	"github.com/RtlZeroMemory/Rezi-sub007/layout"
	"github.com/RtlZeroMemory/Rezi-sub007/markup"
	"github.com/RtlZeroMemory/Rezi-sub007/style"
	"github.com/RtlZeroMemory/Rezi-sub007/vdom"
)

var borderGlyphs = map[string][4]rune{
	"single": {'─', '│', '┌', '┐'}, // h, v, topLeft, topRight (bottomLeft/Right reuse topLeft/Right)
	"double": {'═', '║', '╔', '╗'},
}

// StyleOf extracts a style.Style from a VNode's style-only props (fg, bg,
// bold, dim, italic, underline, inverse, strike), none of which is part of
// vdom's layout-stability signature.
func StyleOf(props map[string]interface{}) style.Style {
	var s style.Style
	if c, ok := colorProp(props, "fg"); ok {
		s.Fg = c
	}
	if c, ok := colorProp(props, "bg"); ok {
		s.Bg = c
	}
	if boolProp(props, "bold") {
		s.Attrs |= style.AttrBold
	}
	if boolProp(props, "italic") {
		s.Attrs |= style.AttrItalic
	}
	if boolProp(props, "underline") {
		s.Attrs |= style.AttrUnderline
	}
	if boolProp(props, "inverse") {
		s.Attrs |= style.AttrInverse
	}
	if boolProp(props, "dim") {
		s.Attrs |= style.AttrDim
	}
	if boolProp(props, "strike") {
		s.Attrs |= style.AttrStrike
	}
	return s
}

func boolProp(props map[string]interface{}, key string) bool {
	v, _ := props[key].(bool)
	return v
}

func colorProp(props map[string]interface{}, key string) (style.Color, bool) {
	switch v := props[key].(type) {
	case string:
		return style.NamedColor(v)
	case style.Color:
		return v, true
	}
	return 0, false
}

// Signatures optionally carries the previous frame's layout-stability
// signatures plus which instances still have a valid cached drawlist, for
// damage-skip decisions (§4.G).
type Signatures struct {
	Prev        map[vdom.InstanceID]uint32
	ValidDraws  map[vdom.InstanceID]bool
}

// Renderer emits a drawlist.Builder's worth of commands for a layout tree.
type Renderer struct {
	b *drawlist.Builder
}

// New returns a Renderer writing into b. Callers own b's lifecycle (Reset
// between frames, Build to finalize).
func New(b *drawlist.Builder) *Renderer {
	return &Renderer{b: b}
}

// Render walks node depth-first, emitting drawlist ops for backgrounds,
// borders, text, and scrollable-container clipping. sigs may be nil to
// disable damage-skip (always fully re-render).
func (r *Renderer) Render(node *layout.Node, sigs *Signatures) {
	r.renderNode(node, 0, 0, sigs)
}

// renderNode renders node, whose Rect is already in its parent's content
// space; dx/dy is the accumulated scroll translation inherited from
// enclosing scrollable ancestors (§4.G: "translate children by
// (−scrollX, −scrollY)").
func (r *Renderer) renderNode(node *layout.Node, dx, dy int, sigs *Signatures) {
	if node == nil || node.Instance == nil || node.Instance.Node == nil {
		return
	}
	if skip(node, sigs) {
		return
	}

	vn := node.Instance.Node
	props := vn.Props
	rect := translate(node.Rect, dx, dy)

	switch vn.Kind {
	case vdom.KindText:
		r.renderText(vn, rect)
		return
	case vdom.KindCode:
		r.renderCode(vn, rect)
		return
	case vdom.KindSpacer:
		return
	}

	border := stringProp(props, "border", "none")
	hasBorder := border == "single" || border == "double"
	s := StyleOf(props)

	if hasBorder {
		r.b.PushClip(rect.X, rect.Y, rect.W, rect.H)
	}
	if _, hasBg := colorProp(props, "bg"); hasBg && rect.W > 0 && rect.H > 0 {
		r.b.FillRect(rect.X, rect.Y, rect.W, rect.H, s)
	}

	childDx, childDy := dx, dy
	if node.Meta != nil {
		r.b.PushClip(rect.X, rect.Y, node.Meta.ViewportWidth, node.Meta.ViewportHeight)
		childDx -= node.Meta.ScrollX
		childDy -= node.Meta.ScrollY
	}
	for _, c := range node.Children {
		r.renderNode(c, childDx, childDy, sigs)
	}
	if node.Meta != nil {
		r.b.PopClip()
	}

	if hasBorder {
		r.drawBorder(rect, border, s)
		r.b.PopClip()
	}
}

func (r *Renderer) renderText(vn *vdom.VNode, rect layout.Rect) {
	content, _ := vn.Props["content"].(string)
	if content == "" {
		return
	}
	base := StyleOf(vn.Props)
	segs := markup.Parse(content)
	r.drawSegments(rect, base, segs)
}

func (r *Renderer) renderCode(vn *vdom.VNode, rect layout.Rect) {
	content, _ := vn.Props["content"].(string)
	if content == "" {
		return
	}
	lang := stringProp(vn.Props, "lang", "")
	base := StyleOf(vn.Props)
	segs := highlight.Highlight(content, lang)
	r.drawSegments(rect, base, segs)
}

// drawSegments emits plain text for a single unstyled segment (preserving
// the simple DrawText path) and a styled text-run blob once markup or
// highlighting produces more than one style. The node's own style (fg/bg/
// attrs from props) is the base every segment layers onto: a segment only
// overrides fg/bg it explicitly sets and always adds its attrs on top.
func (r *Renderer) drawSegments(rect layout.Rect, base style.Style, segs []markup.Segment) {
	if len(segs) == 0 {
		return
	}
	if len(segs) == 1 && segs[0].Style == (style.Style{}) {
		text := segs[0].Text
		if rect.W > 0 {
			text = style.Truncate(text, rect.W, "")
		}
		r.b.DrawText(rect.X, rect.Y, text, base)
		return
	}

	runSegs := make([]drawlist.TextRunSegment, len(segs))
	for i, sg := range segs {
		st := base
		if sg.Style.Fg != 0 {
			st.Fg = sg.Style.Fg
		}
		if sg.Style.Bg != 0 {
			st.Bg = sg.Style.Bg
		}
		st.Attrs |= sg.Style.Attrs
		runSegs[i] = drawlist.TextRunSegment{Text: sg.Text, Style: st}
	}
	idx, ok := r.b.AddTextRunBlob(runSegs)
	if !ok {
		return
	}
	r.b.DrawTextRun(rect.X, rect.Y, idx)
}

func (r *Renderer) drawBorder(rect layout.Rect, kind string, s style.Style) {
	glyphs, ok := borderGlyphs[kind]
	if !ok || rect.W < 2 || rect.H < 2 {
		return
	}
	h, v, tl, tr := glyphs[0], glyphs[1], glyphs[2], glyphs[3]

	top := string(tl) + repeat(h, rect.W-2) + string(tr)
	bottom := string(tl) + repeat(h, rect.W-2) + string(tr)
	r.b.DrawText(rect.X, rect.Y, top, s)
	r.b.DrawText(rect.X, rect.Y+rect.H-1, bottom, s)
	for row := 1; row < rect.H-1; row++ {
		r.b.DrawText(rect.X, rect.Y+row, string(v), s)
		r.b.DrawText(rect.X+rect.W-1, rect.Y+row, string(v), s)
	}
}

// skip reports whether node's subtree can be skipped in-place: its
// layout-stability signature is unchanged from the previous frame AND its
// prior drawlist is still marked valid (§4.G damage). A skipped subtree
// emits no commands this frame, relying on the backend's diffing
// framebuffer to retain what is already on screen for that region.
func skip(node *layout.Node, sigs *Signatures) bool {
	if sigs == nil || node.Instance == nil {
		return false
	}
	id := node.Instance.ID
	prevSig, hadPrev := sigs.Prev[id]
	return hadPrev && prevSig == node.Instance.Signature && sigs.ValidDraws[id]
}

func translate(rect layout.Rect, dx, dy int) layout.Rect {
	rect.X += dx
	rect.Y += dy
	return rect
}

func stringProp(props map[string]interface{}, key, def string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return def
}

func repeat(r rune, n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]rune, n)
	for i := range out {
		out[i] = r
	}
	return string(out)
}
