// Package layout assigns rectangles to a runtime instance tree, handling
// padding, border, gap, flex distribution, and overflow-scroll clamping
// (§4.E). It generalizes the teacher's row/column/box engine
// (tui/layout_engine.go) from fixed/auto/flex Size constraints to
// constraint-resolved values plus intrinsic measurement.
package layout

import (
	"github.com/RtlZeroMemory/Rezi-sub007/constraint"
	"github.com/RtlZeroMemory/Rezi-sub007/vdom"
)

// Rect is an integer-celled rectangle in the parent's coordinate space.
type Rect struct {
	X, Y, W, H int
}

// Meta is attached to scrollable containers (overflow:"scroll").
type Meta struct {
	ScrollX, ScrollY                       int
	ContentWidth, ContentHeight            int
	ViewportWidth, ViewportHeight          int
}

// Node is one entry in the layout tree, parallel to the runtime instance
// tree (§3 Layout tree).
type Node struct {
	Instance *vdom.Instance
	Rect     Rect
	Meta     *Meta
	Children []*Node
}

// ErrorKind tags a layout failure.
type ErrorKind int

const (
	ErrInvalidProps ErrorKind = iota
)

// Error is returned when a node's layout-relevant props are malformed.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return "INVALID_PROPS: " + e.Message
}

// IntrinsicMeasure measures a leaf node's natural content size given the
// available space. The render package supplies the real implementation
// (text wrapping/width via the style package); layout falls back to a
// trivial default when none is given.
type IntrinsicMeasure func(inst *vdom.Instance, availW, availH int) (w, h int)

// Values carries the per-instance resolved constraint values produced by
// constraint.Resolver.Resolve, keyed exactly as constraint.Result.Values.
type Values map[vdom.InstanceID]constraint.PropValues

// Layout assigns a rect tree rooted at root, constrained to maxW x maxH at
// (x, y). values may be nil (treat every size as unresolved/intrinsic).
func Layout(root *vdom.Instance, values Values, x, y, maxW, maxH int, measure IntrinsicMeasure) (*Node, error) {
	if measure == nil {
		measure = defaultIntrinsicMeasure
	}
	if err := rejectPercentageStrings(root); err != nil {
		return nil, err
	}
	b := &builder{values: values, measure: measure}
	return b.layoutNode(root, x, y, maxW, maxH)
}

// sizingPropKeys are the raw VNode.Props keys that must be a constant
// number or a parsed expression, never a literal string such as "50%"
// (§4.E: percentage strings are removed from this design).
var sizingPropKeys = []string{
	vdom.PropWidth, vdom.PropHeight, vdom.PropMinWidth, vdom.PropMaxWidth,
	vdom.PropMinHeight, vdom.PropMaxHeight, vdom.PropFlexBasis,
}

func rejectPercentageStrings(root *vdom.Instance) error {
	var err error
	vdom.WalkPreorder(root, func(n *vdom.Instance) {
		if err != nil || n.Node == nil {
			return
		}
		for _, key := range sizingPropKeys {
			if s, ok := n.Node.Props[key].(string); ok {
				err = &Error{Kind: ErrInvalidProps, Message: "\"" + key + "\" must be a number or expression, not a percentage string \"" + s + "\""}
				return
			}
		}
	})
	return err
}

type builder struct {
	values  Values
	measure IntrinsicMeasure
}

func defaultIntrinsicMeasure(inst *vdom.Instance, availW, availH int) (int, int) {
	if inst.Node.Kind == vdom.KindSpacer {
		return 0, 0
	}
	if content, ok := inst.Node.Props["content"].(string); ok {
		w := len([]rune(content))
		if w > availW && availW > 0 {
			w = availW
		}
		return w, 1
	}
	return 0, 0
}

func (b *builder) resolved(inst *vdom.Instance, prop constraint.Property) (float64, bool) {
	if b.values != nil {
		if pv, ok := b.values[inst.ID]; ok {
			if v, ok := pv[prop]; ok {
				return v, true
			}
		}
	}
	return 0, false
}

func (b *builder) propsOf(inst *vdom.Instance) map[string]interface{} {
	if inst.Node == nil {
		return nil
	}
	return inst.Node.Props
}

func floatProp(props map[string]interface{}, key string, def float64) (float64, error) {
	v, ok := props[key]
	if !ok {
		return def, nil
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case string:
		return 0, &Error{Kind: ErrInvalidProps, Message: key + " must be numeric, not a percentage/string; use an expression"}
	}
	return def, nil
}

func stringProp(props map[string]interface{}, key, def string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return def
}

func boolProp(props map[string]interface{}, key string) bool {
	v, _ := props[key].(bool)
	return v
}

// borderInset returns the cells reserved per side for the declared border
// style ("single"/"double" reserve 1 row/col per side; "none"/"" reserve 0).
func borderInset(style string) int {
	if style == "single" || style == "double" {
		return 1
	}
	return 0
}

func (b *builder) layoutNode(inst *vdom.Instance, x, y, maxW, maxH int) (*Node, error) {
	switch inst.Kind() {
	case vdom.KindGrid:
		return b.layoutGrid(inst, x, y, maxW, maxH)
	case vdom.KindModal, vdom.KindDropdown:
		return b.layoutOverlay(inst, x, y, maxW, maxH)
	case vdom.KindBox:
		return b.layoutBox(inst, x, y, maxW, maxH)
	case vdom.KindRow:
		return b.layoutFlex(inst, x, y, maxW, maxH, true)
	case vdom.KindColumn, vdom.KindSplitPane, vdom.KindVirtualList, vdom.KindTable, vdom.KindTree:
		return b.layoutFlex(inst, x, y, maxW, maxH, false)
	default:
		w, h := b.sizeOf(inst, maxW, maxH)
		return &Node{Instance: inst, Rect: Rect{X: x, Y: y, W: w, H: h}}, nil
	}
}

// sizeOf resolves a node's own width/height: constraint-resolved value if
// present, else intrinsic measurement, clamped into [0, avail].
func (b *builder) sizeOf(inst *vdom.Instance, availW, availH int) (int, int) {
	w, hasW := b.resolved(inst, constraint.PropWidth)
	h, hasH := b.resolved(inst, constraint.PropHeight)
	iw, ih := 0, 0
	if !hasW || !hasH {
		iw, ih = b.measure(inst, availW, availH)
	}
	outW := iw
	if hasW {
		outW = int(w)
	}
	outH := ih
	if hasH {
		outH = int(h)
	}
	if outW < 0 {
		outW = 0
	}
	if outH < 0 {
		outH = 0
	}
	if outW > availW {
		outW = availW
	}
	if outH > availH {
		outH = availH
	}
	return outW, outH
}

func (b *builder) layoutBox(inst *vdom.Instance, x, y, maxW, maxH int) (*Node, error) {
	props := b.propsOf(inst)
	padding, err := floatProp(props, "padding", 0)
	if err != nil {
		return nil, err
	}
	border := stringProp(props, "border", "none")
	inset := borderInset(border)
	pad := int(padding)

	innerX := x + pad + inset
	innerY := y + pad + inset
	innerW := maxW - 2*pad - 2*inset
	innerH := maxH - 2*pad - 2*inset
	if innerW < 0 {
		innerW = 0
	}
	if innerH < 0 {
		innerH = 0
	}

	node := &Node{Instance: inst, Rect: Rect{X: x, Y: y, W: maxW, H: maxH}}
	if len(inst.Children) > 0 {
		child, err := b.layoutNode(inst.Children[0], innerX, innerY, innerW, innerH)
		if err != nil {
			return nil, err
		}
		node.Children = []*Node{child}
	}
	return node, nil
}

func (b *builder) layoutFlex(inst *vdom.Instance, x, y, maxW, maxH int, isRow bool) (*Node, error) {
	props := b.propsOf(inst)
	padding, err := floatProp(props, "padding", 0)
	if err != nil {
		return nil, err
	}
	gap, err := floatProp(props, "gap", 0)
	if err != nil {
		return nil, err
	}
	border := stringProp(props, "border", "none")
	inset := borderInset(border)
	pad := int(padding)
	gapCells := int(gap)
	overflowScroll := stringProp(props, "overflow", "") == "scroll"

	viewportX := x + pad + inset
	viewportY := y + pad + inset
	viewportW := maxW - 2*pad - 2*inset
	viewportH := maxH - 2*pad - 2*inset
	if viewportW < 0 {
		viewportW = 0
	}
	if viewportH < 0 {
		viewportH = 0
	}

	children := inst.Children
	n := len(children)

	mainAvail := viewportW
	if !isRow {
		mainAvail = viewportH
	}

	// measurement-space main size is unbounded when overflow:scroll so
	// content can exceed the viewport; otherwise children are measured
	// against the viewport directly.
	measureMain := mainAvail
	if overflowScroll {
		measureMain = 1 << 30
	}

	mainSizes := make([]int, n)
	crossSizes := make([]int, n)
	marginLead := make([]int, n)  // ml for row, mt for column
	marginTrail := make([]int, n) // mr for row, mb for column
	flexWeights := make([]float64, n)
	fixed := 0
	totalFlex := 0.0

	for i, c := range children {
		cprops := b.propsOf(c)
		flex, _ := floatProp(cprops, "flex", 0)
		var w, h int
		if isRow {
			w, h = b.sizeOf(c, measureMain, viewportH)
			ml, _ := floatProp(cprops, "ml", 0)
			mr, _ := floatProp(cprops, "mr", 0)
			marginLead[i], marginTrail[i] = int(ml), int(mr)
		} else {
			w, h = b.sizeOf(c, viewportW, measureMain)
			mt, _ := floatProp(cprops, "mt", 0)
			mb, _ := floatProp(cprops, "mb", 0)
			marginLead[i], marginTrail[i] = int(mt), int(mb)
		}
		if isRow {
			mainSizes[i] = w
			crossSizes[i] = h
		} else {
			mainSizes[i] = h
			crossSizes[i] = w
		}
		if flex > 0 {
			flexWeights[i] = flex
			totalFlex += flex
		} else {
			fixed += mainSizes[i]
		}
		fixed += marginLead[i] + marginTrail[i]
	}
	if n > 1 {
		fixed += gapCells * (n - 1)
	}

	if !overflowScroll && totalFlex > 0 {
		extra := mainAvail - fixed
		if extra > 0 {
			for i := range children {
				if flexWeights[i] > 0 {
					mainSizes[i] += int(float64(extra) * flexWeights[i] / totalFlex)
				}
			}
		}
	}

	// Place children along the main axis first (content-space, no scroll
	// shift), tracking the bounding box actually spanned so negative
	// margins that pull a child outside the naive sum are reflected in
	// contentWidth/contentHeight (§4.E overflow scroll semantics).
	mainStart := make([]int, n)
	cursor := 0
	boundLo, boundHi := 0, 0
	for i := range children {
		start := cursor + marginLead[i]
		mainStart[i] = start
		end := start + mainSizes[i]
		if i == 0 || start < boundLo {
			boundLo = start
		}
		if i == 0 || end > boundHi {
			boundHi = end
		}
		cursor = end + marginTrail[i] + gapCells
	}
	contentMain := boundHi - boundLo
	if contentMain < 0 {
		contentMain = 0
	}
	contentCross := 0
	for _, c := range crossSizes {
		if c > contentCross {
			contentCross = c
		}
	}

	contentW, contentH := contentMain, contentCross
	if !isRow {
		contentW, contentH = contentCross, contentMain
	}

	scrollX, scrollY := 0, 0
	var meta *Meta
	if overflowScroll {
		reqX, _ := floatProp(props, "scrollX", 0)
		reqY, _ := floatProp(props, "scrollY", 0)
		maxScrollX := contentW - viewportW
		if maxScrollX < 0 {
			maxScrollX = 0
		}
		maxScrollY := contentH - viewportH
		if maxScrollY < 0 {
			maxScrollY = 0
		}
		scrollX = clampInt(truncToZero(reqX), 0, maxScrollX)
		scrollY = clampInt(truncToZero(reqY), 0, maxScrollY)
		meta = &Meta{
			ScrollX: scrollX, ScrollY: scrollY,
			ContentWidth: contentW, ContentHeight: contentH,
			ViewportWidth: viewportW, ViewportHeight: viewportH,
		}
	}

	// Child rects are in content space; the renderer applies the
	// (-scrollX, -scrollY) translation at draw time (§4.G), not here.
	node := &Node{Instance: inst, Rect: Rect{X: x, Y: y, W: maxW, H: maxH}, Meta: meta}
	for i, c := range children {
		cross := crossSizes[i]
		if isRow {
			if cross > viewportH {
				cross = viewportH
			}
		} else {
			if cross > viewportW {
				cross = viewportW
			}
		}
		alignSelf := stringProp(b.propsOf(c), "alignSelf", stringProp(props, "align", "start"))
		var childX, childY, childW, childH int
		if isRow {
			childX = viewportX + mainStart[i]
			childY = viewportY + crossOffset(alignSelf, viewportH, cross)
			childW = mainSizes[i]
			childH = cross
		} else {
			childY = viewportY + mainStart[i]
			childX = viewportX + crossOffset(alignSelf, viewportW, cross)
			childH = mainSizes[i]
			childW = cross
		}
		childNode, err := b.layoutNode(c, childX, childY, childW, childH)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}

func crossOffset(align string, containerCross, childCross int) int {
	switch align {
	case "end":
		return containerCross - childCross
	case "center":
		return (containerCross - childCross) / 2
	default:
		return 0
	}
}

func truncToZero(v float64) int {
	return int(v) // Go's float->int conversion truncates toward zero
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
