package layout

import "github.com/RtlZeroMemory/Rezi-sub007/vdom"

// layoutOverlay positions modal/dropdown widgets against an anchor (§4.E).
// Modals default to centering within the surrounding viewport; dropdowns
// default to appearing directly below an anchor point. Both accept explicit
// "anchorX"/"anchorY" overrides (plain numeric props, not constraint
// expressions — overlay placement is a one-shot position, not a sizing
// constraint participating in the graph).
func (b *builder) layoutOverlay(inst *vdom.Instance, x, y, maxW, maxH int) (*Node, error) {
	props := b.propsOf(inst)
	w, h := b.sizeOf(inst, maxW, maxH)

	var ox, oy int
	switch inst.Kind() {
	case vdom.KindDropdown:
		anchorX, _ := floatProp(props, "anchorX", 0)
		anchorY, _ := floatProp(props, "anchorY", 0)
		anchorH, _ := floatProp(props, "anchorHeight", 0)
		ox = x + int(anchorX)
		oy = y + int(anchorY) + int(anchorH)
	default: // modal
		if ax, ok := props["anchorX"]; ok {
			v, _ := ax.(float64)
			ox = x + int(v)
		} else {
			ox = x + (maxW-w)/2
		}
		if ay, ok := props["anchorY"]; ok {
			v, _ := ay.(float64)
			oy = y + int(v)
		} else {
			oy = y + (maxH-h)/2
		}
	}
	if ox < x {
		ox = x
	}
	if oy < y {
		oy = y
	}

	node := &Node{Instance: inst, Rect: Rect{X: ox, Y: oy, W: w, H: h}}
	if len(inst.Children) > 0 {
		child, err := b.layoutNode(inst.Children[0], ox, oy, w, h)
		if err != nil {
			return nil, err
		}
		node.Children = []*Node{child}
	}
	return node, nil
}
