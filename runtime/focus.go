package runtime

import (
	"github.com/RtlZeroMemory/Rezi-sub007/input"
	"github.com/RtlZeroMemory/Rezi-sub007/layout"
	"github.com/RtlZeroMemory/Rezi-sub007/vdom"
)

// FocusManager tracks Tab/Shift-Tab traversal order and mouse press/release
// hit-testing (§4.I). Disabled targets never focus or activate; an optional
// pressableIds allowlist further gates activation.
type FocusManager struct {
	order       []string // focusable widget ids, in traversal order for the current frame
	focused     string
	pressed     string
	pressableIds map[string]bool // nil = no restriction
}

// NewFocusManager returns an empty manager; call SetPressableIds to install
// an activation allowlist.
func NewFocusManager() *FocusManager {
	return &FocusManager{}
}

// SetPressableIds installs an allowlist gating which widget ids may
// activate; nil removes the restriction.
func (f *FocusManager) SetPressableIds(ids []string) {
	if ids == nil {
		f.pressableIds = nil
		return
	}
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	f.pressableIds = m
}

// Focused returns the currently focused widget id, or "" if none.
func (f *FocusManager) Focused() string { return f.focused }

// SyncOrder recomputes the focus order from the current layout tree,
// preserving the current focus if it is still present.
func (f *FocusManager) SyncOrder(root *layout.Node) {
	var order []string
	walkFocusable(root, &order)
	f.order = order
	if f.focused != "" {
		for _, id := range order {
			if id == f.focused {
				return
			}
		}
	}
	f.focused = ""
}

func walkFocusable(n *layout.Node, order *[]string) {
	if n == nil || n.Instance == nil || n.Instance.Node == nil {
		return
	}
	if isFocusable(n.Instance.Node) {
		*order = append(*order, n.Instance.Node.ID)
	}
	for _, c := range n.Children {
		walkFocusable(c, order)
	}
}

func isFocusable(vn *vdom.VNode) bool {
	if vn.ID == "" {
		return false
	}
	if disabled, _ := vn.Props["disabled"].(bool); disabled {
		return false
	}
	if focusable, _ := vn.Props["focusable"].(bool); focusable {
		return true
	}
	switch vn.Kind {
	case vdom.KindButton, vdom.KindInput:
		return true
	}
	return false
}

func pressableKind(k vdom.Kind) bool {
	switch k {
	case vdom.KindButton, vdom.KindInput:
		return true
	}
	return false
}

// Tab moves focus to the next focusable id (wrapping). Shift-Tab moves to
// the previous one when forward is false.
func (f *FocusManager) Tab(forward bool) {
	if len(f.order) == 0 {
		f.focused = ""
		return
	}
	if f.focused == "" {
		if forward {
			f.focused = f.order[0]
		} else {
			f.focused = f.order[len(f.order)-1]
		}
		return
	}
	idx := -1
	for i, id := range f.order {
		if id == f.focused {
			idx = i
			break
		}
	}
	if idx < 0 {
		f.focused = f.order[0]
		return
	}
	if forward {
		f.focused = f.order[(idx+1)%len(f.order)]
	} else {
		f.focused = f.order[(idx-1+len(f.order))%len(f.order)]
	}
}

// OnMouseDown hit-tests ev against root, recording the pressed id (empty if
// none, or if the hit target is disabled or not in pressableIds).
func (f *FocusManager) OnMouseDown(root *layout.Node, ev input.Event) {
	f.pressed = f.hitTest(root, ev.MouseX, ev.MouseY)
}

// OnMouseUp hit-tests ev against root and returns the activated widget id,
// or "" if press and release targets differ (§4.I: "press on A and release
// elsewhere does not activate").
func (f *FocusManager) OnMouseUp(root *layout.Node, ev input.Event) string {
	releaseID := f.hitTest(root, ev.MouseX, ev.MouseY)
	pressed := f.pressed
	f.pressed = ""
	if pressed == "" || pressed != releaseID {
		return ""
	}
	return pressed
}

func (f *FocusManager) hitTest(root *layout.Node, x, y int) string {
	id, _ := hitTestNode(root, x, y)
	if id == "" {
		return ""
	}
	if f.pressableIds != nil && !f.pressableIds[id] {
		return ""
	}
	return id
}

// hitTestNode returns the deepest pressable (non-disabled, non-empty id)
// node containing (x, y), preferring the most specific (last-drawn) match.
func hitTestNode(n *layout.Node, x, y int) (string, bool) {
	if n == nil {
		return "", false
	}
	r := n.Rect
	contains := x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
	if !contains {
		return "", false
	}
	for i := len(n.Children) - 1; i >= 0; i-- {
		if id, ok := hitTestNode(n.Children[i], x, y); ok {
			return id, true
		}
	}
	if n.Instance != nil && n.Instance.Node != nil {
		vn := n.Instance.Node
		if disabled, _ := vn.Props["disabled"].(bool); disabled {
			return "", false
		}
		if vn.ID != "" && pressableKind(vn.Kind) {
			return vn.ID, true
		}
	}
	return "", false
}
