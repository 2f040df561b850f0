// Package vdom holds the immutable VNode tree and the runtime instance tree
// the reconciler commits it into (§3, §4.D).
package vdom

import "github.com/RtlZeroMemory/Rezi-sub007/expr"

// Kind tags the widget variant a VNode represents.
type Kind string

const (
	KindText        Kind = "text"
	KindBox         Kind = "box"
	KindRow         Kind = "row"
	KindColumn      Kind = "column"
	KindGrid        Kind = "grid"
	KindButton      Kind = "button"
	KindInput       Kind = "input"
	KindSpacer      Kind = "spacer"
	KindModal       Kind = "modal"
	KindDropdown    Kind = "dropdown"
	KindSplitPane   Kind = "splitPane"
	KindVirtualList Kind = "virtualList"
	KindTable       Kind = "table"
	KindTree        Kind = "tree"
	KindCode        Kind = "code"
)

// Sizing property keys, shared verbatim with constraint.Property strings
// so a VNode's Props map plugs directly into graph building.
const (
	PropWidth     = "width"
	PropHeight    = "height"
	PropMinWidth  = "minWidth"
	PropMaxWidth  = "maxWidth"
	PropMinHeight = "minHeight"
	PropMaxHeight = "maxHeight"
	PropFlexBasis = "flexBasis"
	PropDisplay   = "display"
)

// VNode is an immutable description of a widget and its children. Callers
// must not mutate a VNode or its Props/Children after constructing it; the
// reconciler relies on reference equality to short-circuit unchanged
// subtrees (§4.D).
type VNode struct {
	Kind     Kind
	ID       string // referenced via #id in constraint expressions
	Key      string // identifies this child across commits; "" = unkeyed
	Props    map[string]interface{}
	Children []*VNode
}

// MustExpr parses src and panics on a malformed expression. Intended for
// constructing static widget trees in source code, where a syntax error is
// a programmer mistake rather than a runtime condition.
func MustExpr(src string) *expr.Expression {
	e, err := expr.Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// SizeExpr returns the sizing prop at key as a parsed expression, or nil if
// the prop is absent, a plain constant, or not expression-driven.
func (n *VNode) SizeExpr(key string) *expr.Expression {
	v, ok := n.Props[key]
	if !ok {
		return nil
	}
	e, _ := v.(*expr.Expression)
	return e
}

// SizeConst returns the sizing prop at key as a constant, and whether it was
// a constant (as opposed to absent or expression-driven).
func (n *VNode) SizeConst(key string) (float64, bool) {
	v, ok := n.Props[key]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}

// HasSizeProp reports whether key is set at all (expression or constant).
func (n *VNode) HasSizeProp(key string) bool {
	_, ok := n.Props[key]
	return ok
}
