package vdom

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// layoutRelevantKeys lists the Props keys that affect layout, as opposed to
// pure styling (fg, bg, bold, dim, italic, underline, inverse), which are
// excluded from the layout-stability signature (§4.D).
var layoutRelevantKeys = []string{
	PropWidth, PropHeight, PropMinWidth, PropMaxWidth, PropMinHeight, PropMaxHeight,
	PropFlexBasis, PropDisplay,
	"flex", "position", "margin", "padding", "gap",
	"align", "justify",
	"borderTop", "borderRight", "borderBottom", "borderLeft", "border",
	"gridSpan", "columns",
	"content", "wrap", "maxWidth", "label",
	"overflow",
}

// ComputeSignatures computes a per-instance 32-bit signature of
// layout-relevant props for every instance in the tree rooted at root.
// ok is false when an unsupported Kind is encountered anywhere in the tree,
// in which case callers must conservatively invalidate the whole map and
// force relayout (§4.D, §9).
func ComputeSignatures(root *Instance) (sigs map[InstanceID]uint32, ok bool) {
	sigs = map[InstanceID]uint32{}
	if root == nil {
		return sigs, true
	}
	var walk func(n *Instance) (uint32, bool)
	walk = func(n *Instance) (uint32, bool) {
		if !isSupportedKind(n.Kind()) {
			return 0, false
		}
		h := fnv.New32a()
		fmt.Fprintf(h, "%s|%s|", n.Kind(), propsDigest(n.Node.Props))
		for _, c := range n.Children {
			cs, childOK := walk(c)
			if !childOK {
				return 0, false
			}
			fmt.Fprintf(h, "%08x,", cs)
		}
		sig := h.Sum32()
		sigs[n.ID] = sig
		n.Signature = sig
		return sig, true
	}
	_, allOK := walk(root)
	if !allOK {
		return nil, false
	}
	return sigs, true
}

func isSupportedKind(k Kind) bool {
	switch k {
	case KindText, KindBox, KindRow, KindColumn, KindGrid, KindButton, KindInput,
		KindSpacer, KindModal, KindDropdown, KindSplitPane, KindVirtualList,
		KindTable, KindTree, KindCode:
		return true
	default:
		return false
	}
}

func propsDigest(props map[string]interface{}) string {
	keys := make([]string, 0, len(props))
	for _, k := range layoutRelevantKeys {
		if _, ok := props[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := ""
	for _, k := range keys {
		out += k + "=" + valueDigest(props[k]) + ";"
	}
	return out
}

func valueDigest(v interface{}) string {
	switch t := v.(type) {
	case interface{ String() string }:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
