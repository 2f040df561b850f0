package vdom

// InstanceID is a stable, monotonically allocated handle. No id is reused
// across the lifetime of a tree (§9 Arena + index).
type InstanceID int64

// Instance is the reconciler's runtime mirror of the current VNode tree.
// It carries identity and damage tracking across commits (§3).
type Instance struct {
	ID        InstanceID
	Node      *VNode
	Children  []*Instance
	Parent    *Instance
	Preorder  int // assigned by WalkPreorder; stable within one commit

	Dirty     bool
	SelfDirty bool

	// Signature is the layout-stability signature computed by
	// ComputeSignatures for this instance (0 until computed).
	Signature uint32
}

// Kind is a convenience accessor over Node.Kind.
func (i *Instance) Kind() Kind {
	if i.Node == nil {
		return ""
	}
	return i.Node.Kind
}

// WalkPreorder visits the tree rooted at root in preorder, assigning
// sequential Preorder indices starting at 0 and calling visit on each node.
func WalkPreorder(root *Instance, visit func(*Instance)) {
	if root == nil {
		return
	}
	idx := 0
	var walk func(n *Instance)
	walk = func(n *Instance) {
		n.Preorder = idx
		idx++
		if visit != nil {
			visit(n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
}

// FindByWidgetID returns the last instance in preorder whose VNode.ID == id
// (nil if none) and the number of instances that matched; a count above 1
// means the id is not unique.
func FindByWidgetID(root *Instance, id string) (found *Instance, count int) {
	if root == nil {
		return nil, 0
	}
	var walk func(n *Instance)
	walk = func(n *Instance) {
		if n.Node != nil && n.Node.ID == id {
			count++
			found = n
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return found, count
}

// FindAllByWidgetID returns every instance (at any depth) sharing VNode.ID == id.
func FindAllByWidgetID(root *Instance, id string) []*Instance {
	var out []*Instance
	if root == nil {
		return out
	}
	var walk func(n *Instance)
	walk = func(n *Instance) {
		if n.Node != nil && n.Node.ID == id {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}
