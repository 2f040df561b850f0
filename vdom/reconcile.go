package vdom

// CommitOptions configures a single Commit call.
type CommitOptions struct {
	// WithLifecycle requests the Mounted/Unmounted lists be populated.
	// When false they are left nil, avoiding the extra preorder walks.
	WithLifecycle bool
}

// CommitResult is the output of a commit: the new root plus, optionally,
// the mount/unmount lifecycle lists (§4.D, §6 commitTree).
type CommitResult struct {
	Root      *Instance
	Mounted   []*Instance
	Unmounted []*Instance
}

// Reconciler performs keyed-diff commits, allocating stable instance ids.
// A Reconciler is not safe for concurrent use (the runtime is single
// threaded, §5).
type Reconciler struct {
	nextID InstanceID
}

// NewReconciler returns a Reconciler whose first allocated id is 1.
func NewReconciler() *Reconciler {
	return &Reconciler{nextID: 1}
}

func (r *Reconciler) allocID() InstanceID {
	id := r.nextID
	r.nextID++
	return id
}

// Commit diffs vnode against prev (nil for an initial mount) and returns the
// new instance tree. Matching: keyed when either side declares Key;
// positional matching otherwise. Kind must match for reuse; a
// key-preserving kind swap forces unmount+remount of that position.
func (r *Reconciler) Commit(prev *Instance, vnode *VNode, opts CommitOptions) *CommitResult {
	fresh := map[InstanceID]bool{}
	retained := map[InstanceID]bool{}

	var root *Instance
	if vnode != nil {
		root = r.reconcileNode(prev, vnode, fresh, retained)
	}

	res := &CommitResult{Root: root}
	if opts.WithLifecycle {
		if root != nil {
			WalkPreorder(root, func(n *Instance) {
				if fresh[n.ID] {
					res.Mounted = append(res.Mounted, n)
				}
			})
		}
		if prev != nil {
			WalkPreorder(prev, func(n *Instance) {
				if !retained[n.ID] {
					res.Unmounted = append(res.Unmounted, n)
				}
			})
		}
	}
	return res
}

// reconcileNode keeps old's id when vn and old.Node are the same kind,
// building a new Instance that carries it; otherwise it mounts a fresh
// instance. Reused subtrees whose VNode and
// children are reference-identical to the previous commit are retained
// without cloning.
func (r *Reconciler) reconcileNode(old *Instance, vn *VNode, fresh, retained map[InstanceID]bool) *Instance {
	if old != nil && old.Node == vn {
		// Reference-identical subtree: retain without cloning.
		markRetainedSubtree(old, retained)
		return old
	}

	if old == nil || old.Node.Kind != vn.Kind {
		return r.mountFresh(vn, fresh)
	}

	retained[old.ID] = true
	inst := &Instance{ID: old.ID, Node: vn}
	inst.Children = r.reconcileChildren(old.Children, vn.Children, fresh, retained)
	for _, c := range inst.Children {
		c.Parent = inst
	}
	return inst
}

func markRetainedSubtree(n *Instance, retained map[InstanceID]bool) {
	retained[n.ID] = true
	for _, c := range n.Children {
		markRetainedSubtree(c, retained)
	}
}

func (r *Reconciler) mountFresh(vn *VNode, fresh map[InstanceID]bool) *Instance {
	id := r.allocID()
	fresh[id] = true
	inst := &Instance{ID: id, Node: vn}
	inst.Children = make([]*Instance, len(vn.Children))
	for i, c := range vn.Children {
		child := r.mountFresh(c, fresh)
		child.Parent = inst
		inst.Children[i] = child
	}
	return inst
}

// reconcileChildren partitions prevChildren by key, pairs new keyed children
// by key and new unkeyed children positionally against previous unkeyed
// children, in that declaration order (§4.D).
func (r *Reconciler) reconcileChildren(prevChildren []*Instance, newNodes []*VNode, fresh, retained map[InstanceID]bool) []*Instance {
	prevByKey := map[string]*Instance{}
	var prevUnkeyed []*Instance
	for _, inst := range prevChildren {
		if inst.Node.Key != "" {
			prevByKey[inst.Node.Key] = inst
		} else {
			prevUnkeyed = append(prevUnkeyed, inst)
		}
	}

	unkeyedIdx := 0
	result := make([]*Instance, len(newNodes))
	for i, vn := range newNodes {
		var match *Instance
		if vn.Key != "" {
			match = prevByKey[vn.Key]
		} else if unkeyedIdx < len(prevUnkeyed) {
			match = prevUnkeyed[unkeyedIdx]
			unkeyedIdx++
		}
		result[i] = r.reconcileNode(match, vn, fresh, retained)
	}
	return result
}
