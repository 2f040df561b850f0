package vdom

import "testing"

func leaf(kind Kind, key string) *VNode {
	return &VNode{Kind: kind, Key: key}
}

func TestCommitInitialMountAssignsStableIDs(t *testing.T) {
	r := NewReconciler()
	root := &VNode{Kind: KindColumn, Children: []*VNode{leaf(KindText, ""), leaf(KindButton, "")}}

	res := r.Commit(nil, root, CommitOptions{WithLifecycle: true})
	if res.Root == nil {
		t.Fatal("expected non-nil root")
	}
	if len(res.Root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(res.Root.Children))
	}
	if len(res.Mounted) != 3 {
		t.Fatalf("expected 3 mounted instances (root+2 children), got %d", len(res.Mounted))
	}
	if len(res.Unmounted) != 0 {
		t.Fatalf("expected 0 unmounted on initial mount, got %d", len(res.Unmounted))
	}
}

func TestCommitKeyedReorderRetainsIdentity(t *testing.T) {
	r := NewReconciler()
	v1 := &VNode{Kind: KindColumn, Children: []*VNode{leaf(KindText, "a"), leaf(KindText, "b")}}
	first := r.Commit(nil, v1, CommitOptions{})

	aID := first.Root.Children[0].ID
	bID := first.Root.Children[1].ID

	v2 := &VNode{Kind: KindColumn, Children: []*VNode{leaf(KindText, "b"), leaf(KindText, "a")}}
	second := r.Commit(first.Root, v2, CommitOptions{WithLifecycle: true})

	if second.Root.Children[0].ID != bID || second.Root.Children[1].ID != aID {
		t.Fatalf("expected reordered children to retain identity by key")
	}
	if len(second.Mounted) != 0 || len(second.Unmounted) != 0 {
		t.Fatalf("expected no mount/unmount for a pure reorder, got mounted=%d unmounted=%d", len(second.Mounted), len(second.Unmounted))
	}
}

func TestCommitKindSwapForcesUnmountRemount(t *testing.T) {
	r := NewReconciler()
	v1 := &VNode{Kind: KindColumn, Children: []*VNode{leaf(KindText, "x")}}
	first := r.Commit(nil, v1, CommitOptions{})
	oldID := first.Root.Children[0].ID

	v2 := &VNode{Kind: KindColumn, Children: []*VNode{leaf(KindButton, "x")}}
	second := r.Commit(first.Root, v2, CommitOptions{WithLifecycle: true})

	if len(second.Mounted) != 1 || len(second.Unmounted) != 1 {
		t.Fatalf("expected exactly 1 mount and 1 unmount for a key-preserving kind swap, got mounted=%d unmounted=%d", len(second.Mounted), len(second.Unmounted))
	}
	if second.Unmounted[0].ID != oldID {
		t.Fatalf("expected unmounted instance to be the old instance")
	}
	if second.Root.Children[0].ID == oldID {
		t.Fatalf("expected new instance to have a fresh id")
	}
}

func TestCommitInvariantPartition(t *testing.T) {
	r := NewReconciler()
	v1 := &VNode{Kind: KindColumn, Children: []*VNode{leaf(KindText, "a"), leaf(KindText, "b"), leaf(KindText, "c")}}
	first := r.Commit(nil, v1, CommitOptions{})

	v2 := &VNode{Kind: KindColumn, Children: []*VNode{leaf(KindText, "b"), leaf(KindText, "d")}}
	second := r.Commit(first.Root, v2, CommitOptions{WithLifecycle: true})

	mountedSet := map[InstanceID]bool{}
	for _, m := range second.Mounted {
		mountedSet[m.ID] = true
	}
	for _, u := range second.Unmounted {
		if mountedSet[u.ID] {
			t.Fatalf("instance %d present in both mounted and unmounted", u.ID)
		}
	}

	allNew := map[InstanceID]bool{}
	WalkPreorder(second.Root, func(n *Instance) { allNew[n.ID] = true })

	retainedCount := 0
	for id := range allNew {
		if !mountedSet[id] {
			retainedCount++
		}
	}
	if retainedCount+len(second.Mounted) != len(allNew) {
		t.Fatalf("expected |retained|+|mounted| == |instances(new)|")
	}
}

func TestReferenceIdenticalSubtreeRetainedWithoutCloning(t *testing.T) {
	r := NewReconciler()
	child := leaf(KindText, "a")
	v1 := &VNode{Kind: KindColumn, Children: []*VNode{child}}
	first := r.Commit(nil, v1, CommitOptions{})

	v2 := &VNode{Kind: KindColumn, Children: []*VNode{child}}
	second := r.Commit(first.Root, v2, CommitOptions{})

	if second.Root.Children[0] != first.Root.Children[0] {
		t.Fatalf("expected reference-identical child to be retained without cloning")
	}
}
