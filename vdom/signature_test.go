package vdom

import "testing"

func TestSignatureStableAcrossStyleOnlyChange(t *testing.T) {
	r := NewReconciler()
	v1 := &VNode{Kind: KindColumn, Props: map[string]interface{}{"gap": 1.0}, Children: []*VNode{
		{Kind: KindText, Props: map[string]interface{}{"content": "hi", "fg": "red"}},
	}}
	c1 := r.Commit(nil, v1, CommitOptions{})
	sigs1, ok := ComputeSignatures(c1.Root)
	if !ok {
		t.Fatal("expected supported signature computation")
	}

	v2 := &VNode{Kind: KindColumn, Props: map[string]interface{}{"gap": 1.0}, Children: []*VNode{
		{Kind: KindText, Props: map[string]interface{}{"content": "hi", "fg": "blue"}},
	}}
	c2 := r.Commit(c1.Root, v2, CommitOptions{})
	sigs2, ok := ComputeSignatures(c2.Root)
	if !ok {
		t.Fatal("expected supported signature computation")
	}

	if sigs1[c1.Root.ID] != sigs2[c2.Root.ID] {
		t.Errorf("expected style-only prop change (fg) to leave signature unchanged")
	}
}

func TestSignatureChangesOnLayoutPropOrChildren(t *testing.T) {
	r := NewReconciler()
	v1 := &VNode{Kind: KindColumn, Children: []*VNode{{Kind: KindText, Props: map[string]interface{}{"content": "hi"}}}}
	c1 := r.Commit(nil, v1, CommitOptions{})
	sigs1, _ := ComputeSignatures(c1.Root)

	v2 := &VNode{Kind: KindColumn, Children: []*VNode{
		{Kind: KindText, Props: map[string]interface{}{"content": "hi"}},
		{Kind: KindText, Props: map[string]interface{}{"content": "added"}},
	}}
	c2 := r.Commit(c1.Root, v2, CommitOptions{})
	sigs2, _ := ComputeSignatures(c2.Root)

	if sigs1[c1.Root.ID] == sigs2[c2.Root.ID] {
		t.Errorf("expected adding a child to change the parent signature")
	}
}

func TestSignatureUnsupportedKindInvalidatesMap(t *testing.T) {
	v1 := &VNode{Kind: "customWidget"}
	r := NewReconciler()
	c1 := r.Commit(nil, v1, CommitOptions{})
	_, ok := ComputeSignatures(c1.Root)
	if ok {
		t.Errorf("expected unsupported kind to invalidate the signature map")
	}
}
