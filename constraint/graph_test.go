package constraint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RtlZeroMemory/Rezi-sub007/vdom"
)

func mustInstance(t *testing.T, v *vdom.VNode) *vdom.Instance {
	t.Helper()
	c := vdom.NewReconciler().Commit(nil, v, vdom.CommitOptions{})
	return c.Root
}

// Seed scenario 1: row { column(id=a, width=expr("#b.w")); column(id=b,
// width=expr("#a.w")) } -> CIRCULAR_CONSTRAINT, cycle = [#a.width, #b.width, #a.width].
func TestBuildGraphDetectsCircularDependency(t *testing.T) {
	root := mustInstance(t, &vdom.VNode{
		Kind: vdom.KindRow,
		Children: []*vdom.VNode{
			{Kind: vdom.KindColumn, ID: "a", Props: map[string]interface{}{vdom.PropWidth: vdom.MustExpr("#b.w")}},
			{Kind: vdom.KindColumn, ID: "b", Props: map[string]interface{}{vdom.PropWidth: vdom.MustExpr("#a.w")}},
		},
	})

	_, err := BuildGraph(root)
	require.Error(t, err)
	gerr, ok := err.(*GraphError)
	require.True(t, ok, "expected *GraphError, got %T", err)
	require.Equal(t, ErrCircular, gerr.Kind)
	require.Equal(t, []string{"#a.width", "#b.width", "#a.width"}, gerr.Cycle)
}

func TestBuildGraphInvalidRefOnDuplicateWidgetID(t *testing.T) {
	root := mustInstance(t, &vdom.VNode{
		Kind: vdom.KindRow,
		Children: []*vdom.VNode{
			{Kind: vdom.KindColumn, ID: "dup"},
			{Kind: vdom.KindColumn, ID: "dup"},
			{Kind: vdom.KindColumn, Props: map[string]interface{}{vdom.PropWidth: vdom.MustExpr("#dup.w")}},
		},
	})

	_, err := BuildGraph(root)
	if err == nil {
		t.Fatal("expected an invalid-ref error")
	}
	gerr, ok := err.(*GraphError)
	if !ok || gerr.Kind != ErrInvalidRef {
		t.Fatalf("expected ErrInvalidRef, got %#v", err)
	}
}

func TestBuildGraphFingerprintStableAndOrderIndependent(t *testing.T) {
	root := mustInstance(t, &vdom.VNode{
		Kind: vdom.KindRow,
		Children: []*vdom.VNode{
			{Kind: vdom.KindColumn, ID: "sidebar", Props: map[string]interface{}{vdom.PropWidth: vdom.MustExpr("20")}},
			{Kind: vdom.KindColumn, ID: "editor", Props: map[string]interface{}{vdom.PropWidth: vdom.MustExpr("parent.w - #sidebar.w")}},
		},
	})

	g1, err := BuildGraph(root)
	if err != nil {
		t.Fatal(err)
	}
	g2, err := BuildGraph(root)
	if err != nil {
		t.Fatal(err)
	}
	if g1.Fingerprint != g2.Fingerprint {
		t.Errorf("fingerprint not stable across rebuilds: %s vs %s", g1.Fingerprint, g2.Fingerprint)
	}
	if len(g1.Order) != 2 {
		t.Fatalf("expected 2 ordered nodes, got %d", len(g1.Order))
	}
}

func TestBuildGraphRequiresCommitRelayoutOnIntrinsic(t *testing.T) {
	root := mustInstance(t, &vdom.VNode{
		Kind: vdom.KindBox,
		Props: map[string]interface{}{
			vdom.PropWidth: vdom.MustExpr("intrinsic.w"),
		},
	})
	g, err := BuildGraph(root)
	if err != nil {
		t.Fatal(err)
	}
	if !g.RequiresCommitRelayout {
		t.Error("expected RequiresCommitRelayout when an intrinsic ref is present")
	}
	if !g.IntrinsicInstanceIDs[root.ID] {
		t.Error("expected root instance to be marked as intrinsic-consulting")
	}
}
