package layout

import (
	"testing"

	"github.com/RtlZeroMemory/Rezi-sub007/vdom"
)

func commit(t *testing.T, v *vdom.VNode) *vdom.Instance {
	t.Helper()
	return vdom.NewReconciler().Commit(nil, v, vdom.CommitOptions{}).Root
}

// Seed scenario 4: row(width=5, overflow=scroll, scrollX=99){ box(mr=-4)
// text("123456789") } -> meta {scrollX=4, scrollY=0, contentWidth=9,
// contentHeight=1, viewportWidth=5, viewportHeight=1}; child rect (-4,0,9,1).
func TestLayoutOverflowScrollClampsAndReportsMeta(t *testing.T) {
	root := commit(t, &vdom.VNode{
		Kind: vdom.KindRow,
		Props: map[string]interface{}{
			"overflow": "scroll",
			"scrollX":  99.0,
		},
		Children: []*vdom.VNode{
			{Kind: vdom.KindBox, Props: map[string]interface{}{"mr": -4.0}},
			{Kind: vdom.KindText, Props: map[string]interface{}{"content": "123456789"}},
		},
	})

	node, err := Layout(root, nil, 0, 0, 5, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if node.Meta == nil {
		t.Fatal("expected overflow:scroll container to carry Meta")
	}
	want := Meta{ScrollX: 4, ScrollY: 0, ContentWidth: 9, ContentHeight: 1, ViewportWidth: 5, ViewportHeight: 1}
	if *node.Meta != want {
		t.Errorf("meta = %+v, want %+v", *node.Meta, want)
	}

	text := node.Children[1]
	wantRect := Rect{X: -4, Y: 0, W: 9, H: 1}
	if text.Rect != wantRect {
		t.Errorf("text rect = %+v, want %+v", text.Rect, wantRect)
	}
}

func TestLayoutGridRejectsExpressionColumns(t *testing.T) {
	root := commit(t, &vdom.VNode{
		Kind:  vdom.KindGrid,
		Props: map[string]interface{}{"columns": vdom.MustExpr("2")},
	})
	_, err := Layout(root, nil, 0, 0, 40, 10, nil)
	if err == nil {
		t.Fatal("expected INVALID_PROPS for an expression columns value")
	}
	lerr, ok := err.(*Error)
	if !ok || lerr.Kind != ErrInvalidProps {
		t.Fatalf("expected *Error{ErrInvalidProps}, got %#v", err)
	}
}

func TestLayoutRejectsPercentageWidth(t *testing.T) {
	root := commit(t, &vdom.VNode{
		Kind:  vdom.KindBox,
		Props: map[string]interface{}{vdom.PropWidth: "50%"},
	})
	_, err := Layout(root, nil, 0, 0, 40, 10, nil)
	if err == nil {
		t.Fatal("expected INVALID_PROPS for a percentage width string")
	}
}

func TestLayoutGridDistributesFixedAndFlexTracks(t *testing.T) {
	root := commit(t, &vdom.VNode{
		Kind:  vdom.KindGrid,
		Props: map[string]interface{}{"columns": "10 1fr 1fr"},
		Children: []*vdom.VNode{
			{Kind: vdom.KindBox},
			{Kind: vdom.KindBox},
			{Kind: vdom.KindBox},
		},
	})
	node, err := Layout(root, nil, 0, 0, 50, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(node.Children) != 3 {
		t.Fatalf("expected 3 grid cells, got %d", len(node.Children))
	}
	if node.Children[0].Rect.W != 10 {
		t.Errorf("fixed track width = %d, want 10", node.Children[0].Rect.W)
	}
	if node.Children[1].Rect.W != node.Children[2].Rect.W {
		t.Errorf("equal-weight fr tracks should be equal width: %d vs %d", node.Children[1].Rect.W, node.Children[2].Rect.W)
	}
}
