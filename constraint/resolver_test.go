package constraint

import (
	"reflect"
	"testing"

	"github.com/RtlZeroMemory/Rezi-sub007/vdom"
)

func sidebarEditorTree(sidebarDisplay string) *vdom.Instance {
	props := map[string]interface{}{vdom.PropWidth: vdom.MustExpr("20")}
	if sidebarDisplay != "" {
		props[vdom.PropDisplay] = vdom.MustExpr(sidebarDisplay)
	}
	return vdom.NewReconciler().Commit(nil, &vdom.VNode{
		Kind: vdom.KindRow,
		Children: []*vdom.VNode{
			{Kind: vdom.KindColumn, ID: "sidebar", Props: props},
			{Kind: vdom.KindColumn, ID: "editor", Props: map[string]interface{}{
				vdom.PropWidth: vdom.MustExpr("parent.w - #sidebar.w"),
			}},
		},
	}, vdom.CommitOptions{}).Root
}

func findInstance(root *vdom.Instance, widgetID string) *vdom.Instance {
	found, _ := vdom.FindByWidgetID(root, widgetID)
	return found
}

// Seed scenario 2: viewport 80x20, sidebar width=20, editor width=parent.w -
// #sidebar.w -> sidebar.w=20, editor.w=60.
func TestResolveSiblingReference(t *testing.T) {
	root := sidebarEditorTree("")
	g, err := BuildGraph(root)
	if err != nil {
		t.Fatal(err)
	}

	sidebar := findInstance(root, "sidebar")
	editor := findInstance(root, "editor")

	parentValues := map[vdom.InstanceID]PropValues{
		sidebar.ID: {PropWidth: 80},
		editor.ID:  {PropWidth: 80},
	}

	res := NewResolver(4).Resolve(ResolveInput{
		Graph:        g,
		Viewport:     Viewport{W: 80, H: 20},
		ParentValues: parentValues,
	})

	if got := res.Values[sidebar.ID][PropWidth]; got != 20 {
		t.Errorf("sidebar.w = %v, want 20", got)
	}
	if got := res.Values[editor.ID][PropWidth]; got != 60 {
		t.Errorf("editor.w = %v, want 60", got)
	}
}

// Seed scenario 3: same shape but sidebar.display = 0 -> editor.w=80, sidebar.w=0.
func TestResolveDisplayZeroZeroesPeerReads(t *testing.T) {
	root := sidebarEditorTree("0")
	g, err := BuildGraph(root)
	if err != nil {
		t.Fatal(err)
	}

	sidebar := findInstance(root, "sidebar")
	editor := findInstance(root, "editor")

	parentValues := map[vdom.InstanceID]PropValues{
		sidebar.ID: {PropWidth: 80},
		editor.ID:  {PropWidth: 80},
	}

	res := NewResolver(4).Resolve(ResolveInput{
		Graph:        g,
		Viewport:     Viewport{W: 80, H: 20},
		ParentValues: parentValues,
	})

	if got := res.Values[sidebar.ID][PropWidth]; got != 0 {
		t.Errorf("sidebar.w = %v, want 0", got)
	}
	if got := res.Values[editor.ID][PropWidth]; got != 80 {
		t.Errorf("editor.w = %v, want 80", got)
	}
}

func TestResolveCacheReturnsSameValuesReference(t *testing.T) {
	root := sidebarEditorTree("")
	g, err := BuildGraph(root)
	if err != nil {
		t.Fatal(err)
	}
	sidebar := findInstance(root, "sidebar")
	editor := findInstance(root, "editor")
	in := ResolveInput{
		Graph:    g,
		Viewport: Viewport{W: 80, H: 20},
		ParentValues: map[vdom.InstanceID]PropValues{
			sidebar.ID: {PropWidth: 80},
			editor.ID:  {PropWidth: 80},
		},
	}

	r := NewResolver(4)
	res1 := r.Resolve(in)
	if res1.CacheHit {
		t.Fatal("expected first resolve to miss cache")
	}
	res2 := r.Resolve(in)
	if !res2.CacheHit {
		t.Fatal("expected second identical resolve to hit cache")
	}
	if reflect.ValueOf(res1.Values).Pointer() != reflect.ValueOf(res2.Values).Pointer() {
		t.Fatal("expected the cache hit to return the same Values map reference")
	}
	if len(res1.Values) != len(res2.Values) {
		t.Fatal("cached values diverge in size")
	}
}

func TestEvaluateDivisionByZeroCoercesToZero(t *testing.T) {
	root := vdom.NewReconciler().Commit(nil, &vdom.VNode{
		Kind: vdom.KindBox,
		Props: map[string]interface{}{
			vdom.PropWidth: vdom.MustExpr("10 / 0"),
		},
	}, vdom.CommitOptions{}).Root
	g, err := BuildGraph(root)
	if err != nil {
		t.Fatal(err)
	}
	res := NewResolver(4).Resolve(ResolveInput{Graph: g, Viewport: Viewport{W: 80, H: 20}})
	if got := res.Values[root.ID][PropWidth]; got != 0 {
		t.Errorf("10/0 = %v, want 0", got)
	}
}

func TestEvaluateClampWithInvertedBoundsReturnsHi(t *testing.T) {
	root := vdom.NewReconciler().Commit(nil, &vdom.VNode{
		Kind: vdom.KindBox,
		Props: map[string]interface{}{
			vdom.PropWidth: vdom.MustExpr("clamp(50, 40, 10)"),
		},
	}, vdom.CommitOptions{}).Root
	g, err := BuildGraph(root)
	if err != nil {
		t.Fatal(err)
	}
	res := NewResolver(4).Resolve(ResolveInput{Graph: g, Viewport: Viewport{W: 80, H: 20}})
	if got := res.Values[root.ID][PropWidth]; got != 10 {
		t.Errorf("clamp(50,40,10) = %v, want 10 (hi, since hi<lo)", got)
	}
}

func TestEvaluateStepsSelectsFirstMatchingThreshold(t *testing.T) {
	root := vdom.NewReconciler().Commit(nil, &vdom.VNode{
		Kind: vdom.KindBox,
		Props: map[string]interface{}{
			vdom.PropWidth: vdom.MustExpr("steps(viewport.w, 40:10, 100:20, 9999:30)"),
		},
	}, vdom.CommitOptions{}).Root
	g, err := BuildGraph(root)
	if err != nil {
		t.Fatal(err)
	}
	res := NewResolver(4).Resolve(ResolveInput{Graph: g, Viewport: Viewport{W: 80, H: 20}})
	if got := res.Values[root.ID][PropWidth]; got != 20 {
		t.Errorf("steps at viewport.w=80 = %v, want 20", got)
	}
}

func TestEvaluateSumSiblingAggregatesWidgetGroup(t *testing.T) {
	root := vdom.NewReconciler().Commit(nil, &vdom.VNode{
		Kind: vdom.KindRow,
		Children: []*vdom.VNode{
			{Kind: vdom.KindColumn, ID: "item", Props: map[string]interface{}{vdom.PropWidth: vdom.MustExpr("10")}},
			{Kind: vdom.KindColumn, ID: "item", Props: map[string]interface{}{vdom.PropWidth: vdom.MustExpr("15")}},
			{Kind: vdom.KindColumn, ID: "total", Props: map[string]interface{}{vdom.PropWidth: vdom.MustExpr("sum_sibling(#item.w)")}},
		},
	}, vdom.CommitOptions{}).Root
	g, err := BuildGraph(root)
	if err != nil {
		t.Fatal(err)
	}
	total := findInstance(root, "total")
	res := NewResolver(4).Resolve(ResolveInput{Graph: g, Viewport: Viewport{W: 80, H: 20}})
	if got := res.Values[total.ID][PropWidth]; got != 25 {
		t.Errorf("sum_sibling(#item.w) = %v, want 25", got)
	}
}
