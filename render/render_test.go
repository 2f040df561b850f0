package render

import (
	"testing"

	"github.com/RtlZeroMemory/Rezi-sub007/drawlist"
	"github.com/RtlZeroMemory/Rezi-sub007/layout"
	"github.com/RtlZeroMemory/Rezi-sub007/vdom"
)

func commit(t *testing.T, v *vdom.VNode) *vdom.Instance {
	t.Helper()
	return vdom.NewReconciler().Commit(nil, v, vdom.CommitOptions{}).Root
}

func TestRenderEmitsTextAndBackground(t *testing.T) {
	root := commit(t, &vdom.VNode{
		Kind: vdom.KindBox,
		Props: map[string]interface{}{
			"bg": "blue",
		},
		Children: []*vdom.VNode{
			{Kind: vdom.KindText, Props: map[string]interface{}{"content": "hi"}},
		},
	})
	node, err := layout.Layout(root, nil, 0, 0, 10, 3, nil)
	if err != nil {
		t.Fatal(err)
	}

	b := drawlist.NewBuilder(drawlist.DefaultCaps())
	r := New(b)
	r.Render(node, nil)

	data, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	dec, err := drawlist.Decode(data, drawlist.DefaultCaps())
	if err != nil {
		t.Fatal(err)
	}
	var sawFill, sawText bool
	for _, c := range dec.Cmds {
		switch c.Opcode {
		case drawlist.OpFillRect:
			sawFill = true
		case drawlist.OpDrawText:
			dt, err := drawlist.DecodeDrawText(c, dec.Strings)
			if err != nil {
				t.Fatal(err)
			}
			if dt.Text == "hi" {
				sawText = true
			}
		}
	}
	if !sawFill {
		t.Error("expected a FillRect for the box background")
	}
	if !sawText {
		t.Error("expected a DrawText for the text node's content")
	}
}

func TestRenderSkipsUnchangedValidSubtree(t *testing.T) {
	root := commit(t, &vdom.VNode{
		Kind: vdom.KindBox,
		Props: map[string]interface{}{"bg": "red"},
	})
	sigs, ok := vdom.ComputeSignatures(root)
	if !ok {
		t.Fatal("expected ComputeSignatures to succeed")
	}
	node, err := layout.Layout(root, nil, 0, 0, 5, 5, nil)
	if err != nil {
		t.Fatal(err)
	}

	b := drawlist.NewBuilder(drawlist.DefaultCaps())
	r := New(b)
	r.Render(node, &Signatures{Prev: sigs, ValidDraws: map[vdom.InstanceID]bool{root.ID: true}})

	data, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	dec, err := drawlist.Decode(data, drawlist.DefaultCaps())
	if err != nil {
		t.Fatal(err)
	}
	if dec.Header.CmdCount != 0 {
		t.Errorf("expected a skipped subtree to emit no commands, got %d", dec.Header.CmdCount)
	}
}

func TestRenderTranslatesChildrenByScrollOffset(t *testing.T) {
	root := commit(t, &vdom.VNode{
		Kind: vdom.KindRow,
		Props: map[string]interface{}{
			"overflow": "scroll",
			"scrollX":  2.0,
		},
		Children: []*vdom.VNode{
			{Kind: vdom.KindText, Props: map[string]interface{}{"content": "abcdefgh"}},
		},
	})
	node, err := layout.Layout(root, nil, 0, 0, 3, 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	b := drawlist.NewBuilder(drawlist.DefaultCaps())
	r := New(b)
	r.Render(node, nil)
	data, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	dec, err := drawlist.Decode(data, drawlist.DefaultCaps())
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, c := range dec.Cmds {
		if c.Opcode == drawlist.OpDrawText {
			dt, err := drawlist.DecodeDrawText(c, dec.Strings)
			if err != nil {
				t.Fatal(err)
			}
			if dt.X != -2 {
				t.Errorf("text x = %d, want -2 (content rect 0 minus scrollX 2)", dt.X)
			}
			found = true
		}
	}
	if !found {
		t.Fatal("expected a DrawText command for the scrolled text child")
	}
}

func TestRenderEmitsTextRunForMarkupStyledText(t *testing.T) {
	root := commit(t, &vdom.VNode{
		Kind:  vdom.KindText,
		Props: map[string]interface{}{"content": "plain **bold** plain"},
	})
	node, err := layout.Layout(root, nil, 0, 0, 20, 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	b := drawlist.NewBuilder(drawlist.DefaultCaps())
	r := New(b)
	r.Render(node, nil)
	data, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	dec, err := drawlist.Decode(data, drawlist.DefaultCaps())
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, c := range dec.Cmds {
		if c.Opcode == drawlist.OpDrawTextRun {
			run, err := drawlist.DecodeDrawTextRun(c, dec.Strings, dec.Blobs)
			if err != nil {
				t.Fatal(err)
			}
			if len(run.Segments) != 3 {
				t.Fatalf("expected 3 segments (plain/bold/plain), got %d", len(run.Segments))
			}
			found = true
		}
	}
	if !found {
		t.Fatal("expected a DrawTextRun command for markup-styled text")
	}
}

func TestRenderCodeNodeEmitsHighlightedRun(t *testing.T) {
	root := commit(t, &vdom.VNode{
		Kind:  vdom.KindCode,
		Props: map[string]interface{}{"content": "x := 1", "lang": "go"},
	})
	node, err := layout.Layout(root, nil, 0, 0, 20, 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	b := drawlist.NewBuilder(drawlist.DefaultCaps())
	r := New(b)
	r.Render(node, nil)
	data, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	dec, err := drawlist.Decode(data, drawlist.DefaultCaps())
	if err != nil {
		t.Fatal(err)
	}
	if dec.Header.CmdCount == 0 {
		t.Fatal("expected at least one command for a code node")
	}
}
