package expr

import "testing"

func TestParseSimpleRef(t *testing.T) {
	e, err := Parse("parent.w - #sidebar.w")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Root.Kind != KindBinary || e.Root.Op != "-" {
		t.Fatalf("expected top-level binary '-', got %+v", e.Root)
	}
	if _, ok := e.Refs["sidebar"]; !ok {
		t.Errorf("expected refs to contain 'sidebar', got %v", e.Refs)
	}
	if e.HasIntrinsic {
		t.Errorf("did not expect hasIntrinsic")
	}
}

func TestParseIntrinsicFlag(t *testing.T) {
	e, err := Parse("intrinsic.w + 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.HasIntrinsic {
		t.Errorf("expected hasIntrinsic = true")
	}
}

func TestParseSiblingAggregation(t *testing.T) {
	e, err := Parse("max_sibling(#row.h)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.HasSiblingAggregation {
		t.Errorf("expected hasSiblingAggregation = true")
	}
	if _, ok := e.Refs["row"]; !ok {
		t.Errorf("expected refs to contain 'row'")
	}
}

func TestParseSteps(t *testing.T) {
	e, err := Parse("steps(#w.w, 40:1, 80:2, 120:3)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Root.Kind != KindCall || e.Root.Name != "steps" {
		t.Fatalf("expected steps call, got %+v", e.Root)
	}
	if len(e.Root.Args) != 4 {
		t.Fatalf("expected 4 args (ref + 3 pairs), got %d", len(e.Root.Args))
	}
	for _, a := range e.Root.Args[1:] {
		if a.Kind != KindPair {
			t.Errorf("expected pair arg, got %+v", a)
		}
	}
}

func TestParseStepsMalformedPair(t *testing.T) {
	_, err := Parse("steps(#w.w, 40)")
	if err == nil {
		t.Fatalf("expected malformed steps() pair error")
	}
	se, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	if se.Position == 0 {
		t.Errorf("expected nonzero caret position")
	}
}

func TestParseTernaryAndClamp(t *testing.T) {
	e, err := Parse("clamp(viewport.w > 80 ? 80 : viewport.w, 10, 200)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Root.Kind != KindCall || e.Root.Name != "clamp" {
		t.Fatalf("expected clamp call")
	}
	if e.Root.Args[0].Kind != KindTernary {
		t.Fatalf("expected ternary first arg")
	}
}

func TestParseUnknownScope(t *testing.T) {
	_, err := Parse("sibling.w")
	if err == nil {
		t.Fatalf("expected unknown scope error")
	}
}

func TestParseUnknownFunction(t *testing.T) {
	_, err := Parse("bogus(1, 2)")
	if err == nil {
		t.Fatalf("expected unknown function error")
	}
}

func TestParseUnknownProperty(t *testing.T) {
	_, err := Parse("parent.bogus")
	if err == nil {
		t.Fatalf("expected unknown property error")
	}
}

func TestParseUnexpectedEOF(t *testing.T) {
	_, err := Parse("parent.w +")
	if err == nil {
		t.Fatalf("expected unexpected end of input error")
	}
}

func TestParseUnicodeWidgetID(t *testing.T) {
	e, err := Parse("#侧边栏.w")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := e.Refs["侧边栏"]; !ok {
		t.Errorf("expected unicode widget id in refs")
	}
}

func TestParseIdenticalSourceStructurallyEqual(t *testing.T) {
	a, err := Parse("clamp(#a.w + 2, 0, 10)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Parse("clamp(#a.w + 2, 0, 10)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(a.Root, b.Root) {
		t.Errorf("expected structurally equal ASTs for identical source")
	}
}

func TestParsePrintRoundTrip(t *testing.T) {
	sources := []string{
		"1 + 2 * 3",
		"parent.w - #sidebar.w",
		"clamp(intrinsic.w, 10, 200)",
		"viewport.w > 80 ? 80 : viewport.w",
		"steps(#w.w, 40:1, 80:2)",
		"max_sibling(#row.h)",
	}
	for _, src := range sources {
		e, err := Parse(src)
		if err != nil {
			t.Fatalf("parse(%q) error: %v", src, err)
		}
		printed := e.String()
		reparsed, err := Parse(printed)
		if err != nil {
			t.Fatalf("parse(print(%q)=%q) error: %v", src, printed, err)
		}
		if !Equal(e.Root, reparsed.Root) {
			t.Errorf("parse(print(e)) != e for %q (printed %q)", src, printed)
		}
	}
}
