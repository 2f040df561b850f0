package markup

import (
	"testing"

	"github.com/RtlZeroMemory/Rezi-sub007/style"
)

func TestParsePlainTextIsOneSegment(t *testing.T) {
	segs := Parse("hello world")
	if len(segs) != 1 || segs[0].Text != "hello world" {
		t.Fatalf("got %+v", segs)
	}
}

func TestParseBoldToken(t *testing.T) {
	segs := Parse("say **hi** now")
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %+v", segs)
	}
	if segs[1].Text != "hi" || segs[1].Style.Attrs&style.AttrBold == 0 {
		t.Fatalf("expected bold 'hi', got %+v", segs[1])
	}
	if segs[0].Style.Attrs != 0 || segs[2].Style.Attrs != 0 {
		t.Fatalf("surrounding text must be unstyled, got %+v / %+v", segs[0], segs[2])
	}
}

func TestParseNestedStyleMergesAttrs(t *testing.T) {
	segs := Parse("**bold __and underlined__**")
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %+v", segs)
	}
	if segs[0].Style.Attrs != style.AttrBold {
		t.Fatalf("expected plain bold, got %+v", segs[0])
	}
	want := style.AttrBold | style.AttrUnderline
	if segs[1].Style.Attrs != want {
		t.Fatalf("expected bold+underline, got %+v", segs[1])
	}
}

func TestParseNamedColorToken(t *testing.T) {
	segs := Parse("#red(alert)")
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %+v", segs)
	}
	want, _ := style.NamedColor("red")
	if segs[0].Style.Fg != want || segs[0].Text != "alert" {
		t.Fatalf("got %+v", segs[0])
	}
}

func TestParseHexColorToken(t *testing.T) {
	segs := Parse("#ff8800(warn)")
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %+v", segs)
	}
	want := style.RGB(0xff, 0x88, 0x00)
	if segs[0].Style.Fg != want {
		t.Fatalf("got %+v", segs[0].Style)
	}
}

func TestParseBackgroundColorToken(t *testing.T) {
	segs := Parse("!#blue(info)")
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %+v", segs)
	}
	want, _ := style.NamedColor("blue")
	if segs[0].Style.Bg != want {
		t.Fatalf("got %+v", segs[0].Style)
	}
}

func TestParseUnknownColorFallsBackToLiteralToken(t *testing.T) {
	segs := Parse("#nope(x)")
	if len(segs) != 1 || segs[0].Text != "#nope(x)" {
		t.Fatalf("got %+v", segs)
	}
}
