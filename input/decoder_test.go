package input

import (
	"reflect"
	"testing"
)

func TestDecodePlainTextAndEnter(t *testing.T) {
	d := NewDecoder()
	evs, err := d.Feed([]byte("hi\r"), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(evs), evs)
	}
	if evs[0].Kind != KindText || evs[0].Codepoint != 'h' {
		t.Errorf("evs[0] = %+v", evs[0])
	}
	if evs[2].Kind != KindKey || evs[2].Key != KeyEnter {
		t.Errorf("evs[2] = %+v", evs[2])
	}
	if evs[0].EventIndex != 0 || evs[1].EventIndex != 1 || evs[2].EventIndex != 2 {
		t.Errorf("eventIndex not monotonic: %d,%d,%d", evs[0].EventIndex, evs[1].EventIndex, evs[2].EventIndex)
	}
}

func TestCtrlLetterEmitsOnlyKeyEvent(t *testing.T) {
	d := NewDecoder()
	evs, err := d.Feed([]byte{0x03}, false) // Ctrl+C
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 {
		t.Fatalf("got %d events, want 1 (no accompanying text event): %+v", len(evs), evs)
	}
	if evs[0].Kind != KindKey || evs[0].Key != KeyChar || evs[0].Codepoint != 'c' || evs[0].Mod != ModCtrl {
		t.Errorf("evs[0] = %+v", evs[0])
	}
}

func TestCSIArrowKeySplitAcrossReads(t *testing.T) {
	d := NewDecoder()
	evs, err := d.Feed([]byte{0x1b, '['}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 0 {
		t.Fatalf("expected no events before the sequence completes, got %+v", evs)
	}
	evs, err = d.Feed([]byte{'A'}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Key != KeyArrowUp {
		t.Fatalf("expected a completed ArrowUp event, got %+v", evs)
	}
}

func TestIncompleteEscapeFlushesOnTimeout(t *testing.T) {
	d := NewDecoder()
	evs, err := d.Feed([]byte{0x1b}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 0 {
		t.Fatalf("bare ESC must not fall back before the completion window elapses, got %+v", evs)
	}
	evs, err = d.Feed(nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Kind != KindKey || evs[0].Key != KeyEsc {
		t.Fatalf("expected a bare KeyEsc fallback, got %+v", evs)
	}
}

func TestIncompleteEscapeThatCompletesNeverFallsBack(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte{0x1b, '['}, false)
	evs, err := d.Feed([]byte{'B'}, true) // completes even though timedOut is set
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Key != KeyArrowDown {
		t.Fatalf("a sequence completing across reads must not also flush ESC, got %+v", evs)
	}
}

func TestCSIuAltPrintablePayloadShape(t *testing.T) {
	d := NewDecoder()
	evs, err := d.Feed([]byte("\x1b[97;3u"), false) // 'a' with Alt bit (mods=3)
	if err != nil {
		t.Fatal(err)
	}
	want := []Event{
		{Kind: KindKey, Key: KeyEsc, EventIndex: 0},
		{Kind: KindText, Codepoint: 'a', EventIndex: 1},
	}
	if !reflect.DeepEqual(evs, want) {
		t.Errorf("got %+v, want %+v", evs, want)
	}
}

func TestCSIuAltNonPrintablePayloadShape(t *testing.T) {
	d := NewDecoder()
	evs, err := d.Feed([]byte("\x1b[9;3u"), false) // Tab codepoint with Alt bit
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 2 || evs[0].Key != KeyEsc || evs[1].Mod != ModAlt || evs[1].Codepoint != 9 {
		t.Fatalf("expected ESC then key(cp,ALT), got %+v", evs)
	}
}

func TestCSIuMetaBitUsesSameShapeAsAlt(t *testing.T) {
	d := NewDecoder()
	evs, err := d.Feed([]byte("\x1b[97;9u"), false) // 'a' with Meta bit (mods=9)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 2 || evs[0].Key != KeyEsc || evs[1].Kind != KindText || evs[1].Codepoint != 'a' {
		t.Fatalf("expected ESC then text('a'), got %+v", evs)
	}
}

func TestCSIuPlainModifierEmitsSingleKeyEvent(t *testing.T) {
	d := NewDecoder()
	evs, err := d.Feed([]byte("\x1b[97;5u"), false) // 'a' with Ctrl bit (mods=5)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Mod != ModCtrl || evs[0].Codepoint != 'a' {
		t.Fatalf("expected a single Ctrl+a key event, got %+v", evs)
	}
}

func TestExtendedMouseBeyond223Limit(t *testing.T) {
	d := NewDecoder()
	evs, err := d.Feed([]byte("\x1b[<0;300;500M"), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Kind != KindMouse {
		t.Fatalf("expected a mouse event, got %+v", evs)
	}
	m := evs[0]
	if m.MouseX != 299 || m.MouseY != 499 || !m.MousePressed {
		t.Errorf("mouse = %+v, want x=299 y=499 pressed=true", m)
	}
	if m.MouseKind != MouseDown {
		t.Errorf("expected MouseKind = MouseDown for a plain press, got %v", m.MouseKind)
	}
}

func TestMouseWheelUpSetsNegativeVerticalDelta(t *testing.T) {
	d := NewDecoder()
	evs, err := d.Feed([]byte("\x1b[<64;10;5M"), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Kind != KindMouse {
		t.Fatalf("expected a mouse event, got %+v", evs)
	}
	m := evs[0]
	if m.MouseKind != MouseWheel || m.WheelDeltaY != -1 || m.WheelDeltaX != 0 {
		t.Errorf("wheel event = %+v, want kind=MouseWheel deltaY=-1 deltaX=0", m)
	}
}

func TestMouseMotionBitSetsMoveKind(t *testing.T) {
	d := NewDecoder()
	evs, err := d.Feed([]byte("\x1b[<32;10;5M"), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Kind != KindMouse {
		t.Fatalf("expected a mouse event, got %+v", evs)
	}
	if evs[0].MouseKind != MouseMove {
		t.Errorf("expected MouseKind = MouseMove for the motion bit, got %v", evs[0].MouseKind)
	}
}

func TestMouseReleaseFinalByteSetsUpKind(t *testing.T) {
	d := NewDecoder()
	evs, err := d.Feed([]byte("\x1b[<0;10;5m"), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Kind != KindMouse {
		t.Fatalf("expected a mouse event, got %+v", evs)
	}
	if evs[0].MouseKind != MouseUp || evs[0].MousePressed {
		t.Errorf("expected MouseKind = MouseUp and MousePressed = false, got %+v", evs[0])
	}
}

func TestBracketedPasteEmitsSinglePasteEvent(t *testing.T) {
	d := NewDecoder()
	var raw []byte
	raw = append(raw, []byte("\x1b[200~")...)
	raw = append(raw, []byte("hello world")...)
	raw = append(raw, []byte("\x1b[201~")...)
	evs, err := d.Feed(raw, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Kind != KindPaste || string(evs[0].PasteBytes) != "hello world" {
		t.Fatalf("expected a single paste event, got %+v", evs)
	}
}

func TestOversizedPasteDropsWithoutWedging(t *testing.T) {
	d := NewDecoder()
	huge := make([]byte, MaxPasteBytes+10)
	for i := range huge {
		huge[i] = 'x'
	}
	var raw []byte
	raw = append(raw, []byte("\x1b[200~")...)
	raw = append(raw, huge...)
	raw = append(raw, []byte("\x1b[201~")...)
	raw = append(raw, []byte("ok")...)

	evs, err := d.Feed(raw, false)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range evs {
		if e.Kind == KindPaste {
			t.Fatalf("expected no paste event for an oversized paste, got %+v", e)
		}
	}
	var sawOK bool
	for _, e := range evs {
		if e.Kind == KindText && e.Codepoint == 'o' {
			sawOK = true
		}
	}
	if !sawOK {
		t.Error("expected input after the dropped paste to still decode (stream must not wedge)")
	}
}

func TestResizeAndTickEventIndicesAreMonotonic(t *testing.T) {
	d := NewDecoder()
	evs, _ := d.Feed([]byte("a"), false)
	r := d.Resize(80, 24)
	tick := d.Tick()
	if evs[0].EventIndex != 0 || r.EventIndex != 1 || tick.EventIndex != 2 {
		t.Errorf("indices = %d,%d,%d, want 0,1,2", evs[0].EventIndex, r.EventIndex, tick.EventIndex)
	}
}

func TestStopRejectsFurtherFeeds(t *testing.T) {
	d := NewDecoder()
	d.Stop()
	if _, err := d.Feed([]byte("x"), false); err == nil {
		t.Fatal("expected ErrStopped after Stop")
	}
}
