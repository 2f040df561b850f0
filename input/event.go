// Package input decodes a raw terminal byte stream into a batch of
// structured events (§4.H), generalizing the teacher's goroutine-driven
// tui/input.go (StartInput/parseCSI/parseSS3) into a single-threaded
// cooperative decoder: Feed appends bytes and returns whatever complete
// events they produce, buffering any incomplete tail for the next call.
package input

// Key tags a non-printable/special key, mirroring the teacher's tui.Key.
type Key int

const (
	KeyNull Key = iota
	KeyChar
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEsc
	KeyArrowUp
	KeyArrowDown
	KeyArrowRight
	KeyArrowLeft
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDown
	KeyDelete
	KeyInsert
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Mod is a bitmask of modifier keys, generalized from the teacher's Ctrl/
// Alt/Shift trio with a Meta bit for CSI-u's meta modifier (§4.H).
type Mod int

const (
	ModNone  Mod = 0
	ModShift Mod = 1 << 0
	ModAlt   Mod = 1 << 1
	ModCtrl  Mod = 1 << 2
	ModMeta  Mod = 1 << 3
)

// Kind tags an Event's variant.
type Kind int

const (
	KindText Kind = iota
	KindKey
	KindMouse
	KindFocus
	KindResize
	KindPaste
	KindTick
)

// MouseKind discriminates a KindMouse event's variant (§4.H: "kind
// (move/down/up/wheel)").
type MouseKind int

const (
	MouseDown MouseKind = iota
	MouseUp
	MouseMove
	MouseWheel
)

// Event is a single decoded input event, tagged by Kind (§4.H).
type Event struct {
	Kind Kind

	// KindText / KindKey
	Codepoint rune
	Key       Key
	Mod       Mod

	// KindMouse
	MouseKind    MouseKind
	MouseButton  int
	MouseX       int
	MouseY       int
	MousePressed bool // true = M (press), false = m (release)
	WheelDeltaX  int  // -1/+1 for a horizontal wheel tick, else 0
	WheelDeltaY  int  // -1/+1 for a vertical wheel tick, else 0

	// KindFocus
	FocusIn bool

	// KindResize
	Cols, Rows int

	// KindPaste
	PasteBytes []byte

	// EventIndex orders this event within and across batches so replay can
	// relate batches and resizes (§4.H ordering guarantee).
	EventIndex int
}

func textEvent(cp rune) Event  { return Event{Kind: KindText, Codepoint: cp} }
func keyEvent(k Key, cp rune, mod Mod) Event {
	return Event{Kind: KindKey, Key: k, Codepoint: cp, Mod: mod}
}

func isPrintable(r rune) bool {
	return r >= 0x20 && r != 0x7f
}
