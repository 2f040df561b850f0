package input

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxPasteBytes bounds a bracketed-paste payload (§4.H: oversized paste is
// dropped with no paste event emitted; the stream must not wedge after).
const MaxPasteBytes = 1 << 20

var pasteStart = []byte("\x1b[200~")
var pasteEnd = []byte("\x1b[201~")

// Decoder turns a raw byte stream into Events, preserving arrival order and
// assigning each a monotonically increasing EventIndex (§4.H, §5).
type Decoder struct {
	buf        []byte
	inPaste    bool
	pasteBuf   []byte
	pasteOverflowed bool
	nextIndex  int
	stopped    bool
}

// NewDecoder returns a ready-to-use Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// ErrStopped is returned by Feed once Stop has been called; pending and
// future decode attempts are rejected (§4.H cancellation, §5 IO_STOPPED).
type ErrStopped struct{}

func (ErrStopped) Error() string { return "IO_STOPPED" }

// Stop cancels the decoder; subsequent Feed calls return ErrStopped.
func (d *Decoder) Stop() { d.stopped = true }

// Feed appends data to the decoder's buffer and extracts every event that
// can be completely decoded from it. When timedOut is true and an
// incomplete escape sequence remains buffered, it is flushed per §4.H:
// `key(ESC,0)` followed by the buffered textual codepoints, in arrival
// order. Reads may split a sequence across calls; a sequence that
// eventually completes across multiple Feed calls never triggers the
// fallback.
func (d *Decoder) Feed(data []byte, timedOut bool) ([]Event, error) {
	if d.stopped {
		return nil, ErrStopped{}
	}
	d.buf = append(d.buf, data...)

	var events []Event
	for len(d.buf) > 0 {
		n, evs, complete := d.tryDecodeOne(d.buf)
		if !complete {
			break
		}
		d.buf = d.buf[n:]
		events = append(events, evs...)
	}

	if timedOut && len(d.buf) > 0 && !d.inPaste {
		events = append(events, d.flushIncomplete()...)
	}

	for i := range events {
		events[i].EventIndex = d.nextIndex
		d.nextIndex++
	}
	return events, nil
}

// Tick returns a single KindTick event (the implementation's tick cadence,
// §4.H), stamped with the next EventIndex.
func (d *Decoder) Tick() Event {
	e := Event{Kind: KindTick, EventIndex: d.nextIndex}
	d.nextIndex++
	return e
}

// Resize returns a single KindResize event, stamped with the next
// EventIndex so replay can relate it to surrounding input batches.
func (d *Decoder) Resize(cols, rows int) Event {
	e := Event{Kind: KindResize, Cols: cols, Rows: rows, EventIndex: d.nextIndex}
	d.nextIndex++
	return e
}

func (d *Decoder) flushIncomplete() []Event {
	buf := d.buf
	d.buf = nil
	if buf[0] != 0x1b {
		// Not actually an escape stub; decode whatever text remains.
		return decodeText(buf)
	}
	events := []Event{keyEvent(KeyEsc, 0, ModNone)}
	events = append(events, decodeText(buf[1:])...)
	return events
}

func decodeText(buf []byte) []Event {
	var events []Event
	for len(buf) > 0 {
		r, size := utf8.DecodeRune(buf)
		events = append(events, textEvent(r))
		buf = buf[size:]
	}
	return events
}

// tryDecodeOne attempts to decode exactly one event (or a small fixed
// group, e.g. bracketed paste) from the front of buf. complete is false
// when more bytes are needed to know the outcome.
func (d *Decoder) tryDecodeOne(buf []byte) (n int, events []Event, complete bool) {
	if d.inPaste {
		return d.continuePaste(buf)
	}
	if bytesHasPrefix(buf, pasteStart) {
		d.inPaste = true
		d.pasteBuf = nil
		d.pasteOverflowed = false
		return len(pasteStart), nil, true
	}

	b := buf[0]
	if b == 0x1b {
		return decodeEscape(buf)
	}
	return decodePlain(buf)
}

func (d *Decoder) continuePaste(buf []byte) (int, []Event, bool) {
	idx := bytesIndex(buf, pasteEnd)
	if idx < 0 {
		// No terminator yet; the bytes stay buffered in d.buf until more
		// arrive, still tracking overflow so we can drop the paste without
		// wedging.
		if len(buf) > MaxPasteBytes {
			d.pasteOverflowed = true
		}
		return 0, nil, false
	}
	if !d.pasteOverflowed && len(d.pasteBuf)+idx <= MaxPasteBytes {
		d.pasteBuf = append(d.pasteBuf, buf[:idx]...)
	} else {
		d.pasteOverflowed = true
	}
	consumed := idx + len(pasteEnd)
	d.inPaste = false
	if d.pasteOverflowed {
		d.pasteBuf = nil
		return consumed, nil, true
	}
	ev := Event{Kind: KindPaste, PasteBytes: d.pasteBuf}
	d.pasteBuf = nil
	return consumed, []Event{ev}, true
}

func decodePlain(buf []byte) (int, []Event, bool) {
	b := buf[0]
	if b <= 0x1f {
		switch b {
		case 0x0d:
			return 1, []Event{keyEvent(KeyEnter, 0, ModNone)}, true
		case 0x09:
			return 1, []Event{keyEvent(KeyTab, 0, ModNone)}, true
		case 0x08:
			return 1, []Event{keyEvent(KeyBackspace, 0, ModNone)}, true
		default:
			// Ctrl+letter: do not also emit a text event (§4.H).
			return 1, []Event{keyEvent(KeyChar, rune(b+0x60), ModCtrl)}, true
		}
	}
	if b == 0x7f {
		return 1, []Event{keyEvent(KeyBackspace, 0, ModNone)}, true
	}
	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size <= 1 {
		if len(buf) < 4 {
			return 0, nil, false // might be a truncated multi-byte rune
		}
		return 1, []Event{textEvent(rune(b))}, true
	}
	return size, []Event{textEvent(r)}, true
}

func decodeEscape(buf []byte) (int, []Event, bool) {
	if len(buf) < 2 {
		return 0, nil, false
	}
	switch buf[1] {
	case '[':
		return decodeCSI(buf)
	case 'O':
		return decodeSS3(buf)
	default:
		// Alt+key (bare ESC followed by a non-CSI/SS3 byte).
		r, size := utf8.DecodeRune(buf[1:])
		if r == utf8.RuneError && size <= 1 && len(buf) < 5 {
			return 0, nil, false
		}
		return 1 + size, []Event{keyEvent(KeyChar, r, ModAlt)}, true
	}
}

func decodeSS3(buf []byte) (int, []Event, bool) {
	if len(buf) < 3 {
		return 0, nil, false
	}
	var ev Event
	switch buf[2] {
	case 'A':
		ev = keyEvent(KeyArrowUp, 0, ModNone)
	case 'B':
		ev = keyEvent(KeyArrowDown, 0, ModNone)
	case 'C':
		ev = keyEvent(KeyArrowRight, 0, ModNone)
	case 'D':
		ev = keyEvent(KeyArrowLeft, 0, ModNone)
	case 'P':
		ev = keyEvent(KeyF1, 0, ModNone)
	case 'Q':
		ev = keyEvent(KeyF2, 0, ModNone)
	case 'R':
		ev = keyEvent(KeyF3, 0, ModNone)
	case 'S':
		ev = keyEvent(KeyF4, 0, ModNone)
	case 'H':
		ev = keyEvent(KeyHome, 0, ModNone)
	case 'F':
		ev = keyEvent(KeyEnd, 0, ModNone)
	default:
		return 3, nil, true // unrecognized SS3 final byte; consume and ignore
	}
	return 3, []Event{ev}, true
}

// decodeCSI scans "ESC [ params final" (params 0x30-0x3F, final 0x40-0x7E),
// dispatching mouse/CSI-u/focus/arrow/navigation shapes (§4.H).
func decodeCSI(buf []byte) (int, []Event, bool) {
	i := 2
	for i < len(buf) && buf[i] >= 0x30 && buf[i] <= 0x3f {
		i++
	}
	if i >= len(buf) {
		return 0, nil, false
	}
	final := buf[i]
	if final < 0x40 || final > 0x7e {
		return 0, nil, false
	}
	params := string(buf[2:i])
	n := i + 1
	ev, ok := dispatchCSI(params, final)
	if !ok {
		return n, nil, true
	}
	return n, ev, true
}

func dispatchCSI(params string, final byte) ([]Event, bool) {
	switch final {
	case 'A':
		return []Event{keyEvent(KeyArrowUp, 0, ModNone)}, true
	case 'B':
		return []Event{keyEvent(KeyArrowDown, 0, ModNone)}, true
	case 'C':
		return []Event{keyEvent(KeyArrowRight, 0, ModNone)}, true
	case 'D':
		return []Event{keyEvent(KeyArrowLeft, 0, ModNone)}, true
	case 'H':
		return []Event{keyEvent(KeyHome, 0, ModNone)}, true
	case 'F':
		return []Event{keyEvent(KeyEnd, 0, ModNone)}, true
	case 'I':
		return []Event{{Kind: KindFocus, FocusIn: true}}, true
	case 'O':
		return []Event{{Kind: KindFocus, FocusIn: false}}, true
	case 'u':
		return parseCSIu(params), true
	case 'M', 'm':
		return parseMouse(params, final == 'M')
	case '~':
		return parseTilde(params)
	}
	return nil, false
}

func parseTilde(params string) ([]Event, bool) {
	key := params
	if i := strings.IndexByte(params, ';'); i >= 0 {
		key = params[:i]
	}
	if key == "200" {
		// Handled by the bracketed-paste fast path; should not reach here.
		return nil, false
	}
	var k Key
	switch key {
	case "1":
		k = KeyHome
	case "2":
		k = KeyInsert
	case "3":
		k = KeyDelete
	case "4":
		k = KeyEnd
	case "5":
		k = KeyPgUp
	case "6":
		k = KeyPgDown
	case "15":
		k = KeyF5
	case "17":
		k = KeyF6
	case "18":
		k = KeyF7
	case "19":
		k = KeyF8
	case "20":
		k = KeyF9
	case "21":
		k = KeyF10
	case "23":
		k = KeyF11
	case "24":
		k = KeyF12
	default:
		return nil, false
	}
	return []Event{keyEvent(k, 0, ModNone)}, true
}

// parseCSIu decodes "codepoint[;mods]" per the xterm modifyOtherKeys
// encoding (mods = 1 + bitmask{shift=1,alt=2,ctrl=4,meta=8}). Alt-only
// (mods=3) and Meta-only (mods=9) retain the source's two documented
// shapes (§9 open question a): an ESC key event followed by either a text
// event (printable payload) or a modified key event (non-printable).
func parseCSIu(params string) []Event {
	parts := strings.SplitN(params, ";", 2)
	cp, _ := strconv.Atoi(parts[0])
	modsRaw := 1
	if len(parts) == 2 {
		if v, err := strconv.Atoi(parts[1]); err == nil {
			modsRaw = v
		}
	}
	r := rune(cp)

	if modsRaw == 3 {
		if isPrintable(r) {
			return []Event{keyEvent(KeyEsc, 0, ModNone), textEvent(r)}
		}
		return []Event{keyEvent(KeyEsc, 0, ModNone), keyEvent(KeyChar, r, ModAlt)}
	}
	if modsRaw == 9 {
		if isPrintable(r) {
			return []Event{keyEvent(KeyEsc, 0, ModNone), textEvent(r)}
		}
		return []Event{keyEvent(KeyEsc, 0, ModNone), keyEvent(KeyChar, r, ModMeta)}
	}

	bits := modsRaw - 1
	var mod Mod
	if bits&1 != 0 {
		mod |= ModShift
	}
	if bits&2 != 0 {
		mod |= ModAlt
	}
	if bits&4 != 0 {
		mod |= ModCtrl
	}
	if bits&8 != 0 {
		mod |= ModMeta
	}
	return []Event{keyEvent(KeyChar, r, mod)}
}

// mouseWheelBit and mouseMotionBit are the SGR extended mouse-mode button
// flags (§4.H): bit 6 (0x40) tags a wheel report, bit 5 (0x20) tags a
// motion report (drag or hover move) rather than a press/release.
const (
	mouseWheelBit   = 0x40
	mouseMotionBit  = 0x20
	mouseButtonMask = 0x03
)

// parseMouse decodes "ESC [ < b ; x ; y (M|m)" (extended SGR mouse mode,
// correct beyond the legacy 223-coordinate limit); x/y are one-based on
// the wire and reported zero-based (§4.H, §8).
func parseMouse(params string, pressed bool) ([]Event, bool) {
	params = strings.TrimPrefix(params, "<")
	fields := strings.Split(params, ";")
	if len(fields) != 3 {
		return nil, false
	}
	btn, err1 := strconv.Atoi(fields[0])
	x, err2 := strconv.Atoi(fields[1])
	y, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, false
	}

	ev := Event{
		Kind:         KindMouse,
		MouseButton:  btn & mouseButtonMask,
		MouseX:       x - 1,
		MouseY:       y - 1,
		MousePressed: pressed,
	}

	switch {
	case btn&mouseWheelBit != 0:
		ev.MouseKind = MouseWheel
		switch btn & mouseButtonMask {
		case 0:
			ev.WheelDeltaY = -1 // wheel up
		case 1:
			ev.WheelDeltaY = 1 // wheel down
		case 2:
			ev.WheelDeltaX = -1 // wheel left
		case 3:
			ev.WheelDeltaX = 1 // wheel right
		}
	case btn&mouseMotionBit != 0:
		ev.MouseKind = MouseMove
	case pressed:
		ev.MouseKind = MouseDown
	default:
		ev.MouseKind = MouseUp
	}

	return []Event{ev}, true
}

func bytesHasPrefix(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i := range prefix {
		if buf[i] != prefix[i] {
			return false
		}
	}
	return true
}

func bytesIndex(buf, sub []byte) int {
	if len(sub) == 0 || len(buf) < len(sub) {
		return -1
	}
	for i := 0; i+len(sub) <= len(buf); i++ {
		match := true
		for j := range sub {
			if buf[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
