// Package drawlist implements the ZRDL v1 binary drawlist codec (§4.F): a
// strictly validated little-endian command stream with interned strings,
// 4-byte alignment throughout, and sticky-error builder semantics. It is
// grounded on the teacher's Buffer/Cell model (tui/screen.go) generalized
// from an in-memory terminal grid into a position-independent wire format
// consumed by a native renderer.
package drawlist

import (
	"encoding/binary"

	lru "github.com/hashicorp/golang-lru"

	"github.com/RtlZeroMemory/Rezi-sub007/style"
)

// Magic is the fixed ZRDL v1 header sentinel ("ZRDL" little-endian bytes).
const Magic uint32 = 0x4C44525A

const Version uint32 = 1
const HeaderSize uint32 = 64

// Opcodes (§4.F).
const (
	OpClear       = 1
	OpFillRect    = 2
	OpDrawText    = 3
	OpPushClip    = 4
	OpPopClip     = 5
	OpDrawTextRun = 6
)

const cmdHeaderSize = 8

// Caps bounds the builder's output (all configurable, defaults per §4.F).
type Caps struct {
	MaxDrawlistBytes int
	MaxCmdCount      int
	MaxStrings       int
	MaxStringBytes   int
	MaxBlobs         int
	MaxBlobBytes     int
}

// DefaultCaps matches the spec's stated defaults.
func DefaultCaps() Caps {
	return Caps{
		MaxDrawlistBytes: 2 * 1024 * 1024,
		MaxCmdCount:      100000,
		MaxStrings:       10000,
		MaxStringBytes:   512 * 1024,
		MaxBlobs:         10000,
		MaxBlobBytes:     512 * 1024,
	}
}

// TextRunSegment is one styled run within a DrawTextRun blob.
type TextRunSegment struct {
	Style  style.Style
	Text   string
}

// Builder accumulates drawlist commands. The zero value is not usable; use
// NewBuilder. Once any operation fails the builder latches a sticky Error:
// all subsequent writes are no-ops and Build returns that same error.
type Builder struct {
	caps Caps

	cmds     []byte
	cmdCount int

	strings     []string
	stringIndex map[string]int
	stringBytes int

	blobs     [][]byte
	blobBytes int

	err *Error

	encodeCache *lru.Cache
}

// NewBuilder returns a Builder enforcing caps exactly as given; zero-valued
// caps are not replaced by DefaultCaps(), so callers pass DefaultCaps()
// explicitly.
func NewBuilder(caps Caps) *Builder {
	cache, _ := lru.New(256)
	return &Builder{
		caps:        caps,
		stringIndex: map[string]int{},
		encodeCache: cache,
	}
}

func (b *Builder) fail(kind ErrorKind, msg string) {
	if b.err == nil {
		b.err = &Error{Kind: kind, Message: msg}
	}
}

// Err returns the sticky error, if any.
func (b *Builder) Err() error {
	if b.err == nil {
		return nil
	}
	return b.err
}

func (b *Builder) estimatedSize() int {
	return int(HeaderSize) + len(b.cmds) + 8*len(b.strings) + align4(b.stringBytes) + 8*len(b.blobs) + align4(b.blobBytes)
}

func (b *Builder) checkCaps(extraCmd int) bool {
	if b.err != nil {
		return false
	}
	if b.cmdCount+1 > b.caps.MaxCmdCount {
		b.fail(ErrTooLarge, "cmdCount exceeds maxCmdCount")
		return false
	}
	if b.estimatedSize()+extraCmd > b.caps.MaxDrawlistBytes {
		b.fail(ErrTooLarge, "drawlist size exceeds maxDrawlistBytes")
		return false
	}
	return true
}

func align4(n int) int {
	return (n + 3) &^ 3
}

// encodeString returns the UTF-8 bytes for s, via a bounded LRU cache of
// previously encoded strings (§4.F: "optional bounded cache on encoded
// strings, cleared when full").
func (b *Builder) encodeString(s string) []byte {
	if v, ok := b.encodeCache.Get(s); ok {
		return v.([]byte)
	}
	enc := []byte(s)
	if b.encodeCache.Len() >= 256 {
		b.encodeCache.Purge()
	}
	b.encodeCache.Add(s, enc)
	return enc
}

// internString deduplicates s by value, returning its string-table index.
func (b *Builder) internString(s string) (int, bool) {
	if idx, ok := b.stringIndex[s]; ok {
		return idx, true
	}
	if len(b.strings) >= b.caps.MaxStrings {
		b.fail(ErrTooLarge, "string count exceeds maxStrings")
		return 0, false
	}
	enc := b.encodeString(s)
	if b.stringBytes+len(enc) > b.caps.MaxStringBytes {
		b.fail(ErrTooLarge, "string bytes exceed maxStringBytes")
		return 0, false
	}
	idx := len(b.strings)
	b.strings = append(b.strings, s)
	b.stringIndex[s] = idx
	b.stringBytes += len(enc)
	return idx, true
}

func (b *Builder) emit(opcode uint16, payload []byte) {
	size := cmdHeaderSize + len(payload)
	if !b.checkCaps(size) {
		return
	}
	hdr := make([]byte, cmdHeaderSize)
	binary.LittleEndian.PutUint16(hdr[0:2], opcode)
	binary.LittleEndian.PutUint16(hdr[2:4], 0)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(size))
	b.cmds = append(b.cmds, hdr...)
	b.cmds = append(b.cmds, payload...)
	b.cmdCount++
}

func putStyle(buf []byte, s style.Style) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(s.Fg))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(s.Bg))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(s.Attrs))
	binary.LittleEndian.PutUint32(buf[12:16], 0)
}

// Clear emits the Clear op (no payload).
func (b *Builder) Clear() {
	if b.err != nil {
		return
	}
	b.emit(OpClear, nil)
}

// ClearTo clears the w x h canvas to a solid style: Clear followed by a
// full-canvas FillRect, since ZRDL v1's Clear opcode itself carries no
// payload.
func (b *Builder) ClearTo(w, h int, s style.Style) {
	b.Clear()
	b.FillRect(0, 0, w, h, s)
}

// FillRect emits a FillRect op.
func (b *Builder) FillRect(x, y, w, h int, s style.Style) {
	if b.err != nil {
		return
	}
	if w < 0 || h < 0 {
		b.fail(ErrBadParams, "FillRect w/h must be non-negative")
		return
	}
	payload := make([]byte, 32)
	binary.LittleEndian.PutUint32(payload[0:4], uint32(int32(x)))
	binary.LittleEndian.PutUint32(payload[4:8], uint32(int32(y)))
	binary.LittleEndian.PutUint32(payload[8:12], uint32(int32(w)))
	binary.LittleEndian.PutUint32(payload[12:16], uint32(int32(h)))
	putStyle(payload[16:32], s)
	b.emit(OpFillRect, payload)
}

// DrawText emits a DrawText op referencing an interned string.
func (b *Builder) DrawText(x, y int, text string, s style.Style) {
	if b.err != nil {
		return
	}
	idx, ok := b.internString(text)
	if !ok {
		return
	}
	enc := b.encodeString(text)
	payload := make([]byte, 40)
	binary.LittleEndian.PutUint32(payload[0:4], uint32(int32(x)))
	binary.LittleEndian.PutUint32(payload[4:8], uint32(int32(y)))
	binary.LittleEndian.PutUint32(payload[8:12], uint32(idx))
	binary.LittleEndian.PutUint32(payload[12:16], 0) // byteOff
	binary.LittleEndian.PutUint32(payload[16:20], uint32(len(enc)))
	putStyle(payload[20:36], s)
	binary.LittleEndian.PutUint32(payload[36:40], 0)
	b.emit(OpDrawText, payload)
}

// PushClip emits a PushClip op.
func (b *Builder) PushClip(x, y, w, h int) {
	if b.err != nil {
		return
	}
	payload := make([]byte, 16)
	binary.LittleEndian.PutUint32(payload[0:4], uint32(int32(x)))
	binary.LittleEndian.PutUint32(payload[4:8], uint32(int32(y)))
	binary.LittleEndian.PutUint32(payload[8:12], uint32(int32(w)))
	binary.LittleEndian.PutUint32(payload[12:16], uint32(int32(h)))
	b.emit(OpPushClip, payload)
}

// PopClip emits a PopClip op.
func (b *Builder) PopClip() {
	if b.err != nil {
		return
	}
	b.emit(OpPopClip, nil)
}

// AddBlob appends a raw, non-interned blob and returns its index.
func (b *Builder) AddBlob(data []byte) (int, bool) {
	if b.err != nil {
		return 0, false
	}
	if len(b.blobs) >= b.caps.MaxBlobs {
		b.fail(ErrTooLarge, "blob count exceeds maxBlobs")
		return 0, false
	}
	padded := make([]byte, align4(len(data)))
	copy(padded, data)
	if b.blobBytes+len(padded) > b.caps.MaxBlobBytes {
		b.fail(ErrTooLarge, "blob bytes exceed maxBlobBytes")
		return 0, false
	}
	idx := len(b.blobs)
	b.blobs = append(b.blobs, padded)
	b.blobBytes += len(padded)
	return idx, true
}

// AddTextRunBlob builds and appends a text-run blob (§4.F): segCount:u32
// followed by segCount 28-byte records of {style{16}, stringIndex:u32,
// byteOff:u32=0, byteLen:u32}.
func (b *Builder) AddTextRunBlob(segments []TextRunSegment) (int, bool) {
	if b.err != nil {
		return 0, false
	}
	if len(segments) == 0 {
		b.fail(ErrBadParams, "text-run blob requires at least one segment")
		return 0, false
	}
	buf := make([]byte, 4+28*len(segments))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(segments)))
	off := 4
	for _, seg := range segments {
		idx, ok := b.internString(seg.Text)
		if !ok {
			return 0, false
		}
		enc := b.encodeString(seg.Text)
		putStyle(buf[off:off+16], seg.Style)
		binary.LittleEndian.PutUint32(buf[off+16:off+20], uint32(idx))
		binary.LittleEndian.PutUint32(buf[off+20:off+24], 0)
		binary.LittleEndian.PutUint32(buf[off+24:off+28], uint32(len(enc)))
		off += 28
	}
	return b.AddBlob(buf)
}

// DrawTextRun emits a DrawTextRun op referencing a blob built with
// AddTextRunBlob.
func (b *Builder) DrawTextRun(x, y int, blobIndex int) {
	if b.err != nil {
		return
	}
	if blobIndex < 0 || blobIndex >= len(b.blobs) {
		b.fail(ErrBadParams, "DrawTextRun blobIndex out of range")
		return
	}
	payload := make([]byte, 16)
	binary.LittleEndian.PutUint32(payload[0:4], uint32(int32(x)))
	binary.LittleEndian.PutUint32(payload[4:8], uint32(int32(y)))
	binary.LittleEndian.PutUint32(payload[8:12], uint32(blobIndex))
	binary.LittleEndian.PutUint32(payload[12:16], 0)
	b.emit(OpDrawTextRun, payload)
}

// Reset clears all accumulated state and re-enables the builder.
func (b *Builder) Reset() {
	b.cmds = nil
	b.cmdCount = 0
	b.strings = nil
	b.stringIndex = map[string]int{}
	b.stringBytes = 0
	b.blobs = nil
	b.blobBytes = 0
	b.err = nil
	b.encodeCache.Purge()
}

// Build assembles the final ZRDL v1 byte stream, or returns the sticky
// error latched by an earlier operation.
func (b *Builder) Build() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}

	stringBytesBuf := make([]byte, 0, b.stringBytes)
	stringSpans := make([]byte, 8*len(b.strings))
	off := 0
	for i, s := range b.strings {
		enc := b.encodeString(s)
		binary.LittleEndian.PutUint32(stringSpans[8*i:8*i+4], uint32(off))
		binary.LittleEndian.PutUint32(stringSpans[8*i+4:8*i+8], uint32(len(enc)))
		stringBytesBuf = append(stringBytesBuf, enc...)
		off += len(enc)
	}
	stringBytesBuf = padTo4(stringBytesBuf)

	blobSpans := make([]byte, 8*len(b.blobs))
	blobBytesBuf := make([]byte, 0, b.blobBytes)
	boff := 0
	for i, blob := range b.blobs {
		binary.LittleEndian.PutUint32(blobSpans[8*i:8*i+4], uint32(boff))
		binary.LittleEndian.PutUint32(blobSpans[8*i+4:8*i+8], uint32(len(blob)))
		blobBytesBuf = append(blobBytesBuf, blob...)
		boff += len(blob)
	}
	blobBytesBuf = padTo4(blobBytesBuf)

	cmdOffset := 0
	if b.cmdCount > 0 {
		cmdOffset = int(HeaderSize)
	}
	cmdBytes := align4(len(b.cmds))
	cmdSection := padTo4(b.cmds)

	stringsSpanOffset := 0
	stringsBytesOffset := 0
	if len(b.strings) > 0 {
		stringsSpanOffset = int(HeaderSize) + cmdBytes
		stringsBytesOffset = stringsSpanOffset + len(stringSpans)
	}

	blobsSpanOffset := 0
	blobsBytesOffset := 0
	if len(b.blobs) > 0 {
		blobsSpanOffset = int(HeaderSize) + cmdBytes + len(stringSpans) + len(stringBytesBuf)
		blobsBytesOffset = blobsSpanOffset + len(blobSpans)
	}

	totalSize := int(HeaderSize) + cmdBytes + len(stringSpans) + len(stringBytesBuf) + len(blobSpans) + len(blobBytesBuf)

	header := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], Magic)
	binary.LittleEndian.PutUint32(header[4:8], Version)
	binary.LittleEndian.PutUint32(header[8:12], HeaderSize)
	binary.LittleEndian.PutUint32(header[12:16], uint32(totalSize))
	binary.LittleEndian.PutUint32(header[16:20], uint32(cmdOffset))
	binary.LittleEndian.PutUint32(header[20:24], uint32(cmdBytes))
	binary.LittleEndian.PutUint32(header[24:28], uint32(b.cmdCount))
	binary.LittleEndian.PutUint32(header[28:32], uint32(stringsSpanOffset))
	binary.LittleEndian.PutUint32(header[32:36], uint32(len(b.strings)))
	binary.LittleEndian.PutUint32(header[36:40], uint32(stringsBytesOffset))
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(stringBytesBuf)))
	binary.LittleEndian.PutUint32(header[44:48], uint32(blobsSpanOffset))
	binary.LittleEndian.PutUint32(header[48:52], uint32(len(b.blobs)))
	binary.LittleEndian.PutUint32(header[52:56], uint32(blobsBytesOffset))
	binary.LittleEndian.PutUint32(header[56:60], uint32(len(blobBytesBuf)))
	binary.LittleEndian.PutUint32(header[60:64], 0)

	out := make([]byte, 0, totalSize)
	out = append(out, header...)
	out = append(out, cmdSection...)
	out = append(out, stringSpans...)
	out = append(out, stringBytesBuf...)
	out = append(out, blobSpans...)
	out = append(out, blobBytesBuf...)
	return out, nil
}

func padTo4(b []byte) []byte {
	n := align4(len(b))
	if n == len(b) {
		return b
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}
