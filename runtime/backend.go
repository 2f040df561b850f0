// Package runtime drives one frame at a time: update callbacks, reconcile,
// constraint graph/resolve, layout, render, submit (§4.I). It generalizes
// the teacher's Buffer-centric direct-to-terminal draw loop (tui/screen.go)
// into a backend-agnostic scheduler that submits ZRDL v1 drawlists through
// a pluggable Backend contract (§6).
package runtime

import "github.com/RtlZeroMemory/Rezi-sub007/input"

// ColorMode enumerates the terminal's color capability tier.
type ColorMode int

const (
	ColorNone ColorMode = iota
	Color16
	Color256
	ColorTrue
)

// TerminalCaps describes what the attached backend supports (§6).
type TerminalCaps struct {
	ColorMode                  ColorMode
	SupportsMouse              bool
	SupportsBracketedPaste     bool
	SupportsFocusEvents        bool
	SupportsOSC52              bool
	SupportsSyncUpdate         bool
	SupportsScrollRegion       bool
	SupportsCursorShape        bool
	SupportsOutputWaitWritable bool
	SupportsUnderlineStyles    bool
	SupportsColoredUnderlines  bool
	SupportsHyperlinks         bool
	SGRAttrsSupported          uint32
}

// EventBatch is what PollEvents hands back: the decoded events plus a
// release closure the runtime must call once it is done reading any
// backend-owned buffers backing them (§5 resource discipline). RawBytes is
// the exact input the backend decoded Events from, if any (nil for
// synthetic batches like resize) — a repro.Recorder attached via
// Runtime.StartRecording replays from these bytes, not from Events.
type EventBatch struct {
	Events   []input.Event
	Release  func()
	RawBytes []byte
}

// Backend is the contract the runtime drives (§6). Every method is a
// suspension point: cancellable by Stop, and pending callers must observe
// input.ErrStopped rather than hang.
type Backend interface {
	Start() error
	Stop() error
	Dispose() error

	// RequestFrame submits drawlistBytes and returns a channel closed once
	// the backend has flushed it.
	RequestFrame(drawlistBytes []byte) (done <-chan struct{}, err error)

	PollEvents() (EventBatch, error)
	PostUserEvent(tag string, payload interface{})
	GetCaps() TerminalCaps
}
