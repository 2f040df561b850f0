// Package repro implements the "rezi-repro-v1" record/replay bundle schema
// (§4.J, GLOSSARY "Repro bundle v1"): strict JSON validation plus
// deterministic serialization, so a captured session can be replayed
// byte-for-byte regardless of how the JSON that produced it ordered its
// keys.
package repro

// TerminalCaps mirrors runtime.TerminalCaps for a bundle's recorded
// terminal capability snapshot. Declared in the same alphabetical field
// order the JSON tags carry, so encoding/json's struct-order output
// already satisfies §4.J's "keys lexicographically sorted" requirement
// without a custom encoder.
type TerminalCaps struct {
	ColorMode                  int    `json:"colorMode"`
	SGRAttrsSupported          uint32 `json:"sgrAttrsSupported"`
	SupportsBracketedPaste     bool   `json:"supportsBracketedPaste"`
	SupportsColoredUnderlines  bool   `json:"supportsColoredUnderlines"`
	SupportsCursorShape        bool   `json:"supportsCursorShape"`
	SupportsFocusEvents        bool   `json:"supportsFocusEvents"`
	SupportsHyperlinks         bool   `json:"supportsHyperlinks"`
	SupportsMouse              bool   `json:"supportsMouse"`
	SupportsOSC52              bool   `json:"supportsOsc52"`
	SupportsOutputWaitWritable bool   `json:"supportsOutputWaitWritable"`
	SupportsScrollRegion       bool   `json:"supportsScrollRegion"`
	SupportsSyncUpdate         bool   `json:"supportsSyncUpdate"`
	SupportsUnderlineStyles    bool   `json:"supportsUnderlineStyles"`
}

// BackendCaps mirrors drawlist.Caps: the bounds the backend's drawlist
// builder was configured with at capture time, distinct from the
// terminal's own capability negotiation (see DESIGN.md's repro entry for
// why this is the chosen reading of "backendCaps").
type BackendCaps struct {
	MaxBlobBytes     int `json:"maxBlobBytes"`
	MaxBlobs         int `json:"maxBlobs"`
	MaxCmdCount      int `json:"maxCmdCount"`
	MaxDrawlistBytes int `json:"maxDrawlistBytes"`
	MaxStringBytes   int `json:"maxStringBytes"`
	MaxStrings       int `json:"maxStrings"`
}

// CapsSnapshot is the capability pair recorded at capture start (§4.J
// GLOSSARY: "capsSnapshot {terminalCaps, backendCaps}").
type CapsSnapshot struct {
	BackendCaps  BackendCaps  `json:"backendCaps"`
	TerminalCaps TerminalCaps `json:"terminalCaps"`
}

// Viewport is the recorded terminal size at capture start.
type Viewport struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// CaptureConfig records what the capture was started with (§4.J GLOSSARY:
// "captureConfig").
type CaptureConfig struct {
	Viewport Viewport `json:"viewport"`
}

// TimingModel fixes how recorded deltas are meant to be replayed (§4.J
// GLOSSARY: "timingModel (kind=deterministic, clock=monotonic-ms,
// replayStrategy=recorded-delta, baseTimeMs)"). This implementation only
// ever produces the one documented timing model, so these are constants
// rather than configurable fields.
type TimingModel struct {
	BaseTimeMs     int64  `json:"baseTimeMs"`
	Clock          string `json:"clock"`
	Kind           string `json:"kind"`
	ReplayStrategy string `json:"replayStrategy"`
}

const (
	TimingKindDeterministic   = "deterministic"
	TimingClockMonotonicMs    = "monotonic-ms"
	TimingReplayRecordedDelta = "recorded-delta"
)

// Bounds records the recorder limits a capture was run under, so a replay
// can tell whether a given truncation was expected (§4.J GLOSSARY:
// "eventCapture {..., bounds, ...}").
type Bounds struct {
	MaxBatches int `json:"maxBatches"`
	MaxBytes   int `json:"maxBytes"`
	MaxEvents  int `json:"maxEvents"`
}

// Batch is one recorded input.EventBatch: the raw bytes fed to the decoder
// plus the metrics Validate checks against Totals.
type Batch struct {
	BytesHex   string `json:"bytesHex"`
	DeltaMs    int64  `json:"deltaMs"`
	EventCount int    `json:"eventCount"`
	Step       int    `json:"step"`
}

// Totals must equal the sum of the per-batch metrics (§4.J, §8 seed 6).
type Totals struct {
	CapturedBatches int `json:"capturedBatches"`
	CapturedBytes   int `json:"capturedBytes"`
	CapturedEvents  int `json:"capturedEvents"`
}

// TruncationReason enumerates why a capture stopped early.
type TruncationReason string

const (
	TruncMaxBatches TruncationReason = "max-batches"
	TruncMaxEvents  TruncationReason = "max-events"
	TruncMaxBytes   TruncationReason = "max-bytes"
)

// Truncation records that the capture was cut short; absent (nil) means the
// capture ran to completion.
type Truncation struct {
	FirstOmittedStep int              `json:"firstOmittedStep"`
	Reason           TruncationReason `json:"reason"`
}

// EventCapture is the event-stream half of a bundle (§4.J GLOSSARY:
// "eventCapture {ordering=poll-order, timing=step-delta-ms, bounds,
// totals, truncation, batches[]}"). Ordering and Timing are fixed
// constants describing the one capture strategy this implementation uses.
type EventCapture struct {
	Batches    []Batch     `json:"batches"`
	Bounds     Bounds      `json:"bounds"`
	Ordering   string      `json:"ordering"`
	Timing     string      `json:"timing"`
	Totals     Totals      `json:"totals"`
	Truncation *Truncation `json:"truncation,omitempty"`
}

const (
	EventOrderingPollOrder = "poll-order"
	EventTimingStepDeltaMs = "step-delta-ms"
)

// SchemaV1 is the only schema string Validate accepts.
const SchemaV1 = "rezi-repro-v1"

// Bundle is a full "rezi-repro-v1" document (§4.J, GLOSSARY "Repro bundle
// v1"): captureConfig, capsSnapshot, eventCapture, schema, and
// timingModel, declared in that alphabetical order so encoding/json's
// struct-order marshaling satisfies the schema's stable-key-order
// requirement at every nesting level.
type Bundle struct {
	CaptureConfig CaptureConfig `json:"captureConfig"`
	CapsSnapshot  CapsSnapshot  `json:"capsSnapshot"`
	EventCapture  EventCapture  `json:"eventCapture"`
	Schema        string        `json:"schema"`
	TimingModel   TimingModel   `json:"timingModel"`
}
