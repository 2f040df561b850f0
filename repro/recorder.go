package repro

// RecorderLimits bounds a capture (§4.J truncation). A zero field means
// "unbounded" for that dimension.
type RecorderLimits struct {
	MaxBatches int
	MaxEvents  int
	MaxBytes   int
}

// Recorder accumulates input batches into a Bundle as a runtime drives it,
// truncating once any configured limit is hit rather than growing without
// bound (§4.J Truncation, §5 resource discipline).
type Recorder struct {
	viewport     Viewport
	terminalCaps TerminalCaps
	backendCaps  BackendCaps
	limits       RecorderLimits
	baseTimeMs   int64

	batches     []Batch
	totalEvents int
	totalBytes  int
	truncation  *Truncation
}

// NewRecorder starts a capture against the given viewport/caps snapshot.
// baseTimeMs seeds the bundle's timingModel.baseTimeMs (§4.J GLOSSARY);
// callers replaying deterministically should pass the monotonic clock
// reading at capture start.
func NewRecorder(viewport Viewport, terminalCaps TerminalCaps, backendCaps BackendCaps, limits RecorderLimits, baseTimeMs int64) *Recorder {
	return &Recorder{
		viewport:     viewport,
		terminalCaps: terminalCaps,
		backendCaps:  backendCaps,
		limits:       limits,
		baseTimeMs:   baseTimeMs,
	}
}

// RecordBatch appends one input batch. raw is the exact bytes fed to the
// input decoder for this batch; deltaMs is the elapsed time since the prior
// batch (0 for the first). Once truncated, further calls are no-ops.
func (r *Recorder) RecordBatch(raw []byte, eventCount int, deltaMs int64) {
	if r.truncation != nil {
		return
	}
	step := len(r.batches)

	if r.limits.MaxBatches > 0 && step >= r.limits.MaxBatches {
		r.truncation = &Truncation{FirstOmittedStep: step, Reason: TruncMaxBatches}
		return
	}
	if r.limits.MaxEvents > 0 && r.totalEvents+eventCount > r.limits.MaxEvents {
		r.truncation = &Truncation{FirstOmittedStep: step, Reason: TruncMaxEvents}
		return
	}
	if r.limits.MaxBytes > 0 && r.totalBytes+len(raw) > r.limits.MaxBytes {
		r.truncation = &Truncation{FirstOmittedStep: step, Reason: TruncMaxBytes}
		return
	}

	r.batches = append(r.batches, Batch{
		BytesHex:   hexEncode(raw),
		DeltaMs:    deltaMs,
		EventCount: eventCount,
		Step:       step,
	})
	r.totalEvents += eventCount
	r.totalBytes += len(raw)
}

// Finish returns the captured Bundle. The recorder remains usable
// afterward; calling Finish again reflects any batches recorded since.
func (r *Recorder) Finish() *Bundle {
	return &Bundle{
		CaptureConfig: CaptureConfig{Viewport: r.viewport},
		CapsSnapshot: CapsSnapshot{
			BackendCaps:  r.backendCaps,
			TerminalCaps: r.terminalCaps,
		},
		EventCapture: EventCapture{
			Batches:  append([]Batch(nil), r.batches...),
			Bounds:   Bounds{MaxBatches: r.limits.MaxBatches, MaxBytes: r.limits.MaxBytes, MaxEvents: r.limits.MaxEvents},
			Ordering: EventOrderingPollOrder,
			Timing:   EventTimingStepDeltaMs,
			Totals: Totals{
				CapturedBatches: len(r.batches),
				CapturedBytes:   r.totalBytes,
				CapturedEvents:  r.totalEvents,
			},
			Truncation: r.truncation,
		},
		Schema: SchemaV1,
		TimingModel: TimingModel{
			BaseTimeMs:     r.baseTimeMs,
			Clock:          TimingClockMonotonicMs,
			Kind:           TimingKindDeterministic,
			ReplayStrategy: TimingReplayRecordedDelta,
		},
	}
}
