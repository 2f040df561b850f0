package repro

import (
	"encoding/hex"
	"fmt"
)

// Validate checks the cross-field invariants §4.J names beyond plain JSON
// shape: step indices must equal array position, per-batch byte payloads
// must be valid hex, and the recorded totals must equal the sum of the
// batch metrics.
func Validate(b *Bundle) error {
	ec := &b.EventCapture
	sumEvents := 0
	sumBytes := 0
	for i, batch := range ec.Batches {
		path := fmt.Sprintf("$.eventCapture.batches[%d]", i)
		if batch.Step != i {
			return &ValidationError{Kind: ErrBundle, Path: path + ".step", Message: fmt.Sprintf("step %d must equal array position %d", batch.Step, i)}
		}
		if batch.DeltaMs < 0 {
			return &ValidationError{Kind: ErrBundle, Path: path + ".deltaMs", Message: "deltaMs must be non-negative"}
		}
		raw, err := hex.DecodeString(batch.BytesHex)
		if err != nil {
			return &ValidationError{Kind: ErrBundle, Path: path + ".bytesHex", Message: "not valid hex: " + err.Error()}
		}
		if batch.EventCount < 0 {
			return &ValidationError{Kind: ErrBundle, Path: path + ".eventCount", Message: "eventCount must be non-negative"}
		}
		sumEvents += batch.EventCount
		sumBytes += len(raw)
	}

	if ec.Totals.CapturedBatches != len(ec.Batches) {
		return &ValidationError{Kind: ErrBundle, Path: "$.eventCapture.totals.capturedBatches", Message: fmt.Sprintf("capturedBatches %d does not match %d batches", ec.Totals.CapturedBatches, len(ec.Batches))}
	}
	if ec.Totals.CapturedEvents != sumEvents {
		return &ValidationError{Kind: ErrBundle, Path: "$.eventCapture.totals.capturedEvents", Message: fmt.Sprintf("capturedEvents %d does not match sum of batch eventCounts %d", ec.Totals.CapturedEvents, sumEvents)}
	}
	if ec.Totals.CapturedBytes != sumBytes {
		return &ValidationError{Kind: ErrBundle, Path: "$.eventCapture.totals.capturedBytes", Message: fmt.Sprintf("capturedBytes %d does not match sum of decoded batch bytes %d", ec.Totals.CapturedBytes, sumBytes)}
	}

	if ec.Truncation != nil {
		switch ec.Truncation.Reason {
		case TruncMaxBatches, TruncMaxEvents, TruncMaxBytes:
		default:
			return &ValidationError{Kind: ErrBundle, Path: "$.eventCapture.truncation.reason", Message: "reason must be one of max-batches, max-events, max-bytes"}
		}
		if ec.Truncation.FirstOmittedStep < ec.Totals.CapturedBatches {
			return &ValidationError{Kind: ErrBundle, Path: "$.eventCapture.truncation.firstOmittedStep", Message: fmt.Sprintf("firstOmittedStep %d must be >= capturedBatches %d", ec.Truncation.FirstOmittedStep, ec.Totals.CapturedBatches)}
		}
	}

	return nil
}
