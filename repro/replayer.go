package repro

import "encoding/hex"

func hexEncode(b []byte) string { return hex.EncodeToString(b) }

// Replay feeds each batch's raw bytes to feed, in step order, passing along
// the recorded inter-batch delta so a caller can reproduce real timing
// (e.g. sleeping deltaMs between batches) without re-deriving it.
func Replay(b *Bundle, feed func(raw []byte, deltaMs int64) error) error {
	for _, batch := range b.EventCapture.Batches {
		raw, err := hex.DecodeString(batch.BytesHex)
		if err != nil {
			return &ValidationError{Kind: ErrBundle, Path: "$.eventCapture.batches", Message: "not valid hex: " + err.Error()}
		}
		if err := feed(raw, batch.DeltaMs); err != nil {
			return err
		}
	}
	return nil
}
