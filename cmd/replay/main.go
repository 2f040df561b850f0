// Command replay loads a recorded repro bundle (§4.J) and replays its raw
// input batches through an input.Decoder, printing each decoded event;
// with -live it sleeps each batch's recorded delta first, otherwise it
// replays instantly. It is the deterministic counterpart to
// repro.Recorder: no terminal, no runtime loop, just the decode path a bug
// report needs to reproduce.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/RtlZeroMemory/Rezi-sub007/input"
	"github.com/RtlZeroMemory/Rezi-sub007/repro"
)

func main() {
	path := flag.String("bundle", "", "path to a rezi-repro-v1 JSON bundle")
	live := flag.Bool("live", false, "sleep deltaMs between batches instead of replaying instantly")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -bundle <path> [-live]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("read bundle: %v", err)
	}

	bundle, err := repro.ParseReproBundle(data)
	if err != nil {
		log.Fatalf("parse bundle: %v", err)
	}

	fmt.Printf("viewport %dx%d, %d batches, %d events, %d bytes\n",
		bundle.CaptureConfig.Viewport.Cols, bundle.CaptureConfig.Viewport.Rows,
		bundle.EventCapture.Totals.CapturedBatches, bundle.EventCapture.Totals.CapturedEvents, bundle.EventCapture.Totals.CapturedBytes)
	if bundle.EventCapture.Truncation != nil {
		fmt.Printf("truncated: %s at step %d\n", bundle.EventCapture.Truncation.Reason, bundle.EventCapture.Truncation.FirstOmittedStep)
	}

	dec := input.NewDecoder()
	err = repro.Replay(bundle, func(raw []byte, deltaMs int64) error {
		if *live && deltaMs > 0 {
			time.Sleep(time.Duration(deltaMs) * time.Millisecond)
		}
		events, err := dec.Feed(raw, true)
		if err != nil {
			return err
		}
		for _, ev := range events {
			fmt.Printf("  [%d] %+v\n", ev.EventIndex, ev)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("replay: %v", err)
	}
}
