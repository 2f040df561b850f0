// Command demo drives a small counter widget tree through the full
// reconcile/constraint/layout/render/submit pipeline against a real
// terminal, generalizing the teacher's cmd/example2_counter from direct
// tui.Screen writes to the term.Backend + runtime.Runtime stack.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/RtlZeroMemory/Rezi-sub007/input"
	"github.com/RtlZeroMemory/Rezi-sub007/repro"
	"github.com/RtlZeroMemory/Rezi-sub007/runtime"
	"github.com/RtlZeroMemory/Rezi-sub007/signals"
	"github.com/RtlZeroMemory/Rezi-sub007/term"
	"github.com/RtlZeroMemory/Rezi-sub007/vdom"
)

func main() {
	recordPath := flag.String("record", "", "write a rezi-repro-v1 bundle of this session's input to the given path on exit")
	flag.Parse()

	count := signals.New(0)
	label := signals.NewComputed(func() string {
		return fmt.Sprintf("count: **%d**", count.Get())
	})

	build := func() *vdom.VNode {
		return &vdom.VNode{
			Kind: vdom.KindColumn,
			Props: map[string]interface{}{
				"bg":     "black",
				"border": "single",
			},
			Children: []*vdom.VNode{
				{
					Kind: vdom.KindText,
					Props: map[string]interface{}{
						"content": "#cyan(Rezi counter demo)",
						"bold":    true,
					},
				},
				{
					Kind: vdom.KindText,
					Props: map[string]interface{}{
						"content": label.Get(),
					},
				},
				{
					Kind: vdom.KindText,
					Props: map[string]interface{}{
						"content": "--press space to increment, q to quit--",
					},
				},
			},
		}
	}

	backend := term.New()
	rt := runtime.New(backend, build, 80, 24, runtime.Options{
		Logger: log.New(os.Stderr, "demo: ", log.LstdFlags),
	})

	if err := rt.Start(); err != nil {
		log.Fatalf("start: %v", err)
	}

	if *recordPath != "" {
		rt.StartRecording(repro.RecorderLimits{MaxBatches: 10000, MaxEvents: 100000, MaxBytes: 4 * 1024 * 1024}, 0)
	}

	if err := rt.RunFrame(); err != nil {
		log.Printf("initial frame: %v", err)
	}

	for {
		batch, err := backend.PollEvents()
		if err != nil {
			if _, ok := err.(input.ErrStopped); ok {
				break
			}
			log.Printf("poll: %v", err)
			break
		}

		rt.RecordInputBatch(batch.RawBytes, len(batch.Events))

		quit := false
		signals.Batch(func() {
			for _, ev := range batch.Events {
				switch {
				case ev.Kind == input.KindText && ev.Codepoint == ' ':
					count.Set(count.Get() + 1)
				case ev.Kind == input.KindText && ev.Codepoint == 'q':
					quit = true
				case ev.Kind == input.KindResize:
					rt.ViewportW, rt.ViewportH = ev.Cols, ev.Rows
					rt.RequestForceRender()
				}
				rt.HandleEvent(rt.LastLayout(), ev)
			}
		})
		if batch.Release != nil {
			batch.Release()
		}
		if quit {
			break
		}
		if err := rt.RunFrame(); err != nil {
			log.Printf("frame: %v", err)
		}
	}

	if err := rt.Stop(); err != nil {
		log.Printf("stop: %v", err)
	}

	if *recordPath != "" {
		bundle := rt.FinishRecording()
		data, err := repro.SerializeReproBundle(bundle)
		if err != nil {
			log.Printf("serialize bundle: %v", err)
		} else if err := os.WriteFile(*recordPath, data, 0o644); err != nil {
			log.Printf("write bundle: %v", err)
		}
	}
}
