package runtime

import (
	"time"

	"github.com/RtlZeroMemory/Rezi-sub007/input"
)

// Run drives the event/frame loop until Stop is called or the backend
// reports input.ErrStopped from PollEvents (§4.I, §5). Frames are
// requested at most at 1/fpsCap cadence; resize events coalesce and
// trigger at most one relayout per coalesce window.
func (rt *Runtime) Run() error {
	if err := rt.Start(); err != nil {
		return err
	}
	defer rt.Backend.Dispose()

	minInterval := time.Second / time.Duration(rt.Opts.FPSCap)
	var lastFrame time.Time
	var resizeTimer *time.Timer
	resizeDue := make(chan struct{}, 1)

	for !rt.stopped {
		batch, err := rt.Backend.PollEvents()
		if err != nil {
			if _, ok := err.(input.ErrStopped); ok {
				return nil
			}
			return err
		}

		rt.RecordInputBatch(batch.RawBytes, len(batch.Events))

		dirty := false
		for _, ev := range batch.Events {
			if ev.Kind == input.KindResize {
				if resizeTimer != nil {
					resizeTimer.Stop()
				}
				cols, rows := ev.Cols, ev.Rows
				resizeTimer = time.AfterFunc(rt.Opts.ResizeCoalesceWindow, func() {
					rt.ViewportW, rt.ViewportH = cols, rows
					select {
					case resizeDue <- struct{}{}:
					default:
					}
				})
				continue
			}
			rt.HandleEvent(rt.lastLayout, ev)
			dirty = true
		}
		if batch.Release != nil {
			batch.Release()
		}

		select {
		case <-resizeDue:
			rt.RequestForceRender()
			dirty = true
		default:
		}

		if dirty || rt.forceRender {
			if since := time.Since(lastFrame); since < minInterval {
				time.Sleep(minInterval - since)
			}
			if err := rt.RunFrame(); err != nil {
				if rt.Opts.Logger != nil {
					rt.Opts.Logger.Printf("frame error: %v", err)
				}
			}
			lastFrame = time.Now()
		}
	}
	return rt.Backend.Stop()
}
