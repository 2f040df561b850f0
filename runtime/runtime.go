package runtime

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/RtlZeroMemory/Rezi-sub007/constraint"
	"github.com/RtlZeroMemory/Rezi-sub007/drawlist"
	"github.com/RtlZeroMemory/Rezi-sub007/input"
	"github.com/RtlZeroMemory/Rezi-sub007/layout"
	"github.com/RtlZeroMemory/Rezi-sub007/render"
	"github.com/RtlZeroMemory/Rezi-sub007/repro"
	"github.com/RtlZeroMemory/Rezi-sub007/signals"
	"github.com/RtlZeroMemory/Rezi-sub007/vdom"
)

// maxPendingFrames bounds the backpressure queue (§4.I: "queue at most N=3
// pending frames and drop the oldest when newer ones arrive").
const maxPendingFrames = 3

// defaultFPSCap is used when Options.FPSCap is zero. The source accepts an
// fpsCap of 1000 in benchmarks but clamps the native backend to 60 (§9
// design note b); this default is that production clamp, not a hard limit —
// Options.FPSCap overrides it.
const defaultFPSCap = 60

// Options configures a Runtime (§4.I, §6 environment variables).
type Options struct {
	FPSCap               int
	ResizeCoalesceWindow time.Duration
	Logger               *log.Logger
}

// FatalError is returned from RunFrame when a constraint/layout error
// aborts the frame; the runtime reports it and retains the previous
// rendered frame (§7).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return "fatal: " + e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// Runtime owns all mutable framework state and drives one frame at a time
// (§4.I, §5). Build returns the current desired VNode tree; returning the
// same *vdom.VNode pointer as the previous call signals no state change.
type Runtime struct {
	Backend Backend
	Build   func() *vdom.VNode
	Opts    Options

	reconciler *vdom.Reconciler
	resolver   *constraint.Resolver
	drawBuf    *drawlist.Builder
	drawCaps   drawlist.Caps

	root      *vdom.Instance
	lastVN    *vdom.VNode
	lastGraph *constraint.Graph
	lastLayout *layout.Node

	ViewportW, ViewportH int

	Focus          *FocusManager
	lastActivated  string

	prevSigs   map[vdom.InstanceID]uint32
	validDraws map[vdom.InstanceID]bool

	pending     [][]byte
	forceRender bool
	stopped     bool

	recorder      *repro.Recorder
	lastEventTime time.Time

	renderEffect *signals.Effect
}

// LastActivated returns the widget id activated by the most recent
// HandleEvent call (a full press+release on the same target), or "".
func (rt *Runtime) LastActivated() string { return rt.lastActivated }

// LastLayout returns the layout tree produced by the most recent RunFrame,
// or nil before the first frame.
func (rt *Runtime) LastLayout() *layout.Node { return rt.lastLayout }

// New returns a Runtime ready for Start. viewportW/H seed the initial
// layout size; a resize event updates them thereafter.
func New(backend Backend, build func() *vdom.VNode, viewportW, viewportH int, opts Options) *Runtime {
	if opts.FPSCap <= 0 {
		opts.FPSCap = defaultFPSCap
	}
	if opts.ResizeCoalesceWindow <= 0 {
		opts.ResizeCoalesceWindow = 40 * time.Millisecond
	}
	drawCaps := drawlist.DefaultCaps()
	rt := &Runtime{
		Backend:    backend,
		Build:      build,
		Opts:       opts,
		reconciler: vdom.NewReconciler(),
		resolver:   constraint.NewResolver(4),
		drawBuf:    drawlist.NewBuilder(drawCaps),
		drawCaps:   drawCaps,
		ViewportW:  viewportW,
		ViewportH:  viewportH,
		Focus:      NewFocusManager(),
		validDraws: map[vdom.InstanceID]bool{},
	}

	// Re-run Build inside a signals.Effect purely to track which signals it
	// reads (§4.I "Build ... returning the same *vdom.VNode pointer ...
	// signals no state change" describes the pull side; this is the push
	// side — a Signal.Set during event handling marks the next poll cycle
	// dirty without the caller having to call RequestForceRender itself).
	rt.renderEffect = signals.CreateEffect(func() {
		rt.Build()
		rt.RequestForceRender()
	})

	return rt
}

// StartRecording attaches a repro.Recorder (§4.J) to the runtime, seeded
// from the current viewport and the backend's capability snapshot. Every
// subsequent input batch Run polls is fed to it via RecordBatch until the
// configured limits truncate the capture. Passing baseTimeMs the monotonic
// clock reading at capture start lets a replay reconstruct absolute times
// from the bundle's recorded deltas.
func (rt *Runtime) StartRecording(limits repro.RecorderLimits, baseTimeMs int64) {
	caps := rt.Backend.GetCaps()
	rt.recorder = repro.NewRecorder(
		repro.Viewport{Cols: rt.ViewportW, Rows: rt.ViewportH},
		toReproTerminalCaps(caps),
		toReproBackendCaps(rt.drawCaps),
		limits,
		baseTimeMs,
	)
	rt.lastEventTime = time.Time{}
}

// FinishRecording returns the captured bundle and detaches the recorder, or
// nil if StartRecording was never called.
func (rt *Runtime) FinishRecording() *repro.Bundle {
	if rt.recorder == nil {
		return nil
	}
	bundle := rt.recorder.Finish()
	rt.recorder = nil
	return bundle
}

// RecordInputBatch feeds one polled input.EventBatch to the active
// recorder, if any, measuring the inter-batch delta against the previous
// call (§4.J eventCapture.timing = step-delta-ms). A no-op when no recorder
// is attached, so callers can call it unconditionally from their own poll
// loop (Run does this already; callers driving PollEvents directly, like
// cmd/demo, call it themselves).
func (rt *Runtime) RecordInputBatch(raw []byte, eventCount int) {
	if rt.recorder == nil {
		return
	}
	now := time.Now()
	var deltaMs int64
	if !rt.lastEventTime.IsZero() {
		deltaMs = now.Sub(rt.lastEventTime).Milliseconds()
	}
	rt.lastEventTime = now
	rt.recorder.RecordBatch(raw, eventCount, deltaMs)
}

func toReproTerminalCaps(c TerminalCaps) repro.TerminalCaps {
	return repro.TerminalCaps{
		ColorMode:                  int(c.ColorMode),
		SGRAttrsSupported:          c.SGRAttrsSupported,
		SupportsBracketedPaste:     c.SupportsBracketedPaste,
		SupportsColoredUnderlines:  c.SupportsColoredUnderlines,
		SupportsCursorShape:        c.SupportsCursorShape,
		SupportsFocusEvents:        c.SupportsFocusEvents,
		SupportsHyperlinks:         c.SupportsHyperlinks,
		SupportsMouse:              c.SupportsMouse,
		SupportsOSC52:              c.SupportsOSC52,
		SupportsOutputWaitWritable: c.SupportsOutputWaitWritable,
		SupportsScrollRegion:       c.SupportsScrollRegion,
		SupportsSyncUpdate:         c.SupportsSyncUpdate,
		SupportsUnderlineStyles:    c.SupportsUnderlineStyles,
	}
}

func toReproBackendCaps(c drawlist.Caps) repro.BackendCaps {
	return repro.BackendCaps{
		MaxBlobBytes:     c.MaxBlobBytes,
		MaxBlobs:         c.MaxBlobs,
		MaxCmdCount:      c.MaxCmdCount,
		MaxDrawlistBytes: c.MaxDrawlistBytes,
		MaxStringBytes:   c.MaxStringBytes,
		MaxStrings:       c.MaxStrings,
	}
}

// applyEnv reads the frame-cap override REZI_FPS_CAP at Start. Unset or
// malformed values are ignored, not fatal.
func (rt *Runtime) applyEnv() {
	if v := os.Getenv("REZI_FPS_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rt.Opts.FPSCap = n
		}
	}
	// REZI_COLOR_MODE is read by the concrete backend (term package) since
	// it affects capability negotiation, not the scheduler itself. No
	// bench/IO mode variable is read.
}

// Start applies environment overrides and starts the backend.
func (rt *Runtime) Start() error {
	rt.applyEnv()
	return rt.Backend.Start()
}

// Stop stops the backend; pending Backend suspension points must reject
// with input.ErrStopped (§5).
func (rt *Runtime) Stop() error {
	rt.stopped = true
	rt.renderEffect.Dispose()
	return rt.Backend.Stop()
}

// RequestForceRender marks the next poll cycle to render even if Build
// returns the same VNode pointer as last time.
func (rt *Runtime) RequestForceRender() { rt.forceRender = true }

// RunFrame executes one frame: reconcile, build/reuse constraint graph,
// resolve, layout, render, submit (§4.I). A constraint/layout error aborts
// the frame as *FatalError without touching the previously queued frames.
func (rt *Runtime) RunFrame() error {
	vn := rt.Build()
	changed := vn != rt.lastVN
	if !changed && !rt.forceRender {
		return nil
	}
	rt.forceRender = false
	rt.lastVN = vn

	commit := rt.reconciler.Commit(rt.root, vn, vdom.CommitOptions{})
	rt.root = commit.Root
	if rt.root == nil {
		return nil
	}

	sigs, sigsOK := vdom.ComputeSignatures(rt.root)

	graph := rt.lastGraph
	if changed || graph == nil || graph.RequiresCommitRelayout {
		g, err := constraint.BuildGraph(rt.root)
		if err != nil {
			return &FatalError{Err: err}
		}
		graph = g
	}
	rt.lastGraph = graph

	result := rt.resolver.Resolve(constraint.ResolveInput{
		Graph:    graph,
		Viewport: constraint.Viewport{W: float64(rt.ViewportW), H: float64(rt.ViewportH)},
	})

	lnode, err := layout.Layout(rt.root, layout.Values(result.Values), 0, 0, rt.ViewportW, rt.ViewportH, nil)
	if err != nil {
		return &FatalError{Err: err}
	}
	rt.lastLayout = lnode
	rt.Focus.SyncOrder(lnode)

	rt.drawBuf.Reset()
	r := render.New(rt.drawBuf)
	var rsigs *render.Signatures
	if sigsOK && rt.prevSigs != nil {
		rsigs = &render.Signatures{Prev: rt.prevSigs, ValidDraws: rt.validDraws}
	}
	r.Render(lnode, rsigs)

	data, err := rt.drawBuf.Build()
	if err != nil {
		if rt.Opts.Logger != nil {
			rt.Opts.Logger.Printf("drawlist build error: %v", err)
		}
		return &FatalError{Err: err}
	}

	if sigsOK {
		rt.prevSigs = sigs
		rt.validDraws = markAllValid(rt.root)
	}

	rt.enqueueFrame(data)
	return rt.flushPending()
}

func markAllValid(root *vdom.Instance) map[vdom.InstanceID]bool {
	out := map[vdom.InstanceID]bool{}
	vdom.WalkPreorder(root, func(n *vdom.Instance) { out[n.ID] = true })
	return out
}

// enqueueFrame appends a finished drawlist to the backpressure queue,
// dropping the oldest entry once more than maxPendingFrames are queued so
// the most recent frame is always kept (§4.I).
func (rt *Runtime) enqueueFrame(data []byte) {
	rt.pending = append(rt.pending, data)
	if len(rt.pending) > maxPendingFrames {
		rt.pending = rt.pending[len(rt.pending)-maxPendingFrames:]
	}
}

// flushPending submits queued frames to the backend in order, stopping and
// re-queueing the remainder if the backend is not draining.
func (rt *Runtime) flushPending() error {
	for len(rt.pending) > 0 {
		data := rt.pending[0]
		done, err := rt.Backend.RequestFrame(data)
		if err != nil {
			return err
		}
		rt.pending = rt.pending[1:]
		if done != nil {
			<-done
		}
	}
	return nil
}

// HandleEvent applies focus/keybinding semantics for one decoded input
// event (§4.I). root is the most recently rendered layout tree.
func (rt *Runtime) HandleEvent(root *layout.Node, ev input.Event) (activatedID string) {
	switch ev.Kind {
	case input.KindKey:
		if ev.Key == input.KeyTab {
			rt.Focus.Tab(ev.Mod&input.ModShift == 0)
		}
	case input.KindMouse:
		switch ev.MouseKind {
		case input.MouseDown:
			rt.Focus.OnMouseDown(root, ev)
		case input.MouseUp:
			activatedID = rt.Focus.OnMouseUp(root, ev)
			rt.lastActivated = activatedID
			return activatedID
		}
	case input.KindResize:
		rt.ViewportW, rt.ViewportH = ev.Cols, ev.Rows
		rt.RequestForceRender()
	}
	return ""
}
