package framepace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// manualClock is a time source advanced explicitly by tests.
type manualClock struct {
	t time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time          { return c.t }
func (c *manualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeTexture is a SurfaceTexture with an identity for assertions.
type fakeTexture struct {
	id  int
	tex hal.Texture
}

func (f *fakeTexture) Texture() hal.Texture { return f.tex }

// fakeSurface records every call made by a SurfaceManager.
type fakeSurface struct {
	configs      []SurfaceConfig
	configureErr error
	acquireErrs  []error // consumed one per Acquire; nil entries succeed
	presentErr   error
	newTexture   func() hal.Texture

	acquired     int
	presented    []int
	discarded    []int
	unconfigured int
}

func (s *fakeSurface) Configure(cfg SurfaceConfig) error {
	if s.configureErr != nil {
		return s.configureErr
	}
	s.configs = append(s.configs, cfg)
	return nil
}

func (s *fakeSurface) Acquire() (SurfaceTexture, error) {
	if len(s.acquireErrs) > 0 {
		err := s.acquireErrs[0]
		s.acquireErrs = s.acquireErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	s.acquired++
	ft := &fakeTexture{id: s.acquired}
	if s.newTexture != nil {
		ft.tex = s.newTexture()
	}
	return ft, nil
}

func (s *fakeSurface) Present(tex SurfaceTexture) error {
	s.presented = append(s.presented, tex.(*fakeTexture).id)
	return s.presentErr
}

func (s *fakeSurface) Discard(tex SurfaceTexture) {
	s.discarded = append(s.discarded, tex.(*fakeTexture).id)
}

func (s *fakeSurface) Unconfigure() { s.unconfigured++ }

var testCaps = SurfaceCapabilities{
	Formats:      []gputypes.TextureFormat{gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatRGBA8Unorm},
	PresentModes: []PresentMode{PresentModeFifo, PresentModeMailbox},
}

// newTestManager returns an initialized 800x600 manager over a fakeSurface.
func newTestManager(t *testing.T, opts ...Option) (*SurfaceManager, *fakeSurface) {
	t.Helper()
	fs := &fakeSurface{}
	sm := NewSurfaceManager(fs, opts...)
	if _, err := sm.Initialize(testCaps, 800, 600); err != nil {
		t.Fatalf("Initialize() = %v", err)
	}
	return sm, fs
}

// scriptedEvent is delivered once the clock reaches at.
type scriptedEvent struct {
	at time.Duration
	ev Event
}

// scriptedSource replays events against a manual clock and returns
// ErrClosed when exhausted.
type scriptedSource struct {
	clock  *manualClock
	start  time.Time
	events []scriptedEvent

	redrawRequests int
	titles         []string
}

func newScriptedSource(clock *manualClock, events ...scriptedEvent) *scriptedSource {
	return &scriptedSource{clock: clock, start: clock.Now(), events: events}
}

func (s *scriptedSource) Next(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	if len(s.events) == 0 {
		return Event{}, ErrClosed
	}
	e := s.events[0]
	s.events = s.events[1:]
	if at := s.start.Add(e.at); at.After(s.clock.Now()) {
		s.clock.t = at
	}
	return e.ev, nil
}

func (s *scriptedSource) RequestRedraw()        { s.redrawRequests++ }
func (s *scriptedSource) SetTitle(title string) { s.titles = append(s.titles, title) }

// redrawsEvery returns n redraw events spaced by interval starting at 0.
func redrawsEvery(n int, interval time.Duration) []scriptedEvent {
	out := make([]scriptedEvent, n)
	for i := range out {
		out[i] = scriptedEvent{at: time.Duration(i) * interval, ev: RedrawEvent()}
	}
	return out
}

// stubRenderer runs the acquire/present protocol without a GPU and records
// the clock at every completed cycle.
type stubRenderer struct {
	clock *manualClock
	times []time.Time
}

func (r *stubRenderer) RenderCycle(sm *SurfaceManager, fc *FrameCounter) error {
	target, err := sm.Acquire()
	if err != nil {
		return err
	}
	if err := sm.Present(target); err != nil {
		return err
	}
	fc.Update()
	r.times = append(r.times, r.clock.Now())
	return nil
}

var errInjected = errors.New("injected failure")

// createNoopDevice creates a noop device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func newNoopTexture(t *testing.T, device hal.Device, w, h uint32) hal.Texture {
	t.Helper()
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "test_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	return tex
}

// recordingDevice wraps a hal.Device and captures the render passes
// recorded through it.
type recordingDevice struct {
	hal.Device
	passes    []*recordingPass
	failEnd   bool
	discarded int
}

func (d *recordingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &recordingEncoder{CommandEncoder: enc, dev: d}, nil
}

type recordingEncoder struct {
	hal.CommandEncoder
	dev *recordingDevice
}

func (e *recordingEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	rp := &recordingPass{RenderPassEncoder: e.CommandEncoder.BeginRenderPass(desc), desc: desc}
	e.dev.passes = append(e.dev.passes, rp)
	return rp
}

func (e *recordingEncoder) EndEncoding() (hal.CommandBuffer, error) {
	if e.dev.failEnd {
		return nil, errInjected
	}
	return e.CommandEncoder.EndEncoding()
}

func (e *recordingEncoder) DiscardEncoding() {
	e.dev.discarded++
	e.CommandEncoder.DiscardEncoding()
}

type recordingPass struct {
	hal.RenderPassEncoder
	desc        *hal.RenderPassDescriptor
	pipelineSet bool
	draws       [][4]uint32
	ended       bool
}

func (p *recordingPass) SetPipeline(hal.RenderPipeline) { p.pipelineSet = true }

func (p *recordingPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.draws = append(p.draws, [4]uint32{vertexCount, instanceCount, firstVertex, firstInstance})
	p.RenderPassEncoder.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *recordingPass) End() {
	p.ended = true
	p.RenderPassEncoder.End()
}

// recordingQueue wraps a hal.Queue and records submission indices.
// lag holds PollCompleted that many submissions behind the inner queue.
type recordingQueue struct {
	hal.Queue
	indices  []uint64
	failNext bool
	lag      uint64
}

func (q *recordingQueue) Submit(cmds []hal.CommandBuffer) (uint64, error) {
	if q.failNext {
		q.failNext = false
		return 0, errInjected
	}
	index, err := q.Queue.Submit(cmds)
	if err == nil {
		q.indices = append(q.indices, index)
	}
	return index, err
}

func (q *recordingQueue) PollCompleted() uint64 {
	c := q.Queue.PollCompleted()
	if c < q.lag {
		return 0
	}
	return c - q.lag
}

type stubProgram struct{}

func (stubProgram) Pipeline() hal.RenderPipeline { return nil }
