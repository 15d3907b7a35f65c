package framepace

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// drainTimeout bounds the wait for in-flight submissions in Destroy.
const drainTimeout = 2 * time.Second

// drainPoll is the PollCompleted interval while draining.
const drainPoll = time.Millisecond

// Program is a pre-built renderable program bound by the Presenter for
// its single draw.
type Program interface {
	Pipeline() hal.RenderPipeline
}

// inflight holds per-frame GPU objects that may still be referenced by a
// submission until the queue reports index as completed.
type inflight struct {
	view   hal.TextureView
	cmdBuf hal.CommandBuffer
	index  uint64
}

// Presenter executes render cycles: acquire a target, record one render
// pass that clears it and draws 3 vertices with 1 instance, submit, present.
//
// Submissions are ordered by call order; the Presenter never waits for the
// GPU inside a cycle. Per-frame objects are reclaimed once
// hal.Queue.PollCompleted passes their submission index.
type Presenter struct {
	device  hal.Device
	queue   hal.Queue
	program Program
	clear   gputypes.Color

	submitted    uint64
	pending      []inflight
	drainTimeout time.Duration
	destroyed    bool
}

// NewPresenter creates a presenter that records into device and submits
// to queue. The presenter does not own program.
func NewPresenter(device hal.Device, queue hal.Queue, program Program, opts ...Option) (*Presenter, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("presenter: device and queue are required")
	}
	if program == nil {
		return nil, fmt.Errorf("presenter: program is required")
	}
	o := applyOptions(opts)
	return &Presenter{
		device:       device,
		queue:        queue,
		program:      program,
		clear:        o.clearColor,
		drainTimeout: drainTimeout,
	}, nil
}

// RenderCycle runs one acquire -> record -> submit -> present cycle and
// notifies fc on success.
//
// An acquisition failure is returned unchanged and nothing else runs. A
// failure after acquisition discards the target before returning.
func (p *Presenter) RenderCycle(sm *SurfaceManager, fc *FrameCounter) error {
	p.reclaim()

	target, err := sm.Acquire()
	if err != nil {
		return err
	}

	index, err := p.encodeSubmit(target)
	if err != nil {
		sm.Discard(target)
		return err
	}
	sm.MarkSubmitted(target, index)

	if err := sm.Present(target); err != nil {
		return err
	}

	fc.Update()
	return nil
}

func (p *Presenter) encodeSubmit(target *PresentableTarget) (uint64, error) {
	view, err := p.device.CreateTextureView(target.Texture(), &hal.TextureViewDescriptor{
		Label: "framepace_target_view",
	})
	if err != nil {
		return 0, fmt.Errorf("create target view: %w", err)
	}

	cmdBuf, err := p.record(view)
	if err != nil {
		p.device.DestroyTextureView(view)
		return 0, err
	}

	index, err := p.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		p.device.FreeCommandBuffer(cmdBuf)
		p.device.DestroyTextureView(view)
		return 0, fmt.Errorf("submit: %w", err)
	}
	p.submitted++
	p.pending = append(p.pending, inflight{view: view, cmdBuf: cmdBuf, index: index})
	return index, nil
}

func (p *Presenter) record(view hal.TextureView) (hal.CommandBuffer, error) {
	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "framepace_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("framepace_frame"); err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "framepace_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: p.clear,
		}},
	})
	rp.SetPipeline(p.program.Pipeline())
	rp.Draw(3, 1, 0, 0)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	return cmdBuf, nil
}

// reclaim frees per-frame objects whose submissions have completed.
// It does not block.
func (p *Presenter) reclaim() {
	if len(p.pending) == 0 {
		return
	}
	completed := p.queue.PollCompleted()
	n := 0
	for _, f := range p.pending {
		if f.index > completed {
			break
		}
		p.free(f)
		n++
	}
	p.pending = p.pending[n:]
}

func (p *Presenter) free(f inflight) {
	p.device.FreeCommandBuffer(f.cmdBuf)
	p.device.DestroyTextureView(f.view)
}

// drain polls the queue until the last pending submission completes or
// timeout elapses.
func (p *Presenter) drain(timeout time.Duration) bool {
	last := p.pending[len(p.pending)-1].index
	deadline := time.Now().Add(timeout)
	for p.queue.PollCompleted() < last {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(drainPoll)
	}
	return true
}

// Submitted returns the number of command submissions issued so far.
func (p *Presenter) Submitted() uint64 { return p.submitted }

// InFlight returns the number of submissions whose per-frame objects have
// not been reclaimed yet.
func (p *Presenter) InFlight() int { return len(p.pending) }

// Destroy waits (bounded) for the last submission, then frees all
// per-frame objects. If the queue does not drain in time it falls back to
// waiting for the device to go idle. Safe to call more than once.
func (p *Presenter) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	if len(p.pending) == 0 {
		return
	}
	if !p.drain(p.drainTimeout) {
		Logger().Warn("presenter: queue did not drain before destroy, waiting for idle",
			"pending", len(p.pending), "timeout", p.drainTimeout)
		if err := p.device.WaitIdle(); err != nil {
			Logger().Warn("presenter: wait idle failed", "err", err)
		}
	}
	for _, f := range p.pending {
		p.free(f)
	}
	p.pending = nil
}
