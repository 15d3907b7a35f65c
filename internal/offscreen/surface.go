// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package offscreen provides a headless framepace.Surface: a small ring of
// device textures created with render-attachment usage and recycled on
// present or discard. Nothing is displayed.
//
// A texture is handed out again, or destroyed, only once the queue reports
// the last submission rendering into it as completed.
package offscreen

import (
	"fmt"
	"math"

	"github.com/gogpu/framepace"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DefaultBuffers is the ring size used when WithBuffers is not given.
const DefaultBuffers = 2

// Surface is a framepace.Surface backed by device textures.
//
// Surface is not safe for concurrent use.
type Surface struct {
	device  hal.Device
	queue   hal.Queue
	buffers int
	formats []gputypes.TextureFormat

	cfg        framepace.SurfaceConfig
	configured bool
	stale      bool

	slots     []*slot
	next      int
	retired   []retiredTexture
	presented uint64
}

var (
	_ framepace.Surface           = (*Surface)(nil)
	_ framepace.SubmissionTracker = (*Surface)(nil)
)

type slot struct {
	index     int
	tex       hal.Texture
	inUse     bool
	busyUntil uint64
	parent    *Surface
}

func (s *slot) Texture() hal.Texture { return s.tex }

// retiredTexture is a texture from a previous configuration still
// referenced by submission after.
type retiredTexture struct {
	tex   hal.Texture
	after uint64
}

// Option configures New.
type Option func(*Surface)

// WithBuffers sets the number of textures in the ring. Values < 1 are ignored.
func WithBuffers(n int) Option {
	return func(s *Surface) {
		if n >= 1 {
			s.buffers = n
		}
	}
}

// WithFormats sets the formats reported by Capabilities, in preference order.
func WithFormats(formats ...gputypes.TextureFormat) Option {
	return func(s *Surface) {
		if len(formats) > 0 {
			s.formats = formats
		}
	}
}

// New creates an unconfigured offscreen surface on device. queue is the
// queue rendering into its textures; with a nil queue every submission is
// treated as complete.
func New(device hal.Device, queue hal.Queue, opts ...Option) *Surface {
	s := &Surface{
		device:  device,
		queue:   queue,
		buffers: DefaultBuffers,
		formats: []gputypes.TextureFormat{gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatRGBA8Unorm},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Capabilities reports the configured formats and every present mode;
// presentation is immediate regardless of mode.
func (s *Surface) Capabilities() framepace.SurfaceCapabilities {
	return framepace.SurfaceCapabilities{
		Formats: append([]gputypes.TextureFormat(nil), s.formats...),
		PresentModes: []framepace.PresentMode{
			framepace.PresentModeFifo,
			framepace.PresentModeFifoRelaxed,
			framepace.PresentModeMailbox,
			framepace.PresentModeImmediate,
		},
	}
}

// Configure (re)creates the texture ring for cfg. Textures of the previous
// ring that the GPU may still be using are retired, not destroyed.
func (s *Surface) Configure(cfg framepace.SurfaceConfig) error {
	s.retire()
	s.collect()

	slots := make([]*slot, 0, s.buffers)
	for i := range s.buffers {
		tex, err := s.device.CreateTexture(&hal.TextureDescriptor{
			Label:         fmt.Sprintf("framepace_offscreen_%d", i),
			Size:          hal.Extent3D{Width: cfg.Width, Height: cfg.Height, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        cfg.Format,
			Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
		})
		if err != nil {
			// Never submitted, safe to destroy now.
			for _, sl := range slots {
				s.device.DestroyTexture(sl.tex)
			}
			s.configured = false
			return fmt.Errorf("offscreen: create texture %d (%dx%d): %w", i, cfg.Width, cfg.Height, err)
		}
		slots = append(slots, &slot{index: i, tex: tex, parent: s})
	}

	s.slots = slots
	s.next = 0
	s.cfg = cfg
	s.configured = true
	s.stale = false
	return nil
}

// Acquire returns the next texture in the ring that is neither acquired
// nor still being rendered by the GPU. When every free texture is still
// busy it fails with framepace.ErrNotReady.
func (s *Surface) Acquire() (framepace.SurfaceTexture, error) {
	if !s.configured || s.stale {
		return nil, fmt.Errorf("offscreen: %w", framepace.ErrSurfaceLost)
	}
	s.collect()

	done := s.completed()
	busy := 0
	for range len(s.slots) {
		sl := s.slots[s.next]
		s.next = (s.next + 1) % len(s.slots)
		if sl.inUse {
			continue
		}
		if sl.busyUntil > done {
			busy++
			continue
		}
		sl.inUse = true
		return sl, nil
	}
	if busy > 0 {
		return nil, fmt.Errorf("offscreen: %d buffers awaiting GPU completion: %w", busy, framepace.ErrNotReady)
	}
	return nil, fmt.Errorf("offscreen: all %d buffers in use: %w", len(s.slots), framepace.ErrSurfaceLost)
}

// Submitted records that submission index renders into tex.
func (s *Surface) Submitted(tex framepace.SurfaceTexture, index uint64) {
	sl, ok := tex.(*slot)
	if !ok || sl.parent != s {
		return
	}
	sl.busyUntil = max(sl.busyUntil, index)
}

// Present recycles tex and counts it as displayed.
func (s *Surface) Present(tex framepace.SurfaceTexture) error {
	sl, err := s.own(tex)
	if err != nil {
		return err
	}
	sl.inUse = false
	s.presented++
	return nil
}

// Discard recycles tex without counting it.
func (s *Surface) Discard(tex framepace.SurfaceTexture) {
	if sl, err := s.own(tex); err == nil {
		sl.inUse = false
	}
}

func (s *Surface) own(tex framepace.SurfaceTexture) (*slot, error) {
	sl, ok := tex.(*slot)
	if !ok || sl.parent != s {
		return nil, fmt.Errorf("offscreen: foreign surface texture %T", tex)
	}
	if !sl.inUse {
		return nil, fmt.Errorf("offscreen: texture %d not acquired", sl.index)
	}
	return sl, nil
}

// Unconfigure destroys the texture ring. If the GPU may still be using any
// texture it waits for the device to go idle first.
func (s *Surface) Unconfigure() {
	s.retire()
	s.collect()
	if len(s.retired) > 0 {
		framepace.Logger().Debug("offscreen: waiting for GPU before releasing textures", "textures", len(s.retired))
		if err := s.device.WaitIdle(); err != nil {
			framepace.Logger().Warn("offscreen: wait idle failed", "err", err)
		}
		for _, r := range s.retired {
			s.device.DestroyTexture(r.tex)
		}
		s.retired = nil
	}
	s.configured = false
}

// Invalidate marks the configuration stale: Acquire fails with
// framepace.ErrSurfaceLost until the next Configure.
func (s *Surface) Invalidate() { s.stale = true }

// Config returns the last applied configuration.
func (s *Surface) Config() framepace.SurfaceConfig { return s.cfg }

// Presented returns the number of presented textures.
func (s *Surface) Presented() uint64 { return s.presented }

// InUse returns the number of acquired textures not yet returned.
func (s *Surface) InUse() int {
	n := 0
	for _, sl := range s.slots {
		if sl.inUse {
			n++
		}
	}
	return n
}

// Retired returns the number of textures from earlier configurations
// waiting for GPU completion.
func (s *Surface) Retired() int { return len(s.retired) }

func (s *Surface) completed() uint64 {
	if s.queue == nil {
		return math.MaxUint64
	}
	return s.queue.PollCompleted()
}

// retire detaches the current ring. Its textures join the retired list and
// are destroyed by collect once their last submission has completed.
func (s *Surface) retire() {
	for _, sl := range s.slots {
		s.retired = append(s.retired, retiredTexture{tex: sl.tex, after: sl.busyUntil})
		sl.parent = nil
	}
	s.slots = nil
}

func (s *Surface) collect() {
	if len(s.retired) == 0 {
		return
	}
	done := s.completed()
	n := 0
	for _, r := range s.retired {
		if r.after <= done {
			s.device.DestroyTexture(r.tex)
			continue
		}
		s.retired[n] = r
		n++
	}
	clear(s.retired[n:])
	s.retired = s.retired[:n]
}
