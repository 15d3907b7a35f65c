// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package halsurface adapts a window system surface from the HAL to the
// framepace.Surface interface.
//
// Configure, acquire and discard go to the hal.Surface; present goes
// through the queue. HAL surface errors are translated to
// framepace.ErrSurfaceLost, framepace.ErrNotReady and framepace.ErrDeviceLost.
package halsurface

import (
	"errors"
	"fmt"

	"github.com/gogpu/framepace"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Surface is a framepace.Surface over a hal.Surface.
type Surface struct {
	surface hal.Surface
	device  hal.Device
	queue   hal.Queue

	configured bool
	owned      bool
}

var _ framepace.Surface = (*Surface)(nil)

// New creates a surface for a native window. display and window are the
// platform handles (for example the X11 Display* and Window).
func New(instance hal.Instance, device hal.Device, queue hal.Queue, display, window uintptr) (*Surface, error) {
	if instance == nil {
		return nil, fmt.Errorf("halsurface: no instance (shared devices must supply their own surface)")
	}
	s, err := instance.CreateSurface(display, window)
	if err != nil {
		return nil, fmt.Errorf("halsurface: create surface: %w", err)
	}
	out := Wrap(s, device, queue)
	out.owned = true
	return out, nil
}

// Wrap adapts an existing hal.Surface. The returned Surface does not
// destroy it.
func Wrap(surface hal.Surface, device hal.Device, queue hal.Queue) *Surface {
	return &Surface{surface: surface, device: device, queue: queue}
}

// Capabilities queries the formats and present modes adapter supports for
// this surface.
func (s *Surface) Capabilities(adapter hal.Adapter) framepace.SurfaceCapabilities {
	if adapter == nil {
		return framepace.SurfaceCapabilities{}
	}
	caps := adapter.SurfaceCapabilities(s.surface)
	if caps == nil {
		return framepace.SurfaceCapabilities{}
	}
	out := framepace.SurfaceCapabilities{
		Formats: append([]gputypes.TextureFormat(nil), caps.Formats...),
	}
	for _, m := range caps.PresentModes {
		if pm, ok := fromHALPresentMode(m); ok {
			out.PresentModes = append(out.PresentModes, pm)
		}
	}
	return out
}

// Configure applies cfg to the surface.
func (s *Surface) Configure(cfg framepace.SurfaceConfig) error {
	err := s.surface.Configure(s.device, &hal.SurfaceConfiguration{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      cfg.Format,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: toHALPresentMode(cfg.PresentMode),
		AlphaMode:   hal.CompositeAlphaModeOpaque,
	})
	if err != nil {
		return mapError(err)
	}
	s.configured = true
	return nil
}

// Acquire returns the next surface texture.
func (s *Surface) Acquire() (framepace.SurfaceTexture, error) {
	acquired, err := s.surface.AcquireTexture(nil)
	if err != nil {
		return nil, mapError(err)
	}
	if acquired == nil || acquired.Texture == nil {
		return nil, fmt.Errorf("%w: no texture acquired", framepace.ErrSurfaceLost)
	}
	if acquired.Suboptimal {
		framepace.Logger().Debug("halsurface: suboptimal surface texture")
	}
	return &texture{tex: acquired.Texture}, nil
}

// Present queues tex for display.
func (s *Surface) Present(tex framepace.SurfaceTexture) error {
	t, ok := tex.(*texture)
	if !ok {
		return fmt.Errorf("halsurface: foreign surface texture %T", tex)
	}
	if err := s.queue.Present(s.surface, t.tex, nil); err != nil {
		return mapError(err)
	}
	return nil
}

// Discard returns tex to the surface without presenting it.
func (s *Surface) Discard(tex framepace.SurfaceTexture) {
	if t, ok := tex.(*texture); ok {
		s.surface.DiscardTexture(t.tex)
	}
}

// Unconfigure detaches the configuration from the surface.
func (s *Surface) Unconfigure() {
	if !s.configured {
		return
	}
	s.surface.Unconfigure(s.device)
	s.configured = false
}

// Destroy unconfigures and, for surfaces created by New, destroys the
// HAL surface. Safe to call more than once.
func (s *Surface) Destroy() {
	if s.surface == nil {
		return
	}
	s.Unconfigure()
	if s.owned {
		s.surface.Destroy()
	}
	s.surface = nil
}

type texture struct {
	tex hal.SurfaceTexture
}

func (t *texture) Texture() hal.Texture { return t.tex }

// mapError translates HAL surface errors to framepace errors. Unknown
// errors are returned unchanged; SurfaceManager treats them as surface loss.
func mapError(err error) error {
	switch {
	case errors.Is(err, hal.ErrDeviceLost):
		return fmt.Errorf("%w: %w", framepace.ErrDeviceLost, err)
	case errors.Is(err, hal.ErrNotReady):
		return fmt.Errorf("%w: %w", framepace.ErrNotReady, err)
	case errors.Is(err, hal.ErrSurfaceLost),
		errors.Is(err, hal.ErrSurfaceOutdated),
		errors.Is(err, hal.ErrTimeout):
		return fmt.Errorf("%w: %w", framepace.ErrSurfaceLost, err)
	default:
		return err
	}
}

func toHALPresentMode(m framepace.PresentMode) hal.PresentMode {
	switch m {
	case framepace.PresentModeFifoRelaxed:
		return hal.PresentModeFifoRelaxed
	case framepace.PresentModeMailbox:
		return hal.PresentModeMailbox
	case framepace.PresentModeImmediate:
		return hal.PresentModeImmediate
	default:
		return hal.PresentModeFifo
	}
}

func fromHALPresentMode(m hal.PresentMode) (framepace.PresentMode, bool) {
	switch m {
	case hal.PresentModeFifo:
		return framepace.PresentModeFifo, true
	case hal.PresentModeFifoRelaxed:
		return framepace.PresentModeFifoRelaxed, true
	case hal.PresentModeMailbox:
		return framepace.PresentModeMailbox, true
	case hal.PresentModeImmediate:
		return framepace.PresentModeImmediate, true
	default:
		return 0, false
	}
}
