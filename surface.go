package framepace

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// PresentMode controls how presented targets are queued for display.
type PresentMode uint8

const (
	// PresentModeFifo waits for vertical blank; always supported.
	PresentModeFifo PresentMode = iota

	// PresentModeFifoRelaxed waits for vertical blank unless the previous
	// frame was late, in which case it presents immediately.
	PresentModeFifoRelaxed

	// PresentModeMailbox replaces the queued target with the newest one.
	PresentModeMailbox

	// PresentModeImmediate presents without waiting; may tear.
	PresentModeImmediate
)

// String returns the lower-case present mode name.
func (m PresentMode) String() string {
	switch m {
	case PresentModeFifo:
		return "fifo"
	case PresentModeFifoRelaxed:
		return "fifo-relaxed"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeImmediate:
		return "immediate"
	default:
		return fmt.Sprintf("PresentMode(%d)", uint8(m))
	}
}

// ParsePresentMode converts a name produced by PresentMode.String back
// into a PresentMode.
func ParsePresentMode(s string) (PresentMode, error) {
	for m := PresentModeFifo; m <= PresentModeImmediate; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return PresentModeFifo, fmt.Errorf("framepace: unknown present mode %q", s)
}

// SurfaceConfig is the live configuration of the output surface.
// Width and Height are never zero.
type SurfaceConfig struct {
	Width       uint32
	Height      uint32
	Format      gputypes.TextureFormat
	PresentMode PresentMode
}

// SurfaceCapabilities lists what a surface supports on the selected adapter.
type SurfaceCapabilities struct {
	Formats      []gputypes.TextureFormat
	PresentModes []PresentMode
}

// SurfaceTexture is one texture acquired from a Surface.
type SurfaceTexture interface {
	// Texture returns the texture to render into.
	Texture() hal.Texture
}

// Surface is the platform drawable a SurfaceManager configures and
// acquires targets from.
//
// Implementations report stale or invalidated configurations as
// ErrSurfaceLost and an unusable device as ErrDeviceLost.
type Surface interface {
	Configure(cfg SurfaceConfig) error
	Acquire() (SurfaceTexture, error)
	Present(tex SurfaceTexture) error
	Discard(tex SurfaceTexture)
	Unconfigure()
}

// SubmissionTracker is implemented by surfaces that own their textures.
// Submitted reports the queue submission index of the last work rendering
// into tex; the surface must not reuse or destroy tex before
// hal.Queue.PollCompleted reaches that index.
type SubmissionTracker interface {
	Submitted(tex SurfaceTexture, index uint64)
}

// PresentableTarget is a texture acquired for a single render cycle.
// It must be presented or discarded through the SurfaceManager that
// produced it; afterwards the handle is invalid.
type PresentableTarget struct {
	tex      SurfaceTexture
	config   SurfaceConfig
	released bool
}

// Texture returns the texture to render into.
func (t *PresentableTarget) Texture() hal.Texture { return t.tex.Texture() }

// Config returns the surface configuration the target was acquired against.
func (t *PresentableTarget) Config() SurfaceConfig { return t.config }

// Valid reports whether the target has been neither presented nor discarded.
func (t *PresentableTarget) Valid() bool { return t != nil && !t.released }

// SurfaceManager owns the surface configuration and the single
// outstanding presentable target.
//
// SurfaceManager is not safe for concurrent use. Resize notifications and
// render cycles must be delivered on the same goroutine.
type SurfaceManager struct {
	surface Surface

	preferredFormat gputypes.TextureFormat
	presentMode     PresentMode

	config      SurfaceConfig
	initialized bool
	applied     bool
	outstanding *PresentableTarget
}

// NewSurfaceManager creates a manager for surface. Call Initialize before
// acquiring targets.
func NewSurfaceManager(surface Surface, opts ...Option) *SurfaceManager {
	o := applyOptions(opts)
	return &SurfaceManager{
		surface:         surface,
		preferredFormat: o.preferredFormat,
		presentMode:     o.presentMode,
	}
}

// Initialize selects a format and present mode from caps, clamps the
// requested size to at least 1x1 and applies the configuration.
//
// It fails with ErrNoCompatibleConfig when caps lists no formats.
func (sm *SurfaceManager) Initialize(caps SurfaceCapabilities, width, height uint32) (SurfaceConfig, error) {
	if len(caps.Formats) == 0 {
		return SurfaceConfig{}, ErrNoCompatibleConfig
	}

	format := caps.Formats[0]
	if sm.preferredFormat != gputypes.TextureFormatUndefined && slices.Contains(caps.Formats, sm.preferredFormat) {
		format = sm.preferredFormat
	}

	mode := PresentModeFifo
	if slices.Contains(caps.PresentModes, sm.presentMode) {
		mode = sm.presentMode
	} else if sm.presentMode != PresentModeFifo {
		Logger().Warn("present mode not supported, using fifo", "requested", sm.presentMode)
	}

	w, h := clampSize(width, height)
	sm.config = SurfaceConfig{Width: w, Height: h, Format: format, PresentMode: mode}
	sm.initialized = true
	if err := sm.apply(); err != nil {
		return sm.config, err
	}
	Logger().Info("surface configured",
		"width", w, "height", h, "format", format, "present_mode", mode)
	return sm.config, nil
}

// Reconfigure clamps the new size to at least 1x1, stores it and
// re-applies the configuration. Calling it again with the same size while
// the applied configuration is still valid is a no-op.
//
// Reconfigure must run before the next Acquire after a resize.
func (sm *SurfaceManager) Reconfigure(width, height uint32) error {
	if !sm.initialized {
		return ErrNotInitialized
	}
	w, h := clampSize(width, height)
	if sm.applied && w == sm.config.Width && h == sm.config.Height {
		Logger().Debug("surface reconfigure skipped", "width", w, "height", h)
		return nil
	}
	sm.config.Width, sm.config.Height = w, h
	return sm.apply()
}

// Refresh re-applies the last known configuration unconditionally.
// Used to recover from ErrSurfaceLost.
func (sm *SurfaceManager) Refresh() error {
	if !sm.initialized {
		return ErrNotInitialized
	}
	return sm.apply()
}

func (sm *SurfaceManager) apply() error {
	if sm.outstanding != nil {
		Logger().Warn("discarding outstanding target before reconfigure")
		sm.Discard(sm.outstanding)
	}
	sm.applied = false
	if err := sm.surface.Configure(sm.config); err != nil {
		return fmt.Errorf("configure surface %dx%d: %w", sm.config.Width, sm.config.Height, err)
	}
	sm.applied = true
	return nil
}

// Config returns the stored surface configuration.
func (sm *SurfaceManager) Config() SurfaceConfig { return sm.config }

// Outstanding returns the target acquired but not yet released, or nil.
func (sm *SurfaceManager) Outstanding() *PresentableTarget { return sm.outstanding }

// Acquire requests the next target from the surface.
//
// Only one target may be outstanding. A stale or invalidated surface yields
// an error matching ErrSurfaceLost; an unusable device yields ErrDeviceLost.
// ErrNotReady means no texture is free yet and the configuration is intact.
func (sm *SurfaceManager) Acquire() (*PresentableTarget, error) {
	if !sm.initialized {
		return nil, ErrNotInitialized
	}
	if sm.outstanding != nil {
		return nil, ErrTargetOutstanding
	}

	tex, err := sm.surface.Acquire()
	if err != nil {
		return nil, sm.classify(err)
	}
	t := &PresentableTarget{tex: tex, config: sm.config}
	sm.outstanding = t
	return t, nil
}

func (sm *SurfaceManager) classify(err error) error {
	switch {
	case errors.Is(err, ErrDeviceLost):
		return fmt.Errorf("acquire: %w", err)
	case errors.Is(err, ErrNotReady):
		return fmt.Errorf("acquire: %w", err)
	case errors.Is(err, ErrSurfaceLost):
		sm.applied = false
		return fmt.Errorf("acquire: %w", err)
	default:
		sm.applied = false
		return fmt.Errorf("acquire: %w: %w", ErrSurfaceLost, err)
	}
}

// MarkSubmitted records that GPU work rendering into t was submitted with
// the given queue submission index.
func (sm *SurfaceManager) MarkSubmitted(t *PresentableTarget, index uint64) {
	if st, ok := sm.surface.(SubmissionTracker); ok && t.Valid() {
		st.Submitted(t.tex, index)
	}
}

// Present hands t back to the platform for display.
// The target is released even if presentation fails.
func (sm *SurfaceManager) Present(t *PresentableTarget) error {
	if !t.Valid() {
		return ErrTargetReleased
	}
	sm.release(t)
	if err := sm.surface.Present(t.tex); err != nil {
		if errors.Is(err, ErrDeviceLost) {
			return fmt.Errorf("present: %w", err)
		}
		sm.applied = false
		if errors.Is(err, ErrSurfaceLost) {
			return fmt.Errorf("present: %w", err)
		}
		return fmt.Errorf("present: %w: %w", ErrSurfaceLost, err)
	}
	return nil
}

// Discard drops t without presenting it. Discarding a released target is a no-op.
func (sm *SurfaceManager) Discard(t *PresentableTarget) {
	if !t.Valid() {
		return
	}
	sm.release(t)
	sm.surface.Discard(t.tex)
}

func (sm *SurfaceManager) release(t *PresentableTarget) {
	t.released = true
	if sm.outstanding == t {
		sm.outstanding = nil
	}
}

// Release discards any outstanding target and detaches the configuration
// from the surface. The manager must be initialized again before reuse.
func (sm *SurfaceManager) Release() {
	if sm.outstanding != nil {
		Logger().Info("discarding outstanding target on release")
		sm.Discard(sm.outstanding)
	}
	if sm.initialized {
		sm.surface.Unconfigure()
	}
	sm.initialized = false
	sm.applied = false
}

func clampSize(width, height uint32) (uint32, uint32) {
	return max(width, 1), max(height, 1)
}
