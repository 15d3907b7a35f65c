package framepace

import "errors"

// Errors returned by the presentation loop.
//
// Failures fall in four classes: fatal initialization errors
// (ErrNoCompatibleConfig, ErrNoAdapter), recoverable surface errors
// (ErrSurfaceLost), fatal device errors (ErrDeviceLost) and protocol misuse
// (ErrTargetOutstanding, ErrTargetReleased, ErrNotInitialized).
// A throttled redraw is not an error, and neither is ErrNotReady once the
// scheduler has turned it into a skipped cycle.
var (
	// ErrNoAdapter is returned when no GPU adapter can be opened.
	ErrNoAdapter = errors.New("framepace: no compatible GPU adapter")

	// ErrNoCompatibleConfig is returned when the surface reports no
	// usable format for the selected adapter.
	ErrNoCompatibleConfig = errors.New("framepace: no compatible surface configuration")

	// ErrNotInitialized is returned when the surface is used before Initialize.
	ErrNotInitialized = errors.New("framepace: surface not initialized")

	// ErrSurfaceLost is returned when the surface configuration is stale or
	// the surface was invalidated. Reconfigure and retry.
	ErrSurfaceLost = errors.New("framepace: surface lost")

	// ErrNotReady is returned by Acquire when no texture is available yet.
	// The cycle is skipped; the surface stays valid.
	ErrNotReady = errors.New("framepace: surface texture not ready")

	// ErrDeviceLost is returned when the underlying device is gone.
	ErrDeviceLost = errors.New("framepace: device lost")

	// ErrTargetOutstanding is returned by Acquire while a previously acquired
	// target has been neither presented nor discarded.
	ErrTargetOutstanding = errors.New("framepace: presentable target already outstanding")

	// ErrTargetReleased is returned when a presented or discarded target is reused.
	ErrTargetReleased = errors.New("framepace: presentable target already released")

	// ErrClosed is returned by an event source after it has been closed.
	ErrClosed = errors.New("framepace: event source closed")
)

// IsRecoverable reports whether err can be handled by reconfiguring the
// surface and retrying the cycle.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrSurfaceLost) && !errors.Is(err, ErrDeviceLost)
}

// IsThrottled reports whether err only means the cycle should be skipped.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrNotReady) && !errors.Is(err, ErrDeviceLost)
}

// IsFatal reports whether err must terminate the loop.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDeviceLost) ||
		errors.Is(err, ErrNoAdapter) ||
		errors.Is(err, ErrNoCompatibleConfig)
}
