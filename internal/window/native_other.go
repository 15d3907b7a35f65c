//go:build (linux && wayland) || !(linux || windows || darwin)

package window

// NativeHandles is not implemented on this platform; surface creation
// fails and the headless command must be used instead.
func (w *Window) NativeHandles() (display, window uintptr) {
	return 0, 0
}
