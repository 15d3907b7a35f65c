//go:build darwin

package window

// NativeHandles returns the NSWindow for surface creation.
func (w *Window) NativeHandles() (display, window uintptr) {
	return 0, uintptr(w.win.GetCocoaWindow())
}
