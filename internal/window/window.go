// Package window provides a GLFW window without a client API that serves
// as the framepace.EventSource for the presentation loop.
//
// GLFW must be driven from the main OS thread: the program calls
// runtime.LockOSThread in init and runs the loop on the main goroutine.
package window

import (
	"context"
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/framepace"
)

// waitTimeout bounds each blocking wait so context cancellation is noticed.
const waitTimeout = 0.1 // seconds

// Window is a native window and its event queue.
type Window struct {
	win   *glfw.Window
	queue eventQueue
}

var _ framepace.EventSource = (*Window)(nil)

// New initializes GLFW and opens a resizable window of width x height.
func New(width, height int, title string) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("window: failed to initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window: could not create window: %w", err)
	}

	w := &Window{win: win}
	win.SetFramebufferSizeCallback(w.onFramebufferSize)
	win.SetCloseCallback(w.onClose)
	win.SetKeyCallback(w.onKey)
	return w, nil
}

func (w *Window) onFramebufferSize(_ *glfw.Window, width, height int) {
	w.queue.push(framepace.ResizeEvent(uint32(max(width, 0)), uint32(max(height, 0))))
}

func (w *Window) onClose(*glfw.Window) {
	w.queue.push(framepace.CloseEvent())
}

func (w *Window) onKey(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		win.SetShouldClose(true)
		w.queue.push(framepace.CloseEvent())
	}
}

// Next blocks until a notification is available or ctx is done.
// Pending window system events are processed before a redraw is delivered.
func (w *Window) Next(ctx context.Context) (framepace.Event, error) {
	for {
		if w.queue.closed {
			return framepace.Event{}, framepace.ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return framepace.Event{}, err
		}

		glfw.PollEvents()
		if ev, ok := w.queue.pop(); ok {
			return ev, nil
		}
		glfw.WaitEventsTimeout(waitTimeout)
	}
}

// RequestRedraw schedules one redraw notification and wakes the event wait.
func (w *Window) RequestRedraw() {
	w.queue.requestRedraw()
	glfw.PostEmptyEvent()
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.win.SetTitle(title)
}

// FramebufferSize returns the drawable size in pixels.
func (w *Window) FramebufferSize() (uint32, uint32) {
	width, height := w.win.GetFramebufferSize()
	return uint32(max(width, 0)), uint32(max(height, 0))
}

// Destroy closes the window and terminates GLFW. Safe to call more than once.
func (w *Window) Destroy() {
	if w.win == nil {
		return
	}
	w.win.Destroy()
	w.win = nil
	glfw.Terminate()
}
