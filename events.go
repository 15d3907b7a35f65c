package framepace

import (
	"context"
	"fmt"
)

// EventKind identifies a window notification.
type EventKind uint8

const (
	// EventRedraw asks for the next frame. Delivered only after RequestRedraw.
	EventRedraw EventKind = iota

	// EventResize reports a new drawable size. Either dimension may be 0
	// while the window is minimized.
	EventResize

	// EventClose asks the loop to terminate.
	EventClose
)

func (k EventKind) String() string {
	switch k {
	case EventRedraw:
		return "redraw"
	case EventResize:
		return "resize"
	case EventClose:
		return "close"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is a notification from the window system.
type Event struct {
	Kind   EventKind
	Width  uint32
	Height uint32
}

// RedrawEvent returns a redraw-requested notification.
func RedrawEvent() Event { return Event{Kind: EventRedraw} }

// ResizeEvent returns a resize notification for a width x height drawable.
func ResizeEvent(width, height uint32) Event {
	return Event{Kind: EventResize, Width: width, Height: height}
}

// CloseEvent returns a close-requested notification.
func CloseEvent() Event { return Event{Kind: EventClose} }

// EventSource delivers an ordered stream of window notifications to a
// single consumer.
//
// Next blocks until a notification is available, ctx is done, or the
// source is closed (ErrClosed). Redraw notifications are not repeated
// implicitly: the consumer must call RequestRedraw after handling one.
type EventSource interface {
	Next(ctx context.Context) (Event, error)
	RequestRedraw()
	SetTitle(title string)
}
