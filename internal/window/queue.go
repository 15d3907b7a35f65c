package window

import "github.com/gogpu/framepace"

// eventQueue orders window notifications for delivery: callbacks append
// resize and close events, RequestRedraw sets a pending redraw that is
// delivered only after queued events.
type eventQueue struct {
	events []framepace.Event
	redraw bool
	closed bool
}

func (q *eventQueue) push(ev framepace.Event) {
	if q.closed {
		return
	}
	// Only the latest size matters between two deliveries.
	if ev.Kind == framepace.EventResize && len(q.events) > 0 {
		if last := &q.events[len(q.events)-1]; last.Kind == framepace.EventResize {
			*last = ev
			return
		}
	}
	q.events = append(q.events, ev)
}

func (q *eventQueue) requestRedraw() {
	if !q.closed {
		q.redraw = true
	}
}

// pop returns the next deliverable event. After a close event has been
// delivered nothing else is.
func (q *eventQueue) pop() (framepace.Event, bool) {
	if q.closed {
		return framepace.Event{}, false
	}
	if len(q.events) > 0 {
		ev := q.events[0]
		q.events = q.events[1:]
		if ev.Kind == framepace.EventClose {
			q.closed = true
			q.events = nil
			q.redraw = false
		}
		return ev, true
	}
	if q.redraw {
		q.redraw = false
		return framepace.RedrawEvent(), true
	}
	return framepace.Event{}, false
}
