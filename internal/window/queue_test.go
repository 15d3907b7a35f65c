package window

import (
	"testing"

	"github.com/gogpu/framepace"
)

func drain(q *eventQueue) []framepace.Event {
	var out []framepace.Event
	for {
		ev, ok := q.pop()
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

func TestEventQueueOrder(t *testing.T) {
	var q eventQueue
	q.requestRedraw()
	q.push(framepace.ResizeEvent(10, 20))

	got := drain(&q)
	want := []framepace.Event{framepace.ResizeEvent(10, 20), framepace.RedrawEvent()}
	if len(got) != len(want) {
		t.Fatalf("events = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEventQueueRedrawOnlyWhenRequested(t *testing.T) {
	var q eventQueue
	if _, ok := q.pop(); ok {
		t.Fatal("pop() on empty queue returned an event")
	}
	q.requestRedraw()
	q.requestRedraw()
	if got := drain(&q); len(got) != 1 {
		t.Errorf("coalesced redraws delivered %d events, want 1", len(got))
	}
}

func TestEventQueueCoalescesResizes(t *testing.T) {
	var q eventQueue
	q.push(framepace.ResizeEvent(1, 1))
	q.push(framepace.ResizeEvent(2, 2))
	q.push(framepace.ResizeEvent(0, 0))

	got := drain(&q)
	if len(got) != 1 || got[0] != framepace.ResizeEvent(0, 0) {
		t.Errorf("events = %+v, want a single 0x0 resize", got)
	}
}

func TestEventQueueCloseIsTerminal(t *testing.T) {
	var q eventQueue
	q.push(framepace.ResizeEvent(5, 5))
	q.push(framepace.CloseEvent())
	q.push(framepace.ResizeEvent(6, 6))
	q.requestRedraw()

	got := drain(&q)
	if len(got) != 2 || got[1].Kind != framepace.EventClose {
		t.Fatalf("events = %+v, want resize then close", got)
	}
	q.push(framepace.ResizeEvent(7, 7))
	q.requestRedraw()
	if ev, ok := q.pop(); ok {
		t.Errorf("pop() after close = %+v", ev)
	}
}
