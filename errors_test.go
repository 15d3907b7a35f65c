package framepace

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		recoverable bool
		fatal       bool
		throttled   bool
	}{
		{"nil", nil, false, false, false},
		{"surface lost", ErrSurfaceLost, true, false, false},
		{"wrapped surface lost", fmt.Errorf("acquire: %w", ErrSurfaceLost), true, false, false},
		{"not ready", fmt.Errorf("acquire: %w", ErrNotReady), false, false, true},
		{"device lost", ErrDeviceLost, false, true, false},
		{"escalated", fmt.Errorf("%w: retry: %w", ErrDeviceLost, ErrSurfaceLost), false, true, false},
		{"no adapter", ErrNoAdapter, false, true, false},
		{"no config", ErrNoCompatibleConfig, false, true, false},
		{"misuse", ErrTargetOutstanding, false, false, false},
		{"other", errors.New("boom"), false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRecoverable(tt.err); got != tt.recoverable {
				t.Errorf("IsRecoverable() = %v, want %v", got, tt.recoverable)
			}
			if got := IsFatal(tt.err); got != tt.fatal {
				t.Errorf("IsFatal() = %v, want %v", got, tt.fatal)
			}
			if got := IsThrottled(tt.err); got != tt.throttled {
				t.Errorf("IsThrottled() = %v, want %v", got, tt.throttled)
			}
		})
	}
}

func TestEventConstructors(t *testing.T) {
	if ev := ResizeEvent(3, 4); ev.Kind != EventResize || ev.Width != 3 || ev.Height != 4 {
		t.Errorf("ResizeEvent(3, 4) = %+v", ev)
	}
	if RedrawEvent().Kind != EventRedraw || CloseEvent().Kind != EventClose {
		t.Error("event constructors return wrong kinds")
	}
	for k, want := range map[EventKind]string{EventRedraw: "redraw", EventResize: "resize", EventClose: "close", EventKind(7): "EventKind(7)"} {
		if got := k.String(); got != want {
			t.Errorf("EventKind(%d).String() = %q, want %q", uint8(k), got, want)
		}
	}
}
