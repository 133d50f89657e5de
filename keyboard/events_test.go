package keyboard

import (
	"testing"
	"time"
)

func TestConfigDragTimeoutDefaultsWhenZero(t *testing.T) {
	var c Config
	if got := c.dragTimeout(); got != DragCompletionTimeout {
		t.Fatalf("got %v, want default %v", got, DragCompletionTimeout)
	}
}

func TestConfigDragTimeoutOverride(t *testing.T) {
	c := Config{DragTimeout: 5 * time.Second}
	if got := c.dragTimeout(); got != 5*time.Second {
		t.Fatalf("got %v, want override 5s", got)
	}
}

func TestConfigFlushTimeoutDefaultsWhenZero(t *testing.T) {
	var c Config
	if got := c.flushTimeout(); got != FlushTimeout {
		t.Fatalf("got %v, want default %v", got, FlushTimeout)
	}
}

func TestConfigFlushTimeoutOverride(t *testing.T) {
	c := Config{FlushTimeout: 250 * time.Millisecond}
	if got := c.flushTimeout(); got != 250*time.Millisecond {
		t.Fatalf("got %v, want override 250ms", got)
	}
}
