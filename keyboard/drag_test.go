package keyboard

import (
	"testing"
	"time"
)

func TestDragHeuristicAccumulatesAndExpires(t *testing.T) {
	d := newDragHeuristic(15 * time.Millisecond)
	d.begin('\'')
	for _, b := range []byte("path") {
		d.feedPlainByte(b)
	}

	select {
	case <-d.timerC():
	case <-time.After(2 * time.Second):
		t.Fatal("quiet timer never fired")
	}

	event := d.expire()
	if event.Sequence != "'path" || !event.Paste {
		t.Fatalf("got %+v, want {paste:true sequence:'path}", event)
	}
	if d.active {
		t.Fatal("expire must clear active state")
	}
}

func TestDragHeuristicResetsTimerOnActivity(t *testing.T) {
	d := newDragHeuristic(60 * time.Millisecond)
	d.begin('\'')

	// Keep feeding bytes at intervals shorter than the timeout so it never
	// naturally expires mid-accumulation.
	for i := 0; i < 3; i++ {
		time.Sleep(20 * time.Millisecond)
		select {
		case <-d.timerC():
			t.Fatal("timer fired before the quiet period actually elapsed")
		default:
		}
		d.feedPlainByte('x')
	}
}

func TestDragHeuristicInterruptFlushesAccumulator(t *testing.T) {
	d := newDragHeuristic(time.Hour)
	d.begin('\'')
	d.feedPlainByte('a')
	d.feedPlainByte('b')

	flushed := d.interrupt()
	if string(flushed) != "'ab" {
		t.Fatalf("got %q, want \"'ab\"", flushed)
	}
	if d.active {
		t.Fatal("interrupt must clear active state")
	}
	if d.timerC() != nil {
		t.Fatal("interrupt must stop the timer")
	}
}
