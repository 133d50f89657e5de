package keyboard

import "time"

// dragHeuristic recognises a drag-and-dropped file path delivered as a
// quoted run of plain characters with a brief pause at the end, rather than
// through bracketed-paste framing. New relative to the teacher (which has
// no drag-and-drop heuristic); modeled after the teacher's one-shot,
// reset-on-activity timer idiom used for its own escape-prefix timeout.
type dragHeuristic struct {
	timeout time.Duration

	active bool
	acc    []byte
	timer  *time.Timer
}

func newDragHeuristic(timeout time.Duration) *dragHeuristic {
	return &dragHeuristic{timeout: timeout}
}

// timerC returns the channel to select on for drag-completion expiry, or
// nil when no drag is in progress (a nil channel blocks forever in a
// select, which is exactly "not armed").
func (d *dragHeuristic) timerC() <-chan time.Time {
	if d.timer == nil {
		return nil
	}
	return d.timer.C
}

func (d *dragHeuristic) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// begin starts drag tracking on an opening quote byte. It is the caller's
// responsibility to only call this outside a paste region and with no
// kitty sequence in progress.
func (d *dragHeuristic) begin(quote byte) {
	d.active = true
	d.acc = append([]byte(nil), quote)
	d.stopTimer()
	d.timer = time.NewTimer(d.timeout)
}

// feedPlainByte appends a subsequent plain single-character byte and resets
// the quiet timer. Must only be called while active.
func (d *dragHeuristic) feedPlainByte(b byte) {
	d.acc = append(d.acc, b)
	d.stopTimer()
	d.timer = time.NewTimer(d.timeout)
}

// interrupt flushes the accumulator as an ordinary (non-paste) run and
// clears drag state, for when a record arrives that isn't a plain
// single-character keypress (a modifier, a function key, return).
func (d *dragHeuristic) interrupt() []byte {
	flushed := d.acc
	d.active = false
	d.acc = nil
	d.stopTimer()
	return flushed
}

// expire completes the drag on quiet-timer fire, producing the synthesized
// paste event. Must only be called after timerC() has fired.
func (d *dragHeuristic) expire() KeyEvent {
	event := KeyEvent{Paste: true, Sequence: string(d.acc)}
	d.active = false
	d.acc = nil
	d.timer = nil
	return event
}
