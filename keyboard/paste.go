package keyboard

// pasteFramer accumulates the payload of an active bracketed paste, watching
// for the end marker one byte at a time. The start marker is recognised
// upstream by kittyParser (it is itself an ESC-prefixed sequence and shares
// that buffer, per the teacher's escBuffer doing the same inline check);
// once the router sees outcomePasteStart it begins feeding bytes here.
//
// Because bytes are fed one at a time regardless of read-chunk boundaries,
// a marker straddling a chunk boundary is recognised automatically: there is
// no separate tail buffer to maintain, since the accumulator itself always
// holds the most recent bytes.
type pasteFramer struct {
	acc []byte
}

func newPasteFramer() *pasteFramer {
	return &pasteFramer{}
}

// begin resets the accumulator at the start of a new paste.
func (f *pasteFramer) begin() {
	f.acc = f.acc[:0]
}

// feedByte appends b to the paste payload. done is true once the end marker
// has been matched, in which case event carries the full accumulated
// payload verbatim (end marker stripped) and the accumulator is cleared.
func (f *pasteFramer) feedByte(b byte) (done bool, event KeyEvent) {
	f.acc = append(f.acc, b)
	if len(f.acc) >= len(pasteEndMarker) {
		tail := f.acc[len(f.acc)-len(pasteEndMarker):]
		if string(tail) == pasteEndMarker {
			content := f.acc[:len(f.acc)-len(pasteEndMarker)]
			event = KeyEvent{Paste: true, Sequence: string(content)}
			f.acc = nil
			return true, event
		}
	}
	return false, KeyEvent{}
}
