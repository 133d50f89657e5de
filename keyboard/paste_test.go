package keyboard

import "testing"

func TestPasteFramerAccumulatesUntilEndMarker(t *testing.T) {
	f := newPasteFramer()
	f.begin()

	var final KeyEvent
	var done bool
	for _, b := range []byte("hello" + pasteEndMarker) {
		done, final = f.feedByte(b)
		if done {
			break
		}
	}
	if !done {
		t.Fatal("expected paste to complete once the end marker is fed")
	}
	if final.Sequence != "hello" || !final.Paste {
		t.Fatalf("got %+v, want {paste:true sequence:hello}", final)
	}
}

func TestPasteFramerPreservesNewlinesVerbatim(t *testing.T) {
	f := newPasteFramer()
	f.begin()

	payload := "line one\nline two\r\nline three"
	var final KeyEvent
	for _, b := range []byte(payload + pasteEndMarker) {
		if done, event := f.feedByte(b); done {
			final = event
			break
		}
	}
	if final.Sequence != payload {
		t.Fatalf("got sequence %q, want %q verbatim", final.Sequence, payload)
	}
}

func TestPasteFramerResetsAfterCompletion(t *testing.T) {
	f := newPasteFramer()
	f.begin()
	for _, b := range []byte("first" + pasteEndMarker) {
		f.feedByte(b)
	}

	f.begin()
	var final KeyEvent
	for _, b := range []byte("second" + pasteEndMarker) {
		if done, event := f.feedByte(b); done {
			final = event
			break
		}
	}
	if final.Sequence != "second" {
		t.Fatalf("got %q, want accumulator reset to just the second paste's content", final.Sequence)
	}
}
