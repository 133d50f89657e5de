package keyboard

import "testing"

func decodeAll(d *legacyDecoder, bs []byte) []KeyEvent {
	var events []KeyEvent
	for _, b := range bs {
		events = append(events, d.decodeByte(b)...)
	}
	return events
}

func TestLegacyPrintableASCII(t *testing.T) {
	d := newLegacyDecoder(false)
	events := decodeAll(d, []byte("ab"))
	if len(events) != 2 || events[0].Name != "a" || events[1].Name != "b" {
		t.Fatalf("got %+v, want a then b", events)
	}
}

func TestLegacyCtrlCYieldsLowercaseCWithCtrl(t *testing.T) {
	d := newLegacyDecoder(false)
	events := decodeAll(d, []byte{0x03})
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	got := events[0]
	if got.Name != "c" || !got.Ctrl || got.Sequence != "\x03" {
		t.Fatalf("got %+v, want {name:c ctrl:true sequence:\\x03}", got)
	}
}

func TestLegacyNamedControlKeys(t *testing.T) {
	d := newLegacyDecoder(false)
	cases := map[byte]string{
		8: "backspace", 9: "tab", 13: "return", 27: "escape", 127: "backspace",
	}
	for b, want := range cases {
		events := decodeAll(d, []byte{b})
		if len(events) != 1 || events[0].Name != want {
			t.Fatalf("byte %d: got %+v, want name %q", b, events, want)
		}
		if events[0].Ctrl {
			t.Fatalf("byte %d: dedicated control key must not carry Ctrl:true, got %+v", b, events[0])
		}
	}
}

func TestLegacyUTF8MultiByteRune(t *testing.T) {
	d := newLegacyDecoder(false)
	// "é" = 0xC3 0xA9
	events := decodeAll(d, []byte{0xC3, 0xA9})
	if len(events) != 1 || events[0].Name != "é" || events[0].Sequence != "é" {
		t.Fatalf("got %+v, want single é event", events)
	}
}

func TestLegacyInvalidUTF8ContinuationFlushesAndReprocesses(t *testing.T) {
	d := newLegacyDecoder(false)
	// 0xC3 opens a 2-byte sequence, but 'z' (0x7A) is not a valid
	// continuation byte: the lead byte must flush raw and 'z' reprocess.
	events := decodeAll(d, []byte{0xC3, 'z'})
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (flushed lead byte + reprocessed 'z')", len(events))
	}
	if events[1].Name != "z" {
		t.Fatalf("got %+v, want second event to be 'z'", events[1])
	}
}

func TestLegacyMacOSOptionDecode(t *testing.T) {
	d := newLegacyDecoder(true)
	// "å" = 0xC3 0xA5, the macOS Option+a character.
	events := decodeAll(d, []byte{0xC3, 0xA5})
	if len(events) != 1 || events[0].Name != "meta-a" || !events[0].Meta {
		t.Fatalf("got %+v, want meta-a with Meta:true", events)
	}
}

func TestLegacyMacOSOptionDecodeDisabledLeavesRawRune(t *testing.T) {
	d := newLegacyDecoder(false)
	events := decodeAll(d, []byte{0xC3, 0xA5})
	if len(events) != 1 || events[0].Name != "å" || events[0].Meta {
		t.Fatalf("got %+v, want raw å with Meta:false", events)
	}
}

func TestLegacyEscapeFallbackEmitsEscapeThenBytes(t *testing.T) {
	d := newLegacyDecoder(false)
	events := d.decodeEscapeFallback([]byte("\x1b[9"))
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3 (escape, '[', '9')", len(events))
	}
	if events[0].Name != "escape" || events[1].Name != "[" || events[2].Name != "9" {
		t.Fatalf("got %+v", events)
	}
}
