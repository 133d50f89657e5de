package keyboard

import "unicode/utf8"

// controlKeyNames maps C0 control bytes (and DEL) to canonical names.
var controlKeyNames = map[byte]string{
	8:   "backspace",
	9:   "tab",
	13:  "return",
	27:  "escape",
	127: "backspace",
}

// macOSOptionChars maps the Unicode characters macOS's Option modifier
// produces (US keyboard layout) to a meta-prefixed canonical name, carried
// from the teacher's decodeMacOSOption table (§11 supplement).
var macOSOptionChars = map[rune]string{
	'å': "meta-a", '∫': "meta-b", 'ç': "meta-c", '∂': "meta-d", '´': "meta-e",
	'ƒ': "meta-f", '©': "meta-g", '˙': "meta-h", 'ˆ': "meta-i", '∆': "meta-j",
	'˚': "meta-k", '¬': "meta-l", 'µ': "meta-m", '˜': "meta-n", 'ø': "meta-o",
	'π': "meta-p", 'œ': "meta-q", '®': "meta-r", 'ß': "meta-s", '†': "meta-t",
	'¨': "meta-u", '√': "meta-v", '∑': "meta-w", '≈': "meta-x", '¥': "meta-y",
	'Ω': "meta-z",
}

// legacyDecoder decodes bytes the kitty parser declined (or that arrived
// while kitty mode was off), handling printable ASCII, C0 controls, and
// UTF-8 multi-byte sequences. It is stateful only across a UTF-8 multi-byte
// run; a fresh decoder is cheap, but the router keeps one instance per
// provider so a rune split across reads still decodes correctly.
type legacyDecoder struct {
	decodeMacOS bool

	utf8Buf       []byte
	utf8Remaining int
}

func newLegacyDecoder(decodeMacOS bool) *legacyDecoder {
	return &legacyDecoder{decodeMacOS: decodeMacOS}
}

// decodeByte feeds one byte and returns the events it completes (zero,
// one, or more than one when a prior invalid UTF-8 continuation flushes
// buffered bytes before processing b as a new sequence).
func (d *legacyDecoder) decodeByte(b byte) []KeyEvent {
	if d.utf8Remaining > 0 {
		if b >= 0x80 && b <= 0xBF {
			d.utf8Buf = append(d.utf8Buf, b)
			d.utf8Remaining--
			if d.utf8Remaining == 0 {
				r, _ := utf8.DecodeRune(d.utf8Buf)
				seq := string(d.utf8Buf)
				d.utf8Buf = nil
				return []KeyEvent{d.runeEvent(r, seq)}
			}
			return nil
		}
		// Invalid continuation: flush what we have as raw one-byte
		// events, then reprocess b as the start of a new sequence.
		var flushed []KeyEvent
		for _, bb := range d.utf8Buf {
			flushed = append(flushed, KeyEvent{Name: string(rune(bb)), Sequence: string([]byte{bb})})
		}
		d.utf8Buf = nil
		d.utf8Remaining = 0
		flushed = append(flushed, d.decodeByte(b)...)
		return flushed
	}

	switch {
	case b == 0x1b:
		return []KeyEvent{{Name: "escape", Sequence: "\x1b"}}
	case b < 32 || b == 127:
		if name, ok := controlKeyNames[b]; ok {
			return []KeyEvent{{Name: name, Sequence: string(rune(b))}}
		}
		letter := rune(b + 'a' - 1)
		return []KeyEvent{{Name: string(letter), Sequence: string(rune(b)), Ctrl: true}}
	case b < 128:
		return []KeyEvent{d.runeEvent(rune(b), string(rune(b)))}
	case b >= 0xC0 && b <= 0xDF:
		d.utf8Buf = []byte{b}
		d.utf8Remaining = 1
		return nil
	case b >= 0xE0 && b <= 0xEF:
		d.utf8Buf = []byte{b}
		d.utf8Remaining = 2
		return nil
	case b >= 0xF0 && b <= 0xF7:
		d.utf8Buf = []byte{b}
		d.utf8Remaining = 3
		return nil
	default:
		// Invalid lead byte or bare continuation byte.
		return []KeyEvent{{Name: string(rune(b)), Sequence: string([]byte{b})}}
	}
}

func (d *legacyDecoder) runeEvent(r rune, seq string) KeyEvent {
	name := string(r)
	if d.decodeMacOS {
		if decoded, ok := macOSOptionChars[r]; ok {
			return KeyEvent{Name: decoded, Sequence: seq, Meta: true}
		}
	}
	return KeyEvent{Name: name, Sequence: seq}
}

// decodeEscapeFallback re-decodes bytes the kitty parser rejected (the
// buffer always starts with ESC). The first byte becomes an "escape"
// event; the rest are replayed through decodeByte. This mirrors the
// teacher's emitEscapeBuffer: a malformed sequence is never silently
// dropped, only reinterpreted byte-by-byte.
func (d *legacyDecoder) decodeEscapeFallback(buf []byte) []KeyEvent {
	if len(buf) == 0 {
		return nil
	}
	events := []KeyEvent{{Name: "escape", Sequence: "\x1b"}}
	for _, b := range buf[1:] {
		events = append(events, d.decodeByte(b)...)
	}
	return events
}
