package keyboard

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// parseOutcome tags the result of feeding one more byte into the kitty
// buffer, replacing the source's exception-based control flow (§9 design
// note: "Ad-hoc exception-based control flow for buffer overflow becomes an
// explicit result").
type parseOutcome int

const (
	// outcomePartial means the buffer is a valid prefix of a recognised
	// sequence; the caller should wait for more bytes.
	outcomePartial parseOutcome = iota
	// outcomeMatched means the buffer completed a recognised sequence
	// that decodes to a KeyEvent.
	outcomeMatched
	// outcomeDiscard means the buffer completed a recognised sequence
	// that intentionally produces no KeyEvent (a mouse report).
	outcomeDiscard
	// outcomePasteStart means the buffer is exactly the bracketed-paste
	// start marker; the caller should switch the router into paste mode.
	outcomePasteStart
	// outcomeReject means the buffer can never become a recognised
	// sequence; the caller should fall back to the legacy decoder with
	// the same bytes.
	outcomeReject
)

const (
	pasteStartMarker = "\x1b[200~"
	pasteEndMarker   = "\x1b[201~"
)

// kittyParser accumulates bytes of a single in-progress CSI/SS3 sequence
// and incrementally classifies the buffer as partial, matched, discarded,
// or rejected. It also recognises the bracketed-paste start marker, since
// that marker is itself indistinguishable from a CSI tilde-form sequence
// until fully matched (grounded on the teacher's escBuffer, which performs
// the same start-marker check inline before trying kitty/legacy parses).
type kittyParser struct {
	// kittyEnabled gates the kitty-specific grammar (tilde-form,
	// 'u'-form, mouse reporting) and whether matched events are tagged
	// KittyProtocol:true. When false, only the classic CSI letter-forms
	// (arrows/home/end/shift-tab) and SS3 F1-F4 are recognised, matching
	// §4.5's "Recognise classic ESC[A..D, ESC[H, ESC[F, ESC[Z forms when
	// the parser was disabled".
	kittyEnabled bool
	decodeMacOS  bool
	buf          []byte
}

func newKittyParser(kittyEnabled, decodeMacOS bool) *kittyParser {
	return &kittyParser{kittyEnabled: kittyEnabled, decodeMacOS: decodeMacOS}
}

func (p *kittyParser) reset() {
	p.buf = p.buf[:0]
}

func (p *kittyParser) pending() []byte {
	return p.buf
}

// feed appends b to the buffer and re-evaluates it. overflowed reports
// whether the cap was exceeded (distinct from a definite reject, for
// diagnostic purposes); fallback holds the bytes to hand to the legacy
// decoder when the outcome is outcomeReject.
func (p *kittyParser) feed(b byte) (outcome parseOutcome, event KeyEvent, fallback []byte, overflowed bool) {
	p.buf = append(p.buf, b)

	if string(p.buf) == pasteStartMarker {
		p.reset()
		return outcomePasteStart, KeyEvent{}, nil, false
	}

	if len(p.buf) > kittyBufferCap {
		discarded := append([]byte(nil), p.buf...)
		p.reset()
		return outcomeReject, KeyEvent{}, discarded, true
	}

	outcome, event = p.attempt(p.buf)
	switch outcome {
	case outcomeMatched, outcomeDiscard:
		if outcome == outcomeMatched {
			event.KittyProtocol = p.kittyEnabled
		}
		p.reset()
		return outcome, event, nil, false
	case outcomeReject:
		discarded := append([]byte(nil), p.buf...)
		p.reset()
		return outcomeReject, KeyEvent{}, discarded, false
	default:
		return outcomePartial, KeyEvent{}, nil, false
	}
}

// attempt classifies seq, which always begins with ESC.
func (p *kittyParser) attempt(seq []byte) (parseOutcome, KeyEvent) {
	if len(seq) < 2 {
		if ansi.HasEscPrefix(seq) {
			return outcomePartial, KeyEvent{}
		}
		return outcomeReject, KeyEvent{}
	}

	switch {
	case seq[1] == 'O':
		return p.attemptSS3(seq)
	case ansi.HasCsiPrefix(seq):
		return p.attemptCSI(seq)
	default:
		return outcomeReject, KeyEvent{}
	}
}

func (p *kittyParser) attemptSS3(seq []byte) (parseOutcome, KeyEvent) {
	if len(seq) < 3 {
		return outcomePartial, KeyEvent{}
	}
	if len(seq) > 3 {
		return outcomeReject, KeyEvent{}
	}
	name, ok := ss3FunctionKeys[seq[2]]
	if !ok {
		return outcomeReject, KeyEvent{}
	}
	return outcomeMatched, KeyEvent{Name: name, Sequence: string(seq), KittyProtocol: true}
}

var ss3FunctionKeys = map[byte]string{
	'P': "f1",
	'Q': "f2",
	'R': "f3",
	'S': "f4",
}

// isCSIParamByte reports whether b can legally appear inside a CSI
// parameter/intermediate run (digits, ';', ':').
func isCSIParamByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == ';' || b == ':'
}

func (p *kittyParser) attemptCSI(seq []byte) (parseOutcome, KeyEvent) {
	body := seq[2:]
	if len(body) == 0 {
		return outcomePartial, KeyEvent{}
	}

	// SGR mouse: ESC [ < ... M|m. Mouse reports are part of the kitty-only
	// grammar: with kitty disabled they are rejected and fall back to the
	// legacy decoder byte by byte.
	if body[0] == '<' {
		if !p.kittyEnabled {
			return outcomeReject, KeyEvent{}
		}
		last := body[len(body)-1]
		if last == 'M' || last == 'm' {
			return outcomeDiscard, KeyEvent{}
		}
		return outcomePartial, KeyEvent{}
	}

	// X10 mouse: ESC [ M Cb Cx Cy, exactly three bytes follow M.
	if body[0] == 'M' {
		if !p.kittyEnabled {
			return outcomeReject, KeyEvent{}
		}
		if len(body) < 4 {
			return outcomePartial, KeyEvent{}
		}
		if len(body) > 4 {
			return outcomeReject, KeyEvent{}
		}
		return outcomeDiscard, KeyEvent{}
	}

	last := body[len(body)-1]
	if !isFinalByte(last) {
		if !isCSIParamByte(last) {
			return outcomeReject, KeyEvent{}
		}
		return outcomePartial, KeyEvent{}
	}

	params := body[:len(body)-1]
	for _, b := range params {
		if !isCSIParamByte(b) {
			return outcomeReject, KeyEvent{}
		}
	}
	parts := splitCSIParams(string(params))
	seqStr := string(seq)

	switch last {
	case 'A', 'B', 'C', 'D':
		return namedArrowEvent(last, parts, seqStr)
	case 'H', 'F':
		return namedHomeEndEvent(last, parts, seqStr)
	case 'Z':
		return tabShiftEvent(parts, seqStr)
	case 'P', 'Q', 'R', 'S':
		// CSI-form P/Q/R/S (modified F1-F4, e.g. ESC[1;2P) is a kitty
		// modifier extension; the classic unmodified form arrives via SS3
		// (ESC O P) and is handled by attemptSS3 regardless of this gate.
		if !p.kittyEnabled {
			return outcomeReject, KeyEvent{}
		}
		return namedF1toF4Event(last, parts, seqStr)
	case '~':
		if !p.kittyEnabled {
			return outcomeReject, KeyEvent{}
		}
		return p.tildeEvent(parts, seqStr)
	case 'u':
		if !p.kittyEnabled {
			return outcomeReject, KeyEvent{}
		}
		return p.kittyUFormEvent(parts, seqStr)
	default:
		return outcomeReject, KeyEvent{}
	}
}

func isFinalByte(b byte) bool {
	return b >= 0x40 && b <= 0x7E
}

func splitCSIParams(params string) []string {
	if params == "" {
		return nil
	}
	return strings.Split(params, ";")
}

// parseParam parses a single decimal CSI parameter, defaulting to 1 for an
// empty or non-numeric field (one-origin per the kitty/xterm modifier
// convention).
func parseParam(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// decodeModifier expands a one-origin xterm/kitty modifier parameter into
// boolean flags: mod-1 is a bitmask where bit0=shift, bit1=alt/meta,
// bit2=ctrl.
func decodeModifier(mod int) (shift, meta, ctrl bool) {
	if mod < 1 {
		mod = 1
	}
	mod--
	return mod&1 != 0, mod&2 != 0, mod&4 != 0
}

func modifierFromParts(parts []string, index int) (shift, meta, ctrl bool) {
	if len(parts) <= index {
		return decodeModifier(1)
	}
	return decodeModifier(parseParam(parts[index]))
}

func namedArrowEvent(final byte, parts []string, seq string) (parseOutcome, KeyEvent) {
	names := map[byte]string{'A': "up", 'B': "down", 'C': "right", 'D': "left"}
	if len(parts) != 0 && len(parts) != 2 {
		return outcomeReject, KeyEvent{}
	}
	shift, meta, ctrl := modifierFromParts(parts, 1)
	return outcomeMatched, KeyEvent{Name: names[final], Sequence: seq, Shift: shift, Meta: meta, Ctrl: ctrl, KittyProtocol: true}
}

func namedHomeEndEvent(final byte, parts []string, seq string) (parseOutcome, KeyEvent) {
	names := map[byte]string{'H': "home", 'F': "end"}
	if len(parts) != 0 && len(parts) != 2 {
		return outcomeReject, KeyEvent{}
	}
	shift, meta, ctrl := modifierFromParts(parts, 1)
	return outcomeMatched, KeyEvent{Name: names[final], Sequence: seq, Shift: shift, Meta: meta, Ctrl: ctrl, KittyProtocol: true}
}

func tabShiftEvent(parts []string, seq string) (parseOutcome, KeyEvent) {
	// ESC[Z always carries shift; ESC[1;2Z carries it via the modifier
	// parameter too, but either way the result is the same canonical key.
	return outcomeMatched, KeyEvent{Name: "tab", Sequence: seq, Shift: true, KittyProtocol: true}
}

func namedF1toF4Event(final byte, parts []string, seq string) (parseOutcome, KeyEvent) {
	names := map[byte]string{'P': "f1", 'Q': "f2", 'R': "f3", 'S': "f4"}
	if len(parts) != 0 && len(parts) != 2 {
		return outcomeReject, KeyEvent{}
	}
	shift, meta, ctrl := modifierFromParts(parts, 1)
	return outcomeMatched, KeyEvent{Name: names[final], Sequence: seq, Shift: shift, Meta: meta, Ctrl: ctrl, KittyProtocol: true}
}

// tildeKeys maps the numeric codes of the tilde-terminated CSI form to
// canonical key names, extended beyond the core editing/navigation keys
// with the function-key range the teacher's escBindings table also carries.
var tildeKeys = map[int]string{
	1: "home", 2: "insert", 3: "delete", 4: "end", 5: "pageup", 6: "pagedown",
	15: "f5", 17: "f6", 18: "f7", 19: "f8", 20: "f9", 21: "f10", 23: "f11", 24: "f12",
}

func (p *kittyParser) tildeEvent(parts []string, seq string) (parseOutcome, KeyEvent) {
	if len(parts) == 0 {
		return outcomeReject, KeyEvent{}
	}
	code := parseParam(parts[0])
	name, ok := tildeKeys[code]
	if !ok {
		return outcomeReject, KeyEvent{}
	}
	if len(parts) > 2 {
		return outcomeReject, KeyEvent{}
	}
	shift, meta, ctrl := modifierFromParts(parts, 1)
	return outcomeMatched, KeyEvent{Name: name, Sequence: seq, Shift: shift, Meta: meta, Ctrl: ctrl, KittyProtocol: true}
}

// kittySpecialKeys maps kitty u-form keycodes to canonical names beyond the
// printable-character passthrough, extended with the numeric keypad and
// extended function-key ranges of §4.4's supplement.
var kittySpecialKeys = map[int]string{
	13: "return", 57414: "return",
	27:  "escape",
	9:   "tab",
	127: "backspace",
	32:  "space",

	57399: "0", 57400: "1", 57401: "2", 57402: "3", 57403: "4",
	57404: "5", 57405: "6", 57406: "7", 57407: "8", 57408: "9",

	57417: "up", 57418: "down", 57419: "left", 57420: "right",
	57421: "pageup", 57422: "pagedown",
	57423: "home", 57424: "end",
	57425: "insert", 57426: "delete",

	57376: "f13", 57377: "f14", 57378: "f15", 57379: "f16",
	57380: "f17", 57381: "f18", 57382: "f19", 57383: "f20",
}

func (p *kittyParser) kittyUFormEvent(parts []string, seq string) (parseOutcome, KeyEvent) {
	if len(parts) == 0 {
		return outcomeReject, KeyEvent{}
	}

	keycodeField := parts[0]
	if idx := strings.IndexByte(keycodeField, ':'); idx >= 0 {
		keycodeField = keycodeField[:idx]
	}
	keycode := parseParam(keycodeField)

	mod := 1
	if len(parts) >= 2 {
		modField := parts[1]
		if idx := strings.IndexByte(modField, ':'); idx >= 0 {
			modField = modField[:idx]
		}
		mod = parseParam(modField)
	}
	shift, meta, ctrl := decodeModifier(mod)

	name, ok := kittySpecialKeys[keycode]
	if !ok {
		if keycode >= 32 && keycode < 0x110000 {
			name = decodeKittyPrintable(rune(keycode), shift, ctrl, p.decodeMacOS)
		} else {
			// Outside the printable range and not a known special key:
			// a definite non-match per §4.4 step 4's supplement, silently
			// dropped rather than surfaced as a parse error.
			return outcomeDiscard, KeyEvent{}
		}
	}

	return outcomeMatched, KeyEvent{Name: name, Sequence: seq, Shift: shift, Meta: meta, Ctrl: ctrl, KittyProtocol: true}
}

// decodeKittyPrintable resolves a printable kitty keycode to its character
// name, optionally applying the macOS Option-key decode table (§11).
func decodeKittyPrintable(r rune, shift, ctrl, decodeMacOS bool) string {
	if decodeMacOS {
		if decoded, ok := macOSOptionChars[r]; ok {
			return decoded
		}
	}
	return string(r)
}
