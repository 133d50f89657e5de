// Package keyboard implements the terminal keypress pipeline: it turns a raw
// byte stream from a terminal's standard input into a typed stream of
// KeyEvent values, disambiguating ordinary keypresses, the Kitty keyboard
// protocol, bracketed paste, and a drag-and-drop quoted-path heuristic.
package keyboard

import "time"

// DragCompletionTimeout is the default quiet period the drag heuristic waits
// after the last byte of a candidate quoted path before treating it as a
// completed drag-and-drop paste.
const DragCompletionTimeout = 100 * time.Millisecond

// FlushTimeout is the default coalescing window the passthrough router uses
// to batch short reads before running them through the decode cascade.
const FlushTimeout = 8 * time.Millisecond

// passthroughFlushSize is the byte threshold above which the passthrough
// raw buffer is flushed immediately instead of waiting for FlushTimeout.
const passthroughFlushSize = 64

// kittyBufferCap is the maximum number of bytes the kitty parser will
// accumulate for a single in-progress CSI sequence before giving up and
// clearing the buffer.
const kittyBufferCap = 64

// KeyEvent is the single output type of the pipeline.
type KeyEvent struct {
	// Name is the canonical key identifier: "return", "escape", "tab",
	// "backspace", "delete", "home", "end", "up"/"down"/"left"/"right",
	// "pageup", "pagedown", "insert", "f1".."f20", "space" (kitty u-form
	// keycode 32), a single printable character, "meta-<letter>" when
	// macOS Option decoding applies, or "" for paste events.
	Name string

	// Sequence is the exact byte run that produced this event, as text.
	Sequence string

	Ctrl  bool
	Meta  bool
	Shift bool

	// Paste is true for bracketed-paste and drag-synthesised events.
	Paste bool

	// KittyProtocol is true iff this event was decoded via a kitty sequence.
	KittyProtocol bool
}

// Config is the immutable, per-provider configuration for the pipeline.
type Config struct {
	// KittyProtocolEnabled turns on incremental kitty-sequence decoding.
	KittyProtocolEnabled bool

	// PasteWorkaround puts the router into passthrough mode: pre-parsed
	// keypress records (Router.HandleRecord) are ignored and only raw data
	// chunks drive event generation, coalesced by a short flush timer.
	PasteWorkaround bool

	// DebugKeystrokeLogging emits diagnostic records for kitty buffer
	// state transitions (overflow clears, Ctrl+C clears, fallback to legacy
	// decoding); with it off the router reports none of these.
	DebugKeystrokeLogging bool

	// DecodeMacOSOption decodes macOS Option+key Unicode characters to a
	// meta-prefixed key name. Zero value means "use the platform default":
	// enabled on darwin, disabled elsewhere (see resolveDecodeMacOS).
	DecodeMacOSOption *bool

	// DragTimeout overrides DragCompletionTimeout; zero uses the default.
	DragTimeout time.Duration

	// FlushTimeout overrides FlushTimeout; zero uses the default.
	FlushTimeout time.Duration
}

func (c Config) dragTimeout() time.Duration {
	if c.DragTimeout > 0 {
		return c.DragTimeout
	}
	return DragCompletionTimeout
}

func (c Config) flushTimeout() time.Duration {
	if c.FlushTimeout > 0 {
		return c.FlushTimeout
	}
	return FlushTimeout
}

// keypressRecord is a pre-parsed keypress handed to Router.HandleRecord when
// the router is not in passthrough mode. It mirrors what a terminal library's
// own key-reading layer would hand us: a canonical name, modifier bits, and
// the raw sequence that produced it. byteIntake forwards raw chunks only and
// never produces these records.
type keypressRecord struct {
	name     string
	sequence string
	ctrl     bool
	meta     bool
	shift    bool
}
