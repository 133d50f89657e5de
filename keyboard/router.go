package keyboard

import (
	"bytes"
	"runtime"
	"time"
)

// Router is the top-level byte-dispatch state machine: it owns the shared
// kitty/paste-start buffer, the paste payload accumulator, the drag
// heuristic, and the legacy decoder, and broadcasts every completed
// KeyEvent to a Subscription. Grounded on the teacher's processLoop /
// processByte dispatch and couldBeEscapePrefix, generalized into the
// explicit parseOutcome result tags of kitty.go instead of the teacher's
// boolean-returning parse helpers.
//
// Byte dispatch precedence, highest first: an active paste accumulation
// (which takes every byte, Ctrl+C included), the Ctrl+C global interrupt,
// an in-progress ESC buffer (shared kitty/paste-start recognition), an
// in-progress drag accumulation, then plain legacy decode.
type Router struct {
	cfg        Config
	kitty      *kittyParser
	paste      *pasteFramer
	drag       *dragHeuristic
	legacy     *legacyDecoder
	sub        *Subscription
	diagnostic DiagnosticFn

	pasteActive bool

	rawBuf     []byte
	flushTimer *time.Timer
}

// NewRouter builds a Router wired to sub, reporting non-fatal diagnostics
// through diagnostic (nil is treated as a no-op sink).
func NewRouter(cfg Config, sub *Subscription, diagnostic DiagnosticFn) *Router {
	if diagnostic == nil {
		diagnostic = noopDiagnostic
	}
	decodeMacOS := resolveDecodeMacOS(cfg)
	return &Router{
		cfg:        cfg,
		kitty:      newKittyParser(cfg.KittyProtocolEnabled, decodeMacOS),
		paste:      newPasteFramer(),
		drag:       newDragHeuristic(cfg.dragTimeout()),
		legacy:     newLegacyDecoder(decodeMacOS),
		sub:        sub,
		diagnostic: diagnostic,
	}
}

// resolveDecodeMacOS applies Config.DecodeMacOSOption's override, defaulting
// to true on Darwin, matching the teacher's Options.DecodeMacOSOption.
func resolveDecodeMacOS(cfg Config) bool {
	if cfg.DecodeMacOSOption != nil {
		return *cfg.DecodeMacOSOption
	}
	return runtime.GOOS == "darwin"
}

// HandleRecord processes a pre-parsed keypress record. It is the Ctrl+C
// global-interrupt path when a terminal library has already classified the
// keypress: if the kitty buffer is mid-sequence it is cleared rather than
// left stuck. In passthrough mode (cfg.PasteWorkaround) records are ignored.
func (r *Router) HandleRecord(rec keypressRecord) {
	if r.cfg.PasteWorkaround {
		return
	}
	if rec.ctrl && rec.name == "c" {
		r.clearKittyForInterrupt()
	}
	r.emit(KeyEvent{
		Name:     rec.name,
		Sequence: rec.sequence,
		Ctrl:     rec.ctrl,
		Meta:     rec.meta,
		Shift:    rec.shift,
	})
}

// HandleChunk processes a raw byte chunk from the intake. In passthrough
// mode (cfg.PasteWorkaround) chunks are coalesced by a short flush timer
// per §4.6 instead of being decoded immediately.
func (r *Router) HandleChunk(data []byte) {
	if r.cfg.PasteWorkaround {
		r.bufferPassthrough(data)
		return
	}
	for _, b := range data {
		r.dispatchByte(b)
	}
}

// dispatchByte applies the Ctrl+C interrupt check before falling through to
// ordinary per-byte decode.
func (r *Router) dispatchByte(b byte) {
	if b == 0x03 && !r.pasteActive {
		r.clearKittyForInterrupt()
		if r.drag.active {
			for _, fb := range r.drag.interrupt() {
				for _, e := range r.legacy.decodeByte(fb) {
					r.emit(e)
				}
			}
		}
		for _, e := range r.legacy.decodeByte(b) {
			r.emit(e)
		}
		return
	}
	r.decodeByte(b)
}

func (r *Router) clearKittyForInterrupt() {
	if pending := r.kitty.pending(); len(pending) > 0 {
		if r.cfg.DebugKeystrokeLogging {
			r.diagnostic("kitty_ctrl_c_clear", map[string]any{"discarded": string(pending)})
		}
		r.kitty.reset()
	}
}

// decodeByte applies the rest of the dispatch precedence once dispatchByte
// has handled Ctrl+C outside a paste: active paste, then in-progress escape
// buffer, then in-progress drag, then a fresh escape/quote/legacy byte.
func (r *Router) decodeByte(b byte) {
	if r.pasteActive {
		done, event := r.paste.feedByte(b)
		if done {
			r.pasteActive = false
			r.emit(event)
		}
		return
	}

	if len(r.kitty.pending()) > 0 {
		r.feedKitty(b)
		return
	}

	if r.drag.active {
		r.feedDrag(b)
		return
	}

	if b == 0x1b {
		r.feedKitty(b)
		return
	}

	if b == '\'' || b == '"' {
		r.drag.begin(b)
		return
	}

	for _, e := range r.legacy.decodeByte(b) {
		r.emit(e)
	}
}

func (r *Router) feedKitty(b byte) {
	outcome, event, fallback, overflowed := r.kitty.feed(b)
	switch outcome {
	case outcomePartial:
		return
	case outcomeMatched:
		r.emit(event)
	case outcomeDiscard:
		// A recognised sequence that intentionally produces no event (a
		// mouse report or an out-of-range kitty extended keycode).
	case outcomePasteStart:
		r.pasteActive = true
		r.paste.begin()
	case outcomeReject:
		if r.cfg.DebugKeystrokeLogging {
			tag := "kitty_fallback"
			if overflowed {
				tag = "kitty_overflow"
			}
			r.diagnostic(tag, map[string]any{"discarded": string(fallback)})
		}
		for _, e := range r.legacy.decodeEscapeFallback(fallback) {
			r.emit(e)
		}
	}
}

// feedDrag continues an in-progress drag accumulation. A plain printable
// ASCII byte is treated as "a single-character record" and extends the
// accumulator; anything else (a fresh escape sequence, a control byte)
// isn't a plain keypress record and flushes the accumulator as ordinary
// input before reprocessing b.
func (r *Router) feedDrag(b byte) {
	if b >= 0x20 && b < 0x7f {
		r.drag.feedPlainByte(b)
		return
	}
	flushed := r.drag.interrupt()
	for _, fb := range flushed {
		for _, e := range r.legacy.decodeByte(fb) {
			r.emit(e)
		}
	}
	r.decodeByte(b)
}

// DragTimerC exposes the drag quiet-timer channel for the intake's select
// loop; it is nil (blocks forever) when no drag is in progress.
func (r *Router) DragTimerC() <-chan time.Time {
	return r.drag.timerC()
}

// ExpireDrag completes an in-progress drag on quiet-timer fire. Call only
// after a receive on DragTimerC.
func (r *Router) ExpireDrag() {
	if !r.drag.active {
		return
	}
	r.emit(r.drag.expire())
}

// FlushTimerC exposes the passthrough coalescing timer for the intake's
// select loop; nil when no bytes are pending flush.
func (r *Router) FlushTimerC() <-chan time.Time {
	if r.flushTimer == nil {
		return nil
	}
	return r.flushTimer.C
}

// FlushPassthrough forces the pending passthrough buffer through the
// decode cascade. Call after a receive on FlushTimerC, or at shutdown to
// drain anything still buffered.
func (r *Router) FlushPassthrough() {
	r.flushPassthrough()
}

func (r *Router) bufferPassthrough(data []byte) {
	r.rawBuf = append(r.rawBuf, data...)
	if len(r.rawBuf) > passthroughFlushSize {
		r.flushPassthrough()
		return
	}
	r.armFlushTimer()
}

func (r *Router) armFlushTimer() {
	if r.flushTimer != nil {
		r.flushTimer.Stop()
	}
	r.flushTimer = time.NewTimer(r.cfg.flushTimeout())
}

func (r *Router) flushPassthrough() {
	data := r.rawBuf
	r.rawBuf = nil
	if r.flushTimer != nil {
		r.flushTimer.Stop()
		r.flushTimer = nil
	}
	if len(data) == 0 {
		return
	}

	if looksLikePaste(data) {
		r.emit(KeyEvent{Paste: true, Sequence: string(data)})
		return
	}
	for _, b := range data {
		r.dispatchByte(b)
	}
}

// looksLikePaste implements §4.6's coalesced-chunk paste heuristic: a
// buffered passthrough flush is treated as one paste event if it contains a
// bracketed-paste start marker, opens with a drag quote followed by more
// bytes, or carries a carriage return anywhere in it.
func looksLikePaste(data []byte) bool {
	if bytes.Contains(data, []byte(pasteStartMarker)) {
		return true
	}
	if len(data) > 1 && (data[0] == '\'' || data[0] == '"') {
		return true
	}
	return bytes.IndexByte(data, '\r') >= 0
}

func (r *Router) emit(event KeyEvent) {
	r.sub.broadcast(event)
}
