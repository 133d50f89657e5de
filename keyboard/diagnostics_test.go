package keyboard

import "testing"

func TestWrapWithSentryStillCallsInner(t *testing.T) {
	var gotEvent string
	var gotDetail map[string]any
	wrapped := WrapWithSentry(func(event string, detail map[string]any) {
		gotEvent = event
		gotDetail = detail
	})

	wrapped("kitty_overflow", map[string]any{"buffered": 64})

	if gotEvent != "kitty_overflow" {
		t.Fatalf("got event %q, want kitty_overflow", gotEvent)
	}
	if gotDetail["buffered"] != 64 {
		t.Fatalf("got detail %v, want buffered=64", gotDetail)
	}
}

func TestWrapWithSentryNilInnerIsSafe(t *testing.T) {
	wrapped := WrapWithSentry(nil)
	if wrapped == nil {
		t.Fatal("WrapWithSentry must never return nil")
	}
	// Without an initialized Sentry client this must not panic; the SDK is
	// documented to no-op its reporting calls in that case.
	wrapped("kitty_fallback", map[string]any{"reason": "buffer_overflow"})
}

func TestWrapWithSentryHandlerPanicReportsError(t *testing.T) {
	called := false
	wrapped := WrapWithSentry(func(event string, detail map[string]any) {
		called = true
		if event != "handler_panic" {
			t.Fatalf("got event %q, want handler_panic", event)
		}
	})

	wrapped("handler_panic", map[string]any{"error": panicValue{v: "boom"}})

	if !called {
		t.Fatal("inner sink must still be invoked for handler_panic events")
	}
}
