package keyboard

import (
	"fmt"

	gosentry "github.com/getsentry/sentry-go"
)

// DiagnosticFn receives non-fatal diagnostics from the pipeline: kitty
// buffer overflow clears, Ctrl+C stuck-sequence clears, and fallback
// decisions. event is a short machine-readable tag ("kitty_overflow",
// "kitty_ctrl_c_clear", "kitty_fallback", "handler_panic"); detail carries
// whatever structured fields are relevant to that event.
type DiagnosticFn func(event string, detail map[string]any)

func noopDiagnostic(string, map[string]any) {}

// sentryDiagnostics wraps an inner DiagnosticFn and additionally reports
// the same events to Sentry as breadcrumbs, or as captured exceptions for
// handler panics. It never suppresses or replaces a call to inner.
type sentryDiagnostics struct {
	inner DiagnosticFn
}

// WrapWithSentry layers Sentry breadcrumb/exception reporting on top of an
// existing diagnostics sink. If inner is nil, noopDiagnostic is used so the
// returned DiagnosticFn is always safe to call.
func WrapWithSentry(inner DiagnosticFn) DiagnosticFn {
	if inner == nil {
		inner = noopDiagnostic
	}
	d := &sentryDiagnostics{inner: inner}
	return d.report
}

func (d *sentryDiagnostics) report(event string, detail map[string]any) {
	d.inner(event, detail)

	if event == "handler_panic" {
		if err, ok := detail["error"]; ok {
			gosentry.CurrentHub().Recover(err)
			return
		}
		gosentry.CaptureMessage(fmt.Sprintf("keyboard: %s", event))
		return
	}

	gosentry.AddBreadcrumb(&gosentry.Breadcrumb{
		Level:    gosentry.LevelWarning,
		Category: "keyboard",
		Message:  event,
		Data:     detail,
	})
}
