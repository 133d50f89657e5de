package keyboard

import (
	"sync"

	"github.com/google/uuid"
)

// Handler is called once per KeyEvent broadcast. Handlers are assumed
// synchronous and short; if a handler needs to do async work it must
// schedule that work itself.
type Handler func(KeyEvent)

// Subscription is the fan-out registry of event handlers. Broadcast
// iterates a snapshot of registered handlers so that subscribe/unsubscribe
// from within a handler never races or corrupts an in-flight broadcast.
type Subscription struct {
	mu         sync.Mutex
	handlers   map[uuid.UUID]Handler
	diagnostic DiagnosticFn
}

// newSubscription creates an empty registry. diagnostic may be nil.
func newSubscription(diagnostic DiagnosticFn) *Subscription {
	if diagnostic == nil {
		diagnostic = noopDiagnostic
	}
	return &Subscription{
		handlers:   make(map[uuid.UUID]Handler),
		diagnostic: diagnostic,
	}
}

// Subscribe registers handler and returns an opaque id that Unsubscribe
// accepts. The id is never reused.
func (s *Subscription) Subscribe(handler Handler) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.handlers[id] = handler
	s.mu.Unlock()
	return id
}

// Unsubscribe removes the handler registered under id. It is safe to call
// at any time, including from within a handler during broadcast: the
// removal takes effect starting with the next broadcast. Unsubscribing an
// unknown or already-removed id is a no-op.
func (s *Subscription) Unsubscribe(id uuid.UUID) {
	s.mu.Lock()
	delete(s.handlers, id)
	s.mu.Unlock()
}

// broadcast delivers event to a snapshot of the currently registered
// handlers. A handler that panics is recovered and reported through the
// diagnostics sink; the remaining handlers in the snapshot still run.
func (s *Subscription) broadcast(event KeyEvent) {
	s.mu.Lock()
	snapshot := make([]Handler, 0, len(s.handlers))
	for _, h := range s.handlers {
		snapshot = append(snapshot, h)
	}
	s.mu.Unlock()

	for _, h := range snapshot {
		s.invoke(h, event)
	}
}

func (s *Subscription) invoke(h Handler, event KeyEvent) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = panicValue{r}
			}
			s.diagnostic("handler_panic", map[string]any{
				"error": err,
				"event": event,
			})
		}
	}()
	h(event)
}

// panicValue adapts an arbitrary recovered value to an error so diagnostics
// sinks that expect an error (e.g. Sentry's exception capture) get one.
type panicValue struct {
	v any
}

func (p panicValue) Error() string {
	return "keyboard: handler panic"
}

func (p panicValue) Unwrap() any {
	return p.v
}
