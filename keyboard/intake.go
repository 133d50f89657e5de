package keyboard

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// Provider is the top-level handle embedders construct: it owns the
// Router, the Subscription registry, and the byteIntake that drives them
// from a reader. Replaces the teacher's bare *Handler with subscribe/
// unsubscribe in place of raw channels (§9 design note).
type Provider struct {
	sub    *Subscription
	router *Router
	intake *byteIntake
}

// Option configures a Provider at construction time. Layered over the
// teacher's flat Options struct since the expanded surface (diagnostic
// sink, subscription capacity hint) no longer fits comfortably as a single
// struct literal everywhere a Provider is built, especially in tests.
type Option func(*providerOptions)

type providerOptions struct {
	reader          io.Reader
	diagnostic      DiagnosticFn
	subscriptionCap int
}

// WithInputReader supplies the byte source. There is no default: Activate
// returns an error if no reader was supplied — see New's doc comment.
func WithInputReader(r io.Reader) Option {
	return func(o *providerOptions) { o.reader = r }
}

// WithDiagnosticFn supplies the non-fatal diagnostics sink. Wrap it with
// WrapWithSentry to additionally report through Sentry.
func WithDiagnosticFn(fn DiagnosticFn) Option {
	return func(o *providerOptions) { o.diagnostic = fn }
}

// WithSubscriptionCap is a hint for the expected number of concurrent
// subscribers; the registry itself is an unbounded map, so this only
// pre-sizes it.
func WithSubscriptionCap(n int) Option {
	return func(o *providerOptions) { o.subscriptionCap = n }
}

// New constructs a Provider. reader must be supplied via WithInputReader
// before Activate is called; New itself performs no I/O.
func New(cfg Config, opts ...Option) *Provider {
	resolved := &providerOptions{}
	for _, opt := range opts {
		opt(resolved)
	}

	sub := newSubscription(resolved.diagnostic)
	if resolved.subscriptionCap > 0 {
		sub.handlers = make(map[uuid.UUID]Handler, resolved.subscriptionCap)
	}
	router := NewRouter(cfg, sub, sub.diagnostic)

	p := &Provider{sub: sub, router: router}
	if resolved.reader != nil {
		p.intake = newByteIntake(resolved.reader, router)
	}
	return p
}

// Subscribe registers handler for every KeyEvent the pipeline produces.
func (p *Provider) Subscribe(handler Handler) uuid.UUID {
	return p.sub.Subscribe(handler)
}

// Unsubscribe removes a previously registered handler; idempotent.
func (p *Provider) Unsubscribe(id uuid.UUID) {
	p.sub.Unsubscribe(id)
}

// Activate starts the pipeline. It is an error to call Activate without
// first supplying a reader via WithInputReader.
func (p *Provider) Activate() error {
	if p.intake == nil {
		return fmt.Errorf("keyboard: no input reader configured")
	}
	return p.intake.Activate()
}

// Deactivate stops the pipeline and restores terminal state.
func (p *Provider) Deactivate() error {
	if p.intake == nil {
		return nil
	}
	return p.intake.Deactivate()
}

// byteIntake reads raw bytes from an io.Reader and hands them to a Router
// on a single process goroutine, so byte-arrival order is observable event
// order downstream. Grounded on the teacher's Handler.readLoop/processLoop
// split and its term.MakeRaw/term.Restore raw-mode toggle.
type byteIntake struct {
	reader io.Reader
	router *Router

	terminalFd      int
	managesTerminal bool
	origState       *term.State

	rawBytes chan []byte
	stop     chan struct{}
	group    *errgroup.Group
}

func newByteIntake(reader io.Reader, router *Router) *byteIntake {
	intake := &byteIntake{
		reader:     reader,
		router:     router,
		terminalFd: -1,
		rawBytes:   make(chan []byte, 64),
		stop:       make(chan struct{}),
	}

	if f, ok := reader.(interface{ Fd() uintptr }); ok {
		fd := int(f.Fd())
		if term.IsTerminal(fd) {
			intake.terminalFd = fd
			intake.managesTerminal = true
		}
	}

	return intake
}

// Activate puts the terminal in raw mode (if the reader is a terminal) and
// starts the read and process goroutines.
func (intake *byteIntake) Activate() error {
	if intake.managesTerminal {
		state, err := term.MakeRaw(intake.terminalFd)
		if err != nil {
			return fmt.Errorf("keyboard: enable raw mode: %w", err)
		}
		intake.origState = state
	}

	group := &errgroup.Group{}
	group.Go(intake.readLoop)
	group.Go(intake.processLoop)
	intake.group = group
	return nil
}

// Deactivate signals both goroutines to stop, joins them, and restores the
// terminal's original mode. It discards any buffered-but-not-yet-flushed
// passthrough bytes and cancels pending timers, per §5's teardown contract.
func (intake *byteIntake) Deactivate() error {
	close(intake.stop)
	var joinErr error
	if intake.group != nil {
		joinErr = intake.group.Wait()
	}

	// Both goroutines have returned, so router state is safe to touch here.
	r := intake.router
	r.rawBuf = nil
	if r.flushTimer != nil {
		r.flushTimer.Stop()
		r.flushTimer = nil
	}
	r.drag.interrupt()

	if intake.managesTerminal && intake.origState != nil {
		if err := term.Restore(intake.terminalFd, intake.origState); err != nil {
			if joinErr != nil {
				return fmt.Errorf("keyboard: restore terminal: %w (read/process error: %v)", err, joinErr)
			}
			return fmt.Errorf("keyboard: restore terminal: %w", err)
		}
		intake.origState = nil
	}
	return joinErr
}

func (intake *byteIntake) readLoop() error {
	buf := make([]byte, 256)
	for {
		select {
		case <-intake.stop:
			return nil
		default:
		}

		n, err := intake.reader.Read(buf)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("keyboard: read input: %w", err)
		}
		if n == 0 {
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case intake.rawBytes <- data:
		case <-intake.stop:
			return nil
		}
	}
}

// processLoop is the single event-loop goroutine that owns all Router
// state: it is the only goroutine that ever calls into intake.router,
// satisfying §5's single-logical-event-loop ordering guarantee.
func (intake *byteIntake) processLoop() error {
	for {
		select {
		case <-intake.stop:
			return nil

		case data := <-intake.rawBytes:
			intake.router.HandleChunk(data)

		case <-intake.router.DragTimerC():
			intake.router.ExpireDrag()

		case <-intake.router.FlushTimerC():
			intake.router.FlushPassthrough()
		}
	}
}
