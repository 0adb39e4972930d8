// Package reaction is the client side of a like or bookmark button: it shows an
// optimistic guess while a toggle is in flight and falls back to the last authoritative
// state when the toggle fails.
package reaction

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
)

// DefaultToggleTimeout bounds a single remote toggle.
const DefaultToggleTimeout = 10 * time.Second

// ErrPromptIDRequired is returned by New for a Config without a prompt.
var ErrPromptIDRequired = errors.New("reaction: prompt id is required")

// Config describes one button.
type Config struct {
	PromptID     string
	Kind         entity.ReactionKind
	InitialCount int64
	// HideCount suppresses the counter; it is shown by default.
	HideCount bool
	Size      Size
}

// Option configures a Controller.
type Option func(*Controller)

// WithSource keeps the controller in sync with a live subscription.
func WithSource(s Source) Option {
	return func(c *Controller) { c.source = s }
}

// WithNotifier reports successful toggles.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithToggleTimeout overrides DefaultToggleTimeout.
func WithToggleTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Controller owns the state of one button. It is safe for concurrent use.
type Controller struct {
	cfg      Config
	toggler  Toggler
	gate     Gate
	source   Source
	notifier Notifier
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	auth     entity.MembershipState
	phase    Phase
	inFlight bool
	settled  chan struct{}
	closed   bool
	updates  chan View
}

// New returns a resting controller that shows cfg.InitialCount until the first
// authoritative state arrives.
func New(cfg Config, toggler Toggler, gate Gate, opts ...Option) (*Controller, error) {
	if cfg.PromptID == "" {
		return nil, ErrPromptIDRequired
	}
	if cfg.Kind == "" {
		cfg.Kind = entity.ReactionLike
	}
	if !cfg.Kind.Valid() {
		return nil, failure.NotFound("reaction kind", string(cfg.Kind))
	}
	if cfg.Size == "" {
		cfg.Size = SizeDefault
	}
	c := &Controller{
		cfg:     cfg,
		toggler: toggler,
		gate:    gate,
		timeout: DefaultToggleTimeout,
		auth: entity.MembershipState{
			PromptID: cfg.PromptID,
			Kind:     cfg.Kind,
			Count:    max(0, cfg.InitialCount),
		},
		phase:   Resting{},
		updates: make(chan View, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c, nil
}

// Start attaches the live subscription, if one was configured. Anonymous callers get
// no subscription; their view only changes through the initial count.
func (c *Controller) Start(ctx context.Context) error {
	if c.source == nil {
		return nil
	}
	if _, ok := c.gate.CallerIdentity(); !ok {
		return nil
	}
	subCtx, cancel := context.WithCancel(c.ctx)
	stop := context.AfterFunc(ctx, cancel)
	states, err := c.source.Subscribe(subCtx, c.cfg.PromptID, c.cfg.Kind)
	if err != nil {
		stop()
		cancel()
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		stop()
		cancel()
		return nil
	}
	c.wg.Add(1)
	c.mu.Unlock()
	go func() {
		defer c.wg.Done()
		defer stop()
		defer cancel()
		for s := range states {
			c.Apply(s)
		}
	}()
	return nil
}

// Click handles a press of the button.
func (c *Controller) Click(ev Event) {
	if ev != nil {
		ev.StopPropagation()
		ev.PreventDefault()
	}
	if _, ok := c.gate.CallerIdentity(); !ok {
		c.gate.RequireSignIn()
		return
	}

	c.mu.Lock()
	if c.inFlight || c.closed {
		c.mu.Unlock()
		return
	}
	base := c.authSnapshot()
	c.phase = Pending{Guess: base.flipped(), Base: base}
	c.inFlight = true
	c.settled = make(chan struct{})
	c.wg.Add(1)
	c.publishLocked()
	c.mu.Unlock()

	go c.send()
}

func (c *Controller) send() {
	defer c.wg.Done()
	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	state, err := c.toggler.Toggle(ctx, c.cfg.PromptID, c.cfg.Kind)
	if err != nil {
		c.rollback(failure.Classify(err))
		return
	}

	c.mu.Lock()
	c.mergeLocked(state)
	c.phase = Resting{}
	c.publishLocked()
	closed := c.closed
	c.mu.Unlock()

	if c.notifier != nil && !closed {
		c.notifier.Notify(successMessage(c.cfg.Kind, state.Active))
	}
	c.settle()
}

func (c *Controller) rollback(f failure.Failure) {
	c.mu.Lock()
	c.phase = RolledBack{Failure: f}
	c.publishLocked()
	closed := c.closed
	c.mu.Unlock()

	if !closed {
		f.Accept(failureRouter{gate: c.gate, ec: ErrorContext{
			PromptID: c.cfg.PromptID,
			Kind:     c.cfg.Kind,
			Action:   "toggle " + string(c.cfg.Kind),
		}})
	}
	c.settle()
}

// Apply merges an authoritative state. States older than the newest one seen are
// ignored. While a toggle is pending the guess is rebased onto the new state.
func (c *Controller) Apply(s entity.MembershipState) {
	c.mu.Lock()
	if !c.mergeLocked(s) {
		c.mu.Unlock()
		return
	}
	if p, ok := c.phase.(Pending); ok {
		base := c.authSnapshot()
		guess := base
		if base.Active != p.Guess.Active {
			guess = base.flipped()
		}
		c.phase = Pending{Guess: guess, Base: base}
	}
	c.publishLocked()
	c.mu.Unlock()
}

// settle ends the in-flight toggle once its outcome has been reported.
func (c *Controller) settle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	close(c.settled)
	c.settled = nil
	c.publishLocked()
}

func (c *Controller) mergeLocked(s entity.MembershipState) bool {
	if s.PromptID != "" && s.PromptID != c.cfg.PromptID {
		return false
	}
	if s.Kind != "" && s.Kind != c.cfg.Kind {
		return false
	}
	if s.Revision < c.auth.Revision {
		return false
	}
	c.auth.Active = s.Active
	c.auth.Count = max(0, s.Count)
	c.auth.Revision = s.Revision
	return true
}

func (c *Controller) authSnapshot() Snapshot {
	return Snapshot{Active: c.auth.Active, Count: c.auth.Count}
}

// View returns what the button shows now.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	shown := c.authSnapshot()
	if p, ok := c.phase.(Pending); ok {
		shown = p.Guess
	}
	return View{
		Count:     shown.Count,
		Active:    shown.Active,
		Busy:      c.inFlight,
		ShowCount: !c.cfg.HideCount,
		Size:      c.cfg.Size,
		Phase:     c.phase,
	}
}

// Updates delivers the view after every change. A slow reader only sees the latest.
// The channel is closed by Close.
func (c *Controller) Updates() <-chan View {
	return c.updates
}

// publishLocked offers the current view. Sends happen under mu so views are
// delivered in the order they were produced.
func (c *Controller) publishLocked() {
	if c.closed {
		return
	}
	v := c.viewLocked()
	select {
	case c.updates <- v:
		return
	default:
	}
	select {
	case <-c.updates:
	default:
	}
	c.updates <- v
}

// Close cancels any in-flight toggle and the subscription, and waits for them to stop.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.updates)
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// Wait blocks until no toggle is in flight or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	settled := c.settled
	c.mu.Unlock()
	if settled == nil {
		return nil
	}
	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
