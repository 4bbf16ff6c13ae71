package scripts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"kontenai/internal/generation"
	"kontenai/internal/logging"
)

const (
	defaultCallTimeout    = 90 * time.Second
	defaultMaxConcurrency = 4
)

// Generator produces one script body.
type Generator interface {
	DeriveScript(ctx context.Context, idea string, format generation.Format) (generation.ScriptBody, error)
}

// Cache is the per-idea grid of script variants.
type Cache struct {
	gen            Generator
	logger         *slog.Logger
	callTimeout    time.Duration
	maxConcurrency int

	mu          sync.Mutex
	epoch       uint64
	epochCtx    context.Context
	cancelEpoch context.CancelFunc
	idea        string
	slots       []*slot
	listeners   map[int]func(Snapshot)
	nextListen  int
}

// Option customizes a Cache.
type Option func(*Cache)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logging.NewComponentLogger(logger, "scripts")
	}
}

// WithCallTimeout bounds every generator call. Zero or less disables it.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Cache) { c.callTimeout = d }
}

// WithMaxConcurrency bounds the in-flight calls of a batch.
func WithMaxConcurrency(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxConcurrency = n
		}
	}
}

// NewCache returns an empty cache backed by gen.
func NewCache(gen Generator, opts ...Option) *Cache {
	c := &Cache{
		gen:            gen,
		logger:         logging.NewComponentLogger(nil, "scripts"),
		callTimeout:    defaultCallTimeout,
		maxConcurrency: defaultMaxConcurrency,
		listeners:      map[int]func(Snapshot){},
	}
	c.epochCtx, c.cancelEpoch = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateInitialBatch discards the current grid and fills count new slots
// for idea in format. Calls run concurrently and each slot settles on its
// own; the returned failures are the slots that did not produce a body. When
// the cache is reset before the batch settles, ErrStaleResult is returned.
func (c *Cache) GenerateInitialBatch(ctx context.Context, idea string, count int, format generation.Format) ([]*SlotError, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, errors.New("script idea is empty")
	}
	if count < 1 {
		return nil, fmt.Errorf("variant count must be at least 1, got %d", count)
	}
	if _, err := generation.ParseFormat(string(format)); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.resetLocked()
	c.idea = idea
	c.slots = make([]*slot, count)
	for i := range c.slots {
		c.slots[i] = &slot{pending: format}
	}
	epoch := c.epoch
	epochCtx := c.epochCtx
	c.mu.Unlock()
	c.notify()

	c.logger.Info("script batch started", logging.Args(
		logging.Int("variants", count),
		logging.String(logging.FieldFormat, string(format)),
		logging.Uint64(logging.FieldEpoch, epoch),
	)...)

	failures := make([]*SlotError, count)
	var stale atomic.Bool

	var g errgroup.Group
	g.SetLimit(c.maxConcurrency)
	for i := range count {
		g.Go(func() error {
			err := c.fill(ctx, epochCtx, epoch, i, idea, format, "")
			var slotErr *SlotError
			switch {
			case errors.Is(err, ErrStaleResult):
				stale.Store(true)
			case errors.As(err, &slotErr):
				failures[i] = slotErr
			}
			return nil
		})
	}
	_ = g.Wait()

	if stale.Load() {
		return nil, ErrStaleResult
	}
	out := failures[:0]
	for _, f := range failures {
		if f != nil {
			out = append(out, f)
		}
	}
	return out, nil
}

// SwitchFormat shows format in slot id. A cached format is shown without a
// call. Otherwise exactly one call is issued for that slot; on failure the
// slot keeps its previous format and a *SlotError is returned.
func (c *Cache) SwitchFormat(ctx context.Context, id int, format generation.Format) error {
	if _, err := generation.ParseFormat(string(format)); err != nil {
		return err
	}

	c.mu.Lock()
	s, err := c.slotLocked(id)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if _, ok := s.bodies[format]; ok {
		changed := s.shown != format
		s.shown = format
		c.mu.Unlock()
		if changed {
			c.notify()
		}
		return nil
	}
	if s.pending != "" {
		c.mu.Unlock()
		return &SlotError{Slot: id, Format: format, Err: ErrSlotBusy}
	}
	s.pending = format
	issuedShown := s.shown
	epoch := c.epoch
	epochCtx := c.epochCtx
	idea := c.idea
	c.mu.Unlock()
	c.notify()

	return c.fill(ctx, epochCtx, epoch, id, idea, format, issuedShown)
}

// Reset discards every slot and advances the epoch. Outstanding calls are
// cancelled and their results ignored.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
	c.notify()
}

// Snapshot returns a copy of the visible state.
func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Idea returns the idea of the current batch.
func (c *Cache) Idea() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idea
}

// Epoch returns the current epoch.
func (c *Cache) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Render returns the shown script of slot id as display text.
func (c *Cache) Render(id int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.slotLocked(id)
	if err != nil {
		return "", err
	}
	body, ok := s.bodies[s.shown]
	if !ok {
		return "", fmt.Errorf("variant %d has no script yet", id+1)
	}
	return body.Render(), nil
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change and must not block. The
// returned func removes the subscription.
func (c *Cache) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.nextListen
	c.nextListen++
	c.listeners[key] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, key)
	}
}

// fill runs one call for slot id and merges the outcome if epoch is still
// current. issuedShown is the format the slot showed when the call was
// issued; the new body is only shown if the user has not moved on since.
func (c *Cache) fill(ctx, epochCtx context.Context, epoch uint64, id int, idea string, format generation.Format, issuedShown generation.Format) error {
	c.mu.Lock()
	current := c.epoch == epoch
	c.mu.Unlock()
	if !current || epochCtx.Err() != nil {
		c.logStale("stale script call skipped", id, format, epoch)
		return ErrStaleResult
	}

	start := time.Now()
	body, callErr := c.derive(ctx, epochCtx, idea, format)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.logStale("stale script result dropped", id, format, epoch)
		return ErrStaleResult
	}
	s := c.slots[id]
	s.pending = ""
	if callErr != nil {
		slotErr := &SlotError{Slot: id, Format: format, Err: callErr}
		s.err = slotErr
		c.mu.Unlock()
		c.notify()
		logging.WarnWithContext(c.logger, "script variant failed", "script_slot_failed",
			logging.Int(logging.FieldSlotID, id),
			logging.String(logging.FieldFormat, string(format)),
			logging.Error(callErr),
			logging.String(logging.FieldErrorHint, "retry this variant or pick another format"),
			logging.String(logging.FieldImpact, "other variants are unaffected"),
		)
		return slotErr
	}
	if s.bodies == nil {
		s.bodies = map[generation.Format]generation.ScriptBody{}
	}
	s.bodies[format] = body
	if s.shown == issuedShown {
		s.shown = format
	}
	s.err = nil
	c.mu.Unlock()
	c.notify()
	c.logger.Debug("script variant ready", logging.Args(
		logging.Int(logging.FieldSlotID, id),
		logging.String(logging.FieldFormat, string(format)),
		logging.Duration("elapsed", time.Since(start)),
	)...)
	return nil
}

// derive calls the generator under the caller's context, the epoch context
// and the call timeout. The timeout holds even if the generator ignores its
// context.
func (c *Cache) derive(ctx, epochCtx context.Context, idea string, format generation.Format) (generation.ScriptBody, error) {
	callCtx, cancel := context.WithCancel(epochCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if c.callTimeout > 0 {
		var cancelTimeout context.CancelFunc
		callCtx, cancelTimeout = context.WithTimeout(callCtx, c.callTimeout)
		defer cancelTimeout()
	}

	type result struct {
		body generation.ScriptBody
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := c.gen.DeriveScript(callCtx, idea, format)
		done <- result{body: body, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return generation.ScriptBody{}, asGenerationError(r.err)
		}
		if r.body.IsZero() {
			return generation.ScriptBody{}, &generation.Error{Op: "script", Err: errors.New("empty script")}
		}
		return r.body, nil
	case <-callCtx.Done():
		err := context.Cause(callCtx)
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("no response within %s: %w", c.callTimeout, context.DeadlineExceeded)
		}
		return generation.ScriptBody{}, &generation.Error{Op: "script", Err: err}
	}
}

func (c *Cache) logStale(msg string, id int, format generation.Format, epoch uint64) {
	c.logger.Debug(msg, logging.Args(
		logging.Int(logging.FieldSlotID, id),
		logging.String(logging.FieldFormat, string(format)),
		logging.Uint64(logging.FieldEpoch, epoch),
	)...)
}

func asGenerationError(err error) error {
	var genErr *generation.Error
	if errors.As(err, &genErr) {
		return err
	}
	return &generation.Error{Op: "script", Err: err}
}

func (c *Cache) resetLocked() {
	c.cancelEpoch()
	c.epoch++
	c.epochCtx, c.cancelEpoch = context.WithCancel(context.Background())
	c.idea = ""
	c.slots = nil
}

func (c *Cache) slotLocked(id int) (*slot, error) {
	if id < 0 || id >= len(c.slots) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSlot, id)
	}
	return c.slots[id], nil
}

func (c *Cache) snapshotLocked() Snapshot {
	snap := Snapshot{Epoch: c.epoch, Idea: c.idea, Slots: make([]SlotState, len(c.slots))}
	for i, s := range c.slots {
		snap.Slots[i] = s.state(i)
	}
	return snap
}

func (c *Cache) notify() {
	c.mu.Lock()
	if len(c.listeners) == 0 {
		c.mu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}
}
