package scripts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"kontenai/internal/generation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// countingGenerator records calls per format and delegates to fn.
type countingGenerator struct {
	mu    sync.Mutex
	seq   int
	calls map[generation.Format]int
	fn    func(ctx context.Context, seq int, idea string, format generation.Format) (generation.ScriptBody, error)
}

func newCountingGenerator(fn func(ctx context.Context, seq int, idea string, format generation.Format) (generation.ScriptBody, error)) *countingGenerator {
	return &countingGenerator{calls: map[generation.Format]int{}, fn: fn}
}

func (g *countingGenerator) DeriveScript(ctx context.Context, idea string, format generation.Format) (generation.ScriptBody, error) {
	g.mu.Lock()
	g.seq++
	seq := g.seq
	g.calls[format]++
	g.mu.Unlock()
	return g.fn(ctx, seq, idea, format)
}

func (g *countingGenerator) count(format generation.Format) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[format]
}

func (g *countingGenerator) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

func echoScript(_ context.Context, seq int, idea string, format generation.Format) (generation.ScriptBody, error) {
	text := fmt.Sprintf("%s #%d", format, seq)
	if format.Segmented() {
		return generation.Segmented(idea, text), nil
	}
	return generation.Monolithic(text), nil
}

func TestSlotIndependence(t *testing.T) {
	gen := newCountingGenerator(func(ctx context.Context, seq int, idea string, format generation.Format) (generation.ScriptBody, error) {
		if seq == 2 {
			return generation.ScriptBody{}, errors.New("upstream rejected")
		}
		return echoScript(ctx, seq, idea, format)
	})
	// One call at a time so the second call belongs to slot 1.
	cache := NewCache(gen, WithMaxConcurrency(1))

	failures, err := cache.GenerateInitialBatch(context.Background(), "Why bread fails", 3, generation.FormatVideo)
	if err != nil {
		t.Fatalf("GenerateInitialBatch: %v", err)
	}
	if len(failures) != 1 || failures[0].Slot != 1 {
		t.Fatalf("failures = %v", failures)
	}
	if !errors.Is(failures[0], generation.ErrGeneration) {
		t.Fatalf("slot error does not wrap ErrGeneration: %v", failures[0])
	}

	snap := cache.Snapshot()
	if len(snap.Slots) != 3 {
		t.Fatalf("slots = %d", len(snap.Slots))
	}
	for _, id := range []int{0, 2} {
		s := snap.Slots[id]
		if s.Phase() != PhaseReady || s.Err != nil {
			t.Fatalf("slot %d = %+v", id, s)
		}
	}
	if got, _ := cache.Render(0); got != "video #1" {
		t.Fatalf("slot 0 = %q", got)
	}
	if got, _ := cache.Render(2); got != "video #3" {
		t.Fatalf("slot 2 = %q", got)
	}
	failed := snap.Slots[1]
	if failed.Phase() != PhaseFailed {
		t.Fatalf("slot 1 phase = %s", failed.Phase())
	}
	var slotErr *SlotError
	if !errors.As(failed.Err, &slotErr) || slotErr.Slot != 1 || slotErr.Format != generation.FormatVideo {
		t.Fatalf("slot 1 error = %v", failed.Err)
	}
}

func TestFailedSlotCanRetry(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	gen := newCountingGenerator(func(ctx context.Context, seq int, idea string, format generation.Format) (generation.ScriptBody, error) {
		if fail.Load() {
			return generation.ScriptBody{}, errors.New("offline")
		}
		return echoScript(ctx, seq, idea, format)
	})
	cache := NewCache(gen)

	failures, err := cache.GenerateInitialBatch(context.Background(), "idea", 1, generation.FormatThread)
	if err != nil || len(failures) != 1 {
		t.Fatalf("batch = %v, %v", failures, err)
	}
	fail.Store(false)
	if err := cache.SwitchFormat(context.Background(), 0, generation.FormatThread); err != nil {
		t.Fatalf("retry: %v", err)
	}
	s := cache.Snapshot().Slots[0]
	if s.Phase() != PhaseReady || s.Err != nil {
		t.Fatalf("slot after retry = %+v", s)
	}
}

func TestFormatCacheMonotonicity(t *testing.T) {
	gen := newCountingGenerator(echoScript)
	cache := NewCache(gen)
	ctx := context.Background()

	if _, err := cache.GenerateInitialBatch(ctx, "idea", 2, generation.FormatThread); err != nil {
		t.Fatalf("GenerateInitialBatch: %v", err)
	}
	if err := cache.SwitchFormat(ctx, 0, generation.FormatCarousel); err != nil {
		t.Fatalf("switch to carousel: %v", err)
	}
	if err := cache.SwitchFormat(ctx, 0, generation.FormatThread); err != nil {
		t.Fatalf("switch back: %v", err)
	}
	if err := cache.SwitchFormat(ctx, 0, generation.FormatCarousel); err != nil {
		t.Fatalf("switch again: %v", err)
	}

	if got := gen.count(generation.FormatThread); got != 2 {
		t.Fatalf("thread calls = %d, want 2 (one per slot)", got)
	}
	if got := gen.count(generation.FormatCarousel); got != 1 {
		t.Fatalf("carousel calls = %d, want 1", got)
	}

	s := cache.Snapshot().Slots[0]
	if s.Shown != generation.FormatCarousel {
		t.Fatalf("shown = %s", s.Shown)
	}
	want := []generation.Format{generation.FormatThread, generation.FormatCarousel}
	if got := s.Formats(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("formats = %v", got)
	}
	if other := cache.Snapshot().Slots[1]; len(other.Bodies) != 1 {
		t.Fatalf("slot 1 touched by slot 0 switch: %+v", other)
	}
}

func TestSwitchFormatFailureKeepsShown(t *testing.T) {
	gen := newCountingGenerator(func(ctx context.Context, seq int, idea string, format generation.Format) (generation.ScriptBody, error) {
		if format == generation.FormatVideo {
			return generation.ScriptBody{}, errors.New("video model down")
		}
		return echoScript(ctx, seq, idea, format)
	})
	cache := NewCache(gen)
	ctx := context.Background()
	if _, err := cache.GenerateInitialBatch(ctx, "idea", 1, generation.FormatThread); err != nil {
		t.Fatal(err)
	}
	before, _ := cache.Render(0)

	err := cache.SwitchFormat(ctx, 0, generation.FormatVideo)
	var slotErr *SlotError
	if !errors.As(err, &slotErr) || slotErr.Slot != 0 || slotErr.Format != generation.FormatVideo {
		t.Fatalf("SwitchFormat error = %v", err)
	}

	s := cache.Snapshot().Slots[0]
	if s.Shown != generation.FormatThread || s.Phase() != PhaseReady {
		t.Fatalf("slot after failure = %+v", s)
	}
	if after, _ := cache.Render(0); after != before {
		t.Fatalf("render changed: %q -> %q", before, after)
	}
}

func TestStaleEpochDiscard(t *testing.T) {
	started := make(chan struct{}, 3)
	release := make(chan struct{})
	gen := newCountingGenerator(func(_ context.Context, seq int, idea string, format generation.Format) (generation.ScriptBody, error) {
		started <- struct{}{}
		<-release
		return generation.Monolithic("late"), nil
	})
	cache := NewCache(gen, WithMaxConcurrency(3))

	done := make(chan error, 1)
	go func() {
		_, err := cache.GenerateInitialBatch(context.Background(), "idea", 3, generation.FormatVideo)
		done <- err
	}()
	for range 3 {
		<-started
	}
	cache.Reset()
	close(release)

	if err := <-done; !errors.Is(err, ErrStaleResult) {
		t.Fatalf("batch error = %v, want ErrStaleResult", err)
	}
	if got := gen.total(); got != 3 {
		t.Fatalf("generator calls = %d, want 3", got)
	}
	snap := cache.Snapshot()
	if len(snap.Slots) != 0 || snap.Idea != "" {
		t.Fatalf("stale results became visible: %+v", snap)
	}
	if snap.Epoch != 2 {
		t.Fatalf("epoch = %d, want 2", snap.Epoch)
	}
}

func TestResetSkipsQueuedCalls(t *testing.T) {
	started := make(chan struct{}, 6)
	release := make(chan struct{})
	gen := newCountingGenerator(func(context.Context, int, string, generation.Format) (generation.ScriptBody, error) {
		started <- struct{}{}
		<-release
		return generation.Monolithic("late"), nil
	})
	cache := NewCache(gen, WithMaxConcurrency(2))

	done := make(chan error, 1)
	go func() {
		_, err := cache.GenerateInitialBatch(context.Background(), "idea", 6, generation.FormatVideo)
		done <- err
	}()
	for range 2 {
		<-started
	}
	cache.Reset()
	close(release)

	if err := <-done; !errors.Is(err, ErrStaleResult) {
		t.Fatalf("batch error = %v, want ErrStaleResult", err)
	}
	if got := gen.total(); got != 2 {
		t.Fatalf("generator calls = %d, want 2 (queued calls must be skipped after reset)", got)
	}
	if snap := cache.Snapshot(); len(snap.Slots) != 0 {
		t.Fatalf("stale slots visible: %+v", snap)
	}
}

func TestLateResultKeepsUserChoice(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	gen := newCountingGenerator(func(ctx context.Context, seq int, idea string, format generation.Format) (generation.ScriptBody, error) {
		if format == generation.FormatCarousel {
			started <- struct{}{}
			<-release
		}
		return echoScript(ctx, seq, idea, format)
	})
	cache := NewCache(gen)
	ctx := context.Background()
	if _, err := cache.GenerateInitialBatch(ctx, "idea", 1, generation.FormatThread); err != nil {
		t.Fatal(err)
	}
	if err := cache.SwitchFormat(ctx, 0, generation.FormatVideo); err != nil {
		t.Fatal(err)
	}
	if err := cache.SwitchFormat(ctx, 0, generation.FormatThread); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- cache.SwitchFormat(ctx, 0, generation.FormatCarousel) }()
	<-started
	if err := cache.SwitchFormat(ctx, 0, generation.FormatVideo); err != nil {
		t.Fatalf("cached switch while busy: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("SwitchFormat: %v", err)
	}

	s := cache.Snapshot().Slots[0]
	if s.Shown != generation.FormatVideo {
		t.Fatalf("shown = %s, want video", s.Shown)
	}
	if _, ok := s.Bodies[generation.FormatCarousel]; !ok {
		t.Fatalf("carousel body not cached: %v", s.Formats())
	}
}

func TestCallTimeoutIsEnforced(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	gen := newCountingGenerator(func(context.Context, int, string, generation.Format) (generation.ScriptBody, error) {
		<-release
		return generation.Monolithic("too late"), nil
	})
	cache := NewCache(gen, WithCallTimeout(20*time.Millisecond))

	failures, err := cache.GenerateInitialBatch(context.Background(), "idea", 2, generation.FormatVideo)
	if err != nil {
		t.Fatalf("GenerateInitialBatch: %v", err)
	}
	if len(failures) != 2 {
		t.Fatalf("failures = %v", failures)
	}
	for _, f := range failures {
		if !errors.Is(f, context.DeadlineExceeded) {
			t.Fatalf("failure = %v, want deadline exceeded", f)
		}
	}
	for _, s := range cache.Snapshot().Slots {
		if s.Busy() {
			t.Fatalf("slot %d still populating", s.ID)
		}
	}
}

func TestSwitchFormatWhileBusy(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	gen := newCountingGenerator(func(ctx context.Context, seq int, idea string, format generation.Format) (generation.ScriptBody, error) {
		if format == generation.FormatCarousel {
			started <- struct{}{}
			<-release
		}
		return echoScript(ctx, seq, idea, format)
	})
	cache := NewCache(gen)
	ctx := context.Background()
	if _, err := cache.GenerateInitialBatch(ctx, "idea", 2, generation.FormatThread); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- cache.SwitchFormat(ctx, 0, generation.FormatCarousel) }()
	<-started

	if err := cache.SwitchFormat(ctx, 0, generation.FormatVideo); !errors.Is(err, ErrSlotBusy) {
		t.Fatalf("expected ErrSlotBusy, got %v", err)
	}
	if err := cache.SwitchFormat(ctx, 0, generation.FormatThread); err != nil {
		t.Fatalf("cached switch while busy: %v", err)
	}
	if err := cache.SwitchFormat(ctx, 1, generation.FormatVideo); err != nil {
		t.Fatalf("other slot must stay interactive: %v", err)
	}
	snap := cache.Snapshot()
	if !snap.Slots[0].Busy() || snap.Slots[1].Busy() {
		t.Fatalf("busy flags = %v, %v", snap.Slots[0].Busy(), snap.Slots[1].Busy())
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("SwitchFormat: %v", err)
	}
	if got := gen.count(generation.FormatCarousel); got != 1 {
		t.Fatalf("carousel calls = %d", got)
	}
}

func TestSubscribeAndRender(t *testing.T) {
	cache := NewCache(newCountingGenerator(echoScript))

	var mu sync.Mutex
	var seen []Snapshot
	unsubscribe := cache.Subscribe(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	if _, err := cache.GenerateInitialBatch(context.Background(), "Bake better", 1, generation.FormatThread); err != nil {
		t.Fatal(err)
	}
	got, err := cache.Render(0)
	if err != nil {
		t.Fatal(err)
	}
	if want := "Bake better\n\nthread #1"; got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}

	mu.Lock()
	count := len(seen)
	last := seen[len(seen)-1]
	mu.Unlock()
	if count < 2 {
		t.Fatalf("notifications = %d, want populating and ready", count)
	}
	if last.Slots[0].Phase() != PhaseReady {
		t.Fatalf("last snapshot phase = %s", last.Slots[0].Phase())
	}

	unsubscribe()
	cache.Reset()
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != count {
		t.Fatal("listener called after unsubscribe")
	}
}

func TestInvalidRequests(t *testing.T) {
	cache := NewCache(newCountingGenerator(echoScript))
	ctx := context.Background()

	if _, err := cache.GenerateInitialBatch(ctx, "  ", 1, generation.FormatThread); err == nil {
		t.Fatal("empty idea accepted")
	}
	if _, err := cache.GenerateInitialBatch(ctx, "idea", 0, generation.FormatThread); err == nil {
		t.Fatal("zero variants accepted")
	}
	if _, err := cache.GenerateInitialBatch(ctx, "idea", 1, "reel"); err == nil {
		t.Fatal("unknown format accepted")
	}
	if err := cache.SwitchFormat(ctx, 0, generation.FormatVideo); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("SwitchFormat on empty cache = %v", err)
	}
	if _, err := cache.Render(3); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("Render on empty cache = %v", err)
	}
}
