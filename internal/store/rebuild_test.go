package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRebuilderSkipsWithinInterval(t *testing.T) {
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	r := NewRebuilder[int](time.Second, nil)
	r.now = func() time.Time { return clock }

	calls := 0
	fn := func(context.Context) (int, error) { calls++; return calls, nil }

	v, outcome, err := r.Run(context.Background(), doc, fn)
	if err != nil || outcome != RebuildRan || v != 1 {
		t.Fatalf("first run: %v %v %v", v, outcome, err)
	}

	clock = clock.Add(500 * time.Millisecond)
	_, outcome, _ = r.Run(context.Background(), doc, fn)
	if outcome != RebuildSkipped {
		t.Errorf("expected skip inside window, got %v", outcome)
	}

	// Other documents have their own window.
	if _, outcome, _ = r.Run(context.Background(), "other", fn); outcome != RebuildRan {
		t.Errorf("expected independent doc to run, got %v", outcome)
	}

	clock = clock.Add(time.Second)
	if _, outcome, _ = r.Run(context.Background(), doc, fn); outcome != RebuildRan {
		t.Errorf("expected run after window, got %v", outcome)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRebuilderFailureClearsWindow(t *testing.T) {
	r := NewRebuilder[int](time.Hour, nil)
	boom := errors.New("boom")

	_, _, err := r.Run(context.Background(), doc, func(context.Context) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	_, outcome, err := r.Run(context.Background(), doc, func(context.Context) (int, error) { return 7, nil })
	if err != nil || outcome != RebuildRan {
		t.Errorf("retry after failure should run: %v %v", outcome, err)
	}
}

func TestRebuilderCoalescesConcurrentRuns(t *testing.T) {
	r := NewRebuilder[int](0, nil)
	release := make(chan struct{})
	var calls atomic.Int32

	fn := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, err := r.Run(context.Background(), doc, fn)
			if err != nil {
				t.Errorf("run %d: %v", i, err)
			}
			results[i] = v
		}(i)
	}

	// Let every goroutine reach singleflight before releasing.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n < 1 || n > 5 {
		t.Errorf("unexpected call count %d", n)
	}
	for i, v := range results {
		if v != 42 {
			t.Errorf("result %d: got %d", i, v)
		}
	}
}

func TestRebuilderResetSupersedesInFlight(t *testing.T) {
	r := NewRebuilder[int](time.Hour, nil)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, _, err := r.Run(context.Background(), doc, func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		done <- err
	}()

	<-started
	r.Reset(doc)
	close(release)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}

	// The superseded run did not open a window.
	_, outcome, err := r.Run(context.Background(), doc, func(context.Context) (int, error) { return 2, nil })
	if err != nil || outcome != RebuildRan {
		t.Errorf("expected fresh run after reset, got %v %v", outcome, err)
	}
}

func TestRebuildOutcomeString(t *testing.T) {
	if RebuildShared.String() != "shared" || RebuildOutcome(9).String() != "unknown" {
		t.Error("unexpected outcome names")
	}
}
