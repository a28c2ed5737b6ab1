package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrSuperseded is returned for a rebuild whose result arrived after Reset.
var ErrSuperseded = errors.New("rebuild superseded")

// RebuildOutcome says what Run did with a request.
type RebuildOutcome int

const (
	RebuildRan RebuildOutcome = iota
	// RebuildShared means the caller joined a rebuild already in flight.
	RebuildShared
	// RebuildSkipped means the last rebuild finished within the interval.
	RebuildSkipped
)

func (o RebuildOutcome) String() string {
	switch o {
	case RebuildRan:
		return "ran"
	case RebuildShared:
		return "shared"
	case RebuildSkipped:
		return "skipped"
	}
	return "unknown"
}

type rebuildState struct {
	lastRun    time.Time
	generation uint64
}

// Rebuilder coalesces per-document rebuilds. Concurrent requests for the
// same document share one run, and a request arriving within interval of
// the last successful run is skipped. It does not lock the underlying
// store; separate processes can still race.
type Rebuilder[T any] struct {
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger

	group singleflight.Group
	mu    sync.Mutex
	state map[string]*rebuildState
}

// NewRebuilder returns a coordinator with the given coalescing window.
func NewRebuilder[T any](interval time.Duration, logger *zap.Logger) *Rebuilder[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rebuilder[T]{
		interval: interval,
		now:      time.Now,
		logger:   logger,
		state:    make(map[string]*rebuildState),
	}
}

func (r *Rebuilder[T]) stateFor(docID string) *rebuildState {
	st, ok := r.state[docID]
	if !ok {
		st = &rebuildState{}
		r.state[docID] = st
	}
	return st
}

// Run executes fn for docID unless a run is in flight or finished recently.
// A failed run clears the window so the next request retries immediately.
func (r *Rebuilder[T]) Run(ctx context.Context, docID string, fn func(context.Context) (T, error)) (T, RebuildOutcome, error) {
	var zero T

	r.mu.Lock()
	st := r.stateFor(docID)
	if !st.lastRun.IsZero() && r.now().Sub(st.lastRun) < r.interval {
		r.mu.Unlock()
		r.logger.Debug("rebuild skipped", zap.String("doc", docID))
		return zero, RebuildSkipped, nil
	}
	gen := st.generation
	r.mu.Unlock()

	v, err, shared := r.group.Do(docID, func() (interface{}, error) {
		out, err := fn(ctx)

		r.mu.Lock()
		defer r.mu.Unlock()
		st := r.stateFor(docID)
		if st.generation != gen {
			return zero, ErrSuperseded
		}
		if err != nil {
			st.lastRun = time.Time{}
			return zero, err
		}
		st.lastRun = r.now()
		return out, nil
	})

	outcome := RebuildRan
	if shared {
		outcome = RebuildShared
		r.logger.Debug("rebuild coalesced", zap.String("doc", docID))
	}
	if err != nil {
		return zero, outcome, err
	}
	out, _ := v.(T)
	return out, outcome, nil
}

// Reset forgets docID's window and supersedes any run in flight. The run
// itself is not cancelled; its result is discarded.
func (r *Rebuilder[T]) Reset(docID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.stateFor(docID)
	st.generation++
	st.lastRun = time.Time{}
	r.group.Forget(docID)
}
