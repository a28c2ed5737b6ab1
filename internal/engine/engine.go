// Package engine ties the scheduler, priority order and queue assembler to a
// store. Each method is one user-facing operation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/spaced-review/internal/metrics"
	"github.com/rcliao/spaced-review/internal/priority"
	"github.com/rcliao/spaced-review/internal/scheduler"
	"github.com/rcliao/spaced-review/internal/store"
)

// MaxSaveAttempts bounds how often an order mutation is retried after a
// version conflict.
const MaxSaveAttempts = 3

// Settings are the review options read from configuration.
type Settings struct {
	DailyLimit      int
	DefaultPriority int
	Algorithm       scheduler.Algorithm
	Cramming        bool
	MixedMode       bool
	RebuildInterval time.Duration
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		DefaultPriority: 70,
		Algorithm:       scheduler.AlgorithmClassic,
		MixedMode:       true,
		RebuildInterval: time.Second,
	}
}

// Engine runs review operations against a store. It is safe for concurrent
// use as long as the store is.
type Engine struct {
	store     store.Store
	settings  Settings
	logger    *zap.Logger
	observer  metrics.Observer
	model     scheduler.MemoryModel
	now       func() time.Time
	rebuilder *store.Rebuilder[*priority.Manager]
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithObserver(o metrics.Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMemoryModel sets the adaptive scheduler's memory model.
func WithMemoryModel(m scheduler.MemoryModel) Option {
	return func(e *Engine) { e.model = m }
}

// New returns an engine over st.
func New(st store.Store, settings Settings, opts ...Option) (*Engine, error) {
	if st == nil {
		return nil, errors.New("engine: nil store")
	}
	if _, err := scheduler.ParseAlgorithm(string(settings.Algorithm)); err != nil {
		return nil, err
	}
	e := &Engine{
		settings: settings,
		logger:   zap.NewNop(),
		observer: metrics.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.observer == nil {
		e.observer = metrics.Nop()
	}
	e.store = &observedStore{Store: st, observer: e.observer}
	e.rebuilder = store.NewRebuilder[*priority.Manager](settings.RebuildInterval, e.logger)
	return e, nil
}

// Settings returns the engine's review settings.
func (e *Engine) Settings() Settings { return e.settings }

// ResetDocument discards rebuild bookkeeping for docID. A rebuild still in
// flight finishes but its result is dropped.
func (e *Engine) ResetDocument(docID string) {
	e.rebuilder.Reset(docID)
}

// mutateOrder loads the order, applies fn to a fresh manager and saves it
// when something changed, retrying on version conflicts. The returned
// manager reflects the saved state.
func (e *Engine) mutateOrder(ctx context.Context, docID, op string, fn func(m *priority.Manager) error) (*priority.Manager, error) {
	var lastErr error
	for attempt := 1; attempt <= MaxSaveAttempts; attempt++ {
		snap, err := e.store.LoadOrder(ctx, docID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		e.logOrderFormat(docID, snap)

		m := priority.Deserialize(snap.IDs)
		if err := fn(m); err != nil {
			return nil, err
		}
		if !m.Dirty() && !snap.Format.NeedsMigration() {
			return m, nil
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		_, err = e.store.SaveOrder(ctx, docID, m.Serialize(), snap.Version)
		if err == nil {
			m.MarkSaved()
			return m, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		e.observer.RecordConflict(op)
		e.logger.Debug("priority order conflict, retrying",
			zap.String("doc", docID), zap.String("op", op), zap.Int("attempt", attempt))
		lastErr = err
	}
	return nil, fmt.Errorf("%s: gave up after %d attempts: %w", op, MaxSaveAttempts, lastErr)
}

func (e *Engine) logOrderFormat(docID string, snap store.OrderSnapshot) {
	switch {
	case snap.Format == priority.FormatMalformed:
		e.logger.Warn("malformed priority order, starting from empty", zap.String("doc", docID))
	case snap.Format.NeedsMigration():
		e.logger.Info("migrating legacy priority order",
			zap.String("doc", docID), zap.Stringer("format", snap.Format), zap.Int("items", len(snap.IDs)))
	}
}
