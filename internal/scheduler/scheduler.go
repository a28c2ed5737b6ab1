// Package scheduler converts review grades into a new memory state and the
// next due date. Two interchangeable algorithms share the Scheduler contract;
// fixed-interval reviews bypass both.
package scheduler

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/spaced-review/internal/model"
)

// Algorithm names a graded scheduling strategy.
type Algorithm string

const (
	AlgorithmClassic  Algorithm = "classic"
	AlgorithmAdaptive Algorithm = "adaptive"
)

var (
	ErrInvalidGrade       = errors.New("grade out of range 0-5")
	ErrUnknownAlgorithm   = errors.New("unknown scheduling algorithm")
	errMissingMemoryModel = errors.New("adaptive scheduler requires a memory model")
)

// Input is the prior state of an item plus the grade being applied.
type Input struct {
	ItemID string
	// Now is the creation time of the session being written.
	Now   time.Time
	Prior model.GradedState
	// Card is the memory model's serialized state from the prior session.
	Card  string
	Grade model.Grade
}

// Result is the outcome of scheduling one graded review.
type Result struct {
	State        model.GradedState `json:"state"`
	Card         string            `json:"card,omitempty"`
	IntervalDays int               `json:"interval_days"`
	NextDueDate  time.Time         `json:"next_due_date"`

	// Degraded is set when the adaptive path failed and the simple
	// doubling schedule was used instead.
	Degraded bool  `json:"degraded,omitempty"`
	Cause    error `json:"-"`
}

// Scheduler computes the next memory state for a graded review.
type Scheduler interface {
	Algorithm() Algorithm
	Schedule(in Input) (Result, error)
}

// Option configures a Scheduler built by New.
type Option func(*options)

type options struct {
	logger *zap.Logger
	model  MemoryModel
}

// WithLogger sets the logger used to report degraded schedules.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMemoryModel overrides the adaptive scheduler's memory model.
func WithMemoryModel(m MemoryModel) Option {
	return func(o *options) { o.model = m }
}

// New returns the scheduler for alg.
func New(alg Algorithm, opts ...Option) (Scheduler, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	switch alg {
	case AlgorithmClassic, "":
		return Classic{}, nil
	case AlgorithmAdaptive:
		if o.model == nil {
			o.model = NewFSRSModel()
		}
		return NewAdaptive(o.model, o.logger)
	}
	return nil, fmt.Errorf("%w: %q (valid: classic, adaptive)", ErrUnknownAlgorithm, alg)
}

// ParseAlgorithm validates a configured algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AlgorithmClassic, AlgorithmAdaptive:
		return Algorithm(s), nil
	}
	return "", fmt.Errorf("%w: %q (valid: classic, adaptive)", ErrUnknownAlgorithm, s)
}

// AddDays moves t forward by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

func checkGrade(g model.Grade) error {
	if !g.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidGrade, g)
	}
	return nil
}
