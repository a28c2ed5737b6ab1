// Package model defines the core review data types.
package model

import (
	"errors"
	"fmt"
	"time"
)

// Grade is a recall score from 0 (total lapse) to 5 (perfect).
type Grade int

const (
	MinGrade Grade = 0
	MaxGrade Grade = 5

	// PassingGrade is the lowest grade counted as a successful recall.
	PassingGrade Grade = 3
)

// Valid reports whether g is within [MinGrade, MaxGrade].
func (g Grade) Valid() bool {
	return g >= MinGrade && g <= MaxGrade
}

// Passed reports whether g counts as a successful recall.
func (g Grade) Passed() bool {
	return g >= PassingGrade
}

// ReviewMode tags which variant a Session carries.
type ReviewMode string

const (
	ModeClassic  ReviewMode = "classic"
	ModeAdaptive ReviewMode = "adaptive"
	ModeFixed    ReviewMode = "fixed"
)

// IntervalUnit is the unit of a fixed-interval review.
type IntervalUnit string

const (
	UnitDays   IntervalUnit = "days"
	UnitWeeks  IntervalUnit = "weeks"
	UnitMonths IntervalUnit = "months"
	UnitYears  IntervalUnit = "years"
)

// Days returns the approximate length of one unit in days.
func (u IntervalUnit) Days() (int, error) {
	switch u {
	case UnitDays:
		return 1, nil
	case UnitWeeks:
		return 7, nil
	case UnitMonths:
		return 30, nil
	case UnitYears:
		return 365, nil
	}
	return 0, fmt.Errorf("unknown interval unit %q (valid: days, weeks, months, years)", u)
}

const (
	DefaultEaseFactor      = 2.5
	DefaultFixedMultiplier = 3
)

// GradedState is the memory state written by a graded review.
type GradedState struct {
	Grade       Grade   `json:"grade"`
	Interval    int     `json:"interval"`
	Repetitions int     `json:"repetitions"`
	EaseFactor  float64 `json:"ease_factor"`
}

// AdaptiveState extends GradedState with the memory model's opaque card.
// Card is empty when the adaptive scheduler degraded to the simple schedule.
type AdaptiveState struct {
	GradedState
	Card string `json:"card,omitempty"`
}

// FixedInterval is the schedule of an ungraded fixed-interval review.
type FixedInterval struct {
	Multiplier int          `json:"multiplier"`
	Unit       IntervalUnit `json:"unit"`
}

// Session is one immutable review record. Exactly one of Classic, Adaptive
// or Fixed is set, matching Mode.
type Session struct {
	ID          string         `json:"id"`
	ItemID      string         `json:"item_id"`
	CreatedAt   time.Time      `json:"created_at"`
	Mode        ReviewMode     `json:"mode"`
	NextDueDate time.Time      `json:"next_due_date"`
	Classic     *GradedState   `json:"classic,omitempty"`
	Adaptive    *AdaptiveState `json:"adaptive,omitempty"`
	Fixed       *FixedInterval `json:"fixed,omitempty"`
}

// ErrInvalidSession is returned by Validate for inconsistent variants.
var ErrInvalidSession = errors.New("invalid session")

// Validate checks that the tagged variant matches Mode.
func (s Session) Validate() error {
	set := 0
	if s.Classic != nil {
		set++
	}
	if s.Adaptive != nil {
		set++
	}
	if s.Fixed != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: expected exactly one variant, got %d", ErrInvalidSession, set)
	}

	switch s.Mode {
	case ModeClassic:
		if s.Classic == nil {
			return fmt.Errorf("%w: classic mode without classic state", ErrInvalidSession)
		}
	case ModeAdaptive:
		if s.Adaptive == nil {
			return fmt.Errorf("%w: adaptive mode without adaptive state", ErrInvalidSession)
		}
	case ModeFixed:
		if s.Fixed == nil {
			return fmt.Errorf("%w: fixed mode without interval", ErrInvalidSession)
		}
		if _, err := s.Fixed.Unit.Days(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSession, err)
		}
	default:
		return fmt.Errorf("%w: unknown review mode %q", ErrInvalidSession, s.Mode)
	}
	return nil
}

// Graded returns the graded memory state of a classic or adaptive session.
func (s Session) Graded() (GradedState, bool) {
	switch {
	case s.Classic != nil:
		return *s.Classic, true
	case s.Adaptive != nil:
		return s.Adaptive.GradedState, true
	}
	return GradedState{}, false
}

// IsDue reports whether the session's next due date has arrived at now.
func (s Session) IsDue(now time.Time) bool {
	return !s.NextDueDate.IsZero() && !s.NextDueDate.After(now)
}

// NewGradedState returns the starting memory state of an item that has
// never been graded.
func NewGradedState() GradedState {
	return GradedState{EaseFactor: DefaultEaseFactor}
}

// History maps item identifiers to their review sessions, oldest first.
type History map[string][]Session

// Latest returns the most recent session for id.
func (h History) Latest(id string) (Session, bool) {
	sessions := h[id]
	if len(sessions) == 0 {
		return Session{}, false
	}
	return sessions[len(sessions)-1], true
}

// IsNew reports whether id has no review history.
func (h History) IsNew(id string) bool {
	return len(h[id]) == 0
}
