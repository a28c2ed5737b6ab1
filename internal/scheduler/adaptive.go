package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs/v3"
	"go.uber.org/zap"

	"github.com/rcliao/spaced-review/internal/model"
)

// MemoryModel is the external memory-modeling library behind the adaptive
// scheduler. Repeat returns the card that results from rating card at now.
type MemoryModel interface {
	Repeat(card fsrs.Card, now time.Time, rating fsrs.Rating) (fsrs.Card, error)
}

// FSRSModel adapts go-fsrs to MemoryModel.
type FSRSModel struct {
	f *fsrs.FSRS
}

// NewFSRSModel returns a model using the library's default parameters.
func NewFSRSModel() *FSRSModel {
	return &FSRSModel{f: fsrs.NewFSRS(fsrs.DefaultParam())}
}

// Repeat runs one review through the library. Panics raised by the library
// are returned as errors.
func (m *FSRSModel) Repeat(card fsrs.Card, now time.Time, rating fsrs.Rating) (next fsrs.Card, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("memory model panic: %v", r)
		}
	}()

	info, ok := m.f.Repeat(card, now)[rating]
	if !ok {
		return fsrs.Card{}, fmt.Errorf("memory model returned no schedule for rating %d", rating)
	}
	return info.Card, nil
}

// RatingForGrade maps a 0-5 grade onto the memory model's four-point scale.
func RatingForGrade(g model.Grade) fsrs.Rating {
	switch g {
	case 0, 1:
		return fsrs.Again
	case 2:
		return fsrs.Hard
	case 3, 4:
		return fsrs.Good
	case 5:
		return fsrs.Easy
	}
	return fsrs.Good
}

// Adaptive schedules through a MemoryModel. Any failure in that path
// degrades to a doubling schedule instead of returning an error.
type Adaptive struct {
	model  MemoryModel
	logger *zap.Logger
}

// NewAdaptive builds an adaptive scheduler around m.
func NewAdaptive(m MemoryModel, logger *zap.Logger) (*Adaptive, error) {
	if m == nil {
		return nil, errMissingMemoryModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adaptive{model: m, logger: logger}, nil
}

func (a *Adaptive) Algorithm() Algorithm { return AlgorithmAdaptive }

func (a *Adaptive) Schedule(in Input) (Result, error) {
	if err := checkGrade(in.Grade); err != nil {
		return Result{}, err
	}

	res, err := a.schedule(in)
	if err == nil {
		return res, nil
	}

	a.logger.Warn("adaptive schedule failed, using simple schedule",
		zap.String("item", in.ItemID),
		zap.Int("grade", int(in.Grade)),
		zap.Error(err),
	)
	res = simpleSchedule(in)
	res.Degraded = true
	res.Cause = err
	return res, nil
}

func (a *Adaptive) schedule(in Input) (Result, error) {
	card := a.parseCard(in)

	next, err := a.model.Repeat(card, in.Now, RatingForGrade(in.Grade))
	if err != nil {
		return Result{}, err
	}
	if next.Due.IsZero() {
		return Result{}, errors.New("memory model returned no due date")
	}

	encoded, err := json.Marshal(next)
	if err != nil {
		return Result{}, fmt.Errorf("encode card: %w", err)
	}

	days := int(math.Max(0, math.Round(next.Due.Sub(in.Now).Hours()/24)))
	ease := in.Prior.EaseFactor
	if ease == 0 {
		ease = model.DefaultEaseFactor
	}
	return Result{
		State: model.GradedState{
			Grade:       in.Grade,
			Interval:    days,
			Repetitions: int(next.Reps),
			EaseFactor:  ease,
		},
		Card:         string(encoded),
		IntervalDays: days,
		NextDueDate:  AddDays(in.Now, days),
	}, nil
}

// parseCard restores the prior card, starting fresh when it is absent or
// unreadable.
func (a *Adaptive) parseCard(in Input) fsrs.Card {
	if in.Card == "" {
		return fsrs.NewCard()
	}
	var card fsrs.Card
	if err := json.Unmarshal([]byte(in.Card), &card); err != nil {
		a.logger.Warn("unreadable memory model state, starting fresh",
			zap.String("item", in.ItemID), zap.Error(err))
		return fsrs.NewCard()
	}
	return card
}

// simpleSchedule doubles the interval on success and resets it to one day
// on failure.
func simpleSchedule(in Input) Result {
	prior := in.Prior
	ease := prior.EaseFactor
	if ease == 0 {
		ease = model.DefaultEaseFactor
	}

	interval := 1
	if in.Grade.Passed() {
		base := prior.Interval
		if base <= 0 {
			base = 1
		}
		interval = max(1, base*2)
	}

	return Result{
		State: model.GradedState{
			Grade:       in.Grade,
			Interval:    interval,
			Repetitions: prior.Repetitions + 1,
			EaseFactor:  ease,
		},
		IntervalDays: interval,
		NextDueDate:  AddDays(in.Now, interval),
	}
}
