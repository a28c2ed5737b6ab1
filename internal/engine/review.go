package engine

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/rcliao/spaced-review/internal/model"
	"github.com/rcliao/spaced-review/internal/scheduler"
)

// ReviewRequest is one review action on an item.
type ReviewRequest struct {
	ItemID string
	Grade  model.Grade
	// Mode defaults to the configured algorithm.
	Mode model.ReviewMode
	// Fixed is used when Mode is fixed; nil means the default interval.
	Fixed *model.FixedInterval
	// DryRun computes the schedule without writing it.
	DryRun bool
}

// ReviewResult is the session a review produced.
type ReviewResult struct {
	Session        model.Session `json:"session"`
	IntervalDays   int           `json:"interval_days"`
	NextDueFromNow string        `json:"next_due_from_now"`
	Degraded       bool          `json:"degraded,omitempty"`
	Persisted      bool          `json:"persisted"`
}

// Review schedules itemID and appends the resulting session. Nothing is
// written for dry runs or while cramming.
func (e *Engine) Review(ctx context.Context, docID string, req ReviewRequest) (res *ReviewResult, err error) {
	mode := req.Mode
	if mode == "" {
		mode = modeFor(e.settings.Algorithm)
	}
	defer func() {
		degraded := res != nil && res.Degraded
		e.observer.RecordReview(string(mode), degraded, err)
	}()

	sessions, err := e.store.ItemSessions(ctx, docID, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("review %s: %w", req.ItemID, err)
	}

	now := e.now()
	session := model.Session{ItemID: req.ItemID, CreatedAt: now, Mode: mode}
	res = &ReviewResult{}

	switch mode {
	case model.ModeFixed:
		fi := model.FixedInterval{Multiplier: model.DefaultFixedMultiplier, Unit: model.UnitDays}
		if req.Fixed != nil {
			fi = *req.Fixed
		}
		due, days, err := scheduler.ScheduleFixed(now, fi)
		if err != nil {
			return nil, fmt.Errorf("review %s: %w", req.ItemID, err)
		}
		session.Fixed = &fi
		session.NextDueDate = due
		res.IntervalDays = days

	case model.ModeClassic, model.ModeAdaptive:
		alg := scheduler.AlgorithmClassic
		if mode == model.ModeAdaptive {
			alg = scheduler.AlgorithmAdaptive
		}
		sched, err := scheduler.New(alg, scheduler.WithLogger(e.logger), scheduler.WithMemoryModel(e.model))
		if err != nil {
			return nil, err
		}

		prior, card := priorState(sessions)
		out, err := sched.Schedule(scheduler.Input{
			ItemID: req.ItemID,
			Now:    now,
			Prior:  prior,
			Card:   card,
			Grade:  req.Grade,
		})
		if err != nil {
			return nil, fmt.Errorf("review %s: %w", req.ItemID, err)
		}

		if mode == model.ModeClassic {
			session.Classic = &out.State
		} else {
			session.Adaptive = &model.AdaptiveState{GradedState: out.State, Card: out.Card}
		}
		session.NextDueDate = out.NextDueDate
		res.IntervalDays = out.IntervalDays
		res.Degraded = out.Degraded

	default:
		return nil, fmt.Errorf("review %s: %w: unknown review mode %q", req.ItemID, model.ErrInvalidSession, mode)
	}

	if req.DryRun || e.settings.Cramming {
		res.Session = session
	} else {
		saved, err := e.store.AppendSession(ctx, docID, req.ItemID, session)
		if err != nil {
			return nil, fmt.Errorf("review %s: %w", req.ItemID, err)
		}
		res.Session = saved
		res.Persisted = true
	}

	res.NextDueFromNow = humanize.RelTime(res.Session.NextDueDate, now, "ago", "from now")
	e.logger.Debug("reviewed",
		zap.String("item", req.ItemID),
		zap.String("mode", string(mode)),
		zap.Int("interval", res.IntervalDays),
		zap.Bool("persisted", res.Persisted),
	)
	return res, nil
}

// History returns the sessions of one item, oldest first.
func (e *Engine) History(ctx context.Context, docID, itemID string) ([]model.Session, error) {
	return e.store.ItemSessions(ctx, docID, itemID)
}

// priorState returns the latest graded state and the latest memory model
// card. Fixed-interval sessions carry neither and are skipped.
func priorState(sessions []model.Session) (model.GradedState, string) {
	prior := model.NewGradedState()
	found := false
	card := ""
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		if !found {
			if g, ok := s.Graded(); ok {
				prior = g
				found = true
			}
		}
		if card == "" && s.Adaptive != nil {
			card = s.Adaptive.Card
		}
		if found && card != "" {
			break
		}
	}
	return prior, card
}

func modeFor(alg scheduler.Algorithm) model.ReviewMode {
	if alg == scheduler.AlgorithmAdaptive {
		return model.ModeAdaptive
	}
	return model.ModeClassic
}
