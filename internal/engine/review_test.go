package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/spaced-review/internal/model"
	"github.com/rcliao/spaced-review/internal/scheduler"
	"github.com/rcliao/spaced-review/internal/store"
)

const dateLayout = "2006-01-02"

func TestReviewClassicSequence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testSettings())
	f.addDeck(t, "spanish", "hola")

	res, err := f.engine.Review(ctx, doc, ReviewRequest{ItemID: "hola", Grade: 5})
	require.NoError(t, err)
	assert.True(t, res.Persisted)
	assert.Equal(t, 1, res.IntervalDays)
	assert.NotEmpty(t, res.Session.ID)
	require.NotNil(t, res.Session.Classic)
	assert.Equal(t, 1, res.Session.Classic.Repetitions)
	assert.InDelta(t, 2.6, res.Session.Classic.EaseFactor, 1e-9)
	assert.Equal(t, "2026-03-11", res.Session.NextDueDate.Format(dateLayout))
	assert.Equal(t, "1 day from now", res.NextDueFromNow)

	f.clock.Advance(24 * time.Hour)
	res, err = f.engine.Review(ctx, doc, ReviewRequest{ItemID: "hola", Grade: 5})
	require.NoError(t, err)
	assert.Equal(t, 6, res.IntervalDays)
	assert.Equal(t, 2, res.Session.Classic.Repetitions)

	f.clock.Advance(6 * 24 * time.Hour)
	res, err = f.engine.Review(ctx, doc, ReviewRequest{ItemID: "hola", Grade: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.IntervalDays)
	assert.Equal(t, 0, res.Session.Classic.Repetitions)

	history, err := f.engine.History(ctx, doc, "hola")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, model.ModeClassic, history[0].Mode)
	assert.Equal(t, model.Grade(1), history[2].Classic.Grade)
	assert.Equal(t, []string{"classic", "classic", "classic"}, f.observer.reviews)
}

func TestReviewDryRunAndCramming(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, testSettings())
	f.addDeck(t, "spanish", "hola")
	res, err := f.engine.Review(ctx, doc, ReviewRequest{ItemID: "hola", Grade: 4, DryRun: true})
	require.NoError(t, err)
	assert.False(t, res.Persisted)
	assert.Equal(t, 1, res.IntervalDays)
	history, err := f.engine.History(ctx, doc, "hola")
	require.NoError(t, err)
	assert.Empty(t, history)

	settings := testSettings()
	settings.Cramming = true
	f = newFixture(t, settings)
	f.addDeck(t, "spanish", "hola")
	res, err = f.engine.Review(ctx, doc, ReviewRequest{ItemID: "hola", Grade: 4})
	require.NoError(t, err)
	assert.False(t, res.Persisted)
	history, err = f.engine.History(ctx, doc, "hola")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestReviewRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testSettings())
	f.addDeck(t, "spanish", "hola")

	_, err := f.engine.Review(ctx, doc, ReviewRequest{ItemID: "hola", Grade: 7})
	assert.ErrorIs(t, err, scheduler.ErrInvalidGrade)

	_, err = f.engine.Review(ctx, doc, ReviewRequest{ItemID: "hola", Grade: 3, Mode: "leitner"})
	assert.ErrorIs(t, err, model.ErrInvalidSession)

	_, err = f.engine.Review(ctx, doc, ReviewRequest{ItemID: "unknown", Grade: 3})
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Equal(t, 3, f.observer.failed)
}

func TestReviewFixedInterval(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testSettings())
	f.addDeck(t, "reading", "essay")

	res, err := f.engine.Review(ctx, doc, ReviewRequest{ItemID: "essay", Mode: model.ModeFixed})
	require.NoError(t, err)
	assert.Equal(t, 3, res.IntervalDays)
	require.NotNil(t, res.Session.Fixed)
	assert.Equal(t, model.FixedInterval{Multiplier: 3, Unit: model.UnitDays}, *res.Session.Fixed)
	assert.Equal(t, "2026-03-13", res.Session.NextDueDate.Format(dateLayout))

	res, err = f.engine.Review(ctx, doc, ReviewRequest{
		ItemID: "essay",
		Mode:   model.ModeFixed,
		Fixed:  &model.FixedInterval{Multiplier: 2, Unit: model.UnitWeeks},
	})
	require.NoError(t, err)
	assert.Equal(t, 14, res.IntervalDays)

	history, err := f.engine.History(ctx, doc, "essay")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.UnitWeeks, history[1].Fixed.Unit)
}

func TestReviewClassicIgnoresFixedSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testSettings())
	f.addDeck(t, "spanish", "hola")

	_, err := f.engine.Review(ctx, doc, ReviewRequest{ItemID: "hola", Grade: 5})
	require.NoError(t, err)
	_, err = f.engine.Review(ctx, doc, ReviewRequest{ItemID: "hola", Mode: model.ModeFixed})
	require.NoError(t, err)

	res, err := f.engine.Review(ctx, doc, ReviewRequest{ItemID: "hola", Grade: 5})
	require.NoError(t, err)
	assert.Equal(t, 6, res.IntervalDays)
	assert.Equal(t, 2, res.Session.Classic.Repetitions)
}

func TestReviewAdaptiveCarriesCard(t *testing.T) {
	ctx := context.Background()
	settings := testSettings()
	settings.Algorithm = scheduler.AlgorithmAdaptive
	f := newFixture(t, settings)
	f.addDeck(t, "spanish", "hola")

	res, err := f.engine.Review(ctx, doc, ReviewRequest{ItemID: "hola", Grade: 4})
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	require.NotNil(t, res.Session.Adaptive)
	assert.NotEmpty(t, res.Session.Adaptive.Card)
	assert.Equal(t, 1, res.Session.Adaptive.Repetitions)

	f.clock.Advance(time.Duration(res.IntervalDays+1) * 24 * time.Hour)
	res, err = f.engine.Review(ctx, doc, ReviewRequest{ItemID: "hola", Grade: 4})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Session.Adaptive.Repetitions)
	assert.Equal(t, []string{"adaptive", "adaptive"}, f.observer.reviews)
}

func TestReviewAdaptiveDegrades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testSettings(), WithMemoryModel(failingModel{}))
	f.addDeck(t, "spanish", "hola")

	res, err := f.engine.Review(ctx, doc, ReviewRequest{ItemID: "hola", Grade: 4, Mode: model.ModeAdaptive})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.True(t, res.Persisted)
	assert.Equal(t, 2, res.IntervalDays)
	assert.Empty(t, res.Session.Adaptive.Card)
	assert.Equal(t, 1, f.observer.degraded)
}
