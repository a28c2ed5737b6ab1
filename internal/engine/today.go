package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/rcliao/spaced-review/internal/model"
	"github.com/rcliao/spaced-review/internal/priority"
	"github.com/rcliao/spaced-review/internal/queue"
	"github.com/rcliao/spaced-review/internal/store"
)

// Today assembles the review queue for decks, or for every deck when decks
// is empty. Items missing from the priority order are placed and saved
// first.
func (e *Engine) Today(ctx context.Context, docID string, decks []string) (*model.Today, error) {
	members, err := e.store.DeckMembers(ctx, docID, decks)
	if err != nil {
		return nil, fmt.Errorf("today: %w", err)
	}
	names := slices.Clone(decks)
	if len(names) == 0 {
		for name := range members {
			names = append(names, name)
		}
		slices.Sort(names)
	}

	history, err := e.store.LoadSessionHistory(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("today: %w", err)
	}

	m, err := e.rankedOrder(ctx, docID, union(names, members))
	if err != nil {
		return nil, fmt.Errorf("today: %w", err)
	}

	return queue.Assemble(queue.Input{
		Decks:      names,
		Members:    members,
		History:    history,
		Ranks:      m.RankMap(),
		Now:        e.now(),
		Cramming:   e.settings.Cramming,
		DailyLimit: e.settings.DailyLimit,
		MixedMode:  e.settings.MixedMode,
	}), nil
}

// rankedOrder returns an order containing every id in ids. When some are
// missing, or the stored order is in a legacy format, the order is rebuilt
// and saved through the rebuilder. A skipped or superseded rebuild falls
// back to placing the missing ids in memory only.
func (e *Engine) rankedOrder(ctx context.Context, docID string, ids []string) (*priority.Manager, error) {
	snap, err := e.store.LoadOrder(ctx, docID)
	if err != nil {
		return nil, err
	}
	m := priority.Deserialize(snap.IDs)

	missing := slices.DeleteFunc(slices.Clone(ids), m.Has)
	if len(missing) == 0 && !snap.Format.NeedsMigration() {
		return m, nil
	}

	rebuilt, outcome, err := e.rebuilder.Run(ctx, docID, func(ctx context.Context) (*priority.Manager, error) {
		return e.mutateOrder(ctx, docID, "rebuild order", func(m *priority.Manager) error {
			placed := priority.PlaceNew(m, ids, e.settings.DefaultPriority)
			if len(placed) > 0 {
				e.logger.Info("placed new items in priority order",
					zap.String("doc", docID), zap.Int("count", len(placed)))
			}
			return nil
		})
	})
	e.observer.RecordRebuild(outcome.String(), err)

	switch {
	case errors.Is(err, store.ErrSuperseded):
		e.logger.Debug("rebuild superseded", zap.String("doc", docID))
	case err != nil:
		return nil, err
	case rebuilt != nil:
		return rebuilt.Clone(), nil
	}

	priority.PlaceNew(m, missing, e.settings.DefaultPriority)
	return m, nil
}

// union returns the distinct members of decks in deck order.
func union(decks []string, members map[string][]string) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, deck := range decks {
		for _, id := range members[deck] {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
