package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rcliao/spaced-review/internal/priority"
)

// RankChange moves one item to a 1-based rank.
type RankChange struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"`
}

// Order returns the stored priority order, most urgent first.
func (e *Engine) Order(ctx context.Context, docID string) ([]string, error) {
	snap, err := e.store.LoadOrder(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("order: %w", err)
	}
	e.logOrderFormat(docID, snap)
	return snap.IDs, nil
}

// SetRank moves id to rank and returns the resulting order.
func (e *Engine) SetRank(ctx context.Context, docID, id string, rank int) ([]string, error) {
	m, err := e.mutateOrder(ctx, docID, "set rank", func(m *priority.Manager) error {
		return m.SetRank(id, rank)
	})
	if err != nil {
		return nil, err
	}
	return m.Serialize(), nil
}

func (e *Engine) MoveToTop(ctx context.Context, docID, id string) ([]string, error) {
	m, err := e.mutateOrder(ctx, docID, "move to top", func(m *priority.Manager) error {
		m.MoveToTop(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m.Serialize(), nil
}

func (e *Engine) MoveToBottom(ctx context.Context, docID, id string) ([]string, error) {
	m, err := e.mutateOrder(ctx, docID, "move to bottom", func(m *priority.Manager) error {
		m.MoveToBottom(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m.Serialize(), nil
}

// ApplyRankChanges applies several rank moves in one save. Every rank is
// checked before anything moves, so a bad entry leaves the order intact.
func (e *Engine) ApplyRankChanges(ctx context.Context, docID string, changes []RankChange) ([]string, error) {
	m, err := e.mutateOrder(ctx, docID, "apply rank changes", func(m *priority.Manager) error {
		total := m.Len()
		unranked := make(map[string]struct{})
		for _, c := range changes {
			if _, seen := unranked[c.ID]; !seen && !m.Has(c.ID) {
				unranked[c.ID] = struct{}{}
				total++
			}
		}
		moves := make([]priority.Move, 0, len(changes))
		for _, c := range changes {
			if c.ID == "" {
				return errors.New("rank change with empty id")
			}
			if c.Rank < 1 || c.Rank > total {
				return fmt.Errorf("%w: %s -> %d (valid 1-%d)", priority.ErrRankOutOfRange, c.ID, c.Rank, total)
			}
			moves = append(moves, priority.Move{ID: c.ID, TargetIndex: c.Rank - 1})
		}
		m.BatchMove(moves)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m.Serialize(), nil
}

// MoveDeck moves every item of deck to rank as one block. Ranked items keep
// their relative order; unranked ones follow them.
func (e *Engine) MoveDeck(ctx context.Context, docID, deck string, rank int) ([]string, error) {
	members, err := e.store.DeckMembers(ctx, docID, []string{deck})
	if err != nil {
		return nil, fmt.Errorf("move deck: %w", err)
	}
	ids := members[deck]
	if len(ids) == 0 {
		return nil, fmt.Errorf("move deck: deck %q has no items", deck)
	}

	m, err := e.mutateOrder(ctx, docID, "move deck", func(m *priority.Manager) error {
		group := slices.Clone(ids)
		slices.SortStableFunc(group, func(a, b string) int {
			return compareRank(m.IndexOf(a), m.IndexOf(b))
		})
		total := m.Len()
		for _, id := range group {
			if !m.Has(id) {
				total++
			}
		}
		if rank < 1 || rank > total {
			return fmt.Errorf("%w: deck %s -> %d (valid 1-%d)", priority.ErrRankOutOfRange, deck, rank, total)
		}
		m.MoveGroup(group, rank-1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m.Serialize(), nil
}

// DeckPositions reports the best rank each deck holds.
func (e *Engine) DeckPositions(ctx context.Context, docID string) ([]priority.DeckPosition, error) {
	members, err := e.store.DeckMembers(ctx, docID, nil)
	if err != nil {
		return nil, fmt.Errorf("deck positions: %w", err)
	}
	snap, err := e.store.LoadOrder(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("deck positions: %w", err)
	}
	return priority.Deserialize(snap.IDs).DeckPositions(members), nil
}

// compareRank orders indexes ascending with -1 (unranked) last.
func compareRank(a, b int) int {
	switch {
	case a == b:
		return 0
	case a < 0:
		return 1
	case b < 0:
		return -1
	case a < b:
		return -1
	}
	return 1
}
