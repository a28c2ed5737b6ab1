package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/rcliao/spaced-review/internal/model"
	"github.com/rcliao/spaced-review/internal/priority"
)

// Export is a portable copy of one document's review state.
type Export struct {
	DocID   string                     `json:"doc_id"`
	Order   []string                   `json:"order"`
	Decks   map[string][]string        `json:"decks"`
	Items   []string                   `json:"items"`
	History map[string][]model.Session `json:"history"`
}

// ExportAll returns the order, registry and full history of docID.
func (s *SQLiteStore) ExportAll(ctx context.Context, docID string) (*Export, error) {
	snap, err := s.LoadOrder(ctx, docID)
	if err != nil {
		return nil, err
	}
	items, err := s.ItemIDs(ctx, docID)
	if err != nil {
		return nil, err
	}
	decks, err := s.DeckMembers(ctx, docID, nil)
	if err != nil {
		return nil, err
	}
	history, err := s.LoadSessionHistory(ctx, docID)
	if err != nil {
		return nil, err
	}
	return &Export{
		DocID:   docID,
		Order:   snap.IDs,
		Decks:   decks,
		Items:   items,
		History: history,
	}, nil
}

// ImportResult counts what Import wrote.
type ImportResult struct {
	Items    int `json:"items"`
	Sessions int `json:"sessions"`
	Ranked   int `json:"ranked"`
}

// Import merges an export into docID. Items that already have history keep
// it; exported order entries missing from the current order are appended.
func (s *SQLiteStore) Import(ctx context.Context, docID string, e *Export) (*ImportResult, error) {
	res := &ImportResult{}

	deckNames := make([]string, 0, len(e.Decks))
	for d := range e.Decks {
		deckNames = append(deckNames, d)
	}
	sort.Strings(deckNames)
	for _, d := range deckNames {
		n, err := s.AddItems(ctx, docID, d, e.Decks[d])
		if err != nil {
			return res, fmt.Errorf("import deck %s: %w", d, err)
		}
		res.Items += n
	}
	n, err := s.AddItems(ctx, docID, "", e.Items)
	if err != nil {
		return res, fmt.Errorf("import items: %w", err)
	}
	res.Items += n

	existing, err := s.LoadSessionHistory(ctx, docID)
	if err != nil {
		return res, err
	}
	ids := make([]string, 0, len(e.History))
	for id := range e.History {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if len(existing[id]) > 0 {
			continue
		}
		for _, sess := range e.History[id] {
			if _, err := s.AppendSession(ctx, docID, id, sess); err != nil {
				return res, fmt.Errorf("import session for %s: %w", id, err)
			}
			res.Sessions++
		}
	}

	snap, err := s.LoadOrder(ctx, docID)
	if err != nil {
		return res, err
	}
	m := priority.Deserialize(snap.IDs)
	added := m.AddMissing(e.Order)
	if len(added) > 0 || snap.Format.NeedsMigration() {
		if _, err := s.SaveOrder(ctx, docID, m.Serialize(), snap.Version); err != nil {
			return res, fmt.Errorf("import order: %w", err)
		}
	}
	res.Ranked = len(added)
	return res, nil
}
