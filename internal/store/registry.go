package store

import (
	"context"
	"fmt"
	"time"
)

// AddItems registers ids and, when deck is set, adds them to that deck.
// Returns how many ids were not registered before.
func (s *SQLiteStore) AddItems(ctx context.Context, docID, deck string, ids []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, gatewayErr("add items", docID, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	added := 0
	for _, id := range ids {
		if id == "" {
			return 0, fmt.Errorf("add items: empty item id")
		}
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO items (doc_id, item_id, created_at) VALUES (?, ?, ?)`, docID, id, now)
		if err != nil {
			return 0, gatewayErr("add items", docID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
		if deck != "" {
			_, err = tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO deck_members (doc_id, deck, item_id) VALUES (?, ?, ?)`, docID, deck, id)
			if err != nil {
				return 0, gatewayErr("add items", docID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, gatewayErr("add items", docID, err)
	}
	return added, nil
}

// RemoveItems unregisters ids and drops their deck membership. Their session
// records and order entries are left for cleanup.
func (s *SQLiteStore) RemoveItems(ctx context.Context, docID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders, args := inArgs(docID, ids)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM items WHERE doc_id = ? AND item_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, gatewayErr("remove items", docID, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) ItemIDs(ctx context.Context, docID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id FROM items WHERE doc_id = ? ORDER BY item_id`, docID)
	if err != nil {
		return nil, gatewayErr("list items", docID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, gatewayErr("list items", docID, err)
		}
		ids = append(ids, id)
	}
	return ids, gatewayErr("list items", docID, rows.Err())
}

func (s *SQLiteStore) Decks(ctx context.Context, docID string) ([]Deck, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT deck, COUNT(*) FROM deck_members WHERE doc_id = ? GROUP BY deck ORDER BY deck`, docID)
	if err != nil {
		return nil, gatewayErr("list decks", docID, err)
	}
	defer rows.Close()

	decks := []Deck{}
	for rows.Next() {
		var d Deck
		if err := rows.Scan(&d.Name, &d.Items); err != nil {
			return nil, gatewayErr("list decks", docID, err)
		}
		decks = append(decks, d)
	}
	return decks, gatewayErr("list decks", docID, rows.Err())
}

func (s *SQLiteStore) DeckMembers(ctx context.Context, docID string, decks []string) (map[string][]string, error) {
	query := `SELECT deck, item_id FROM deck_members WHERE doc_id = ?`
	args := []interface{}{docID}
	if len(decks) > 0 {
		var placeholders string
		placeholders, args = inArgs(docID, decks)
		query += ` AND deck IN (` + placeholders + `)`
	}
	query += ` ORDER BY deck, item_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gatewayErr("deck members", docID, err)
	}
	defer rows.Close()

	members := make(map[string][]string, len(decks))
	for _, d := range decks {
		members[d] = []string{}
	}
	for rows.Next() {
		var deck, id string
		if err := rows.Scan(&deck, &id); err != nil {
			return nil, gatewayErr("deck members", docID, err)
		}
		members[deck] = append(members[deck], id)
	}
	return members, gatewayErr("deck members", docID, rows.Err())
}

func (s *SQLiteStore) OrphanedSessions(ctx context.Context, docID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.item_id, COUNT(*) FROM sessions s
		LEFT JOIN items i ON i.doc_id = s.doc_id AND i.item_id = s.item_id
		WHERE s.doc_id = ? AND i.item_id IS NULL
		GROUP BY s.item_id ORDER BY s.item_id`, docID)
	if err != nil {
		return nil, gatewayErr("orphaned sessions", docID, err)
	}
	defer rows.Close()

	orphans := map[string]int{}
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, gatewayErr("orphaned sessions", docID, err)
		}
		orphans[id] = n
	}
	return orphans, gatewayErr("orphaned sessions", docID, rows.Err())
}
