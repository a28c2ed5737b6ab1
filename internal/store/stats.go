package store

import (
	"context"
	"os"
)

// Stats holds database statistics for one document.
type Stats struct {
	DBPath        string         `json:"db_path"`
	DBSizeBytes   int64          `json:"db_size_bytes"`
	DocID         string         `json:"doc_id"`
	Items         int            `json:"items"`
	ReviewedItems int            `json:"reviewed_items"`
	Sessions      int            `json:"sessions"`
	OrderLength   int            `json:"order_length"`
	OrderVersion  int64          `json:"order_version"`
	OrderFormat   string         `json:"order_format"`
	Decks         []Deck         `json:"decks"`
	Modes         map[string]int `json:"modes"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath, docID string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, DocID: docID, Modes: map[string]int{}}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE doc_id = ?`, docID).Scan(&st.Items)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(DISTINCT item_id) FROM sessions WHERE doc_id = ?`, docID).
		Scan(&st.Sessions, &st.ReviewedItems)

	snap, err := s.LoadOrder(ctx, docID)
	if err != nil {
		return st, err
	}
	st.OrderLength = len(snap.IDs)
	st.OrderVersion = snap.Version
	st.OrderFormat = snap.Format.String()

	if st.Decks, err = s.Decks(ctx, docID); err != nil {
		return st, err
	}

	history, err := s.LoadSessionHistory(ctx, docID)
	if err != nil {
		return st, err
	}
	for _, sessions := range history {
		for _, sess := range sessions {
			st.Modes[string(sess.Mode)]++
		}
	}

	return st, nil
}
