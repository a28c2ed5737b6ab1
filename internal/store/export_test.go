package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)

	src.AddItems(ctx, doc, "math", []string{"a", "b"})
	src.AddItems(ctx, doc, "words", []string{"c"})
	src.AppendSession(ctx, doc, "a", classicSession(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), 4, 1))
	src.SaveOrder(ctx, doc, []string{"c", "a", "b"}, 0)

	exp, err := src.ExportAll(ctx, doc)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(exp.Order) != 3 || len(exp.Items) != 3 || len(exp.History["a"]) != 1 {
		t.Fatalf("unexpected export %+v", exp)
	}

	dst, err := NewSQLiteStore(filepath.Join(t.TempDir(), "dst.db"), WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("open dst: %v", err)
	}
	defer dst.Close()

	res, err := dst.Import(ctx, doc, exp)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Items != 3 || res.Sessions != 1 || res.Ranked != 3 {
		t.Errorf("unexpected import result %+v", res)
	}

	snap, _ := dst.LoadOrder(ctx, doc)
	if snap.IDs[0] != "c" {
		t.Errorf("order not imported: %v", snap.IDs)
	}

	// Importing again adds nothing.
	res, err = dst.Import(ctx, doc, exp)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if res.Items != 0 || res.Sessions != 0 || res.Ranked != 0 {
		t.Errorf("second import should be a no-op, got %+v", res)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.AddItems(ctx, doc, "d", []string{"a", "b"})
	s.AppendSession(ctx, doc, "a", classicSession(time.Now(), 4, 1))
	s.AppendSession(ctx, doc, "a", classicSession(time.Now(), 5, 6))
	s.SaveOrder(ctx, doc, []string{"a"}, 0)

	st, err := s.Stats(ctx, "unused.db", doc)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Items != 2 || st.Sessions != 2 || st.ReviewedItems != 1 {
		t.Errorf("unexpected counts %+v", st)
	}
	if st.OrderLength != 1 || st.OrderVersion != 1 || st.OrderFormat != "json" {
		t.Errorf("unexpected order stats %+v", st)
	}
	if st.Modes["classic"] != 2 || len(st.Decks) != 1 {
		t.Errorf("unexpected modes/decks %+v", st)
	}
}
