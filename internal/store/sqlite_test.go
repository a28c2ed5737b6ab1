package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcliao/spaced-review/internal/model"
	"github.com/rcliao/spaced-review/internal/priority"
)

const doc = "review"

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"), WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// writeRawOrder stores a raw field value, bypassing the codec.
func writeRawOrder(t *testing.T, s *SQLiteStore, raw string) {
	t.Helper()
	_, err := s.db.Exec(
		`INSERT INTO fields (doc_id, container, name, value, version, updated_at) VALUES (?, ?, ?, ?, 1, '')
		 ON CONFLICT (doc_id, container, name) DO UPDATE SET value = excluded.value, version = version + 1`,
		doc, OrderContainer, OrderField, raw)
	if err != nil {
		t.Fatalf("write raw order: %v", err)
	}
}

func classicSession(created time.Time, grade, interval int) model.Session {
	return model.Session{
		Mode:        model.ModeClassic,
		CreatedAt:   created,
		NextDueDate: created.AddDate(0, 0, interval),
		Classic:     &model.GradedState{Grade: model.Grade(grade), Interval: interval, Repetitions: 1, EaseFactor: 2.5},
	}
}

func TestLoadOrderEmpty(t *testing.T) {
	s := newTestStore(t)
	snap, err := s.LoadOrder(context.Background(), doc)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.IDs) != 0 || snap.Version != 0 || snap.Format != priority.FormatEmpty {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestSaveOrderVersioning(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v1, err := s.SaveOrder(ctx, doc, []string{"a", "b", "c"}, 0)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if v1 != 1 {
		t.Errorf("expected version 1, got %d", v1)
	}

	snap, _ := s.LoadOrder(ctx, doc)
	if snap.Version != 1 || snap.Format != priority.FormatJSON {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if got := snap.IDs; len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("order not preserved: %v", got)
	}

	v2, err := s.SaveOrder(ctx, doc, []string{"c", "a", "b"}, v1)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if v2 != 2 {
		t.Errorf("expected version 2, got %d", v2)
	}

	// A writer holding the old version loses.
	_, err = s.SaveOrder(ctx, doc, []string{"b"}, v1)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if IsGatewayError(err) {
		t.Error("conflict should not be a gateway error")
	}
	snap, _ = s.LoadOrder(ctx, doc)
	if snap.IDs[0] != "c" {
		t.Errorf("conflicting save must not write, got %v", snap.IDs)
	}
}

func TestSaveOrderRejectsDuplicates(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SaveOrder(context.Background(), doc, []string{"a", "b", "a"}, 0)
	if !errors.Is(err, priority.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	snap, _ := s.LoadOrder(context.Background(), doc)
	if len(snap.IDs) != 0 {
		t.Errorf("nothing should be saved, got %v", snap.IDs)
	}
}

func TestLoadOrderLegacyForms(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	writeRawOrder(t, s, "((x)),((y))")
	snap, err := s.LoadOrder(ctx, doc)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Format != priority.FormatLegacyRefs || len(snap.IDs) != 2 || snap.IDs[0] != "x" {
		t.Errorf("unexpected legacy snapshot %+v", snap)
	}

	writeRawOrder(t, s, "not json [")
	snap, err = s.LoadOrder(ctx, doc)
	if err != nil {
		t.Fatalf("malformed order should not error: %v", err)
	}
	if snap.Format != priority.FormatLegacyRefs && snap.Format != priority.FormatMalformed {
		t.Errorf("unexpected format %v", snap.Format)
	}

	writeRawOrder(t, s, "[broken")
	snap, _ = s.LoadOrder(ctx, doc)
	if snap.Format != priority.FormatMalformed || len(snap.IDs) != 0 {
		t.Errorf("expected empty malformed order, got %+v", snap)
	}
}

func TestAppendAndLoadHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	day := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	first, err := s.AppendSession(ctx, doc, "card-1", classicSession(day, 4, 1))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.ID == "" || first.ItemID != "card-1" {
		t.Errorf("expected id and item set, got %+v", first)
	}
	s.AppendSession(ctx, doc, "card-1", classicSession(day.AddDate(0, 0, 1), 5, 6))
	s.AppendSession(ctx, doc, "card-2", classicSession(day, 0, 0))

	history, err := s.LoadSessionHistory(ctx, doc)
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(history["card-1"]) != 2 || len(history["card-2"]) != 1 {
		t.Fatalf("unexpected history sizes: %d, %d", len(history["card-1"]), len(history["card-2"]))
	}

	latest, _ := history.Latest("card-1")
	if latest.Classic == nil || latest.Classic.Grade != 5 || latest.Classic.Interval != 6 {
		t.Errorf("latest session wrong: %+v", latest)
	}
	if !latest.CreatedAt.Equal(day.AddDate(0, 0, 1)) {
		t.Errorf("created_at should keep time of day, got %v", latest.CreatedAt)
	}
	wantDue := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	if !latest.NextDueDate.Equal(wantDue) {
		t.Errorf("expected due %v, got %v", wantDue, latest.NextDueDate)
	}

	// Other documents are isolated.
	other, _ := s.LoadSessionHistory(ctx, "other")
	if len(other) != 0 {
		t.Errorf("expected empty history for other doc, got %d", len(other))
	}
}

func TestAppendRejectsInvalidSession(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AppendSession(context.Background(), doc, "card", model.Session{Mode: model.ModeClassic})
	if !errors.Is(err, model.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestUnreadableSessionIsSkipped(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.AppendSession(ctx, doc, "good", classicSession(time.Now(), 4, 1))
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, doc_id, item_id, seq, heading, body, created_at) VALUES ('bad', ?, 'bad', 1, 'garbage', '', '')`, doc)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	history, err := s.LoadSessionHistory(ctx, doc)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := history["bad"]; ok {
		t.Error("unreadable record should be skipped")
	}
	if len(history["good"]) != 1 {
		t.Error("readable record should load")
	}
}

func TestItemSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.ItemSessions(ctx, doc, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	s.AddItems(ctx, doc, "deck", []string{"fresh"})
	sessions, err := s.ItemSessions(ctx, doc, "fresh")
	if err != nil || len(sessions) != 0 {
		t.Fatalf("registered item without history: %v, %d", err, len(sessions))
	}

	s.AppendSession(ctx, doc, "fresh", classicSession(time.Now(), 3, 1))
	sessions, _ = s.ItemSessions(ctx, doc, "fresh")
	if len(sessions) != 1 {
		t.Errorf("expected 1 session, got %d", len(sessions))
	}
}

func TestDeleteSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()
	s.AppendSession(ctx, doc, "a", classicSession(now, 4, 1))
	s.AppendSession(ctx, doc, "a", classicSession(now, 4, 6))
	s.AppendSession(ctx, doc, "b", classicSession(now, 4, 1))

	n, err := s.DeleteSessions(ctx, doc, []string{"a", "missing"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}
	history, _ := s.LoadSessionHistory(ctx, doc)
	if _, ok := history["a"]; ok || len(history["b"]) != 1 {
		t.Errorf("unexpected history after delete: %v", history)
	}
}

func TestGatewayErrorWrapsDriverFailure(t *testing.T) {
	s := newTestStore(t)
	s.Close()

	_, err := s.LoadSessionHistory(context.Background(), doc)
	if !IsGatewayError(err) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	var ge *GatewayError
	if !errors.As(err, &ge) || ge.Op != "load history" || ge.DocID != doc {
		t.Errorf("unexpected gateway error %+v", ge)
	}
}

func TestItemSessionsRegistryFailureIsGatewayError(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.db.Exec(`DROP TABLE deck_members; DROP TABLE items`); err != nil {
		t.Fatalf("drop registry: %v", err)
	}

	_, err := s.ItemSessions(context.Background(), doc, "fresh")
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("registry failure reported as not found: %v", err)
	}
	if !IsGatewayError(err) {
		t.Fatalf("expected gateway error, got %v", err)
	}
}
