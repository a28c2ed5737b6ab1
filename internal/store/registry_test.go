package store

import (
	"context"
	"testing"
	"time"
)

func TestAddItemsAndDecks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	n, err := s.AddItems(ctx, doc, "spanish", []string{"hola", "adios"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 new items, got %d", n)
	}
	// Re-adding to another deck registers nothing new.
	n, _ = s.AddItems(ctx, doc, "greetings", []string{"hola"})
	if n != 0 {
		t.Errorf("expected 0 new items, got %d", n)
	}

	decks, err := s.Decks(ctx, doc)
	if err != nil {
		t.Fatalf("decks: %v", err)
	}
	if len(decks) != 2 || decks[0].Name != "greetings" || decks[1].Items != 2 {
		t.Errorf("unexpected decks %+v", decks)
	}

	members, err := s.DeckMembers(ctx, doc, []string{"spanish", "missing"})
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if got := members["spanish"]; len(got) != 2 || got[0] != "adios" {
		t.Errorf("unexpected spanish members %v", got)
	}
	if got, ok := members["missing"]; !ok || len(got) != 0 {
		t.Errorf("requested deck should be present and empty, got %v", got)
	}
	if _, ok := members["greetings"]; ok {
		t.Error("unrequested deck should be absent")
	}

	all, _ := s.DeckMembers(ctx, doc, nil)
	if len(all) != 2 {
		t.Errorf("expected all decks, got %v", all)
	}

	ids, _ := s.ItemIDs(ctx, doc)
	if len(ids) != 2 {
		t.Errorf("expected 2 items, got %v", ids)
	}
}

func TestAddItemsRejectsEmptyID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddItems(context.Background(), doc, "d", []string{"ok", ""}); err == nil {
		t.Fatal("expected error for empty id")
	}
	ids, _ := s.ItemIDs(context.Background(), doc)
	if len(ids) != 0 {
		t.Errorf("failed add should roll back, got %v", ids)
	}
}

func TestRemoveItemsLeavesOrphans(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.AddItems(ctx, doc, "d", []string{"keep", "gone"})
	s.AppendSession(ctx, doc, "gone", classicSession(time.Now(), 4, 1))
	s.AppendSession(ctx, doc, "gone", classicSession(time.Now(), 4, 6))
	s.AppendSession(ctx, doc, "keep", classicSession(time.Now(), 4, 1))

	n, err := s.RemoveItems(ctx, doc, []string{"gone"})
	if err != nil || n != 1 {
		t.Fatalf("remove: %d %v", n, err)
	}

	members, _ := s.DeckMembers(ctx, doc, []string{"d"})
	if len(members["d"]) != 1 {
		t.Errorf("membership should cascade, got %v", members["d"])
	}

	orphans, err := s.OrphanedSessions(ctx, doc)
	if err != nil {
		t.Fatalf("orphans: %v", err)
	}
	if len(orphans) != 1 || orphans["gone"] != 2 {
		t.Errorf("unexpected orphans %v", orphans)
	}
}
