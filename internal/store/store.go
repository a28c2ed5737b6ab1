// Package store persists review state: the priority order, session history,
// and the registry of items and deck membership.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rcliao/spaced-review/internal/model"
	"github.com/rcliao/spaced-review/internal/priority"
)

var (
	// ErrConflict is returned by SaveOrder when the stored order moved past
	// the version the caller loaded.
	ErrConflict = errors.New("priority order changed since load")
	ErrNotFound = errors.New("not found")
)

// GatewayError wraps a failure of the underlying document store.
type GatewayError struct {
	Op    string
	DocID string
	Err   error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s (doc %q): %v", e.Op, e.DocID, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// IsGatewayError reports whether err came from the document store itself.
func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}

func gatewayErr(op, docID string, err error) error {
	if err == nil {
		return nil
	}
	return &GatewayError{Op: op, DocID: docID, Err: err}
}

// OrderSnapshot is a priority order as read at Version. Format records which
// persisted form it was decoded from.
type OrderSnapshot struct {
	IDs     []string
	Version int64
	Format  priority.Format
}

// Gateway loads and saves the priority order and session history of a
// document. Every load is a snapshot that may be stale by the time a save
// completes.
type Gateway interface {
	LoadOrder(ctx context.Context, docID string) (OrderSnapshot, error)
	// SaveOrder writes ids if the stored version still equals
	// expectedVersion and returns the new version.
	SaveOrder(ctx context.Context, docID string, ids []string, expectedVersion int64) (int64, error)
	LoadSessionHistory(ctx context.Context, docID string) (model.History, error)
	AppendSession(ctx context.Context, docID, itemID string, s model.Session) (model.Session, error)
}

// Deck is a deck name with its member count.
type Deck struct {
	Name  string `json:"name"`
	Items int    `json:"items"`
}

// Registry tracks which items exist and the decks they belong to.
type Registry interface {
	AddItems(ctx context.Context, docID, deck string, ids []string) (int, error)
	RemoveItems(ctx context.Context, docID string, ids []string) (int, error)
	ItemIDs(ctx context.Context, docID string) ([]string, error)
	Decks(ctx context.Context, docID string) ([]Deck, error)
	// DeckMembers returns members of the named decks, or of every deck when
	// decks is empty.
	DeckMembers(ctx context.Context, docID string, decks []string) (map[string][]string, error)
}

// Store is the full persistence surface used by the engine.
type Store interface {
	Gateway
	Registry

	// ItemSessions returns one item's history, oldest first.
	ItemSessions(ctx context.Context, docID, itemID string) ([]model.Session, error)
	// DeleteSessions removes all session records for the given items.
	DeleteSessions(ctx context.Context, docID string, itemIDs []string) (int, error)
	// OrphanedSessions counts session records per item id that is no longer
	// registered.
	OrphanedSessions(ctx context.Context, docID string) (map[string]int, error)

	Close() error
}
