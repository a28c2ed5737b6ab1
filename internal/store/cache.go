package store

import (
	"context"
	"errors"
	"maps"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rcliao/spaced-review/internal/model"
	"github.com/rcliao/spaced-review/internal/priority"
)

// DefaultCacheSize is the number of documents whose state is kept.
const DefaultCacheSize = 64

// CachedStore keeps recent order and history snapshots per document. Writes
// through it invalidate the affected document.
type CachedStore struct {
	Store
	orders    *lru.Cache[string, OrderSnapshot]
	histories *lru.Cache[string, model.History]
}

// NewCachedStore wraps s. size <= 0 uses DefaultCacheSize.
func NewCachedStore(s Store, size int) (*CachedStore, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	orders, err := lru.New[string, OrderSnapshot](size)
	if err != nil {
		return nil, err
	}
	histories, err := lru.New[string, model.History](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{Store: s, orders: orders, histories: histories}, nil
}

func (c *CachedStore) LoadOrder(ctx context.Context, docID string) (OrderSnapshot, error) {
	if snap, ok := c.orders.Get(docID); ok {
		snap.IDs = slices.Clone(snap.IDs)
		return snap, nil
	}
	snap, err := c.Store.LoadOrder(ctx, docID)
	if err != nil {
		return snap, err
	}
	c.orders.Add(docID, OrderSnapshot{IDs: slices.Clone(snap.IDs), Version: snap.Version, Format: snap.Format})
	return snap, nil
}

func (c *CachedStore) SaveOrder(ctx context.Context, docID string, ids []string, expectedVersion int64) (int64, error) {
	version, err := c.Store.SaveOrder(ctx, docID, ids, expectedVersion)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			c.orders.Remove(docID)
		}
		return version, err
	}
	c.orders.Add(docID, OrderSnapshot{IDs: slices.Clone(ids), Version: version, Format: priority.FormatJSON})
	return version, nil
}

func (c *CachedStore) LoadSessionHistory(ctx context.Context, docID string) (model.History, error) {
	if h, ok := c.histories.Get(docID); ok {
		return maps.Clone(h), nil
	}
	h, err := c.Store.LoadSessionHistory(ctx, docID)
	if err != nil {
		return nil, err
	}
	c.histories.Add(docID, maps.Clone(h))
	return h, nil
}

func (c *CachedStore) AppendSession(ctx context.Context, docID, itemID string, s model.Session) (model.Session, error) {
	c.histories.Remove(docID)
	return c.Store.AppendSession(ctx, docID, itemID, s)
}

func (c *CachedStore) DeleteSessions(ctx context.Context, docID string, itemIDs []string) (int, error) {
	c.histories.Remove(docID)
	return c.Store.DeleteSessions(ctx, docID, itemIDs)
}
