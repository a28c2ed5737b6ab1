package engine

import (
	"context"
	"time"

	"github.com/rcliao/spaced-review/internal/metrics"
	"github.com/rcliao/spaced-review/internal/model"
	"github.com/rcliao/spaced-review/internal/store"
)

// observedStore times gateway calls.
type observedStore struct {
	store.Store
	observer metrics.Observer
}

func (o *observedStore) LoadOrder(ctx context.Context, docID string) (store.OrderSnapshot, error) {
	start := time.Now()
	snap, err := o.Store.LoadOrder(ctx, docID)
	o.observer.RecordGatewayCall("load_order", time.Since(start), gatewayOnly(err))
	return snap, err
}

func (o *observedStore) SaveOrder(ctx context.Context, docID string, ids []string, expectedVersion int64) (int64, error) {
	start := time.Now()
	v, err := o.Store.SaveOrder(ctx, docID, ids, expectedVersion)
	o.observer.RecordGatewayCall("save_order", time.Since(start), gatewayOnly(err))
	return v, err
}

func (o *observedStore) LoadSessionHistory(ctx context.Context, docID string) (model.History, error) {
	start := time.Now()
	h, err := o.Store.LoadSessionHistory(ctx, docID)
	o.observer.RecordGatewayCall("load_history", time.Since(start), gatewayOnly(err))
	return h, err
}

func (o *observedStore) AppendSession(ctx context.Context, docID, itemID string, s model.Session) (model.Session, error) {
	start := time.Now()
	saved, err := o.Store.AppendSession(ctx, docID, itemID, s)
	o.observer.RecordGatewayCall("append_session", time.Since(start), gatewayOnly(err))
	return saved, err
}

// gatewayOnly drops errors that are not store failures, such as conflicts.
func gatewayOnly(err error) error {
	if store.IsGatewayError(err) {
		return err
	}
	return nil
}
