package engine

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/rcliao/spaced-review/internal/priority"
)

// CleanupReport lists data that belongs to items no longer registered.
type CleanupReport struct {
	OrphanedIDs    []string `json:"orphaned_ids"`
	SessionRecords int      `json:"session_records"`
	OrderEntries   int      `json:"order_entries"`
	Applied        bool     `json:"applied"`
}

// Cleanup finds sessions and order entries of unregistered items. With
// apply set it deletes them and resets the document's rebuild state.
func (e *Engine) Cleanup(ctx context.Context, docID string, apply bool) (*CleanupReport, error) {
	valid, err := e.store.ItemIDs(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("cleanup: %w", err)
	}
	orphanSessions, err := e.store.OrphanedSessions(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("cleanup: %w", err)
	}
	snap, err := e.store.LoadOrder(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("cleanup: %w", err)
	}

	known := make(map[string]struct{}, len(valid))
	for _, id := range valid {
		known[id] = struct{}{}
	}
	orphans := make(map[string]struct{})
	report := &CleanupReport{OrphanedIDs: []string{}}
	for id, n := range orphanSessions {
		orphans[id] = struct{}{}
		report.SessionRecords += n
	}
	for _, id := range snap.IDs {
		if _, ok := known[id]; !ok {
			orphans[id] = struct{}{}
			report.OrderEntries++
		}
	}
	for id := range orphans {
		report.OrphanedIDs = append(report.OrphanedIDs, id)
	}
	slices.Sort(report.OrphanedIDs)

	if !apply || len(report.OrphanedIDs) == 0 {
		return report, nil
	}

	if _, err := e.store.DeleteSessions(ctx, docID, report.OrphanedIDs); err != nil {
		return nil, fmt.Errorf("cleanup: %w", err)
	}
	if _, err := e.mutateOrder(ctx, docID, "cleanup", func(m *priority.Manager) error {
		m.RetainOnly(valid)
		return nil
	}); err != nil {
		return nil, err
	}
	e.ResetDocument(docID)
	report.Applied = true

	e.logger.Info("removed orphaned review data",
		zap.String("doc", docID),
		zap.Int("items", len(report.OrphanedIDs)),
		zap.Int("sessions", report.SessionRecords),
		zap.Int("order_entries", report.OrderEntries),
	)
	return report, nil
}

// AddItems registers ids under deck. Their rank is assigned the next time
// the daily queue is assembled.
func (e *Engine) AddItems(ctx context.Context, docID, deck string, ids []string) (int, error) {
	return e.store.AddItems(ctx, docID, deck, ids)
}

// RemoveItems unregisters ids. Their sessions and rank stay until Cleanup.
func (e *Engine) RemoveItems(ctx context.Context, docID string, ids []string) (int, error) {
	return e.store.RemoveItems(ctx, docID, ids)
}
