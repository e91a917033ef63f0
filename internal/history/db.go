// Package history is the append-only audit trail of order status changes.
// Entries are written only from the order ledger's status transaction and
// removed only when their order is deleted.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"ms-orders/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// Append inserts one trail entry. It takes a bun.IDB so the ledger can pass
// the transaction that also updates the order's status; both writes commit
// or roll back together.
func (d *DB) Append(ctx context.Context, idb bun.IDB, orderID, status string, comment *string, callerID string) (*models.OrderHistory, error) {
	entry := &models.OrderHistory{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Status:    status,
		Comment:   comment,
		CreatedBy: callerID,
		CreatedAt: time.Now(),
	}
	if _, err := idb.NewInsert().Model(entry).Exec(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListByOrder returns the trail for one order, most recent first.
func (d *DB) ListByOrder(ctx context.Context, orderID string) ([]models.OrderHistory, error) {
	var entries []models.OrderHistory
	err := d.Bun.NewSelect().
		Model(&entries).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.OrderHistory{}
	}
	return entries, nil
}
