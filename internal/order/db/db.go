package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"ms-orders/internal/history"
	"ms-orders/internal/models"
)

type DB struct {
	Bun     *bun.DB
	History *history.DB
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
// Postgres says "duplicate key value violates unique constraint", sqlite
// says "UNIQUE constraint failed".
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

// ---------------- ORDERS ----------------

// CustomerExists checks the referential-integrity precondition for creating
// or re-pointing an order.
func (d *DB) CustomerExists(ctx context.Context, customerID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Customer)(nil)).
		Where("id = ?", customerID).
		Exists(ctx)
}

// CreateOrder inserts a new order. A tracking-number collision surfaces as a
// unique-constraint error for the caller to retry.
func (d *DB) CreateOrder(ctx context.Context, order *models.Order) error {
	_, err := d.Bun.NewInsert().Model(order).Exec(ctx)
	return err
}

func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Relation("Customer").
		Where("\"order\".id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) GetOrderByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("tracking_number = ?", trackingNumber).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder persists the mutable columns of an already-validated order.
func (d *DB) UpdateOrder(ctx context.Context, order *models.Order) error {
	res, err := d.Bun.NewUpdate().
		Model(order).
		Column("customer_id", "product_name", "quantity", "technical_details",
			"comments", "total_price", "advance_percentage", "advance_paid",
			"updated_at").
		Where("id = ?", order.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// UpdateOrderStatus sets the new status and appends the matching trail entry
// in one transaction; either both writes commit or neither does.
func (d *DB) UpdateOrderStatus(ctx context.Context, orderID, status string, comment *string, callerID string) (*models.Order, *models.OrderHistory, error) {
	var entry *models.OrderHistory

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Order)(nil)).
			Set("status = ?", status).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", orderID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if err := requireRows(res); err != nil {
			return err
		}

		entry, err = d.History.Append(ctx, tx, orderID, status, comment, callerID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	order, err := d.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, entry, nil
}

// DeleteOrder removes an order and its owned trail entries atomically,
// trail first.
func (d *DB) DeleteOrder(ctx context.Context, orderID string) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.OrderHistory)(nil)).
			Where("order_id = ?", orderID).
			Exec(ctx); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*models.Order)(nil)).
			Where("id = ?", orderID).
			Exec(ctx)
		if err != nil {
			return err
		}
		return requireRows(res)
	})
}

// DeleteOrdersByCustomer bulk-deletes every order of a customer and their
// trail entries inside the caller's transaction. Used by the cascading
// customer delete.
func (d *DB) DeleteOrdersByCustomer(ctx context.Context, idb bun.IDB, customerID string) error {
	if _, err := idb.NewDelete().
		Model((*models.OrderHistory)(nil)).
		Where("order_id IN (SELECT id FROM orders WHERE customer_id = ?)", customerID).
		Exec(ctx); err != nil {
		return err
	}

	_, err := idb.NewDelete().
		Model((*models.Order)(nil)).
		Where("customer_id = ?", customerID).
		Exec(ctx)
	return err
}

// ListOrders returns orders newest first, scoped to the caller's own orders
// unless the caller is an admin, narrowed by the filter.
func (d *DB) ListOrders(ctx context.Context, filter models.OrderFilter, callerRole, callerID string) ([]models.Order, error) {
	var orders []models.Order
	q := d.Bun.NewSelect().
		Model(&orders).
		Relation("Customer").
		Order("order.created_at DESC")

	if callerRole != models.RoleAdmin {
		q = q.Where("\"order\".created_by = ?", callerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("\"order\".created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		q = q.Where("\"order\".created_at <= ?", *filter.CreatedTo)
	}
	// A price bound never matches an order with no price.
	if filter.MinPrice != nil {
		q = q.Where("total_price IS NOT NULL").Where("total_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("total_price IS NOT NULL").Where("total_price <= ?", *filter.MaxPrice)
	}
	if filter.AdvancePaid != nil {
		q = q.Where("advance_paid = ?", *filter.AdvancePaid)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// ListHistory returns the audit trail for one order, most recent first.
func (d *DB) ListHistory(ctx context.Context, orderID string) ([]models.OrderHistory, error) {
	return d.History.ListByOrder(ctx, orderID)
}

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
