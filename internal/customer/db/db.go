package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/uptrace/bun"

	"ms-orders/internal/models"
	orderdb "ms-orders/internal/order/db"
)

type DB struct {
	Bun    *bun.DB
	Orders *orderdb.DB
}

func (d *DB) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	_, err := d.Bun.NewInsert().Model(customer).Exec(ctx)
	return err
}

func (d *DB) GetCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	err := d.Bun.NewSelect().
		Model(&customer).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (d *DB) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	res, err := d.Bun.NewUpdate().
		Model(customer).
		Column("first_name", "last_name", "email", "phone", "address", "updated_at").
		Where("id = ?", customer.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// ListCustomers returns customers newest first, optionally narrowed by a
// case-insensitive substring match over name, email and phone.
func (d *DB) ListCustomers(ctx context.Context, search string) ([]models.Customer, error) {
	var customers []models.Customer
	q := d.Bun.NewSelect().
		Model(&customers).
		Order("created_at DESC")

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("lower(first_name) LIKE ?", pattern).
				WhereOr("lower(last_name) LIKE ?", pattern).
				WhereOr("lower(email) LIKE ?", pattern).
				WhereOr("lower(phone) LIKE ?", pattern)
		})
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	return customers, nil
}

// DeleteCustomer removes the customer and cascades over its orders in one
// transaction, dependency order first: trail entries, then orders, then the
// customer row.
func (d *DB) DeleteCustomer(ctx context.Context, customerID string) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := d.Orders.DeleteOrdersByCustomer(ctx, tx, customerID); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*models.Customer)(nil)).
			Where("id = ?", customerID).
			Exec(ctx)
		if err != nil {
			return err
		}
		return requireRows(res)
	})
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
