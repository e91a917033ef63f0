package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-orders/internal/models"
)

// CreateSchema creates the three core tables if they do not exist. It backs
// the sqlite test databases and fresh dev setups; production schema changes
// go through the SQL migration runner.
func CreateSchema(ctx context.Context, bunDB *bun.DB) error {
	for _, model := range []interface{}{
		(*models.Customer)(nil),
		(*models.Order)(nil),
		(*models.OrderHistory)(nil),
	} {
		if _, err := bunDB.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
