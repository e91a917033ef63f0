package models

import (
	"time"

	"github.com/uptrace/bun"
)

// OrderHistory is one entry of the append-only audit trail. Entries are never
// updated; they are removed only when their order is deleted.
type OrderHistory struct {
	bun.BaseModel `bun:"table:order_history"`

	ID        string    `bun:"id,pk" json:"id"`
	OrderID   string    `bun:"order_id,notnull" json:"order_id"`
	Status    string    `bun:"status,notnull" json:"status"`
	Comment   *string   `bun:"comment" json:"comment,omitempty"`
	CreatedBy string    `bun:"created_by,notnull" json:"created_by"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
