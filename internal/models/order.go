package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Order statuses. The nominal progression runs top to bottom, but transitions
// are not constrained to it; cancelled is reachable from any state.
const (
	StatusPendingPrice   = "pending_price"
	StatusPendingAdvance = "pending_advance"
	StatusAdvancePaid    = "advance_paid"
	StatusInProduction   = "in_production"
	StatusReady          = "ready"
	StatusShipped        = "shipped"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

// OrderStatuses lists every valid status value.
var OrderStatuses = []string{
	StatusPendingPrice,
	StatusPendingAdvance,
	StatusAdvancePaid,
	StatusInProduction,
	StatusReady,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// ValidStatus reports whether s is a member of the status enum.
func ValidStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID                string    `bun:"id,pk" json:"id"`
	TrackingNumber    string    `bun:"tracking_number,unique,notnull" json:"tracking_number"`
	CustomerID        string    `bun:"customer_id,notnull" json:"customer_id"`
	Customer          *Customer `bun:"rel:belongs-to,join:customer_id=id" json:"customer,omitempty"`
	Status            string    `bun:"status,notnull,default:'pending_price'" json:"status"`
	ProductName       string    `bun:"product_name,notnull" json:"product_name"`
	Quantity          int       `bun:"quantity,notnull" json:"quantity"`
	TechnicalDetails  *string   `bun:"technical_details" json:"technical_details,omitempty"`
	Comments          *string   `bun:"comments" json:"comments,omitempty"`
	TotalPrice        *float64  `bun:"total_price" json:"total_price,omitempty"`
	AdvancePercentage *int      `bun:"advance_percentage" json:"advance_percentage,omitempty"`
	AdvancePaid       bool      `bun:"advance_paid,notnull,default:false" json:"advance_paid"`
	CreatedBy         string    `bun:"created_by,notnull" json:"created_by"`
	CreatedAt         time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt         time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// CreateOrderRequest is the payload for placing a new order.
type CreateOrderRequest struct {
	CustomerID       string  `json:"customer_id"`
	ProductName      string  `json:"product_name"`
	Quantity         int     `json:"quantity"`
	TechnicalDetails *string `json:"technical_details,omitempty"`
	Comments         *string `json:"comments,omitempty"`
}

// UpdateOrderRequest is a partial update; nil fields are left untouched.
type UpdateOrderRequest struct {
	CustomerID        *string  `json:"customer_id,omitempty"`
	ProductName       *string  `json:"product_name,omitempty"`
	Quantity          *int     `json:"quantity,omitempty"`
	TechnicalDetails  *string  `json:"technical_details,omitempty"`
	Comments          *string  `json:"comments,omitempty"`
	TotalPrice        *float64 `json:"total_price,omitempty"`
	AdvancePercentage *int     `json:"advance_percentage,omitempty"`
	AdvancePaid       *bool    `json:"advance_paid,omitempty"`
}

// TouchesFinancials reports whether the update mutates a role-gated field.
func (r UpdateOrderRequest) TouchesFinancials() bool {
	return r.TotalPrice != nil || r.AdvancePercentage != nil || r.AdvancePaid != nil
}

// UpdateStatusRequest is the payload for a status transition.
type UpdateStatusRequest struct {
	Status  string  `json:"status"`
	Comment *string `json:"comment,omitempty"`
}

// OrderFilter narrows ListOrders results. Price bounds never match orders
// without a price.
type OrderFilter struct {
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	MinPrice    *float64
	MaxPrice    *float64
	AdvancePaid *bool
}

// TrackingView is the redacted order shape served on the public tracking
// surface: no creator, no financial fields.
type TrackingView struct {
	TrackingNumber string    `json:"tracking_number"`
	Status         string    `json:"status"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	// Redacted tells callers which visibility rule produced this view so
	// downstream presentation stays consistent with the ledger's decision.
	Redacted bool `json:"redacted"`
}

// ToTrackingView builds the public projection of an order.
func (o *Order) ToTrackingView() TrackingView {
	return TrackingView{
		TrackingNumber: o.TrackingNumber,
		Status:         o.Status,
		ProductName:    o.ProductName,
		Quantity:       o.Quantity,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Redacted:       true,
	}
}
