package models

// Roles known to the identity provider.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// Caller identifies the authenticated user making a request.
type Caller struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
