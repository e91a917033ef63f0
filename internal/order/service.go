package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-orders/internal/apperr"
	"ms-orders/internal/auth"
	"ms-orders/internal/logger"
	"ms-orders/internal/models"
	orderdb "ms-orders/internal/order/db"
	"ms-orders/internal/utils"
)

// trackingAttempts bounds tracking-number regeneration on collision.
const trackingAttempts = 5

type DBLayer interface {
	CustomerExists(ctx context.Context, customerID string) (bool, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
	UpdateOrderStatus(ctx context.Context, orderID, status string, comment *string, callerID string) (*models.Order, *models.OrderHistory, error)
	DeleteOrder(ctx context.Context, orderID string) error
	ListOrders(ctx context.Context, filter models.OrderFilter, callerRole, callerID string) ([]models.Order, error)
	ListHistory(ctx context.Context, orderID string) ([]models.OrderHistory, error)
}

type KafkaPublisher interface {
	PublishOrderCreated(order models.Order) error
	PublishOrderStatusChanged(order models.Order, entry models.OrderHistory) error
	PublishOrderDeleted(orderID string) error
}

type OrderService struct {
	DB     DBLayer
	Kafka  KafkaPublisher
	Logger *logger.Logger
}

func NewOrderService(db DBLayer, kafka KafkaPublisher, log *logger.Logger) *OrderService {
	return &OrderService{DB: db, Kafka: kafka, Logger: log}
}

// CreateOrder validates the request, assigns a unique tracking number and
// persists the order in its initial pending_price state. No trail entry is
// written at creation; the trail starts at the first explicit status update.
func (s *OrderService) CreateOrder(ctx context.Context, req models.CreateOrderRequest, callerID string) (*models.Order, error) {
	if req.CustomerID == "" {
		return nil, apperr.Validation("customer_id", "is required")
	}
	if req.ProductName == "" {
		return nil, apperr.Validation("product_name", "is required")
	}
	if req.Quantity < 1 {
		return nil, apperr.Validation("quantity", "must be at least 1")
	}

	exists, err := s.DB.CustomerExists(ctx, req.CustomerID)
	if err != nil {
		return nil, apperr.Storage("failed to check customer", err)
	}
	if !exists {
		return nil, apperr.NotFound("customer not found")
	}

	now := time.Now()
	order := &models.Order{
		ID:               uuid.NewString(),
		CustomerID:       req.CustomerID,
		Status:           models.StatusPendingPrice,
		ProductName:      req.ProductName,
		Quantity:         req.Quantity,
		TechnicalDetails: req.TechnicalDetails,
		Comments:         req.Comments,
		AdvancePaid:      false,
		CreatedBy:        callerID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// The unique constraint on tracking_number is the race-free check; a
	// collision just regenerates and retries.
	for attempt := 0; attempt < trackingAttempts; attempt++ {
		order.TrackingNumber = utils.GenerateTrackingNumber()
		err = s.DB.CreateOrder(ctx, order)
		if err == nil {
			break
		}
		if !orderdb.IsUniqueViolation(err) {
			return nil, apperr.Storage("failed to create order", err)
		}
		s.Logger.LogOrder("CREATE", order.ID, fmt.Sprintf("tracking number collision on %s, retrying", order.TrackingNumber))
	}
	if err != nil {
		return nil, apperr.Conflict("could not assign a unique tracking number")
	}

	created, err := s.DB.GetOrderByID(ctx, order.ID)
	if err != nil {
		return nil, apperr.Storage("failed to load created order", err)
	}

	if err := s.Kafka.PublishOrderCreated(*created); err != nil {
		s.Logger.LogKafka("PUBLISH", "order-created", fmt.Sprintf("publish error: %v", err))
	}

	return created, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.Storage("failed to load order", err)
	}
	return order, nil
}

// GetByTrackingNumber is the public lookup. Every failure surfaces as
// NotFound so tracking-number existence never leaks, and the returned view
// is redacted the same way as for a non-admin caller.
func (s *OrderService) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.TrackingView, error) {
	order, err := s.DB.GetOrderByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, apperr.NotFound("order not found")
	}
	view := order.ToTrackingView()
	return &view, nil
}

// UpdateOrder applies a partial update. An update touching any financial
// field by a non-admin is rejected whole; nothing is applied.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, req models.UpdateOrderRequest, callerRole string) (*models.Order, error) {
	if req.TouchesFinancials() && !auth.CanMutateFinancials(callerRole) {
		return nil, apperr.Forbidden("only admins may modify pricing or advance fields")
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CustomerID != nil && *req.CustomerID != order.CustomerID {
		exists, err := s.DB.CustomerExists(ctx, *req.CustomerID)
		if err != nil {
			return nil, apperr.Storage("failed to check customer", err)
		}
		if !exists {
			return nil, apperr.NotFound("customer not found")
		}
		order.CustomerID = *req.CustomerID
	}
	if req.ProductName != nil {
		if *req.ProductName == "" {
			return nil, apperr.Validation("product_name", "must not be empty")
		}
		order.ProductName = *req.ProductName
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, apperr.Validation("quantity", "must be at least 1")
		}
		order.Quantity = *req.Quantity
	}
	if req.TechnicalDetails != nil {
		order.TechnicalDetails = req.TechnicalDetails
	}
	if req.Comments != nil {
		order.Comments = req.Comments
	}
	if req.TotalPrice != nil {
		if *req.TotalPrice < 0 {
			return nil, apperr.Validation("total_price", "must not be negative")
		}
		order.TotalPrice = req.TotalPrice
	}
	if req.AdvancePercentage != nil {
		if *req.AdvancePercentage < 0 || *req.AdvancePercentage > 100 {
			return nil, apperr.Validation("advance_percentage", "must be between 0 and 100")
		}
		order.AdvancePercentage = req.AdvancePercentage
	}
	if req.AdvancePaid != nil {
		order.AdvancePaid = *req.AdvancePaid
	}
	order.UpdatedAt = time.Now()

	if err := s.DB.UpdateOrder(ctx, order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.Storage("failed to update order", err)
	}

	return s.GetOrder(ctx, id)
}

// UpdateOrderStatus transitions the order and appends the trail entry
// atomically. Any enum value is accepted from any other; the progression is
// nominal, not enforced.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, req models.UpdateStatusRequest, callerID string) (*models.Order, error) {
	if !models.ValidStatus(req.Status) {
		return nil, apperr.Validation("status", fmt.Sprintf("unknown status %q", req.Status))
	}

	order, entry, err := s.DB.UpdateOrderStatus(ctx, id, req.Status, req.Comment, callerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.Storage("failed to update order status", err)
	}

	s.Logger.LogOrder("STATUS", id, fmt.Sprintf("status set to %s", req.Status))

	if err := s.Kafka.PublishOrderStatusChanged(*order, *entry); err != nil {
		s.Logger.LogKafka("PUBLISH", "order-status-changed", fmt.Sprintf("publish error: %v", err))
	}

	return order, nil
}

// DeleteOrder removes an order and its audit trail.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.DB.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("order not found")
		}
		return apperr.Storage("failed to delete order", err)
	}

	s.Logger.LogOrder("DELETE", id, "order deleted")

	if err := s.Kafka.PublishOrderDeleted(id); err != nil {
		s.Logger.LogKafka("PUBLISH", "order-deleted", fmt.Sprintf("publish error: %v", err))
	}

	return nil
}

// ListOrders returns the caller-visible orders: admins see everything,
// employees only what they created.
func (s *OrderService) ListOrders(ctx context.Context, filter models.OrderFilter, callerRole, callerID string) ([]models.Order, error) {
	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		return nil, apperr.Validation("status", fmt.Sprintf("unknown status %q", filter.Status))
	}
	orders, err := s.DB.ListOrders(ctx, filter, callerRole, callerID)
	if err != nil {
		return nil, apperr.Storage("failed to list orders", err)
	}
	return orders, nil
}

// ListHistory returns the audit trail of an order, most recent entry first.
func (s *OrderService) ListHistory(ctx context.Context, orderID string) ([]models.OrderHistory, error) {
	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	entries, err := s.DB.ListHistory(ctx, orderID)
	if err != nil {
		return nil, apperr.Storage("failed to list order history", err)
	}
	return entries, nil
}
