package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-orders/internal/apperr"
	"ms-orders/internal/logger"
	"ms-orders/internal/models"
)

type DBLayer interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomerByID(ctx context.Context, id string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	ListCustomers(ctx context.Context, search string) ([]models.Customer, error)
	DeleteCustomer(ctx context.Context, customerID string) error
}

type KafkaPublisher interface {
	PublishCustomerDeleted(customerID string) error
}

type CustomerService struct {
	DB     DBLayer
	Kafka  KafkaPublisher
	Logger *logger.Logger
}

func NewCustomerService(db DBLayer, kafka KafkaPublisher, log *logger.Logger) *CustomerService {
	return &CustomerService{DB: db, Kafka: kafka, Logger: log}
}

// CreateCustomer registers a customer. Any authenticated caller may create
// and mutate customers; only first and last name are required.
func (s *CustomerService) CreateCustomer(ctx context.Context, req models.CreateCustomerRequest, callerID string) (*models.Customer, error) {
	if req.FirstName == "" {
		return nil, apperr.Validation("first_name", "is required")
	}
	if req.LastName == "" {
		return nil, apperr.Validation("last_name", "is required")
	}

	now := time.Now()
	customer := &models.Customer{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedBy: callerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.DB.CreateCustomer(ctx, customer); err != nil {
		return nil, apperr.Storage("failed to create customer", err)
	}

	s.Logger.LogCustomer("CREATE", customer.ID, fmt.Sprintf("%s %s registered", customer.FirstName, customer.LastName))
	return customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := s.DB.GetCustomerByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("customer not found")
		}
		return nil, apperr.Storage("failed to load customer", err)
	}
	return customer, nil
}

// UpdateCustomer applies a partial update; nil fields stay untouched.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id string, req models.UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		if *req.FirstName == "" {
			return nil, apperr.Validation("first_name", "must not be empty")
		}
		customer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		if *req.LastName == "" {
			return nil, apperr.Validation("last_name", "must not be empty")
		}
		customer.LastName = *req.LastName
	}
	if req.Email != nil {
		customer.Email = req.Email
	}
	if req.Phone != nil {
		customer.Phone = req.Phone
	}
	if req.Address != nil {
		customer.Address = req.Address
	}
	customer.UpdatedAt = time.Now()

	if err := s.DB.UpdateCustomer(ctx, customer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("customer not found")
		}
		return nil, apperr.Storage("failed to update customer", err)
	}

	return customer, nil
}

// DeleteCustomer irreversibly removes the customer together with every order
// it owns and their audit trails.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.DB.DeleteCustomer(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("customer not found")
		}
		return apperr.Storage("failed to delete customer", err)
	}

	s.Logger.LogCustomer("DELETE", id, "customer and owned orders deleted")

	if err := s.Kafka.PublishCustomerDeleted(id); err != nil {
		s.Logger.LogKafka("PUBLISH", "customer-deleted", fmt.Sprintf("publish error: %v", err))
	}

	return nil
}

func (s *CustomerService) ListCustomers(ctx context.Context, search string) ([]models.Customer, error) {
	customers, err := s.DB.ListCustomers(ctx, search)
	if err != nil {
		return nil, apperr.Storage("failed to list customers", err)
	}
	return customers, nil
}
