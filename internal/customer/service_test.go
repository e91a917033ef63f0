package customer_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ms-orders/internal/apperr"
	"ms-orders/internal/customer"
	"ms-orders/internal/logger"
	"ms-orders/internal/models"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateCustomer(ctx context.Context, c *models.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockDBLayer) GetCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockDBLayer) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockDBLayer) ListCustomers(ctx context.Context, search string) ([]models.Customer, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockDBLayer) DeleteCustomer(ctx context.Context, customerID string) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

type MockKafkaPublisher struct {
	mock.Mock
}

func (m *MockKafkaPublisher) PublishCustomerDeleted(customerID string) error {
	args := m.Called(customerID)
	return args.Error(0)
}

func newTestService(mockDB *MockDBLayer, mockKafka *MockKafkaPublisher) *customer.CustomerService {
	return customer.NewCustomerService(mockDB, mockKafka, logger.NewLogger())
}

func TestCreateCustomer(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockKafkaPublisher)
	svc := newTestService(mockDB, mockKafka)

	mockDB.On("CreateCustomer", mock.Anything, mock.AnythingOfType("*models.Customer")).Return(nil)

	created, err := svc.CreateCustomer(context.Background(), models.CreateCustomerRequest{
		FirstName: "Marta",
		LastName:  "Kowalska",
	}, "employee1")
	assert.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "employee1", created.CreatedBy)
	mockDB.AssertExpectations(t)
}

func TestCreateCustomerValidation(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockKafkaPublisher)
	svc := newTestService(mockDB, mockKafka)

	_, err := svc.CreateCustomer(context.Background(), models.CreateCustomerRequest{LastName: "Kowalska"}, "employee1")
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.CreateCustomer(context.Background(), models.CreateCustomerRequest{FirstName: "Marta"}, "employee1")
	assert.True(t, apperr.IsValidation(err))

	mockDB.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
}

func TestUpdateCustomer(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockKafkaPublisher)
	svc := newTestService(mockDB, mockKafka)

	existing := &models.Customer{
		ID:        uuid.New().String(),
		FirstName: "Marta",
		LastName:  "Kowalska",
		CreatedBy: "employee1",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	mockDB.On("GetCustomerByID", mock.Anything, existing.ID).Return(existing, nil)
	mockDB.On("UpdateCustomer", mock.Anything, mock.AnythingOfType("*models.Customer")).Return(nil)

	phone := "+48 600 100 200"
	updated, err := svc.UpdateCustomer(context.Background(), existing.ID, models.UpdateCustomerRequest{Phone: &phone})
	assert.NoError(t, err)
	assert.Equal(t, "Marta", updated.FirstName)
	assert.Equal(t, &phone, updated.Phone)

	// Test case: Blanking a required name is rejected
	empty := ""
	_, err = svc.UpdateCustomer(context.Background(), existing.ID, models.UpdateCustomerRequest{FirstName: &empty})
	assert.True(t, apperr.IsValidation(err))
}

func TestDeleteCustomer(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockKafkaPublisher)
	svc := newTestService(mockDB, mockKafka)

	mockDB.On("DeleteCustomer", mock.Anything, "customer1").Return(nil)
	mockDB.On("DeleteCustomer", mock.Anything, "non-existent").Return(sql.ErrNoRows)
	mockKafka.On("PublishCustomerDeleted", "customer1").Return(nil)

	err := svc.DeleteCustomer(context.Background(), "customer1")
	assert.NoError(t, err)

	err = svc.DeleteCustomer(context.Background(), "non-existent")
	assert.True(t, apperr.IsNotFound(err))

	mockKafka.AssertExpectations(t)
	mockKafka.AssertNotCalled(t, "PublishCustomerDeleted", "non-existent")
}

func TestListCustomers(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockKafkaPublisher)
	svc := newTestService(mockDB, mockKafka)

	mockDB.On("ListCustomers", mock.Anything, "anna").Return([]models.Customer{{ID: "c1", FirstName: "Anna"}}, nil)

	customers, err := svc.ListCustomers(context.Background(), "anna")
	assert.NoError(t, err)
	assert.Len(t, customers, 1)
	assert.Equal(t, "Anna", customers[0].FirstName)
}
