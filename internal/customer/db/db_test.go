package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-orders/internal/customer/db"
	"ms-orders/internal/history"
	"ms-orders/internal/models"
	orderdb "ms-orders/internal/order/db"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	// Connect to an in-memory SQLite DB for testing
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	// Every pooled connection would otherwise get its own empty :memory: db
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	if err := orderdb.CreateSchema(context.Background(), bunDB); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	orders := &orderdb.DB{Bun: bunDB, History: &history.DB{Bun: bunDB}}
	return &db.DB{Bun: bunDB, Orders: orders}, bunDB
}

func testCustomer(firstName, lastName string) models.Customer {
	return models.Customer{
		ID:        uuid.New().String(),
		FirstName: firstName,
		LastName:  lastName,
		CreatedBy: "user123",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestCreateAndGetCustomer(t *testing.T) {
	customerDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	customer := testCustomer("Jan", "Nowak")
	email := "jan.nowak@example.com"
	customer.Email = &email

	err := customerDB.CreateCustomer(context.Background(), &customer)
	assert.NoError(t, err)

	got, err := customerDB.GetCustomerByID(context.Background(), customer.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Jan", got.FirstName)
	assert.NotNil(t, got.Email)
	assert.Equal(t, email, *got.Email)

	// Test case: Get non-existent customer
	got, err = customerDB.GetCustomerByID(context.Background(), "non-existent")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestUpdateCustomer(t *testing.T) {
	customerDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	customer := testCustomer("Jan", "Nowak")
	assert.NoError(t, customerDB.CreateCustomer(context.Background(), &customer))

	phone := "+48 600 100 200"
	customer.LastName = "Nowak-Lewandowski"
	customer.Phone = &phone
	customer.UpdatedAt = time.Now()

	err := customerDB.UpdateCustomer(context.Background(), &customer)
	assert.NoError(t, err)

	got, err := customerDB.GetCustomerByID(context.Background(), customer.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Nowak-Lewandowski", got.LastName)
	assert.NotNil(t, got.Phone)

	// Test case: Update non-existent customer
	missing := testCustomer("Nobody", "Here")
	err = customerDB.UpdateCustomer(context.Background(), &missing)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListCustomersSearch(t *testing.T) {
	customerDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	anna := testCustomer("Anna", "Wiśniewska")
	annaEmail := "anna.w@example.com"
	anna.Email = &annaEmail
	piotr := testCustomer("Piotr", "Zieliński")

	assert.NoError(t, customerDB.CreateCustomer(context.Background(), &anna))
	assert.NoError(t, customerDB.CreateCustomer(context.Background(), &piotr))

	// Test case: No search returns everyone
	customers, err := customerDB.ListCustomers(context.Background(), "")
	assert.NoError(t, err)
	assert.Len(t, customers, 2)

	// Test case: Search is case-insensitive over names
	customers, err = customerDB.ListCustomers(context.Background(), "ANNA")
	assert.NoError(t, err)
	assert.Len(t, customers, 1)
	assert.Equal(t, anna.ID, customers[0].ID)

	// Test case: Search matches email too
	customers, err = customerDB.ListCustomers(context.Background(), "anna.w@")
	assert.NoError(t, err)
	assert.Len(t, customers, 1)

	// Test case: No match yields an empty slice
	customers, err = customerDB.ListCustomers(context.Background(), "zzz")
	assert.NoError(t, err)
	assert.NotNil(t, customers)
	assert.Len(t, customers, 0)
}

func TestDeleteCustomerCascades(t *testing.T) {
	customerDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	doomed := testCustomer("Ewa", "Kamińska")
	survivor := testCustomer("Tomasz", "Wójcik")
	assert.NoError(t, customerDB.CreateCustomer(context.Background(), &doomed))
	assert.NoError(t, customerDB.CreateCustomer(context.Background(), &survivor))

	doomedOrder := models.Order{
		ID:             uuid.New().String(),
		TrackingNumber: "LMICASCADE001",
		CustomerID:     doomed.ID,
		Status:         models.StatusPendingPrice,
		ProductName:    "Walnut shelf",
		Quantity:       1,
		CreatedBy:      "user123",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	survivorOrder := models.Order{
		ID:             uuid.New().String(),
		TrackingNumber: "LMICASCADE002",
		CustomerID:     survivor.ID,
		Status:         models.StatusPendingPrice,
		ProductName:    "Pine bench",
		Quantity:       1,
		CreatedBy:      "user123",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	assert.NoError(t, customerDB.Orders.CreateOrder(context.Background(), &doomedOrder))
	assert.NoError(t, customerDB.Orders.CreateOrder(context.Background(), &survivorOrder))

	_, _, err := customerDB.Orders.UpdateOrderStatus(context.Background(), doomedOrder.ID, models.StatusInProduction, nil, "admin1")
	assert.NoError(t, err)

	err = customerDB.DeleteCustomer(context.Background(), doomed.ID)
	assert.NoError(t, err)

	// Customer, its orders and their trail entries are all gone
	_, err = customerDB.GetCustomerByID(context.Background(), doomed.ID)
	assert.Error(t, err)

	orderCount, err := bunDB.NewSelect().
		Model((*models.Order)(nil)).
		Where("customer_id = ?", doomed.ID).
		Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, orderCount)

	historyCount, err := bunDB.NewSelect().
		Model((*models.OrderHistory)(nil)).
		Where("order_id = ?", doomedOrder.ID).
		Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, historyCount)

	// The other customer's data survives
	_, err = customerDB.GetCustomerByID(context.Background(), survivor.ID)
	assert.NoError(t, err)
	kept, err := customerDB.Orders.GetOrderByID(context.Background(), survivorOrder.ID)
	assert.NoError(t, err)
	assert.Equal(t, survivorOrder.ID, kept.ID)
}

func TestDeleteCustomerMissing(t *testing.T) {
	customerDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	err := customerDB.DeleteCustomer(context.Background(), "non-existent")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
