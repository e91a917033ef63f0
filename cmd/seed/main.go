// Dev seeder: drops and recreates the schema, then loads a small set of
// customers and orders so the API has something to serve locally. Never run
// this against a real database.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-orders/internal/config"
	"ms-orders/internal/models"
	orderdb "ms-orders/internal/order/db"
	"ms-orders/internal/utils"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()
	cfg := config.Load()

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Username,
		cfg.Database.Password, cfg.Database.Database)

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open Postgres connection: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	log.Println("Dropping tables...")
	dropTables(ctx, db)

	log.Println("Creating tables...")
	if err := orderdb.CreateSchema(ctx, db); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	log.Println("Seeding sample data...")
	if err := seedData(ctx, db); err != nil {
		log.Fatalf("Failed to seed data: %v", err)
	}

	log.Println("Done.")
}

func dropTables(ctx context.Context, db *bun.DB) {
	// Reverse dependency order
	tables := []interface{}{(*models.OrderHistory)(nil), (*models.Order)(nil), (*models.Customer)(nil)}
	for _, m := range tables {
		_, _ = db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx)
	}
}

func seedData(ctx context.Context, db *bun.DB) error {
	now := time.Now()

	email := "marta.kowalska@example.com"
	phone := "+48 600 100 200"
	customers := []models.Customer{
		{ID: uuid.NewString(), FirstName: "Marta", LastName: "Kowalska", Email: &email, Phone: &phone, CreatedBy: "seed", CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), FirstName: "Jan", LastName: "Nowak", CreatedBy: "seed", CreatedAt: now, UpdatedAt: now},
	}
	if _, err := db.NewInsert().Model(&customers).Exec(ctx); err != nil {
		return err
	}

	price := 2400.0
	advance := 30
	details := "Solid oak, 180x90, oiled finish"
	orders := []models.Order{
		{
			ID:                uuid.NewString(),
			TrackingNumber:    utils.GenerateTrackingNumber(),
			CustomerID:        customers[0].ID,
			Status:            models.StatusInProduction,
			ProductName:       "Oak dining table",
			Quantity:          1,
			TechnicalDetails:  &details,
			TotalPrice:        &price,
			AdvancePercentage: &advance,
			AdvancePaid:       true,
			CreatedBy:         "seed",
			CreatedAt:         now.AddDate(0, 0, -10),
			UpdatedAt:         now,
		},
		{
			ID:             uuid.NewString(),
			TrackingNumber: utils.GenerateTrackingNumber(),
			CustomerID:     customers[1].ID,
			Status:         models.StatusPendingPrice,
			ProductName:    "Walnut bookshelf",
			Quantity:       2,
			CreatedBy:      "seed",
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
	if _, err := db.NewInsert().Model(&orders).Exec(ctx); err != nil {
		return err
	}

	comment := "advance received, materials ordered"
	history := []models.OrderHistory{
		{ID: uuid.NewString(), OrderID: orders[0].ID, Status: models.StatusPendingAdvance, CreatedBy: "seed", CreatedAt: now.AddDate(0, 0, -9)},
		{ID: uuid.NewString(), OrderID: orders[0].ID, Status: models.StatusAdvancePaid, Comment: &comment, CreatedBy: "seed", CreatedAt: now.AddDate(0, 0, -7)},
		{ID: uuid.NewString(), OrderID: orders[0].ID, Status: models.StatusInProduction, CreatedBy: "seed", CreatedAt: now.AddDate(0, 0, -6)},
	}
	_, err := db.NewInsert().Model(&history).Exec(ctx)
	return err
}
