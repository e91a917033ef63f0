package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-orders/internal/analytics"
	analytics_api "ms-orders/internal/analytics/api"
	"ms-orders/internal/auth"
	"ms-orders/internal/config"
	"ms-orders/internal/customer"
	customer_api "ms-orders/internal/customer/api"
	customerdb "ms-orders/internal/customer/db"
	"ms-orders/internal/database/migrations"
	"ms-orders/internal/history"
	"ms-orders/internal/kafka"
	"ms-orders/internal/logger"
	"ms-orders/internal/order"
	orderdb "ms-orders/internal/order/db"
	"ms-orders/internal/order/order_api"
	"ms-orders/internal/order/qr"
	"ms-orders/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	// --- PostgreSQL Setup ---
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Username,
		cfg.Database.Password, cfg.Database.Database)

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open Postgres connection: %v", err))
	}
	defer sqldb.Close()

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	log.Info("DATABASE", "Connected to Postgres")

	// --- Migrations ---
	if cfg.Migrations.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.Options{
			MigrationsDir: cfg.Migrations.Dir,
			AutoMigrate:   true,
		})
		if err := runner.RunMigrations(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		log.Info("DATABASE", "Migrations applied")
	}

	// --- Redis Setup (stats cache) ---
	var statsCache analytics.Cache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("REDIS", fmt.Sprintf("Redis unavailable, stats cache disabled: %v", err))
		} else {
			statsCache = analytics.NewRedisStatsCache(redisClient, cfg.Redis.StatsTTL)
			log.Info("REDIS", fmt.Sprintf("Connected to Redis at %s", cfg.Redis.Addr))
		}
		cancel()
	}

	// --- Kafka Setup ---
	if cfg.Kafka.Enabled && !cfg.Kafka.MockMode {
		topics := []string{
			cfg.Kafka.Topics.OrderCreated,
			cfg.Kafka.Topics.OrderStatusChanged,
			cfg.Kafka.Topics.OrderDeleted,
			cfg.Kafka.Topics.CustomerDeleted,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation failed: %v", err))
		}
	}
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics, cfg.Kafka.MockMode || !cfg.Kafka.Enabled, log)
	defer producer.Close()

	// --- Initialize Dependencies ---
	historyDB := &history.DB{Bun: bunDB}
	orderDBLayer := &orderdb.DB{Bun: bunDB, History: historyDB}
	customerDBLayer := &customerdb.DB{Bun: bunDB, Orders: orderDBLayer}

	orderService := order.NewOrderService(orderDBLayer, producer, log)
	customerService := customer.NewCustomerService(customerDBLayer, producer, log)
	analyticsService := analytics.NewService(orderDBLayer, statsCache, log)

	qrGen := qr.NewGenerator(cfg.Auth.PublicBaseURL)
	orderHandler := order_api.NewHandler(orderService, qrGen, log)
	customerHandler := customer_api.NewHandler(customerService, log)
	analyticsHandler := analytics_api.NewHandler(analyticsService, log)

	// --- Setup Router ---
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("order ledger is running", nil))
		})

		// Public tracking surface, no authentication
		r.Get("/orders/by-tracking/{trackingNumber}", orderHandler.TrackByNumber)
		r.Get("/orders/track/{trackingNumber}/qr", orderHandler.TrackingQR)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware([]byte(cfg.Auth.JWTSecret)))

			r.Post("/customers", customerHandler.CreateCustomer)
			r.Get("/customers", customerHandler.ListCustomers)
			r.Get("/customers/{customerId}", customerHandler.GetCustomer)
			r.Patch("/customers/{customerId}", customerHandler.UpdateCustomer)
			r.Delete("/customers/{customerId}", customerHandler.DeleteCustomer)

			r.Post("/orders", orderHandler.CreateOrder)
			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{orderId}", orderHandler.GetOrder)
			r.Patch("/orders/{orderId}", orderHandler.UpdateOrder)
			r.Delete("/orders/{orderId}", orderHandler.DeleteOrder)
			r.Post("/orders/{orderId}/status", orderHandler.UpdateStatus)
			r.Get("/orders/{orderId}/history", orderHandler.GetHistory)

			r.Get("/dashboard/stats", analyticsHandler.GetDashboardStats)
		})
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Order ledger service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("SERVER", "Shutdown signal received, cleaning up...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("SERVER", fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	log.Info("SERVER", "Server exited gracefully")
}
