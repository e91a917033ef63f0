// Package analytics derives dashboard statistics from a point-in-time read
// of the order ledger. It holds no state of its own; everything is
// recomputed on demand and optionally cached.
package analytics

import (
	"context"
	"fmt"
	"time"

	"ms-orders/internal/apperr"
	"ms-orders/internal/logger"
	"ms-orders/internal/models"
)

type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// ParsePeriod validates a period query value; empty defaults to all.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear, PeriodAll:
		return Period(s), nil
	case "":
		return PeriodAll, nil
	default:
		return "", apperr.Validation("period", fmt.Sprintf("unknown period %q", s))
	}
}

// Stats is the aggregate the dashboard renders.
type Stats struct {
	TotalOrders           int            `json:"total_orders"`
	CompletedOrders       int            `json:"completed_orders"`
	AverageProcessingDays float64        `json:"average_processing_days"`
	CountsByStatus        map[string]int `json:"counts_by_status"`
}

// Dashboard bundles the stats with the most recent orders of the period.
type Dashboard struct {
	Period       Period         `json:"period"`
	Stats        Stats          `json:"stats"`
	RecentOrders []models.Order `json:"recent_orders"`
}

// FilterByPeriod keeps the orders created within the period, measured
// against now. today means the same calendar date; month and year use
// calendar-aware subtraction rather than fixed day counts.
func FilterByPeriod(orders []models.Order, period Period, now time.Time) []models.Order {
	if period == PeriodAll {
		return orders
	}

	var cutoff time.Time
	switch period {
	case PeriodToday:
		filtered := make([]models.Order, 0, len(orders))
		y, m, d := now.Date()
		for _, o := range orders {
			oy, om, od := o.CreatedAt.Date()
			if oy == y && om == m && od == d {
				filtered = append(filtered, o)
			}
		}
		return filtered
	case PeriodWeek:
		cutoff = now.AddDate(0, 0, -7)
	case PeriodMonth:
		cutoff = now.AddDate(0, -1, 0)
	case PeriodYear:
		cutoff = now.AddDate(-1, 0, 0)
	}

	filtered := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if !o.CreatedAt.Before(cutoff) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// ComputeStats aggregates the given orders. Average processing time is the
// mean of (updated_at - created_at) in fractional days over delivered orders
// only, and 0 when none are delivered.
func ComputeStats(orders []models.Order) Stats {
	stats := Stats{
		CountsByStatus: make(map[string]int, len(models.OrderStatuses)),
	}
	for _, s := range models.OrderStatuses {
		stats.CountsByStatus[s] = 0
	}

	var totalDays float64
	for _, o := range orders {
		stats.TotalOrders++
		stats.CountsByStatus[o.Status]++
		if o.Status == models.StatusDelivered {
			stats.CompletedOrders++
			totalDays += o.UpdatedAt.Sub(o.CreatedAt).Hours() / 24
		}
	}
	if stats.CompletedOrders > 0 {
		stats.AverageProcessingDays = totalDays / float64(stats.CompletedOrders)
	}
	return stats
}

// RecentOrders returns the first n of an already newest-first order list.
func RecentOrders(orders []models.Order, n int) []models.Order {
	if n > len(orders) {
		n = len(orders)
	}
	return orders[:n]
}

// OrderLister is the slice of the ledger the aggregator reads through; the
// caller scoping of ListOrders carries over so employees aggregate only
// their own orders.
type OrderLister interface {
	ListOrders(ctx context.Context, filter models.OrderFilter, callerRole, callerID string) ([]models.Order, error)
}

type Cache interface {
	GetDashboard(ctx context.Context, key string) (*Dashboard, error)
	SetDashboard(ctx context.Context, key string, d *Dashboard) error
}

type Service struct {
	Orders OrderLister
	Cache  Cache
	Logger *logger.Logger
}

func NewService(orders OrderLister, cache Cache, log *logger.Logger) *Service {
	return &Service{Orders: orders, Cache: cache, Logger: log}
}

// GetDashboard computes (or serves from cache) the stats for the caller's
// visible orders over the requested period.
func (s *Service) GetDashboard(ctx context.Context, period Period, callerRole, callerID string) (*Dashboard, error) {
	key := cacheKey(period, callerRole, callerID)
	if s.Cache != nil {
		if cached, err := s.Cache.GetDashboard(ctx, key); err != nil {
			s.Logger.Warn("ANALYTICS", fmt.Sprintf("stats cache read failed: %v", err))
		} else if cached != nil {
			return cached, nil
		}
	}

	orders, err := s.Orders.ListOrders(ctx, models.OrderFilter{}, callerRole, callerID)
	if err != nil {
		return nil, apperr.Storage("failed to read orders for stats", err)
	}

	filtered := FilterByPeriod(orders, period, time.Now())
	dashboard := &Dashboard{
		Period:       period,
		Stats:        ComputeStats(filtered),
		RecentOrders: RecentOrders(filtered, 5),
	}

	if s.Cache != nil {
		if err := s.Cache.SetDashboard(ctx, key, dashboard); err != nil {
			s.Logger.Warn("ANALYTICS", fmt.Sprintf("stats cache write failed: %v", err))
		}
	}

	return dashboard, nil
}

// Admin dashboards are shared; employee dashboards are per user.
func cacheKey(period Period, callerRole, callerID string) string {
	if callerRole == models.RoleAdmin {
		return fmt.Sprintf("dashboard_stats:admin:%s", period)
	}
	return fmt.Sprintf("dashboard_stats:employee:%s:%s", callerID, period)
}
