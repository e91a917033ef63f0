package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"

	"ms-orders/internal/analytics"
	"ms-orders/internal/models"
)

// MockRedisClient is an in-memory stand-in for the redis commands the
// stats cache uses
type MockRedisClient struct {
	store map[string]string
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		store: make(map[string]string),
	}
}

// Get mocks Get operation
func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := new(redis.StringCmd)

	if val, exists := m.store[key]; exists {
		cmd.SetVal(val)
	} else {
		cmd.SetErr(redis.Nil)
	}

	return cmd
}

// Set mocks Set operation
func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := new(redis.StatusCmd)

	switch v := value.(type) {
	case string:
		m.store[key] = v
	case []byte:
		m.store[key] = string(v)
	}
	cmd.SetVal("OK")

	return cmd
}

func TestStatsCacheMiss(t *testing.T) {
	cache := analytics.NewRedisStatsCache(NewMockRedisClient(), 30*time.Second)

	dashboard, err := cache.GetDashboard(context.Background(), "dashboard_stats:admin:all")
	assert.NoError(t, err)
	assert.Nil(t, dashboard)
}

func TestStatsCacheRoundTrip(t *testing.T) {
	cache := analytics.NewRedisStatsCache(NewMockRedisClient(), 30*time.Second)

	stored := &analytics.Dashboard{
		Period: analytics.PeriodWeek,
		Stats: analytics.Stats{
			TotalOrders:     3,
			CompletedOrders: 1,
			CountsByStatus: map[string]int{
				models.StatusDelivered:    1,
				models.StatusInProduction: 2,
			},
		},
		RecentOrders: []models.Order{},
	}

	err := cache.SetDashboard(context.Background(), "dashboard_stats:admin:week", stored)
	assert.NoError(t, err)

	got, err := cache.GetDashboard(context.Background(), "dashboard_stats:admin:week")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, analytics.PeriodWeek, got.Period)
	assert.Equal(t, 3, got.Stats.TotalOrders)
	assert.Equal(t, 1, got.Stats.CountsByStatus[models.StatusDelivered])
}

func TestStatsCacheCorruptPayload(t *testing.T) {
	client := NewMockRedisClient()
	client.store["dashboard_stats:admin:all"] = "{not json"
	cache := analytics.NewRedisStatsCache(client, 30*time.Second)

	dashboard, err := cache.GetDashboard(context.Background(), "dashboard_stats:admin:all")
	assert.Error(t, err)
	assert.Nil(t, dashboard)
}
