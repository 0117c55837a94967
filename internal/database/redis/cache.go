package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prakida/festival-backend/internal/entity"
)

// DashboardCache keeps the merged dashboard view per user so repeated page
// loads do not re-run the two-pass aggregation query.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDashboardCache(client *redis.Client, ttl time.Duration) *DashboardCache {
	return &DashboardCache{
		client: client,
		ttl:    ttl,
	}
}

func registrationsKey(userKey string) string {
	return "dashboard:registrations:" + userKey
}

func (c *DashboardCache) SetRegistrations(ctx context.Context, userKey string, registrations []*entity.Registration) error {
	data, err := json.Marshal(registrations)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, registrationsKey(userKey), data, c.ttl).Err()
}

func (c *DashboardCache) GetRegistrations(ctx context.Context, userKey string) ([]*entity.Registration, error) {
	data, err := c.client.Get(ctx, registrationsKey(userKey)).Result()
	if err != nil {
		return nil, err
	}

	var registrations []*entity.Registration
	if err := json.Unmarshal([]byte(data), &registrations); err != nil {
		return nil, err
	}
	return registrations, nil
}

func (c *DashboardCache) Invalidate(ctx context.Context, userKey string) error {
	return c.client.Del(ctx, registrationsKey(userKey)).Err()
}
