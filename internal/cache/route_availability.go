package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"go-rail-booking/internal/model"
	"time"

	"github.com/redis/go-redis/v9"
)

// RouteAvailabilityCache is a display-only cache for route search results.
// It is never consulted for capacity decisions; those always happen under
// the train row lock in the database. Mutations to a train's seats or
// catalog fields invalidate the routes they touch.
type RouteAvailabilityCache interface {
	GetRoute(ctx context.Context, source, destination string) ([]*model.Train, bool, error)
	SetRoute(ctx context.Context, source, destination string, trains []*model.Train) error
	InvalidateRoute(ctx context.Context, source, destination string) error
}

type RouteAvailabilityCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

const defaultRouteTTL = 30 * time.Second

func NewRouteAvailabilityCache(client *redis.Client, ttl time.Duration) RouteAvailabilityCache {
	if ttl <= 0 {
		ttl = defaultRouteTTL
	}
	return &RouteAvailabilityCacheImpl{
		client: client,
		ttl:    ttl,
	}
}

func (c *RouteAvailabilityCacheImpl) routeKey(source, destination string) string {
	return fmt.Sprintf("route:%s:%s", source, destination)
}

func (c *RouteAvailabilityCacheImpl) GetRoute(ctx context.Context, source, destination string) ([]*model.Train, bool, error) {
	raw, err := c.client.Get(ctx, c.routeKey(source, destination)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var trains []*model.Train
	if err := json.Unmarshal([]byte(raw), &trains); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached route: %w", err)
	}

	return trains, true, nil
}

func (c *RouteAvailabilityCacheImpl) SetRoute(ctx context.Context, source, destination string, trains []*model.Train) error {
	raw, err := json.Marshal(trains)
	if err != nil {
		return fmt.Errorf("marshal route: %w", err)
	}

	return c.client.Set(ctx, c.routeKey(source, destination), raw, c.ttl).Err()
}

func (c *RouteAvailabilityCacheImpl) InvalidateRoute(ctx context.Context, source, destination string) error {
	return c.client.Del(ctx, c.routeKey(source, destination)).Err()
}
