package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aditya/go-freight/internal/pricing"
)

const distanceKeyPrefix = "distance:"

type DistanceCache interface {
	GetDistance(ctx context.Context, origin, destination string) (*pricing.Distance, error)
	SetDistance(ctx context.Context, origin, destination string, d pricing.Distance, ttl time.Duration) error
}

type distanceCache struct {
	redis *redis.Client
}

func NewDistanceCache(redisClient *redis.Client) DistanceCache {
	return &distanceCache{redis: redisClient}
}

// DistanceKey builds a direction-independent key from the full place
// strings, so A→B and B→A share one entry while distinct street addresses
// in the same city do not.
func DistanceKey(origin, destination string) string {
	a, b := normalizePlace(origin), normalizePlace(destination)
	if b < a {
		a, b = b, a
	}
	return distanceKeyPrefix + a + "|" + b
}

// normalizePlace lower-cases and collapses whitespace, including around commas.
func normalizePlace(place string) string {
	parts := strings.Split(strings.ToLower(place), ",")
	for i, p := range parts {
		parts[i] = strings.Join(strings.Fields(p), " ")
	}
	return strings.Join(parts, ",")
}

func (c *distanceCache) GetDistance(ctx context.Context, origin, destination string) (*pricing.Distance, error) {
	data, err := c.redis.Get(ctx, DistanceKey(origin, destination)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var d pricing.Distance
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *distanceCache) SetDistance(ctx context.Context, origin, destination string, d pricing.Distance, ttl time.Duration) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, DistanceKey(origin, destination), data, ttl).Err()
}
