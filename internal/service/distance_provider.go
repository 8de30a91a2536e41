package service

import (
	"context"
	"log"
	"time"

	"github.com/aditya/go-freight/internal/cache"
	"github.com/aditya/go-freight/internal/pricing"
)

// CachedDistanceProvider puts a Redis cache in front of a remote provider and
// falls back to the static route table when the remote call fails, so a
// distance is always available.
type CachedDistanceProvider struct {
	remote   pricing.DistanceProvider
	fallback pricing.DistanceProvider
	cache    cache.DistanceCache
	ttl      time.Duration
}

func NewCachedDistanceProvider(remote pricing.DistanceProvider, distanceCache cache.DistanceCache, ttl time.Duration) *CachedDistanceProvider {
	return &CachedDistanceProvider{
		remote:   remote,
		fallback: pricing.NewStaticTableProvider(),
		cache:    distanceCache,
		ttl:      ttl,
	}
}

func (p *CachedDistanceProvider) Estimate(ctx context.Context, origin, destination string) (pricing.Distance, error) {
	if p.cache != nil {
		cached, err := p.cache.GetDistance(ctx, origin, destination)
		if err != nil {
			log.Printf("distance cache read failed for %s -> %s: %v", origin, destination, err)
		} else if cached != nil {
			return *cached, nil
		}
	}

	d, err := p.remote.Estimate(ctx, origin, destination)
	if err != nil {
		log.Printf("routing provider failed for %s -> %s, using route table: %v", origin, destination, err)
		return p.fallback.Estimate(ctx, origin, destination)
	}

	if p.cache != nil {
		if err := p.cache.SetDistance(ctx, origin, destination, d, p.ttl); err != nil {
			log.Printf("distance cache write failed for %s -> %s: %v", origin, destination, err)
		}
	}

	return d, nil
}
