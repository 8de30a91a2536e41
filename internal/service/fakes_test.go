package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aditya/go-freight/internal/models"
	"github.com/aditya/go-freight/internal/pricing"
	"github.com/aditya/go-freight/internal/repository"
)

type memQuoteCache struct {
	mu     sync.Mutex
	quotes map[string]*models.Quote
	claims map[string]string
}

func newMemQuoteCache() *memQuoteCache {
	return &memQuoteCache{
		quotes: make(map[string]*models.Quote),
		claims: make(map[string]string),
	}
}

func (c *memQuoteCache) SaveQuote(ctx context.Context, quote *models.Quote, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes[quote.ID] = quote
	return nil
}

func (c *memQuoteCache) GetQuote(ctx context.Context, id string) (*models.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quotes[id], nil
}

func (c *memQuoteCache) ClaimQuote(ctx context.Context, id, freightID string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.claims[id]; ok {
		return false, nil
	}
	c.claims[id] = freightID
	return true, nil
}

func (c *memQuoteCache) ReleaseQuote(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.claims, id)
	return nil
}

type memFreightRepo struct {
	mu        sync.Mutex
	freights  map[string]*models.Freight
	createErr error

	// concurrentStatus simulates another request moving the freight between
	// the service's read and its write.
	concurrentStatus string
}

func newMemFreightRepo() *memFreightRepo {
	return &memFreightRepo{freights: make(map[string]*models.Freight)}
}

func (r *memFreightRepo) Create(ctx context.Context, freight *models.Freight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if freight.IdempotencyKey != nil {
		for _, f := range r.freights {
			if f.IdempotencyKey != nil && *f.IdempotencyKey == *freight.IdempotencyKey {
				return repository.ErrDuplicateIdempotencyKey
			}
		}
	}
	freight.Status = models.FreightStatusPending
	freight.CreatedAt = time.Now()
	freight.UpdatedAt = freight.CreatedAt
	cp := *freight
	r.freights[freight.ID] = &cp
	return nil
}

func (r *memFreightRepo) GetByID(ctx context.Context, id string) (*models.Freight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.freights[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *memFreightRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.Freight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.freights {
		if f.IdempotencyKey != nil && *f.IdempotencyKey == key {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memFreightRepo) List(ctx context.Context, filter models.FreightFilter) ([]*models.Freight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Freight
	for _, f := range r.freights {
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.ShipperID != "" && f.ShipperID != filter.ShipperID {
			continue
		}
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memFreightRepo) AssignTransporter(ctx context.Context, id, transporterID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.freights[id]
	if !ok || f.Status != models.FreightStatusPending {
		return false, nil
	}
	f.TransporterID = &transporterID
	f.Status = models.FreightStatusAssigned
	return true, nil
}

// interleave applies a pending concurrent status change before a guarded write.
func (r *memFreightRepo) interleave(f *models.Freight) {
	if r.concurrentStatus != "" {
		f.Status = r.concurrentStatus
		r.concurrentStatus = ""
	}
}

func (r *memFreightRepo) UpdateStatus(ctx context.Context, id, expected, status string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.freights[id]
	r.interleave(f)
	if f.Status != expected {
		return false, nil
	}
	f.Status = status
	return true, nil
}

func (r *memFreightRepo) Unassign(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.freights[id]
	r.interleave(f)
	if f.Status != models.FreightStatusAssigned {
		return false, nil
	}
	f.TransporterID = nil
	f.Status = models.FreightStatusPending
	return true, nil
}

func (r *memFreightRepo) Cancel(ctx context.Context, id, expected, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.freights[id]
	r.interleave(f)
	if f.Status != expected {
		return false, nil
	}
	f.Status = models.FreightStatusCancelled
	if reason != "" {
		f.CancellationReason = &reason
	}
	return true, nil
}

type stubProvider struct {
	distance pricing.Distance
	err      error
	calls    int
}

func (p *stubProvider) Estimate(ctx context.Context, origin, destination string) (pricing.Distance, error) {
	p.calls++
	return p.distance, p.err
}

var errRemoteDown = errors.New("routing api unavailable")

type memDistanceCache struct {
	entries map[string]pricing.Distance
}

func (c *memDistanceCache) GetDistance(ctx context.Context, origin, destination string) (*pricing.Distance, error) {
	d, ok := c.entries[origin+"|"+destination]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (c *memDistanceCache) SetDistance(ctx context.Context, origin, destination string, d pricing.Distance, ttl time.Duration) error {
	c.entries[origin+"|"+destination] = d
	return nil
}
