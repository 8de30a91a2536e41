package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aditya/go-freight/internal/models"
)

const (
	quoteKeyPrefix     = "quote:"
	quoteUsedKeySuffix = ":used"
)

type QuoteCache interface {
	SaveQuote(ctx context.Context, quote *models.Quote, ttl time.Duration) error
	GetQuote(ctx context.Context, id string) (*models.Quote, error)
	// ClaimQuote marks a quote as consumed by a freight. It returns false when
	// another freight already claimed it.
	ClaimQuote(ctx context.Context, id, freightID string, ttl time.Duration) (bool, error)
	ReleaseQuote(ctx context.Context, id string) error
}

type quoteCache struct {
	redis *redis.Client
}

func NewQuoteCache(redisClient *redis.Client) QuoteCache {
	return &quoteCache{redis: redisClient}
}

func (c *quoteCache) SaveQuote(ctx context.Context, quote *models.Quote, ttl time.Duration) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, quoteKeyPrefix+quote.ID, data, ttl).Err()
}

// GetQuote returns nil, nil when the quote is unknown or expired.
func (c *quoteCache) GetQuote(ctx context.Context, id string) (*models.Quote, error) {
	data, err := c.redis.Get(ctx, quoteKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var quote models.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (c *quoteCache) ClaimQuote(ctx context.Context, id, freightID string, ttl time.Duration) (bool, error) {
	return c.redis.SetNX(ctx, quoteKeyPrefix+id+quoteUsedKeySuffix, freightID, ttl).Result()
}

func (c *quoteCache) ReleaseQuote(ctx context.Context, id string) error {
	return c.redis.Del(ctx, quoteKeyPrefix+id+quoteUsedKeySuffix).Err()
}
