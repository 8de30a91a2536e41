package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/aditya/go-freight/internal/errors"
	"github.com/aditya/go-freight/pkg/utils"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
	idempotencyLock   = 30 * time.Second
	idempotencyPrefix = "idempotency:"
)

// IdempotencyMiddleware replays the stored response of a POST made with an
// already seen Idempotency-Key. Keys are scoped per route, so the same key
// can be reused for a quote and a freight.
type IdempotencyMiddleware struct {
	redis redis.Cmdable
	ttl   time.Duration
}

type cachedResponse struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       []byte            `json:"body"`
	BodyHash   string            `json:"body_hash"`
}

func NewIdempotencyMiddleware(redisClient redis.Cmdable) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{redis: redisClient, ttl: idempotencyTTL}
}

// captureWriter tees the response so it can be stored.
type captureWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.statusCode = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.body.Write(b)
	return cw.ResponseWriter.Write(b)
}

func (m *IdempotencyMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			utils.BadRequest(w, "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		bodyHash := hashBody(bodyBytes)
		cacheKey := idempotencyPrefix + r.URL.Path + ":" + key
		ctx := r.Context()

		cached, err := m.getCachedResponse(ctx, cacheKey)
		if err != nil && err != redis.Nil {
			log.Printf("idempotency lookup failed for %s: %v", cacheKey, err)
		}
		if cached != nil {
			if cached.BodyHash != bodyHash {
				utils.Error(w, apperrors.IdempotencyConflict())
				return
			}

			for k, v := range cached.Headers {
				w.Header().Set(k, v)
			}
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(cached.StatusCode)
			w.Write(cached.Body)
			return
		}

		lockKey := cacheKey + ":lock"
		locked, err := m.redis.SetNX(ctx, lockKey, "1", idempotencyLock).Result()
		if err != nil {
			// Fail open; the freights.idempotency_key constraint still dedupes bookings.
			log.Printf("idempotency lock unavailable for %s: %v", cacheKey, err)
			next.ServeHTTP(w, r)
			return
		}
		if !locked {
			utils.Error(w, apperrors.RequestInProgress())
			return
		}
		defer m.redis.Del(context.WithoutCancel(ctx), lockKey)

		cw := &captureWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(cw, r)

		// Only 2xx are replayed; a failed attempt may be retried with the same key.
		if cw.statusCode < 200 || cw.statusCode >= 300 {
			return
		}

		data, err := json.Marshal(cachedResponse{
			StatusCode: cw.statusCode,
			Headers:    map[string]string{"Content-Type": cw.Header().Get("Content-Type")},
			Body:       cw.body.Bytes(),
			BodyHash:   bodyHash,
		})
		if err != nil {
			return
		}
		if err := m.redis.Set(context.WithoutCancel(ctx), cacheKey, data, m.ttl).Err(); err != nil {
			log.Printf("idempotency store failed for %s: %v", cacheKey, err)
		}
	})
}

func (m *IdempotencyMiddleware) getCachedResponse(ctx context.Context, key string) (*cachedResponse, error) {
	data, err := m.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var cached cachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	return &cached, nil
}

func hashBody(body []byte) string {
	hash := sha256.Sum256(body)
	return hex.EncodeToString(hash[:])
}
