package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"salonbook/pkg/logger"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*CachedResponse, bool, error)
	Set(ctx context.Context, key string, response *CachedResponse) error
	Stop() // Stop cleanup goroutines and release resources
}

type CachedResponse struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
}

type InMemoryIdempotencyStore struct {
	mu       sync.RWMutex
	store    map[string]*CachedResponse
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		store:  make(map[string]*CachedResponse),
		ttl:    ttl,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *InMemoryIdempotencyStore) Get(_ context.Context, key string) (*CachedResponse, bool, error) {
	s.mu.RLock()
	response, exists := s.store[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	if s.now().Sub(response.CreatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.store, key)
		s.mu.Unlock()
		return nil, false, nil
	}

	return response, true, nil
}

func (s *InMemoryIdempotencyStore) Set(_ context.Context, key string, response *CachedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.CreatedAt = s.now()
	s.store[key] = response
	return nil
}

func (s *InMemoryIdempotencyStore) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, response := range s.store {
				if s.now().Sub(response.CreatedAt) > s.ttl {
					delete(s.store, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// RedisIdempotencyStore shares replay entries between instances; expiry is left to Redis.
type RedisIdempotencyStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

func NewRedisIdempotencyStore(client redis.UniversalClient, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl, prefix: "salonbook:idempotency:"}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get idempotency key: %w", err)
	}

	var cached CachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("decode idempotency entry: %w", err)
	}
	return &cached, true, nil
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) error {
	response.CreatedAt = time.Now()
	raw, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("encode idempotency entry: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set idempotency key: %w", err)
	}
	return nil
}

func (s *RedisIdempotencyStore) Stop() {}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the stored 2xx response for a repeated key on the same method and
// path. Store failures degrade to executing the request.
func Idempotency(store IdempotencyStore, headerName string, log *logger.Logger) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = IdempotencyKeyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := extractIdempotencyKey(r, headerName)

			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			if handleCachedResponse(w, r, store, idempotencyKey, log) {
				return
			}

			capture := captureResponse(w)
			next.ServeHTTP(capture, r)
			cacheSuccessfulResponse(r, store, idempotencyKey, capture, w, log)
		})
	}
}

// extractIdempotencyKey scopes the client key to the endpoint. Reads are never replayed.
func extractIdempotencyKey(r *http.Request, headerName string) string {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return ""
	}
	key := r.Header.Get(headerName)
	if key == "" || len(key) > 255 {
		return ""
	}
	return r.Method + " " + r.URL.Path + " " + key
}

func handleCachedResponse(w http.ResponseWriter, r *http.Request, store IdempotencyStore, key string, log *logger.Logger) bool {
	cached, found, err := store.Get(r.Context(), key)
	if err != nil {
		log.Ctx(r.Context()).Warn("Idempotency lookup failed", "error", err)
		return false
	}
	if !found {
		return false
	}

	replayCachedResponse(w, cached)
	return true
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

func captureResponse(w http.ResponseWriter) *responseCapture {
	return &responseCapture{
		ResponseWriter: w,
		statusCode:     200,
		body:           &bytes.Buffer{},
	}
}

func cacheSuccessfulResponse(r *http.Request, store IdempotencyStore, key string, capture *responseCapture, w http.ResponseWriter, log *logger.Logger) {
	if !shouldCacheResponse(capture.statusCode) {
		return
	}

	headers := w.Header().Clone()
	headers.Del(RequestIDHeader)
	cached := &CachedResponse{
		StatusCode: capture.statusCode,
		Headers:    headers,
		Body:       capture.body.Bytes(),
	}
	if err := store.Set(r.Context(), key, cached); err != nil {
		log.Ctx(r.Context()).Warn("Idempotency store failed", "error", err)
	}
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
