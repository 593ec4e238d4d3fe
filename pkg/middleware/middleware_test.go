package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"salonbook/pkg/logger"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard, Service: "test"})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRateLimiter_PerClientBuckets(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, nil, testLogger(), nil)
	defer rl.Stop()
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return base }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "clients do not share a bucket")
	assert.True(t, rl.Allow(""), "anonymous requests are not limited")

	rl.now = func() time.Time { return base.Add(30 * time.Second) }
	assert.True(t, rl.Allow("10.0.0.1"), "half a window refills one token")
}

func TestRateLimiter_Prune(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute, nil, testLogger(), nil)
	defer rl.Stop()
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return base }

	rl.Allow("a")
	rl.Allow("b")
	require.Equal(t, 2, rl.size())

	rl.now = func() time.Time { return base.Add(90 * time.Second) }
	rl.Allow("b")
	rl.prune()
	assert.Equal(t, 1, rl.size())
}

func TestRateLimit_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour, nil, testLogger(), nil)
	defer rl.Stop()
	h := RateLimit(rl)(http.HandlerFunc(ok))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.RemoteAddr = "192.0.2.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, CodeRateLimited, errorCode(t, rec))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:80", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.8"}, "10.0.0.1:80", "203.0.113.8"},
		{"peer address", nil, "198.51.100.4:1234", "198.51.100.4"},
		{"peer without port", nil, "198.51.100.4", "198.51.100.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestIdempotency_ReplaysSuccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls atomic.Int32
	h := Idempotency(store, "", testLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"n":` + string(rune('0'+n)) + `}}`))
	}))

	send := func(path, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}"))
		req.Header.Set(IdempotencyKeyHeader, key)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send("/api/v1/bookings", "k1")
	second := send("/api/v1/bookings", "k1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, int32(1), calls.Load())

	send("/api/v1/bookings/id/x/cancel", "k1")
	assert.Equal(t, int32(2), calls.Load(), "keys are scoped to the endpoint")
}

func TestIdempotency_DoesNotCacheFailures(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls atomic.Int32
	h := Idempotency(store, "", testLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
	}))

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set(IdempotencyKeyHeader, "k1")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", &CachedResponse{StatusCode: 200}))
	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)

	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisIdempotencyStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisIdempotencyStore(client, time.Minute)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "k", &CachedResponse{
		StatusCode: http.StatusCreated,
		Headers:    http.Header{"Content-Type": {"application/json"}},
		Body:       []byte(`{"data":1}`),
	}))

	cached, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, http.StatusCreated, cached.StatusCode)
	assert.Equal(t, `{"data":1}`, string(cached.Body))
	assert.Equal(t, "application/json", cached.Headers.Get("Content-Type"))

	mr.FastForward(2 * time.Minute)
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRequestLogging_RequestID(t *testing.T) {
	var seen string
	h := RequestLogging(testLogger(), nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestRecovery(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	h := RequestTimeout(20*time.Millisecond, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		<-release
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "TIMEOUT", errorCode(t, rec))
}

func TestRequestTimeout_FastHandler(t *testing.T) {
	h := RequestTimeout(time.Second, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Test", "1")
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(testLogger())(http.HandlerFunc(ok))

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{"json post", http.MethodPost, "{}", "application/json; charset=utf-8", http.StatusOK},
		{"form post", http.MethodPost, "a=b", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"missing header", http.MethodPut, "{}", "", http.StatusUnsupportedMediaType},
		{"bodyless post", http.MethodPost, "", "", http.StatusOK},
		{"get", http.MethodGet, "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	var readErr error
	h := MaxRequestSize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"0123456789"}`)))
	assert.Error(t, readErr)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	assert.NoError(t, readErr)
}
