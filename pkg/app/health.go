package app

import (
	"context"
	"net/http"
	"salonbook/pkg/logger"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	httputil "salonbook/pkg/http"
)

const readyTimeout = 2 * time.Second

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Pinger reports whether a backing service answers.
type Pinger func(ctx context.Context) error

// HealthHandler serves liveness and readiness. Readiness pings every registered dependency.
type HealthHandler struct {
	checks map[string]Pinger
	log    *logger.Logger
}

func NewHealthHandler(log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		checks: make(map[string]Pinger),
		log:    log,
	}
}

func (h *HealthHandler) AddCheck(name string, ping Pinger) {
	h.checks[name] = ping
}

func (h *HealthHandler) AddMongo(client *mongo.Client) {
	if client == nil {
		return
	}
	h.AddCheck("mongo", func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})
}

func (h *HealthHandler) AddRedis(client redis.UniversalClient) {
	if client == nil {
		return
	}
	h.AddCheck("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := http.StatusOK
	resp := HealthResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			h.log.Error("Dependency health check failed",
				"dependency", name,
				"error", err,
				"path", r.URL.Path,
			)
			resp.Checks[name] = "error"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
