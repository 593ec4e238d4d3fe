package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"salonbook/pkg/config"
	"salonbook/pkg/contracts"
	"salonbook/pkg/metrics"
	"salonbook/pkg/middleware"
	"strings"
	"sync"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type task struct {
	name string
	fn   func(ctx context.Context) error
}

type Application struct {
	cfg              *config.Config
	metrics          *metrics.Metrics
	server           *http.Server
	idempotencyStore middleware.IdempotencyStore
	rateLimiter      *middleware.RateLimiter
	health           *HealthHandler
	healthHandler    http.Handler
	appHttpHandler   http.Handler
	mux              *http.ServeMux

	background []task
	onShutdown []task
	wg         sync.WaitGroup
}

// NewApplication takes a nil m when metrics are not wanted.
func NewApplication(cfg *config.Config, m *metrics.Metrics) *Application {
	return &Application{cfg: cfg, metrics: m}
}

// SetApp mounts every handler on one router behind the full middleware stack. Health,
// readiness and metrics get only recovery and logging.
func (a *Application) SetApp(handlers ...contracts.Handler) {
	a.setHealthHandler(a.cfg)
	a.setAppHandler(a.cfg, handlers)
	a.setAppServer()
}

// Health exposes the readiness checks so callers can register extra dependencies.
func (a *Application) Health() *HealthHandler {
	return a.health
}

// Handler returns the root handler the server would serve.
func (a *Application) Handler() http.Handler {
	return a.mux
}

// Go runs fn for the lifetime of the application; its context is cancelled on shutdown.
func (a *Application) Go(name string, fn func(ctx context.Context) error) {
	a.background = append(a.background, task{name: name, fn: fn})
}

// OnShutdown registers fn to run after the HTTP server stops, in registration order.
func (a *Application) OnShutdown(name string, fn func(ctx context.Context) error) {
	a.onShutdown = append(a.onShutdown, task{name: name, fn: fn})
}

func (a *Application) setHealthHandler(cfg *config.Config) {
	a.health = NewHealthHandler(cfg.Log)
	if cfg.Client != nil {
		a.health.AddMongo(cfg.Client.Mongo)
		if cfg.Client.Redis != nil {
			a.health.AddRedis(cfg.Client.Redis)
		}
	}

	healthRouter := httprouter.New()
	a.health.RegisterRoutes(healthRouter)
	healthRouter.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(cfg.Log, nil, nil)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(cfg *config.Config, handlers []contracts.Handler) {
	appRouter := httprouter.New()
	contracts.Handlers(handlers).RegisterRoutes(appRouter)

	if cfg.Client != nil && cfg.Client.Redis != nil {
		a.idempotencyStore = middleware.NewRedisIdempotencyStore(cfg.Client.Redis, cfg.IdempotencyTTL)
		cfg.Log.Info("Idempotency keys stored in Redis")
	} else {
		a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(cfg.IdempotencyTTL)
	}
	a.rateLimiter = middleware.NewRateLimiter(
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		middleware.ClientIP,
		cfg.Log,
		a.metrics,
	)

	var appHttpHandler http.Handler = appRouter
	appHttpHandler = middleware.Idempotency(a.idempotencyStore, middleware.IdempotencyKeyHeader, cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.RequestTimeout(cfg.RequestTimeout, cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.RateLimit(a.rateLimiter)(appHttpHandler)
	appHttpHandler = middleware.ContentTypeValidation(cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(appHttpHandler)
	appHttpHandler = middleware.RequestLogging(cfg.Log, a.metrics, routeLabel(appRouter))(appHttpHandler)
	appHttpHandler = middleware.Recovery(cfg.Log)(appHttpHandler)
	a.appHttpHandler = appHttpHandler
	cfg.Log.Info("Application endpoints configured with full middleware stack", "handlers", len(handlers))
}

// routeLabel turns a request path back into its route pattern so metric labels stay bounded.
func routeLabel(router *httprouter.Router) func(*http.Request) string {
	return func(r *http.Request) string {
		handle, ps, _ := router.Lookup(r.Method, r.URL.Path)
		if handle == nil {
			return "unmatched"
		}
		segments := strings.Split(r.URL.Path, "/")
		for _, p := range ps {
			for i, seg := range segments {
				if seg == p.Value {
					segments[i] = ":" + p.Key
					break
				}
			}
		}
		return strings.Join(segments, "/")
	}
}

func (a *Application) setAppServer() {
	a.mux = http.NewServeMux()
	a.mux.Handle("/health", a.healthHandler)
	a.mux.Handle("/ready", a.healthHandler)
	a.mux.Handle("/metrics", a.healthHandler)
	a.mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      a.mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	for _, t := range a.background {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.cfg.Log.Info("Starting background worker", "worker", t.name)
			if err := t.fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.cfg.Log.Error("Background worker stopped", "worker", t.name, "error", err)
			}
		}()
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown(cancel)
	}
}

func (a *Application) gracefulShutdown(stopWorkers context.CancelFunc) {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	stopWorkers()
	a.wg.Wait()
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	for _, t := range a.onShutdown {
		if err := t.fn(ctx); err != nil {
			a.cfg.Log.Error("Shutdown hook failed", "hook", t.name, "error", err)
		}
	}
	a.cfg.Log.Info("Background workers stopped")

	a.cfg.GracefulShutdown()
	a.cfg.Log.Info("Server stopped gracefully")
}
