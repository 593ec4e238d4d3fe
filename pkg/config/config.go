package config

import (
	"fmt"
	"os"
	"regexp"
	"salonbook/internal/cancellation"
	"salonbook/pkg/client"
	"salonbook/pkg/logger"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StorageBackend string
	LockBackend    string
	LockWait       time.Duration
	LockTTL        time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	SalonTimezone      string
	Location           *time.Location
	SlotGranularityMin int
	StaffCacheTTL      time.Duration

	FullRefundHours      int
	PartialRefundHours   int
	PartialRefundPercent int

	EventsEnabled      bool
	EventBufferSize    int
	BookingEventsTopic string
	StaffEventsTopic   string
	StaffSyncGroupID   string

	Log    *logger.Logger
	Client *client.Client
}

// Load reads .env (when present) and the process environment, exiting on invalid values.
func Load(serviceName string) *Config {
	_ = godotenv.Load()

	cfg := FromEnv(serviceName)
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func FromEnv(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		StorageBackend: strings.ToLower(getEnvStr(EnvStorageBackend, DefaultStorageBackend)),
		LockBackend:    strings.ToLower(getEnvStr(EnvLockBackend, DefaultLockBackend)),
		LockWait:       getEnvDuration(EnvLockWait, DefaultLockWait),
		LockTTL:        getEnvDuration(EnvLockTTL, DefaultLockTTL),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		SalonTimezone:      getEnvStr(EnvSalonTimezone, DefaultSalonTimezone),
		SlotGranularityMin: getEnvNum(EnvSlotGranularityMin, DefaultSlotGranularityMin),
		StaffCacheTTL:      getEnvDuration(EnvStaffCacheTTL, DefaultStaffCacheTTL),

		FullRefundHours:      getEnvNum(EnvFullRefundHours, DefaultFullRefundHours),
		PartialRefundHours:   getEnvNum(EnvPartialRefundHours, DefaultPartialRefundHours),
		PartialRefundPercent: getEnvNum(EnvPartialRefundPercent, DefaultPartialRefundPercent),

		EventsEnabled:      getEnvBool(EnvEventsEnabled, DefaultEventsEnabled),
		EventBufferSize:    getEnvNum(EnvEventBufferSize, DefaultEventBufferSize),
		BookingEventsTopic: getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),
		StaffEventsTopic:   getEnvStr(EnvStaffEventsTopic, DefaultStaffEventsTopic),
		StaffSyncGroupID:   getEnvStr(EnvStaffSyncGroupID, DefaultStaffSyncGroupID),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

// RefundPolicy builds the cancellation schedule from the configured tiers.
func (cfg *Config) RefundPolicy() cancellation.Policy {
	return cancellation.Policy{
		FullAfter:      time.Duration(cfg.FullRefundHours) * time.Hour,
		PartialAfter:   time.Duration(cfg.PartialRefundHours) * time.Hour,
		PartialPercent: cfg.PartialRefundPercent,
	}
}

// LockHoldBound is the longest a writer keeps a calendar lock: the staff and bookings
// reads, then the insert or transaction commit. Distributed locks must outlive it.
func (cfg *Config) LockHoldBound() time.Duration {
	return 2*cfg.ReadTimeout + cfg.WriteTimeout
}

// Validate also resolves SalonTimezone into Location.
func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	backends := []string{BackendMemory, BackendMongo}
	if !slices.Contains(backends, cfg.StorageBackend) {
		errors = append(errors, fmt.Sprintf("StorageBackend must be one of %v, got: %s", backends, cfg.StorageBackend))
	}
	lockBackends := []string{BackendMemory, BackendMongo, BackendRedis}
	if !slices.Contains(lockBackends, cfg.LockBackend) {
		errors = append(errors, fmt.Sprintf("LockBackend must be one of %v, got: %s", lockBackends, cfg.LockBackend))
	}
	if cfg.StorageBackend == BackendMemory && cfg.LockBackend != BackendMemory {
		errors = append(errors, "LockBackend must be 'memory' when StorageBackend is 'memory'")
	}

	if cfg.usesMongo() {
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	}
	if cfg.LockBackend == BackendRedis && cfg.RedisAddr == "" {
		errors = append(errors, "RedisAddr cannot be empty when LockBackend is 'redis'")
	}

	if cfg.LockWait <= 0 {
		errors = append(errors, fmt.Sprintf("LockWait must be positive, got: %s", cfg.LockWait))
	}
	if cfg.LockTTL <= cfg.LockWait {
		errors = append(errors, fmt.Sprintf("LockTTL (%s) must be greater than LockWait (%s)", cfg.LockTTL, cfg.LockWait))
	}
	if cfg.LockBackend != BackendMemory && cfg.LockTTL <= cfg.LockHoldBound() {
		errors = append(errors, fmt.Sprintf("LockTTL (%s) must be greater than the longest lock hold (%s: two reads of ReadTimeout plus one WriteTimeout)", cfg.LockTTL, cfg.LockHoldBound()))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if loc, err := time.LoadLocation(cfg.SalonTimezone); err != nil {
		errors = append(errors, fmt.Sprintf("SalonTimezone must be a valid IANA zone, got: %s", cfg.SalonTimezone))
	} else {
		cfg.Location = loc
	}
	if cfg.SlotGranularityMin <= 0 || cfg.SlotGranularityMin > 24*60 {
		errors = append(errors, fmt.Sprintf("SlotGranularityMin must be between 1 and 1440, got: %d", cfg.SlotGranularityMin))
	}
	if cfg.StaffCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("StaffCacheTTL cannot be negative, got: %s", cfg.StaffCacheTTL))
	}
	if err := cfg.RefundPolicy().Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("Refund policy is invalid: %s", err))
	}

	if cfg.EventBufferSize <= 0 {
		errors = append(errors, fmt.Sprintf("EventBufferSize must be positive, got: %d", cfg.EventBufferSize))
	}
	if cfg.EventsEnabled && (cfg.BookingEventsTopic == "" || cfg.StaffEventsTopic == "") {
		errors = append(errors, "BookingEventsTopic and StaffEventsTopic cannot be empty when events are enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) usesMongo() bool {
	return cfg.StorageBackend == BackendMongo || cfg.LockBackend == BackendMongo
}

func (cfg *Config) UsesMongo() bool { return cfg.usesMongo() }

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"storage_backend", cfg.StorageBackend,
		"lock_backend", cfg.LockBackend,
		"lock_wait", cfg.LockWait,
		"lock_ttl", cfg.LockTTL,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"salon_timezone", cfg.SalonTimezone,
		"slot_granularity_min", cfg.SlotGranularityMin,
		"staff_cache_ttl", cfg.StaffCacheTTL,
		"full_refund_hours", cfg.FullRefundHours,
		"partial_refund_hours", cfg.PartialRefundHours,
		"partial_refund_percent", cfg.PartialRefundPercent,
		"events_enabled", cfg.EventsEnabled,
		"booking_events_topic", cfg.BookingEventsTopic,
		"staff_events_topic", cfg.StaffEventsTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
