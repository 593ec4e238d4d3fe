package config

import "time"

const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "salonbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultStorageBackend = BackendMongo
	DefaultLockBackend    = BackendMongo
	DefaultLockWait       = 2 * time.Second
	DefaultLockTTL        = 1 * time.Minute

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSalonTimezone      = "UTC"
	DefaultSlotGranularityMin = 15
	DefaultStaffCacheTTL      = 30 * time.Second

	DefaultFullRefundHours      = 24
	DefaultPartialRefundHours   = 12
	DefaultPartialRefundPercent = 50

	DefaultEventsEnabled      = false
	DefaultEventBufferSize    = 256
	DefaultBookingEventsTopic = "booking-events"
	DefaultStaffEventsTopic   = "staff-events"
	DefaultStaffSyncGroupID   = "salonbook-staff-sync"
)
