package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvStorageBackend = "STORAGE_BACKEND"
	EnvLockBackend    = "LOCK_BACKEND"
	EnvLockWait       = "LOCK_WAIT_TIMEOUT"
	EnvLockTTL        = "LOCK_TTL"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvSalonTimezone      = "SALON_TIMEZONE"
	EnvSlotGranularityMin = "SLOT_GRANULARITY_MIN"
	EnvStaffCacheTTL      = "STAFF_CACHE_TTL"

	EnvFullRefundHours      = "FULL_REFUND_HOURS"
	EnvPartialRefundHours   = "PARTIAL_REFUND_HOURS"
	EnvPartialRefundPercent = "PARTIAL_REFUND_PERCENT"

	EnvEventsEnabled      = "EVENTS_ENABLED"
	EnvEventBufferSize    = "EVENT_BUFFER_SIZE"
	EnvBookingEventsTopic = "BOOKING_EVENTS_TOPIC"
	EnvStaffEventsTopic   = "STAFF_EVENTS_TOPIC"
	EnvStaffSyncGroupID   = "STAFF_SYNC_GROUP_ID"
)
