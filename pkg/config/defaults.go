package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "staffbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort        = "8080"
	DefaultMetricsPort = "9090"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBusinessHoursStart = "09:00"
	DefaultBusinessHoursEnd   = "17:00"
	DefaultBufferMin          = 0
	DefaultMaxExpansionDays   = 366
	DefaultTimeZone           = "UTC"

	LockBackendMongo   = "mongo"
	LockBackendRedis   = "redis"
	DefaultLockBackend = LockBackendMongo
	DefaultSlotLockTTL = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultDirectoryTimeout = 5 * time.Second

	DefaultEventsEnabled          = false
	DefaultAppointmentEventsTopic = "appointment-events"
	DefaultWaitlistEventsTopic    = "waitlist-events"
	DefaultEventsDLQTopic         = "dlq-staffbook"
	DefaultNotifierGroupID        = "waitlist-notifier"

	DefaultPaginationLimit = 100
)
