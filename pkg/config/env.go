package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort        = "PORT"
	EnvMetricsPort = "METRICS_PORT"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBusinessHoursStart = "BUSINESS_HOURS_START"
	EnvBusinessHoursEnd   = "BUSINESS_HOURS_END"
	EnvDefaultBufferMin   = "DEFAULT_BUFFER_MIN"
	EnvMaxExpansionDays   = "MAX_EXPANSION_DAYS"
	EnvTimeZone           = "BUSINESS_TIME_ZONE"

	EnvLockBackend = "LOCK_BACKEND"
	EnvSlotLockTTL = "SLOT_LOCK_TTL"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvDirectoryBaseURL = "DIRECTORY_BASE_URL"
	EnvDirectoryTimeout = "DIRECTORY_TIMEOUT"
	EnvDirectoryToken   = "DIRECTORY_TOKEN"

	EnvEventsEnabled          = "EVENTS_ENABLED"
	EnvAppointmentEventsTopic = "APPOINTMENT_EVENTS_TOPIC"
	EnvWaitlistEventsTopic    = "WAITLIST_EVENTS_TOPIC"
	EnvEventsDLQTopic         = "EVENTS_DLQ_TOPIC"
	EnvNotifierGroupID        = "NOTIFIER_GROUP_ID"
)
