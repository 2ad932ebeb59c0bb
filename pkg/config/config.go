package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"staffbook/pkg/client"
	"staffbook/pkg/clock"
	"staffbook/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port        string
	MetricsPort string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	BusinessHoursStart string
	BusinessHoursEnd   string
	DefaultBufferMin   int
	MaxExpansionDays   int
	TimeZone           string

	LockBackend string
	SlotLockTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DirectoryBaseURL string
	DirectoryTimeout time.Duration
	DirectoryToken   string

	EventsEnabled          bool
	AppointmentEventsTopic string
	WaitlistEventsTopic    string
	EventsDLQTopic         string
	NotifierGroupID        string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// a missing .env file is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port:        getEnvStr(EnvPort, DefaultPort),
		MetricsPort: getEnvStr(EnvMetricsPort, DefaultMetricsPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		BusinessHoursStart: getEnvStr(EnvBusinessHoursStart, DefaultBusinessHoursStart),
		BusinessHoursEnd:   getEnvStr(EnvBusinessHoursEnd, DefaultBusinessHoursEnd),
		DefaultBufferMin:   getEnvNum(EnvDefaultBufferMin, DefaultBufferMin),
		MaxExpansionDays:   getEnvNum(EnvMaxExpansionDays, DefaultMaxExpansionDays),
		TimeZone:           getEnvStr(EnvTimeZone, DefaultTimeZone),

		LockBackend: getEnvStr(EnvLockBackend, DefaultLockBackend),
		SlotLockTTL: getEnvDuration(EnvSlotLockTTL, DefaultSlotLockTTL),

		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		DirectoryBaseURL: getEnvStr(EnvDirectoryBaseURL, ""),
		DirectoryTimeout: getEnvDuration(EnvDirectoryTimeout, DefaultDirectoryTimeout),
		DirectoryToken:   getEnvStr(EnvDirectoryToken, ""),

		EventsEnabled:          getEnvBool(EnvEventsEnabled, DefaultEventsEnabled),
		AppointmentEventsTopic: getEnvStr(EnvAppointmentEventsTopic, DefaultAppointmentEventsTopic),
		WaitlistEventsTopic:    getEnvStr(EnvWaitlistEventsTopic, DefaultWaitlistEventsTopic),
		EventsDLQTopic:         getEnvStr(EnvEventsDLQTopic, DefaultEventsDLQTopic),
		NotifierGroupID:        getEnvStr(EnvNotifierGroupID, DefaultNotifierGroupID),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, DefaultLogFormat),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

// Location returns the business time zone used to decide what "today" is.
func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// BusinessHours returns the default outer bounds for bookings.
func (cfg *Config) BusinessHours() clock.Interval {
	bounds, err := clock.NewInterval(cfg.BusinessHoursStart, cfg.BusinessHoursEnd)
	if err != nil {
		return clock.MustInterval(DefaultBusinessHoursStart, DefaultBusinessHoursEnd)
	}
	return bounds
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}
	if port, err := strconv.Atoi(cfg.MetricsPort); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("MetricsPort must be between 1 and 65535, got: %s", cfg.MetricsPort))
	}

	timeRegex := regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	if !timeRegex.MatchString(cfg.BusinessHoursStart) {
		errors = append(errors, fmt.Sprintf("BusinessHoursStart must be in HH:MM format (00:00-23:59), got: %s", cfg.BusinessHoursStart))
	}
	if !timeRegex.MatchString(cfg.BusinessHoursEnd) {
		errors = append(errors, fmt.Sprintf("BusinessHoursEnd must be in HH:MM format (00:00-23:59), got: %s", cfg.BusinessHoursEnd))
	}
	if cfg.BusinessHoursStart >= cfg.BusinessHoursEnd {
		errors = append(errors, fmt.Sprintf("BusinessHoursStart (%s) must be before BusinessHoursEnd (%s)", cfg.BusinessHoursStart, cfg.BusinessHoursEnd))
	}
	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("TimeZone must be a valid IANA zone, got: %s", cfg.TimeZone))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"SlotLockTTL", cfg.SlotLockTTL},
		{"DirectoryTimeout", cfg.DirectoryTimeout},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.DefaultBufferMin < 0 {
		errors = append(errors, fmt.Sprintf("DefaultBufferMin cannot be negative, got: %d", cfg.DefaultBufferMin))
	}
	if cfg.MaxExpansionDays <= 0 {
		errors = append(errors, fmt.Sprintf("MaxExpansionDays must be positive, got: %d", cfg.MaxExpansionDays))
	}

	if cfg.LockBackend != LockBackendMongo && cfg.LockBackend != LockBackendRedis {
		errors = append(errors, fmt.Sprintf("LockBackend must be one of [mongo, redis], got: %s", cfg.LockBackend))
	}
	if cfg.LockBackend == LockBackendRedis && cfg.RedisAddr == "" {
		errors = append(errors, "RedisAddr cannot be empty when LockBackend is redis")
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	if cfg.EventsEnabled {
		if cfg.AppointmentEventsTopic == "" {
			errors = append(errors, "AppointmentEventsTopic cannot be empty when events are enabled")
		}
		if cfg.WaitlistEventsTopic == "" {
			errors = append(errors, "WaitlistEventsTopic cannot be empty when events are enabled")
		}
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

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"metrics_port", cfg.MetricsPort,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"business_hours", cfg.BusinessHoursStart+"-"+cfg.BusinessHoursEnd,
		"default_buffer_min", cfg.DefaultBufferMin,
		"max_expansion_days", cfg.MaxExpansionDays,
		"time_zone", cfg.TimeZone,
		"lock_backend", cfg.LockBackend,
		"slot_lock_ttl", cfg.SlotLockTTL,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"directory_base_url", cfg.DirectoryBaseURL,
		"directory_token_set", cfg.DirectoryToken != "",
		"events_enabled", cfg.EventsEnabled,
		"appointment_events_topic", cfg.AppointmentEventsTopic,
		"waitlist_events_topic", cfg.WaitlistEventsTopic,
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
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
