package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvCheckoutBaseURL = "CHECKOUT_BASE_URL"
	EnvAdminAPIKey     = "ADMIN_API_KEY"

	EnvSessionTTL           = "SESSION_TTL"
	EnvSessionSweepInterval = "SESSION_SWEEP_INTERVAL"

	EnvOrderNumberMaxAttempts = "ORDER_NUMBER_MAX_ATTEMPTS"

	EnvOrderEventsTopic    = "ORDER_EVENTS_TOPIC"
	EnvOrderEventsDLQTopic = "ORDER_EVENTS_DLQ_TOPIC"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
