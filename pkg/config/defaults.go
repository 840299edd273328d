package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "visadocs"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultCheckoutBaseURL = "http://localhost:3000"

	// Sessions live 30 minutes from issuance and are not renewable.
	DefaultSessionTTL           = 30 * time.Minute
	DefaultSessionSweepInterval = 5 * time.Minute

	DefaultOrderNumberMaxAttempts = 5

	DefaultOrderEventsTopic    = "visadocs.orders.events"
	DefaultOrderEventsDLQTopic = "visadocs.orders.events.dlq"

	DefaultRateLimitRequests = 20
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
