package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 30 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Interval for the job that retires sessions past their expiry
const SessionRetireJobInterval = time.Minute

// Sliding window used by the check-in rate limiter
const CheckInRateLimitWindow = time.Minute

// Default per-account rate limit for instructor API calls
const DefaultInstructorRateLimitPerMin = 60
