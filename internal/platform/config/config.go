package config

import (
	"os"
	"strconv"
	"time"
)

// Security captures the account-security configuration consumed by the
// token, lockout, password-history, and rate-limiting services.
type Security struct {
	SigningSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Lockout and history windows are policy constants, not per-call knobs.
	LockoutThreshold     int
	LockoutWindow        time.Duration
	PasswordHistoryDepth int
	PasswordHistoryTTL   time.Duration
}

// Redis captures connection settings for the security key-value store.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server captures the HTTP server level configuration.
type Server struct {
	Addr     string
	Security Security
	Redis    Redis
}

const (
	defaultAccessTokenTTL  = 30 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour

	// Fixed policy values. Exposed here so every call site reads the same
	// numbers instead of hardcoding them.
	lockoutThreshold     = 5
	lockoutWindow        = time.Hour
	passwordHistoryDepth = 5
	passwordHistoryTTL   = 180 * 24 * time.Hour
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TASKHIVE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	signingSecret := os.Getenv("JWT_SIGNING_KEY")
	if signingSecret == "" {
		// Use a default for development - should be overridden in production
		signingSecret = "dev-secret-key-change-in-production"
	}

	accessTTL := defaultAccessTokenTTL
	if minutes, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES")); err == nil && minutes > 0 {
		accessTTL = time.Duration(minutes) * time.Minute
	}

	refreshTTL := defaultRefreshTokenTTL
	if days, err := strconv.Atoi(os.Getenv("REFRESH_TOKEN_EXPIRE_DAYS")); err == nil && days > 0 {
		refreshTTL = time.Duration(days) * 24 * time.Hour
	}

	return Server{
		Addr: addr,
		Security: Security{
			SigningSecret:        signingSecret,
			AccessTokenTTL:       accessTTL,
			RefreshTokenTTL:      refreshTTL,
			LockoutThreshold:     lockoutThreshold,
			LockoutWindow:        lockoutWindow,
			PasswordHistoryDepth: passwordHistoryDepth,
			PasswordHistoryTTL:   passwordHistoryTTL,
		},
		Redis: redisFromEnv(),
	}
}

func redisFromEnv() Redis {
	cfg := Redis{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	if size, err := strconv.Atoi(os.Getenv("REDIS_POOL_SIZE")); err == nil && size > 0 {
		cfg.PoolSize = size
	}
	return cfg
}
