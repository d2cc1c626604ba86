package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kode4food/wfm/pkg/bus"
)

type (
	// Config holds configuration settings for the workflow gateway
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// Bus
		Transport Transport
		Redis     bus.RedisConfig

		// Reference responder
		SeedFile string

		ShutdownTimeout time.Duration
	}

	// Transport selects the bus implementation
	Transport string
)

const (
	TransportLocal Transport = "local"
	TransportRedis Transport = "redis"
)

const (
	DefaultAPIPort         = 8080
	DefaultAPIHost         = "0.0.0.0"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultTransport       = TransportLocal
	MaxTCPPort             = 65535

	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisPrefix   = "wfm"
	DefaultRedisDB       = 0
	MaxRedisDB           = 15

	MaxRequestTimeout  = time.Hour
	MaxShutdownTimeout = 10 * time.Minute
)

var (
	ErrInvalidAPIPort        = errors.New("invalid API port")
	ErrInvalidTransport      = errors.New("invalid bus transport")
	ErrInvalidRequestTimeout = errors.New("request timeout must be positive")
	ErrInvalidShutdown       = errors.New("shutdown timeout must be positive")
	ErrRedisAddrRequired     = errors.New("redis address is required")
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// gateway and the bus transports
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:   DefaultAPIHost,
		APIPort:   DefaultAPIPort,
		LogLevel:  "info",
		Transport: DefaultTransport,
		Redis: bus.RedisConfig{
			Addr:           DefaultRedisEndpoint,
			Prefix:         DefaultRedisPrefix,
			DB:             DefaultRedisDB,
			RequestTimeout: DefaultRequestTimeout,
		},
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if transport := os.Getenv("BUS_TRANSPORT"); transport != "" {
		c.Transport = Transport(transport)
	}
	if seed := os.Getenv("SEED_FILE"); seed != "" {
		c.SeedFile = seed
	}
	LoadRedisConfigFromEnv(&c.Redis)

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"REDIS_DB", &c.Redis.DB, -1, MaxRedisDB,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"REQUEST_TIMEOUT", &c.Redis.RequestTimeout, MaxRequestTimeout,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout, MaxShutdownTimeout,
	); err != nil {
		return err
	}

	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdown
	}

	switch c.Transport {
	case TransportLocal:
		return nil
	case TransportRedis:
		if c.Redis.Addr == "" {
			return ErrRedisAddrRequired
		}
		if c.Redis.RequestTimeout <= 0 {
			return ErrInvalidRequestTimeout
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidTransport, c.Transport)
	}
}

// LoadRedisConfigFromEnv loads the Redis address, password and channel
// prefix from environment variables
func LoadRedisConfigFromEnv(r *bus.RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		r.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		r.Password = password
	}
	if prefix := os.Getenv("REDIS_PREFIX"); prefix != "" {
		r.Prefix = prefix
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]. Returns an error if
// the value cannot be parsed or falls outside the valid range.
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

// loadEnvDuration reads key from the environment as a Go duration string
// (e.g. "5s") and sets *dst if the value is in the range (0, max]
func loadEnvDuration(key string, dst *time.Duration, max time.Duration) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	if d <= 0 || d > max {
		return fmt.Errorf("invalid %s: %s out of range (0, %s]", key, d, max)
	}
	*dst = d
	return nil
}
