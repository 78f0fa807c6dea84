package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Public listener
	Host string `yaml:"host" validate:"omitempty,ip|hostname"`
	Port int    `yaml:"port" validate:"gte=1,lte=65535"`

	// Honor X-Forwarded-For / X-Real-IP as the client address
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`

	// Admin listener for /health, /metrics and /swagger (empty disables it)
	AdminAddr string `yaml:"admin_addr" validate:"omitempty,hostname_port"`

	// Upstream geolocation lookup
	LookupURL     string        `yaml:"lookup_url" validate:"required,url"`
	LookupTimeout time.Duration `yaml:"lookup_timeout" validate:"gt=0"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`

	// Logging
	LogLevel  string `yaml:"log_level" validate:"oneof=trace debug info warn error"`
	LogPretty bool   `yaml:"log_pretty"`
	LogFile   string `yaml:"log_file"` // also write logs here when set

	// Rate limiting
	RateLimitType   string `yaml:"rate_limiter_type" validate:"oneof=none memory redis"`
	RateLimit       int    `yaml:"rate_limit" validate:"gte=1"`        // requests allowed per window
	RateLimitWindow int    `yaml:"rate_limit_window" validate:"gte=1"` // window in seconds

	// Redis configuration (rate limiter backend)
	RedisAddr     string `yaml:"redis_addr" validate:"required_if=RateLimitType redis"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db" validate:"gte=0"`
}

// Default returns the configuration used when nothing overrides it.
// Host and port match the historical 0.0.0.0:1234 binding. Rate limiting is
// off unless RATE_LIMITER_TYPE selects a backend.
func Default() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            1234,
		AdminAddr:       ":9090",
		LookupURL:       "https://ipinfo.io/json",
		LookupTimeout:   5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
		LogPretty:       true,
		RateLimitType:   "none",
		RateLimit:       50,
		RateLimitWindow: 1,
		RedisAddr:       "localhost:6379",
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct tags on Config
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ListenAddr is the host:port the public listener binds to
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RequestsPerSecond converts RateLimit per RateLimitWindow into a rate.
// Example: 10 requests per 5 seconds = 2.0 req/s
func (c *Config) RequestsPerSecond() float64 {
	return float64(c.RateLimit) / float64(c.RateLimitWindow)
}

// mergeFile overlays values present in a YAML file
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// yaml.v3 decodes time.Duration fields from strings such as "5s"
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	return nil
}

// mergeEnv overlays values from environment variables that are set
func (c *Config) mergeEnv() error {
	var err error

	c.Host = getEnv("HOST", c.Host)
	c.AdminAddr = getEnvAllowEmpty("ADMIN_ADDR", c.AdminAddr)
	c.LookupURL = getEnv("LOOKUP_URL", c.LookupURL)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.RateLimitType = getEnv("RATE_LIMITER_TYPE", c.RateLimitType)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)

	if c.Port, err = getEnvAsInt("PORT", c.Port); err != nil {
		return err
	}
	if c.RateLimit, err = getEnvAsInt("RATE_LIMIT", c.RateLimit); err != nil {
		return err
	}
	if c.RateLimitWindow, err = getEnvAsInt("RATE_LIMIT_WINDOW", c.RateLimitWindow); err != nil {
		return err
	}
	if c.RedisDB, err = getEnvAsInt("REDIS_DB", c.RedisDB); err != nil {
		return err
	}
	if c.LogPretty, err = getEnvAsBool("LOG_PRETTY", c.LogPretty); err != nil {
		return err
	}
	if c.TrustProxyHeaders, err = getEnvAsBool("TRUST_PROXY_HEADERS", c.TrustProxyHeaders); err != nil {
		return err
	}
	if c.LookupTimeout, err = getEnvAsDuration("LOOKUP_TIMEOUT", c.LookupTimeout); err != nil {
		return err
	}
	if c.ShutdownTimeout, err = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout); err != nil {
		return err
	}

	return nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAllowEmpty is getEnv for keys where an explicit empty value means "off"
func getEnvAllowEmpty(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
