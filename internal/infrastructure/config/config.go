// Package config loads settings from config.toml and TRAMITES_* environment
// variables on top of built-in defaults.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TRAMITES"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Log        LogConfig        `mapstructure:"log"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Allocation AllocationConfig `mapstructure:"allocation"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Profiling  ProfilingConfig  `mapstructure:"profiling"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
}

// RedisConfig backs the public lookup cache and the token revocation list.
// Disabled, both stay in process.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

type JWTConfig struct {
	Secret                string        `mapstructure:"secret"`
	Issuer                string        `mapstructure:"issuer"`
	AccessTokenExpiration time.Duration `mapstructure:"access_token_expiration"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type HTTPConfig struct {
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	PublicRateLimit  float64       `mapstructure:"public_rate_limit"` // per client IP per second
	PublicRateBurst  int           `mapstructure:"public_rate_burst"`
	PublicCacheTTL   time.Duration `mapstructure:"public_cache_ttl"`
	CORSAllowOrigins []string      `mapstructure:"cors_allow_origins"`
	TrustedProxies   []string      `mapstructure:"trusted_proxies"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize      int64         `mapstructure:"max_body_size"`
}

// AllocationConfig bounds how long creating a trámite may wait for its
// filing number. Retries back off from BaseBackoff, doubling each time.
type AllocationConfig struct {
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseBackoff time.Duration `mapstructure:"base_backoff"`
}

type SchedulerConfig struct {
	Enabled                bool          `mapstructure:"enabled"`
	JobTimeout             time.Duration `mapstructure:"job_timeout"`
	CounterCleanupInterval time.Duration `mapstructure:"counter_cleanup_interval"`
	CounterRetentionYears  int           `mapstructure:"counter_retention_years"`
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"` // defaults to app.name
	Insecure          bool          `mapstructure:"insecure"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
}

type ProfilingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	ServerAddress     string `mapstructure:"server_address"`
	BasicAuthUser     string `mapstructure:"basic_auth_user"`
	BasicAuthPassword string `mapstructure:"basic_auth_password"`
	// Pyroscope profile type names; empty collects cpu and heap.
	ProfileTypes []string `mapstructure:"profile_types"`
	SpanProfiles bool     `mapstructure:"span_profiles"`
}

// defaults registers every key, which also makes it readable from the
// environment on Unmarshal.
var defaults = map[string]any{
	"app.name": "tramites-backend",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "tramites",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  time.Hour,
	"database.conn_max_idle_time": 30 * time.Minute,
	"database.log_level":          "warn",
	"database.slow_threshold":     200 * time.Millisecond,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":                  "",
	"jwt.issuer":                  "tramites-backend",
	"jwt.access_token_expiration": time.Hour,

	"log.level":  "info",
	"log.format": "json",
	"log.output": "stdout",

	"http.read_timeout":       15 * time.Second,
	"http.write_timeout":      15 * time.Second,
	"http.idle_timeout":       time.Minute,
	"http.request_timeout":    10 * time.Second,
	"http.public_rate_limit":  5.0,
	"http.public_rate_burst":  10,
	"http.public_cache_ttl":   30 * time.Second,
	"http.cors_allow_origins": []string{"*"},
	"http.trusted_proxies":    []string{},
	"http.shutdown_timeout":   10 * time.Second,
	"http.max_body_size":      int64(1 << 20),

	"allocation.lock_timeout": 5 * time.Second,
	"allocation.max_attempts": 3,
	"allocation.base_backoff": 50 * time.Millisecond,

	"scheduler.enabled":                  true,
	"scheduler.job_timeout":              5 * time.Minute,
	"scheduler.counter_cleanup_interval": 24 * time.Hour,
	"scheduler.counter_retention_years":  1,

	"telemetry.enabled":            false,
	"telemetry.collector_endpoint": "",
	"telemetry.sampling_ratio":     1.0,
	"telemetry.service_name":       "",
	"telemetry.insecure":           false,
	"telemetry.db_trace_enabled":   false,
	"telemetry.metrics_interval":   time.Minute,

	"profiling.enabled":             false,
	"profiling.server_address":      "",
	"profiling.basic_auth_user":     "",
	"profiling.basic_auth_password": "",
	"profiling.profile_types":       []string{},
	"profiling.span_profiles":       false,
}

// Load reads, in rising priority, the defaults, config.toml from the
// working directory or /app, and TRAMITES_<SECTION>_<KEY> variables. An
// empty variable counts as unset. List values are comma separated.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	db, alloc := c.Database, c.Allocation
	switch {
	case db.MaxOpenConns <= 0:
		return errors.New("database.max_open_conns must be positive")
	case db.MaxIdleConns < 0:
		return errors.New("database.max_idle_conns cannot be negative")
	case db.MaxIdleConns > db.MaxOpenConns:
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			db.MaxIdleConns, db.MaxOpenConns)
	case alloc.LockTimeout < 0:
		return errors.New("allocation.lock_timeout cannot be negative")
	case alloc.MaxAttempts < 1 || alloc.MaxAttempts > 10:
		return fmt.Errorf("allocation.max_attempts must be between 1 and 10, got %d", alloc.MaxAttempts)
	case alloc.LockTimeout >= c.HTTP.RequestTimeout:
		return fmt.Errorf("allocation.lock_timeout (%s) must be shorter than http.request_timeout (%s)",
			alloc.LockTimeout, c.HTTP.RequestTimeout)
	case c.Scheduler.CounterRetentionYears < 0:
		return errors.New("scheduler.counter_retention_years cannot be negative")
	case c.Profiling.Enabled && c.Profiling.ServerAddress == "":
		return errors.New("profiling.server_address is required when profiling is enabled")
	case c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1:
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %g", c.Telemetry.SamplingRatio)
	}
	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

func (c *Config) validateProduction() error {
	switch {
	case c.JWT.Secret == "":
		return errors.New("jwt.secret is required in production")
	case len(c.JWT.Secret) < 32:
		return errors.New("jwt.secret must be at least 32 characters in production")
	case c.Database.Password == "":
		return errors.New("database.password is required in production")
	case c.Database.SSLMode == "disable":
		return errors.New("database.sslmode cannot be 'disable' in production")
	case slices.Contains(c.HTTP.CORSAllowOrigins, "*"):
		return errors.New("http.cors_allow_origins cannot be '*' in production")
	}
	return nil
}

// DSN is a postgres:// URL with user and password escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}
