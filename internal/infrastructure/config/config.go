package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata" // day boundaries must not depend on the host zoneinfo

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Backend   BackendConfig
	Session   SessionConfig
	Redis     RedisConfig
	Orders    OrdersConfig
	Reconcile ReconcileConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Operator  OperatorConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name     string
	Env      string
	Port     string
	Timezone string // IANA name used for every day boundary
}

// BackendConfig describes the order/product API the desk talks to
type BackendConfig struct {
	BaseURL      string
	Timeout      time.Duration
	RateLimit    float64 // requests per second, 0 disables limiting
	Burst        int
	LoginPath    string
	RegisterPath string
	RefreshPath  string
	LogoutPath   string
}

// SessionConfig selects where the access token is kept
type SessionConfig struct {
	Store    string // memory, redis
	RedisKey string
	TTL      time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// OrdersConfig holds order intake rules
type OrdersConfig struct {
	Cutoff string // HH:MM local time, empty disables
}

// ReconcileConfig tunes batch saves
type ReconcileConfig struct {
	MaxParallel int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	CORSAllowOrigins []string
	// SwaggerEnabled serves the API docs UI under /swagger
	SwaggerEnabled bool
}

// TelemetryConfig holds OpenTelemetry tracing settings
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	Insecure          bool
}

// OperatorConfig holds optional credentials used to log in at start-up
type OperatorConfig struct {
	Username string
	Password string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with BOREKSAN_ prefix (e.g., BOREKSAN_BACKEND_BASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/boreksan")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("BOREKSAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("app.name"),
			Env:      v.GetString("app.env"),
			Port:     v.GetString("app.port"),
			Timezone: v.GetString("app.timezone"),
		},
		Backend: BackendConfig{
			BaseURL:      v.GetString("backend.base_url"),
			Timeout:      v.GetDuration("backend.timeout"),
			RateLimit:    v.GetFloat64("backend.rate_limit"),
			Burst:        v.GetInt("backend.burst"),
			LoginPath:    v.GetString("backend.login_path"),
			RegisterPath: v.GetString("backend.register_path"),
			RefreshPath:  v.GetString("backend.refresh_path"),
			LogoutPath:   v.GetString("backend.logout_path"),
		},
		Session: SessionConfig{
			Store:    v.GetString("session.store"),
			RedisKey: v.GetString("session.redis_key"),
			TTL:      v.GetDuration("session.ttl"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Orders: OrdersConfig{
			Cutoff: v.GetString("orders.cutoff"),
		},
		Reconcile: ReconcileConfig{
			MaxParallel: v.GetInt("reconcile.max_parallel"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			SwaggerEnabled:   v.GetBool("http.swagger_enabled"),
		},
		Operator: OperatorConfig{
			Username: v.GetString("operator.username"),
			Password: v.GetString("operator.password"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	if !v.IsSet("telemetry.sampling_ratio") {
		cfg.Telemetry.SamplingRatio = 1
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "boreksan-desk"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8090"
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = "Europe/Istanbul"
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8080/api"
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 10 * time.Second
	}
	if cfg.Backend.Burst == 0 {
		cfg.Backend.Burst = 10
	}
	if cfg.Backend.LoginPath == "" {
		cfg.Backend.LoginPath = "auth/login"
	}
	if cfg.Backend.RegisterPath == "" {
		cfg.Backend.RegisterPath = "auth/register"
	}
	if cfg.Backend.RefreshPath == "" {
		cfg.Backend.RefreshPath = "auth/refresh"
	}
	if cfg.Backend.LogoutPath == "" {
		cfg.Backend.LogoutPath = "auth/logout"
	}
	if cfg.Session.Store == "" {
		cfg.Session.Store = "memory"
	}
	if cfg.Session.RedisKey == "" {
		cfg.Session.RedisKey = "boreksan:session:access_token"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Orders.Cutoff == "" {
		cfg.Orders.Cutoff = "22:00"
	}
	if cfg.Reconcile.MaxParallel == 0 {
		cfg.Reconcile.MaxParallel = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"http://localhost:5173"}
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL, got %q", c.Backend.BaseURL)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("app.timezone: %w", err)
	}
	if c.Backend.RateLimit < 0 {
		return fmt.Errorf("backend.rate_limit cannot be negative")
	}
	if c.Reconcile.MaxParallel < 0 {
		return fmt.Errorf("reconcile.max_parallel cannot be negative")
	}
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("session.store must be memory or redis, got %q", c.Session.Store)
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1")
	}
	if (c.Operator.Username == "") != (c.Operator.Password == "") {
		return fmt.Errorf("operator.username and operator.password must be set together")
	}
	return nil
}

// Location loads the configured timezone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
