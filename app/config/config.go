// Package config loads application settings from config.toml and POSTBOARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Media      MediaConfig
	Session    SessionConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Pagination PaginationConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Addr string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // sqlite, postgres
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string // silent, error, warn, info
}

// CacheConfig holds the page cache settings
type CacheConfig struct {
	Backend       string // badger, redis, none
	TTL           time.Duration
	BadgerDir     string // empty keeps the cache in memory
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// MediaConfig holds uploaded image storage settings
type MediaConfig struct {
	Backend        string // badger, s3
	BadgerDir      string
	MaxUploadBytes int64
	S3             S3Config
}

// S3Config holds S3-compatible object storage settings
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
}

// SessionConfig holds the login cookie settings
type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	LoginRate       float64 // login attempts per second per client
	LoginBurst      int
	MetricsEnabled  bool
}

// PaginationConfig holds list page sizes
type PaginationConfig struct {
	PageSize       int
	DetailPageSize int
}

// Load reads configuration. Priority (highest to lowest):
// 1. Environment variables with POSTBOARD_ prefix (e.g. POSTBOARD_DATABASE_DSN)
// 2. the config file (path, or config.toml in . and /etc/postboard)
// 3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/postboard")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetDefault("http.metrics_enabled", true)
	v.SetEnvPrefix("POSTBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Addr: v.GetString("app.addr"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			DSN:             v.GetString("database.dsn"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			LogLevel:        v.GetString("database.log_level"),
		},
		Cache: CacheConfig{
			Backend:       v.GetString("cache.backend"),
			TTL:           v.GetDuration("cache.ttl"),
			BadgerDir:     v.GetString("cache.badger_dir"),
			RedisAddr:     v.GetString("cache.redis_addr"),
			RedisPassword: v.GetString("cache.redis_password"),
			RedisDB:       v.GetInt("cache.redis_db"),
		},
		Media: MediaConfig{
			Backend:        v.GetString("media.backend"),
			BadgerDir:      v.GetString("media.badger_dir"),
			MaxUploadBytes: v.GetInt64("media.max_upload_bytes"),
			S3: S3Config{
				Endpoint:     v.GetString("media.s3.endpoint"),
				Region:       v.GetString("media.s3.region"),
				Bucket:       v.GetString("media.s3.bucket"),
				AccessKey:    v.GetString("media.s3.access_key"),
				SecretKey:    v.GetString("media.s3.secret_key"),
				UseSSL:       v.GetBool("media.s3.use_ssl"),
				UsePathStyle: v.GetBool("media.s3.use_path_style"),
			},
		},
		Session: SessionConfig{
			Secret:     v.GetString("session.secret"),
			CookieName: v.GetString("session.cookie_name"),
			TTL:        v.GetDuration("session.ttl"),
			Secure:     v.GetBool("session.secure"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			LoginRate:       v.GetFloat64("http.login_rate"),
			LoginBurst:      v.GetInt("http.login_burst"),
			MetricsEnabled:  v.GetBool("http.metrics_enabled"),
		},
		Pagination: PaginationConfig{
			PageSize:       v.GetInt("pagination.page_size"),
			DetailPageSize: v.GetInt("pagination.detail_page_size"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with only built-in defaults: sqlite in memory,
// in-memory badger cache and media store.
func Default() *Config {
	cfg := &Config{HTTP: HTTPConfig{MetricsEnabled: true}}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "postboard"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Addr == "" {
		cfg.App.Addr = ":8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = ":memory:"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "badger"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 20 * time.Second
	}
	if cfg.Cache.RedisAddr == "" {
		cfg.Cache.RedisAddr = "localhost:6379"
	}
	if cfg.Media.Backend == "" {
		cfg.Media.Backend = "badger"
	}
	if cfg.Media.MaxUploadBytes == 0 {
		cfg.Media.MaxUploadBytes = 5 << 20 // 5MB
	}
	if cfg.Media.S3.Region == "" {
		cfg.Media.S3.Region = "us-east-1"
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "postboard_session"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 14 * 24 * time.Hour
	}
	if cfg.Session.Secret == "" && cfg.App.Env != "production" {
		cfg.Session.Secret = "development-only-session-secret-change-me"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.LoginRate == 0 {
		cfg.HTTP.LoginRate = 1
	}
	if cfg.HTTP.LoginBurst == 0 {
		cfg.HTTP.LoginBurst = 5
	}
	if cfg.Pagination.PageSize == 0 {
		cfg.Pagination.PageSize = 10
	}
	if cfg.Pagination.DetailPageSize == 0 {
		cfg.Pagination.DetailPageSize = 5
	}
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for %s", c.Database.Driver)
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Cache.Backend {
	case "badger", "redis", "none":
	default:
		return fmt.Errorf("cache.backend must be badger, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}

	switch c.Media.Backend {
	case "badger":
	case "s3":
		if c.Media.S3.Bucket == "" {
			return fmt.Errorf("media.s3.bucket is required when media.backend is s3")
		}
	default:
		return fmt.Errorf("media.backend must be badger or s3, got %q", c.Media.Backend)
	}

	if c.Pagination.PageSize < 1 || c.Pagination.DetailPageSize < 1 {
		return fmt.Errorf("pagination page sizes must be positive")
	}

	if c.App.Env == "production" {
		if len(c.Session.Secret) < 32 {
			return fmt.Errorf("session.secret must be at least 32 characters in production")
		}
		if !c.Session.Secure {
			return fmt.Errorf("session.secure must be true in production")
		}
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session.secret is required")
	}

	return nil
}
