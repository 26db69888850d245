package config

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// StorageConfig describes where media variants live. MediaRoot, ZipRoot and
// EmbeddedRoot are absolute paths for the local backend and key prefixes for s3.
type StorageConfig struct {
	Backend      string
	MediaRoot    string
	ZipRoot      string
	EmbeddedRoot string
	ProbeTimeout time.Duration

	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Burst    int
}

type SecurityConfig struct {
	JWTSecret  string
	CookieName string
	RateLimit  RateLimitConfig
}

type QueueConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
}

type JobsConfig struct {
	ZipSweep string
	ZipTTL   time.Duration
	LockTTL  time.Duration
}

type LoggingConfig struct {
	Level string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Queue            QueueConfig
	Jobs             JobsConfig
	Logging          LoggingConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("PHOTOVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwtsecret is required")
	}
	if c.Security.CookieName == "" {
		return fmt.Errorf("security.cookiename is required")
	}
	switch c.Storage.Backend {
	case StorageBackendLocal:
		if !path.IsAbs(c.Storage.MediaRoot) {
			return fmt.Errorf("storage.mediaroot must be absolute, got %q", c.Storage.MediaRoot)
		}
	case StorageBackendS3:
		if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
			return fmt.Errorf("storage.endpoint and storage.bucket are required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8001)
	v.SetDefault("http.readtimeout", "10s")
	// zero disables the write deadline so long video streams are not cut off
	v.SetDefault("http.writetimeout", "0s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 5)
	v.SetDefault("postgres.connmaxlifetime", "10m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.backend", StorageBackendLocal)
	v.SetDefault("storage.mediaroot", "/protected_media")
	v.SetDefault("storage.ziproot", "/protected_media/zip")
	v.SetDefault("storage.embeddedroot", "/protected_media/embedded_media")
	v.SetDefault("storage.probetimeout", "2s")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.jwtsecret", "")
	v.SetDefault("security.cookiename", "jwt")
	v.SetDefault("security.ratelimit.requests", 200)
	v.SetDefault("security.ratelimit.window", "1s")
	v.SetDefault("security.ratelimit.burst", 400)

	v.SetDefault("queue.stream", "media:cleanup")
	v.SetDefault("queue.group", "cleanup-workers")
	v.SetDefault("queue.consumer", "worker-1")
	v.SetDefault("queue.claiminterval", "30s")

	v.SetDefault("jobs.zipsweep", "0 0 * * * *") // hourly
	v.SetDefault("jobs.zipttl", "24h")
	v.SetDefault("jobs.lockttl", "5m")

	v.SetDefault("logging.level", "")

	v.SetDefault("allowcorsorigins", []string{})
}
