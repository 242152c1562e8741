package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/safefam/api/pkg/auth"
	"github.com/safefam/api/pkg/logger"
	"github.com/safefam/api/pkg/messaging/redis"
)

const envPrefix = "SAFEFAM"

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	Mode            string        `mapstructure:"mode"`
}

type JWTConfig struct {
	Secret        string        `mapstructure:"secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	Issuer        string        `mapstructure:"issuer"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	BcryptCost     int      `mapstructure:"bcrypt_cost"`
}

type DashboardConfig struct {
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type OutboxConfig struct {
	BatchSize       int           `mapstructure:"batch_size"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	Retention       time.Duration `mapstructure:"retention"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type ReminderConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// EmailConfig selects the outbound mail transport. Provider is "smtp",
// "ses" or empty, which only logs messages.
type EmailConfig struct {
	Provider     string `mapstructure:"provider"`
	From         string `mapstructure:"from"`
	AppURL       string `mapstructure:"app_url"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	SESRegion    string `mapstructure:"ses_region"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Security  SecurityConfig  `mapstructure:"security"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	Reminder  ReminderConfig  `mapstructure:"reminder"`
	Email     EmailConfig     `mapstructure:"email"`
	Metrics   struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"metrics"`
}

// Secrets are deployment values that never live in config.yml.
type Secrets struct {
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	JWTSecret        string `envconfig:"JWT_SECRET"`
	JWTRefreshSecret string `envconfig:"JWT_REFRESH_SECRET"`
	RedisURL         string `envconfig:"REDIS_URL"`
	SMTPUsername     string `envconfig:"SMTP_USERNAME"`
	SMTPPassword     string `envconfig:"SMTP_PASSWORD"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_dir", "migrations")

	v.SetDefault("jwt.issuer", "safefam")
	v.SetDefault("jwt.access_ttl", time.Hour)
	v.SetDefault("jwt.refresh_ttl", 30*24*time.Hour)

	// Empty runs on the in-memory broker.
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.bcrypt_cost", 12)

	v.SetDefault("dashboard.fetch_timeout", 5*time.Second)
	v.SetDefault("dashboard.cache_ttl", time.Minute)

	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", 5*time.Second)
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", 30*time.Second)
	v.SetDefault("outbox.retention", 7*24*time.Hour)
	v.SetDefault("outbox.cleanup_interval", time.Hour)

	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.interval", 15*time.Minute)

	v.SetDefault("email.from", "SafeFam <no-reply@safefam.app>")
	v.SetDefault("email.app_url", "http://localhost:3000")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.ses_region", "us-east-1")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load reads an optional .env file, then config.yml, then SAFEFAM_* env
// overrides, then deployment secrets. A missing config file is not an error.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var secrets Secrets
	if err := envconfig.Process(envPrefix, &secrets); err != nil {
		return nil, fmt.Errorf("failed to process env secrets: %w", err)
	}
	cfg.applySecrets(secrets)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applySecrets(s Secrets) {
	if s.DatabaseURL != "" {
		c.Database.URL = s.DatabaseURL
	}
	if s.JWTSecret != "" {
		c.JWT.Secret = s.JWTSecret
	}
	if s.JWTRefreshSecret != "" {
		c.JWT.RefreshSecret = s.JWTRefreshSecret
	}
	if s.RedisURL != "" {
		c.Redis.URL = s.RedisURL
	}
	if s.SMTPUsername != "" {
		c.Email.SMTPUsername = s.SMTPUsername
	}
	if s.SMTPPassword != "" {
		c.Email.SMTPPassword = s.SMTPPassword
	}
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	switch c.Email.Provider {
	case "", "smtp", "ses":
	default:
		return fmt.Errorf("unknown email.provider %q", c.Email.Provider)
	}
	return nil
}

func (c *JWTConfig) ToAuthConfig() auth.Config {
	return auth.Config{
		Secret:        c.Secret,
		RefreshSecret: c.RefreshSecret,
		Issuer:        c.Issuer,
		AccessTTL:     c.AccessTTL,
		RefreshTTL:    c.RefreshTTL,
	}
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}

func (c *LoggingConfig) ToLoggerConfig() logger.Config {
	return logger.Config{
		Level:  logger.ParseLevel(c.Level),
		Format: c.Format,
	}
}
