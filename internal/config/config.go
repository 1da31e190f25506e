package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "OPROOM"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver"` // mongo or memory
	URI            string        `mapstructure:"uri"`
	Name           string        `mapstructure:"name"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
	MinPoolSize    uint64        `mapstructure:"min_pool_size"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
}

type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpiryMinutes int    `mapstructure:"expiry_minutes"`
}

func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Configured reports whether credentials are present.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

type CalendarConfig struct {
	SyncEnabled        bool          `mapstructure:"sync_enabled"`
	Timezone           string        `mapstructure:"timezone"`
	ORDuration         time.Duration `mapstructure:"or_duration"`
	ConferenceDuration time.Duration `mapstructure:"conference_duration"`
}

type ArchiveConfig struct {
	AutoArchiveDelayHours int           `mapstructure:"auto_archive_delay_hours"`
	SweepInterval         time.Duration `mapstructure:"sweep_interval"`
	SweepEnabled          bool          `mapstructure:"sweep_enabled"`
}

type LifecycleConfig struct {
	EnforceTransitions bool `mapstructure:"enforce_transitions"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Prefix string `mapstructure:"prefix"`
}

// legacyEnv maps the deployment's historical variable names onto config keys.
var legacyEnv = map[string]string{
	"database.uri":                     "MONGO_URL",
	"database.name":                    "DB_NAME",
	"jwt.secret":                       "JWT_SECRET",
	"jwt.expiry_minutes":               "ACCESS_TOKEN_EXPIRE_MINUTES",
	"smtp.host":                        "SMTP_SERVER",
	"smtp.port":                        "SMTP_PORT",
	"smtp.username":                    "SMTP_USERNAME",
	"smtp.password":                    "SMTP_PASSWORD",
	"smtp.from":                        "EMAIL_FROM",
	"calendar.sync_enabled":            "CALENDAR_SYNC_ENABLED",
	"archive.auto_archive_delay_hours": "AUTO_ARCHIVE_DELAY_HOURS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "or_scheduler")
	v.SetDefault("database.max_pool_size", 50)
	v.SetDefault("database.min_pool_size", 5)
	v.SetDefault("database.connect_timeout", 10*time.Second)
	v.SetDefault("database.query_timeout", 5*time.Second)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry_minutes", 1440)

	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")

	v.SetDefault("calendar.sync_enabled", false)
	v.SetDefault("calendar.timezone", "America/Chicago")
	v.SetDefault("calendar.or_duration", 2*time.Hour)
	v.SetDefault("calendar.conference_duration", time.Hour)

	v.SetDefault("archive.auto_archive_delay_hours", 48)
	v.SetDefault("archive.sweep_interval", time.Hour)
	v.SetDefault("archive.sweep_enabled", true)

	v.SetDefault("lifecycle.enforce_transitions", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("rate_limit.rps", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.prefix", "oproom")
}

// LoadConfig reads .env (optional), config.yaml (optional) and OPROOM_* env vars.
// An explicit path, when given, must exist.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/oproom")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// maxArchiveDelayHours mirrors the sweep's upper bound of ten years.
const maxArchiveDelayHours = 10 * 365 * 24

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == "mongo" && c.Database.URI == "" {
		return errors.New("database.uri is required for the mongo driver")
	}
	if c.Archive.AutoArchiveDelayHours < 0 {
		return errors.New("archive.auto_archive_delay_hours must not be negative")
	}
	if c.Archive.AutoArchiveDelayHours > maxArchiveDelayHours {
		return fmt.Errorf("archive.auto_archive_delay_hours must not exceed %d", maxArchiveDelayHours)
	}
	if c.Archive.SweepInterval <= 0 {
		return errors.New("archive.sweep_interval must be positive")
	}
	return nil
}
