package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server      ServerConfig
	App         AppConfig
	Database    DatabaseConfig
	Session     SessionRedisConfig
	Fingerprint FingerprintRedisConfig
	BGG         BGGConfig
	Sync        SyncConfig
	Telegram    TelegramConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"bgg-mirror-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// DatabaseConfig holds durable store settings. The backend is selected by
// Type: sqlite (default), postgres or mysql.
type DatabaseConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"sqlite"`
	Path     string `envconfig:"DB_PATH" default:"./data/bgg.db"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"bgg"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASS" default:""`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// SessionRedisConfig holds the Redis connection used to persist the BGG
// login session across process instances.
type SessionRedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:""`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// FingerprintRedisConfig holds the Redis connection for content fingerprints.
// Kept separate from the session store on purpose so unrelated cached data
// never shares a keyspace.
type FingerprintRedisConfig struct {
	Host     string `envconfig:"REDIS_FP_HOST" default:""`
	Port     int    `envconfig:"REDIS_FP_PORT" default:"6379"`
	Password string `envconfig:"REDIS_FP_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_FP_DB" default:"1"`
}

// BGGConfig holds upstream API settings and credentials.
type BGGConfig struct {
	Username string `envconfig:"BGG_USERNAME" default:""`
	Password string `envconfig:"BGG_PASSWORD" default:""`

	APIURL   string `envconfig:"BGG_API_URL" default:"https://boardgamegeek.com/xmlapi2"`
	LoginURL string `envconfig:"BGG_LOGIN_URL" default:"https://boardgamegeek.com/login/api/v1"`
	PlaysURL string `envconfig:"BGG_PLAYS_URL" default:"https://boardgamegeek.com/geekplay.php"`

	UserAgent      string        `envconfig:"BGG_USER_AGENT" default:"bgg-mirror-api/1.0"`
	SessionTTL     time.Duration `envconfig:"BGG_SESSION_TTL" default:"8h"`
	RequestTimeout time.Duration `envconfig:"BGG_REQUEST_TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"BGG_MAX_RETRIES" default:"5"`
	RetryBaseDelay time.Duration `envconfig:"BGG_RETRY_BASE_DELAY" default:"1s"`
	RateLimit      float64       `envconfig:"BGG_RATE_LIMIT" default:"0.5"` // requests per second
}

// SyncConfig holds the per-kind scheduler intervals.
type SyncConfig struct {
	GamesInterval       time.Duration `envconfig:"SYNC_GAMES_INTERVAL" default:"2h"`
	AccessoriesInterval time.Duration `envconfig:"SYNC_ACCESSORIES_INTERVAL" default:"6h"`
	HotnessInterval     time.Duration `envconfig:"SYNC_HOTNESS_INTERVAL" default:"12h"`
	PlaysInterval       time.Duration `envconfig:"SYNC_PLAYS_INTERVAL" default:"24h"`
}

// TelegramConfig holds the optional sync-summary notifications. Disabled
// when either value is empty.
type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" default:""`
	ChatID   string `envconfig:"TELEGRAM_CHAT_ID" default:""`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresDSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// MySQLDSN returns the MySQL data source name.
func (d *DatabaseConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// Address returns the Redis address in host:port format, or "" when the
// session store is not configured.
func (c *SessionRedisConfig) Address() string {
	if c.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Address returns the Redis address in host:port format, or "" when the
// fingerprint store is not configured.
func (c *FingerprintRedisConfig) Address() string {
	if c.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HasCredentials reports whether a BGG login is possible.
func (b *BGGConfig) HasCredentials() bool {
	return b.Username != "" && b.Password != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
