package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	ClientURL   string
	AutoMigrate bool

	DatabaseURL string
	RedisURL    string

	JWT       JWTConfig
	Google    GoogleConfig
	Cookie    CookieConfig
	Whitelist WhitelistConfig
	Storage   StorageConfig
	Kafka     KafkaConfig
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type GoogleConfig struct {
	ClientID string
}

type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type WhitelistConfig struct {
	Emails  []string
	Domains []string
}

type StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	Folder          string
	UsePathStyle    bool
	MaxUploadBytes  int64
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

var (
	defaultWhitelistEmails = []string{
		"admin@gdgoc-itb.com",
		"test@example.com",
		"13522142@std.stei.itb.ac.id",
		"13522155@std.stei.itb.ac.id",
	}
	defaultWhitelistDomains = []string{"itb.ac.id"}
)

// LoadConfig reads configuration from the environment, loading a .env file first when present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	environment := getEnv("APP_ENV", "development")

	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		Environment: environment,
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		ClientURL:   getEnv("CLIENT_URL", "http://localhost:3000"),
		AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", environment != "production"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", "gdgoc-itb-lms"),
			TTL:    getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour),
		},
		Google: GoogleConfig{
			ClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		},
		Cookie: CookieConfig{
			Secure: getEnvBool("COOKIE_SECURE", environment == "production"),
			MaxAge: getEnvDuration("COOKIE_MAX_AGE", 7*24*time.Hour),
		},
		Whitelist: WhitelistConfig{
			Emails:  getEnvList("WHITELIST_EMAILS", defaultWhitelistEmails),
			Domains: getEnvList("WHITELIST_DOMAINS", defaultWhitelistDomains),
		},
		Storage: StorageConfig{
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", "ap-southeast-1"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
			Folder:          getEnv("S3_FOLDER", "lms-gdgoc-itb"),
			UsePathStyle:    getEnvBool("S3_USE_PATH_STYLE", false),
			MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_BYTES", 10*1024*1024)),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "lms.events"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", c.JWT.TTL)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getEnvDuration accepts Go durations ("24h") and the day shorthand ("1d", "7d").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if strings.HasSuffix(v, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(v, "d"))
		if err != nil {
			return fallback
		}
		return time.Duration(days) * 24 * time.Hour
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
