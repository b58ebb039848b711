package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Server     ServerConfig
	Mail       MailConfig
	Slack      SlackConfig
	Booking    BookingConfig
	RateLimit  RateLimitConfig
	Platform   PlatformConfig
	Log        LogConfig
	SelfHosted bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds JWT authentication settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // G117: JWT signing secret config
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// MailConfig holds the SMTP relay used for owner and customer emails.
// An empty Host disables email delivery.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string //nolint:gosec // G117: SMTP credential config
	From     string
	Timeout  time.Duration
}

// SlackConfig holds Slack alert settings. An empty BotToken disables Slack.
type SlackConfig struct {
	BotToken string
}

// BookingConfig holds reservation policy and the notification event stream.
type BookingConfig struct {
	ConflictPolicy string // "reject", "warn" or "off"
	RequireShift   bool
	EventStream    string
	ConsumerGroup  string
	ConsumerName   string
}

// RateLimitConfig holds token bucket settings for public and staff routes.
type RateLimitConfig struct {
	PublicRPS   float64
	PublicBurst int
	TenantRPS   float64
	TenantBurst int
}

// PlatformConfig identifies the operator of the installation. Admins of
// OperatorTenant manage every restaurant through /admin; with uuid.Nil the
// admin routes refuse everyone and restaurants are created from the CLI.
type PlatformConfig struct {
	OperatorTenant uuid.UUID
}

// LogConfig controls the global zerolog logger.
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("COPERTO_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("COPERTO_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	autoMigrate, err := getEnvBool("COPERTO_DB_AUTO_MIGRATE", true)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("COPERTO_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("COPERTO_JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	refreshTTL, err := getEnvDuration("COPERTO_JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("COPERTO_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("COPERTO_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	shutdownTimeout, err := getEnvDuration("COPERTO_SERVER_SHUTDOWN_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	smtpPort, err := getEnvInt("COPERTO_SMTP_PORT", 587)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	smtpTimeout, err := getEnvDuration("COPERTO_SMTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	operatorTenant, err := getEnvUUID("COPERTO_PLATFORM_TENANT_ID")
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	requireShift, err := getEnvBool("COPERTO_BOOKING_REQUIRE_SHIFT", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	publicRPS, err := getEnvFloat("COPERTO_RATE_LIMIT_PUBLIC_RPS", 2)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	publicBurst, err := getEnvInt("COPERTO_RATE_LIMIT_PUBLIC_BURST", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	tenantRPS, err := getEnvFloat("COPERTO_RATE_LIMIT_TENANT_RPS", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	tenantBurst, err := getEnvInt("COPERTO_RATE_LIMIT_TENANT_BURST", 200)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	selfHosted, err := getEnvBool("COPERTO_SELF_HOSTED", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "coperto"
	}

	corsOrigins := getEnvList("COPERTO_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:        getEnv("COPERTO_DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("COPERTO_DB_USER", "coperto"),
			Password:    getEnv("COPERTO_DB_PASSWORD", ""),
			DBName:      getEnv("COPERTO_DB_NAME", "coperto_dev"),
			SSLMode:     getEnv("COPERTO_DB_SSLMODE", "disable"),
			MaxConns:    dbMaxConns,
			AutoMigrate: autoMigrate,
		},
		Redis: RedisConfig{
			Addr:     getEnv("COPERTO_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("COPERTO_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:     getEnv("COPERTO_JWT_SECRET", ""),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		Server: ServerConfig{
			Addr:            getEnv("COPERTO_SERVER_ADDR", ":8080"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			CORSOrigins:     corsOrigins,
		},
		Mail: MailConfig{
			Host:     getEnv("COPERTO_SMTP_HOST", ""),
			Port:     smtpPort,
			Username: getEnv("COPERTO_SMTP_USERNAME", ""),
			Password: getEnv("COPERTO_SMTP_PASSWORD", ""),
			From:     getEnv("COPERTO_SMTP_FROM", "prenotazioni@localhost"),
			Timeout:  smtpTimeout,
		},
		Slack: SlackConfig{
			BotToken: getEnv("COPERTO_SLACK_BOT_TOKEN", ""),
		},
		Booking: BookingConfig{
			ConflictPolicy: strings.ToLower(getEnv("COPERTO_BOOKING_CONFLICT_POLICY", "reject")),
			RequireShift:   requireShift,
			EventStream:    getEnv("COPERTO_BOOKING_EVENT_STREAM", "coperto:reservation-events"),
			ConsumerGroup:  getEnv("COPERTO_BOOKING_CONSUMER_GROUP", "notifier"),
			ConsumerName:   getEnv("COPERTO_BOOKING_CONSUMER_NAME", hostname),
		},
		RateLimit: RateLimitConfig{
			PublicRPS:   publicRPS,
			PublicBurst: publicBurst,
			TenantRPS:   tenantRPS,
			TenantBurst: tenantBurst,
		},
		Platform: PlatformConfig{
			OperatorTenant: operatorTenant,
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("COPERTO_LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("COPERTO_LOG_FORMAT", "json")),
		},
		SelfHosted: selfHosted,
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("COPERTO_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("COPERTO_JWT_SECRET must be at least 32 characters")
	}

	// DB SSL mode warning for non-self-hosted deployments.
	if c.Database.SSLMode == "disable" && !c.SelfHosted {
		log.Warn().Msg("COPERTO_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("COPERTO_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("COPERTO_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("COPERTO_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("COPERTO_JWT_REFRESH_TTL must be positive, got %s", c.JWT.RefreshTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("COPERTO_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("COPERTO_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("COPERTO_SERVER_SHUTDOWN_TIMEOUT must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.Mail.Host != "" && (c.Mail.Port < 1 || c.Mail.Port > 65535) {
		return fmt.Errorf("COPERTO_SMTP_PORT must be 1-65535, got %d", c.Mail.Port)
	}
	if c.Mail.Host != "" && c.Mail.Timeout <= 0 {
		return fmt.Errorf("COPERTO_SMTP_TIMEOUT must be positive, got %s", c.Mail.Timeout)
	}

	switch c.Booking.ConflictPolicy {
	case "reject", "warn", "off":
	default:
		return fmt.Errorf("COPERTO_BOOKING_CONFLICT_POLICY must be reject, warn or off, got %q", c.Booking.ConflictPolicy)
	}

	if c.RateLimit.PublicRPS <= 0 || c.RateLimit.PublicBurst < 1 {
		return errors.New("COPERTO_RATE_LIMIT_PUBLIC_RPS and _BURST must be positive")
	}
	if c.RateLimit.TenantRPS <= 0 || c.RateLimit.TenantBurst < 1 {
		return errors.New("COPERTO_RATE_LIMIT_TENANT_RPS and _BURST must be positive")
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("COPERTO_LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

// getEnvUUID returns uuid.Nil when key is unset.
func getEnvUUID(key string) (uuid.UUID, error) {
	v := os.Getenv(key)
	if v == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing %s=%q as uuid: %w", key, v, err)
	}
	return id, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
