// Package config loads service configuration from the environment.
// Each consumer depends on the narrow interface it needs rather than on Config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseConfig is needed by the database pool and migrations.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig is needed by the HTTP server and router.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSOrigins() []string
	GetCORSAllowAll() bool
	GetCORSAllowCreds() bool
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
	IsMetricsEnabled() bool
}

// JWTConfig is needed to sign and verify access tokens.
type JWTConfig interface {
	GetJWTAccessSecret() string
	GetAccessTokenTTL() time.Duration
}

// AuthConfig is needed by the auth module.
type AuthConfig interface {
	JWTConfig
	GetBcryptCost() int
	GetStaffRegistrationSecret() string
}

// StorageConfig is needed by the MinIO adapter.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}

// IssuesConfig is needed by the issues module.
type IssuesConfig interface {
	GetMinioBucketIssueImages() string
	GetAppBaseURL() string
	GetMaxImagesPerIssue() int
	GetMinIOMaxFileSize() int64
}

// SchedulerConfig is needed by the asynq client and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// CacheConfig is needed by the analytics cache.
type CacheConfig interface {
	GetRedisURL() string
	GetAnalyticsCacheTTL() time.Duration
}

// SMTPConfig is needed by the notification mailer.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFrom() string
	IsSMTPEnabled() bool
}

// NotificationConfig is needed to build links in citizen e-mails.
type NotificationConfig interface {
	GetAppBaseURL() string
}

// MapsConfig is needed by the reverse geocoder.
type MapsConfig interface {
	GetNominatimURL() string
}

// Config holds every setting of the service.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	JWTAccessSecret         string
	AccessTokenTTL          time.Duration
	BcryptCost              int
	StaffRegistrationSecret string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool
	RateLimitRPS   float64
	RateLimitBurst int
	MetricsEnabled bool
	AppBaseURL     string

	MinIOEndpoint          string
	MinIOAccessKey         string
	MinIOSecretKey         string
	MinIOUseSSL            bool
	MinIOMaxFileSize       int64
	MinioBucketIssueImages string
	MaxImagesPerIssue      int

	RedisURL          string
	RedisTLSInsecure  bool
	AsynqQueueName    string
	AsynqConcurrency  int
	AnalyticsCacheTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	NominatimURL string
}

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetHTTPAddr() string       { return c.HTTPAddr }
func (c *Config) GetCORSOrigins() []string  { return c.CORSOrigins }
func (c *Config) GetCORSAllowAll() bool     { return c.CORSAllowAll }
func (c *Config) GetCORSAllowCreds() bool   { return c.CORSAllowCreds }
func (c *Config) GetRateLimitRPS() float64  { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int    { return c.RateLimitBurst }
func (c *Config) IsMetricsEnabled() bool    { return c.MetricsEnabled }
func (c *Config) GetAppBaseURL() string     { return c.AppBaseURL }
func (c *Config) GetNominatimURL() string   { return c.NominatimURL }
func (c *Config) GetMaxImagesPerIssue() int { return c.MaxImagesPerIssue }

func (c *Config) GetJWTAccessSecret() string         { return c.JWTAccessSecret }
func (c *Config) GetAccessTokenTTL() time.Duration   { return c.AccessTokenTTL }
func (c *Config) GetBcryptCost() int                 { return c.BcryptCost }
func (c *Config) GetStaffRegistrationSecret() string { return c.StaffRegistrationSecret }

func (c *Config) GetMinIOEndpoint() string          { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string         { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string         { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool              { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64        { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketIssueImages() string { return c.MinioBucketIssueImages }

// IsMinIOEnabled reports whether photo storage is configured.
func (c *Config) IsMinIOEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

func (c *Config) GetRedisURL() string                 { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool           { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string           { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int            { return c.AsynqConcurrency }
func (c *Config) GetAnalyticsCacheTTL() time.Duration { return c.AnalyticsCacheTTL }

func (c *Config) GetSMTPHost() string     { return c.SMTPHost }
func (c *Config) GetSMTPPort() int        { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string { return c.SMTPPassword }
func (c *Config) GetSMTPFrom() string     { return c.SMTPFrom }

// IsSMTPEnabled reports whether status e-mails can be delivered.
func (c *Config) IsSMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// Load reads configuration from environment variables, falling back to a
// local .env file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080,http://localhost:3000,http://localhost:4200"))
	corsAllowAll := containsWildcard(corsOrigins)

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		JWTAccessSecret:         getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:          mustDuration(getEnv("JWT_ACCESS_TTL", "24h"), 24*time.Hour),
		BcryptCost:              mustInt(getEnv("BCRYPT_COST", "12"), 12),
		StaffRegistrationSecret: getEnv("STAFF_REGISTRATION_SECRET", ""),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RateLimitRPS:            mustFloat(getEnv("RATE_LIMIT_RPS", "2"), 2),
		RateLimitBurst:          mustInt(getEnv("RATE_LIMIT_BURST", "5"), 5),
		MetricsEnabled:          strings.EqualFold(getEnv("METRICS_ENABLED", "true"), "true"),
		AppBaseURL:              strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:5173"), "/"),
		MinIOEndpoint:           getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:          getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:          getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:             strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:        mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760"), 10<<20),
		MinioBucketIssueImages:  getEnv("MINIO_BUCKET_ISSUE_IMAGES", "issue-images"),
		MaxImagesPerIssue:       mustInt(getEnv("MAX_IMAGES_PER_ISSUE", "5"), 5),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisTLSInsecure:        strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:        mustInt(getEnv("ASYNQ_CONCURRENCY", "10"), 10),
		AnalyticsCacheTTL:       mustDuration(getEnv("ANALYTICS_CACHE_TTL", "5m"), 5*time.Minute),
		SMTPHost:                getEnv("SMTP_HOST", ""),
		SMTPPort:                mustInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUsername:            getEnv("SMTP_USERNAME", ""),
		SMTPPassword:            getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:                getEnv("SMTP_FROM", ""),
		NominatimURL:            getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ORIGINS contains *")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func mustInt(value string, fallback int) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return result
}

func mustInt64(value string, fallback int64) int64 {
	result, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return result
}

func mustFloat(value string, fallback float64) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || result <= 0 {
		return fallback
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
