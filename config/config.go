package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Catalog    CatalogConfig
	Admin      AdminConfig
	CORS       CORSConfig
	S3         S3Config
	Redis      RedisConfig
	Cart       CartConfig
	RateLimit  RateLimitConfig
	Report     ReportConfig
	Storefront StorefrontConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	ProbeTimeout time.Duration
}

type CatalogConfig struct {
	FallbackFile string
}

type AdminConfig struct {
	Username      string
	Password      string
	PasswordHash  string // bcrypt, takes precedence over Password
	JWTSecret     string
	SessionExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type CartConfig struct {
	TTL time.Duration
	Dir string
}

type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

type ReportConfig struct {
	Schedule string
	Dir      string
}

type StorefrontConfig struct {
	WhatsAppNumber string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "amaretto"),
			Password:     getEnv("DB_PASSWORD", "amaretto"),
			DBName:       getEnv("DB_NAME", "amaretto"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			ProbeTimeout: parseDuration(getEnv("DB_PROBE_TIMEOUT", "2s"), 2*time.Second),
		},
		Catalog: CatalogConfig{
			FallbackFile: getEnv("CATALOG_FALLBACK_FILE", "data/products.json"),
		},
		Admin: AdminConfig{
			Username:      getEnv("ADMIN_USERNAME", "admin"),
			Password:      getEnv("ADMIN_PASSWORD", ""),
			PasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:     getEnv("JWT_SECRET", "your-secret-key"),
			SessionExpiry: parseDuration(getEnv("ADMIN_SESSION_EXPIRY", "168h"), 7*24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "amaretto-media"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Cart: CartConfig{
			TTL: parseDuration(getEnv("CART_TTL", "720h"), 30*24*time.Hour),
			Dir: getEnv("CART_DIR", "data/carts"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: parseInt(getEnv("RATE_LIMIT_RPS", "5"), 5),
			Burst:             parseInt(getEnv("RATE_LIMIT_BURST", "10"), 10),
		},
		Report: ReportConfig{
			Schedule: getEnv("REPORT_CRON", "0 7 * * *"),
			Dir:      getEnv("REPORT_DIR", "reports"),
		},
		Storefront: StorefrontConfig{
			WhatsAppNumber: getEnv("WHATSAPP_NUMBER", "526141920272"),
		},
	}

	if config.Admin.Password == "" && config.Admin.PasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
