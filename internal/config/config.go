package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	DatabaseURL string
	Port        string

	AuthIssuerURL    string
	AuthAudience     string
	AuthJWKSCacheTTL time.Duration

	BlobConnectionString string
	ImagesContainer      string
	DocumentsContainer   string
	SASUploadTTL         time.Duration
	SASDownloadTTL       time.Duration

	RedisAddress  string
	RedisPassword string
	RateLimit     RateLimitConfig

	AllowedOrigins []string
}

// LoadDotEnv reads a .env file if one exists. Real environment variables
// always win over file values.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads the API configuration. Only the database is mandatory; a missing
// auth issuer or audience surfaces as a failure of the auth gate at request
// time instead of a crash at startup.
func Load() *Config {
	LoadDotEnv()

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	return &Config{
		AppEnv:      envStr("APP_ENV", "development"),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		DatabaseURL: dbURL,
		Port:        envStr("PORT", "8080"),

		AuthIssuerURL:    strings.TrimSpace(os.Getenv("AUTH_ISSUER_URL")),
		AuthAudience:     strings.TrimSpace(os.Getenv("AUTH_AUDIENCE")),
		AuthJWKSCacheTTL: envDur("AUTH_JWKS_CACHE_TTL", 24*time.Hour),

		BlobConnectionString: os.Getenv("BLOB_CONNECTION_STRING"),
		ImagesContainer:      envStr("BLOB_IMAGES_CONTAINER", "animal-images"),
		DocumentsContainer:   envStr("BLOB_DOCUMENTS_CONTAINER", "animal-documents"),
		SASUploadTTL:         envDur("SAS_UPLOAD_TTL", 10*time.Minute),
		SASDownloadTTL:       envDur("SAS_DOWNLOAD_TTL", 15*time.Minute),

		RedisAddress:  envStr("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RateLimit:     LoadRateLimitConfig(),

		AllowedOrigins: envList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func envStr(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
		return b
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}

func envList(k string, d []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
