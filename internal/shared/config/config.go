package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultSignatureRequestTTL = 7 * 24 * time.Hour

// Config holds application configuration.
type Config struct {
	Port                 string
	CORSAllowOrigin      []string
	ObjectStoreType      string
	LocalStoreDir        string
	AWSRegion            string
	S3Bucket             string
	S3Prefix             string
	SSEKMSKeyID          string
	DatabaseURL          string
	Env                  string
	GoogleClientID       string
	GoogleClientSecret   string
	GoogleRedirectURL    string
	UIRedirectURL        string
	SignatureRequestTTL  time.Duration
	PublicSigningBaseURL string
	AdminNotifyEmails    []string
	NotifyMode           string
	EmailFunctionURL     string
	EmailFunctionKey     string
	NotifyQueueURL       string
	PublicRateLimitRPS   float64
	PublicRateLimitBurst int

	// TrustedProxies are the peers whose X-Forwarded-For headers are believed
	// when resolving the client IP. Empty trusts no one.
	TrustedProxies []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:                 getEnv("PORT", "8080"),
		CORSAllowOrigin:      splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType:      normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:        getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:            getEnv("AWS_REGION", ""),
		S3Bucket:             getEnv("S3_BUCKET", ""),
		S3Prefix:             getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:          getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:          dbURL,
		Env:                  env,
		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:    getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:        getEnv("UI_REDIRECT_URL", ""),
		SignatureRequestTTL:  getDuration("SIGNATURE_REQUEST_TTL", defaultSignatureRequestTTL),
		PublicSigningBaseURL: getEnv("PUBLIC_SIGNING_BASE_URL", "http://localhost:5173/sign"),
		AdminNotifyEmails:    splitAndTrim(getEnv("ADMIN_NOTIFY_EMAILS", "")),
		NotifyMode:           normalizeNotifyMode(getEnv("NOTIFY_MODE", "log")),
		EmailFunctionURL:     getEnv("EMAIL_FUNCTION_URL", ""),
		EmailFunctionKey:     getEnv("EMAIL_FUNCTION_KEY", ""),
		NotifyQueueURL:       getEnv("NOTIFY_SQS_QUEUE_URL", ""),
		PublicRateLimitRPS:   getFloat("PUBLIC_RATE_LIMIT_RPS", 1),
		PublicRateLimitBurst: getInt("PUBLIC_RATE_LIMIT_BURST", 10),
		TrustedProxies:       splitAndTrim(getEnv("TRUSTED_PROXIES", "")),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid duration %q; using %s", key, raw, def)
		return def
	}
	return val
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int %q; using %d", key, raw, def)
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config %s invalid float %q; using %v", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeNotifyMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "http":
		return "http"
	case "queue", "sqs":
		return "queue"
	default:
		return "log"
	}
}
