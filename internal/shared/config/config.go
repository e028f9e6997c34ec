package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"expertcof/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Env             string
	Port            string
	AppURL          string
	CORSAllowOrigin []string

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	APIBaseURL        string
	PostalBaseURL     string
	CheckoutPriceID   string

	RecordStore string
	DatabaseURL string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	HTTPTimeout    time.Duration
	UploadTimeout  time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

const defaultPriceID = "price_1So74jL6KJkeKKprcQNcdnyi"

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	recordStore := normalizeRecordStore(getEnv("RECORD_STORE", ""), dbURL)

	if env == "production" && recordStore == "rest" && os.Getenv("SUPABASE_URL") == "" {
		telemetry.Error("config.missing", map[string]any{"key": "SUPABASE_URL"})
	}

	return Config{
		Env:             env,
		Port:            getEnv("PORT", "8080"),
		AppURL:          strings.TrimRight(getEnv("APP_URL", "http://localhost:5173"), "/"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		SupabaseURL:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:   getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		APIBaseURL:        strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
		PostalBaseURL:     strings.TrimRight(getEnv("POSTAL_BASE_URL", "https://viacep.com.br"), "/"),
		CheckoutPriceID:   getEnv("STRIPE_PRICE_ID", defaultPriceID),

		RecordStore: recordStore,
		DatabaseURL: dbURL,

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		HTTPTimeout:    getDuration("HTTP_TIMEOUT", 15*time.Second),
		UploadTimeout:  getDuration("UPLOAD_TIMEOUT", 120*time.Second),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 5),
	}
}

func loadEnvFiles(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		// godotenv.Load never overrides variables already present in the environment.
		if err := godotenv.Load(p); err != nil {
			telemetry.Warn("config.dotenv_failed", map[string]any{"path": p, "error": err})
		}
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
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "value": raw})
		return def
	}
	return d
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "value": raw})
		return def
	}
	return v
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "value": raw})
		return def
	}
	return v
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

// normalizeRecordStore picks the analyses/users backend. Without an explicit
// choice a DATABASE_URL selects postgres, otherwise the hosted REST API.
func normalizeRecordStore(raw, databaseURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "rest", "supabase":
		return "rest"
	case "postgres", "pg":
		return "postgres"
	case "memory":
		return "memory"
	}
	if strings.TrimSpace(databaseURL) != "" {
		return "postgres"
	}
	return "rest"
}

// IsDevLike reports whether env allows in-memory fallbacks.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
