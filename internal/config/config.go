// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, workflow credit costs,
// generation-service tuning, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-wardrobe-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// WorkflowConfig holds the tunables of the guided-creation state machine:
// per-action credit costs, the session time-to-live, and the inventory cap
// applied before snapshots are hashed or forwarded to the generation service.
type WorkflowConfig struct {
	SessionTTL        time.Duration // inactivity window before SESSION_EXPIRED
	GenerateCost      int           // credits quoted for a generation
	EditCost          int           // credits quoted for an edit
	TryOnCost         int           // credits quoted for a try-on
	MaxInventoryItems int           // cap on the inventory snapshot per turn
	DailyCreditLimit  int           // per-user daily spend ceiling
}

// GenerationConfig holds the downstream generation-service client settings.
type GenerationConfig struct {
	BaseURL      string        // GEN_BASE_URL, e.g. "https://gen.internal"
	APIKey       string        // GEN_API_KEY, forwarded as a bearer credential
	MaxAttempts  int           // retry budget per request (>= 1)
	BaseBackoff  time.Duration // backoff base; attempt n waits base * 2^(n-1)
	Timeout      time.Duration // wall-clock budget per content-generation attempt
	TryOnTimeout time.Duration // wall-clock budget per try-on attempt
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Auth
	AuthSecret string // HMAC key for bearer tokens; empty disables token auth

	// App
	DBPath   string         // SQLite path
	Workflow WorkflowConfig // state-machine tunables
	Gen      GenerationConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Caching / replay
	CacheTTL       time.Duration // content-hash response cache lifetime
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 150*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Auth
		AuthSecret: getenv("AUTH_SECRET", ""),

		// App
		DBPath: getenv("DB_PATH", "app.db"),
		Workflow: WorkflowConfig{
			SessionTTL:        getdur("SESSION_TTL", 30*time.Minute),
			GenerateCost:      getint("GENERATE_COST", 2),
			EditCost:          getint("EDIT_COST", 2),
			TryOnCost:         getint("TRYON_COST", 4),
			MaxInventoryItems: getint("MAX_INVENTORY_ITEMS", 40),
			DailyCreditLimit:  getint("DAILY_CREDIT_LIMIT", 50),
		},
		Gen: GenerationConfig{
			BaseURL:      getenv("GEN_BASE_URL", "http://localhost:9090"),
			APIKey:       getenv("GEN_API_KEY", ""),
			MaxAttempts:  getint("GEN_MAX_ATTEMPTS", 3),
			BaseBackoff:  getdur("GEN_BASE_BACKOFF", 700*time.Millisecond),
			Timeout:      getdur("GEN_TIMEOUT", 95*time.Second),
			TryOnTimeout: getdur("TRYON_TIMEOUT", 120*time.Second),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Caching / replay
		CacheTTL:       getdur("CACHE_TTL", 6*time.Hour),
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-wardrobe-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.GinMode == "release" && strings.TrimSpace(cfg.AuthSecret) == "" {
		return cfg, errors.New("AUTH_SECRET must be set in release mode")
	}
	if cfg.Workflow.SessionTTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if cfg.Workflow.GenerateCost < 0 || cfg.Workflow.EditCost < 0 || cfg.Workflow.TryOnCost < 0 {
		return cfg, errors.New("credit costs must be >= 0")
	}
	if cfg.Workflow.MaxInventoryItems < 1 {
		return cfg, errors.New("MAX_INVENTORY_ITEMS must be >= 1")
	}
	if cfg.Workflow.DailyCreditLimit < 1 {
		return cfg, errors.New("DAILY_CREDIT_LIMIT must be >= 1")
	}
	if strings.TrimSpace(cfg.Gen.BaseURL) == "" {
		return cfg, errors.New("GEN_BASE_URL must not be empty")
	}
	if cfg.Gen.MaxAttempts < 1 {
		return cfg, errors.New("GEN_MAX_ATTEMPTS must be >= 1")
	}
	if cfg.Gen.BaseBackoff <= 0 || cfg.Gen.Timeout <= 0 || cfg.Gen.TryOnTimeout <= 0 {
		return cfg, errors.New("generation backoff and timeouts must be positive durations")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.CacheTTL <= 0 {
		return cfg, errors.New("CACHE_TTL must be > 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
