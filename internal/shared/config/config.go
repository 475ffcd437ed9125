package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAPIBaseURL     = "http://localhost:8000"
	defaultAppName        = "Enterprise Contract Analysis System"
	defaultMaxUploadBytes = 20 << 20
)

// Config holds application configuration. It is built once at startup and
// passed by value into every component.
type Config struct {
	Port               string
	Env                string
	AppName            string
	APIBaseURL         string
	PollInterval       time.Duration
	StallTimeout       time.Duration
	SessionIdleTimeout time.Duration
	HTTPClientTimeout  time.Duration
	MaxUploadBytes     int64
	NavStateSecret     string
	LogLevel           string
	Texts              Texts
}

// Load reads configuration from an optional YAML file and environment
// variables with sensible defaults. Environment variables win over the file.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")
	return load(os.Getenv)
}

func load(getenv func(string) string) Config {
	get := func(key, def string) string {
		if val := strings.TrimSpace(getenv(key)); val != "" {
			return val
		}
		return def
	}

	file := fileConfig{}
	if path := get("CONFIG_FILE", ""); path != "" {
		parsed, err := readFile(path)
		if err != nil {
			log.Printf("config: ignoring %s: %v", path, err)
		} else {
			file = parsed
		}
	}

	return Config{
		Port:               get("PORT", "8080"),
		Env:                normalizeEnv(get("ENV", "dev")),
		AppName:            get("APP_NAME", firstNonEmpty(file.AppName, defaultAppName)),
		APIBaseURL:         strings.TrimRight(get("API_BASE_URL", firstNonEmpty(file.APIBaseURL, defaultAPIBaseURL)), "/"),
		PollInterval:       getDuration(get, "POLL_INTERVAL", 500*time.Millisecond),
		StallTimeout:       getDuration(get, "STALL_TIMEOUT", 60*time.Second),
		SessionIdleTimeout: getDuration(get, "SESSION_IDLE_TIMEOUT", 15*time.Second),
		HTTPClientTimeout:  getDuration(get, "HTTP_CLIENT_TIMEOUT", 30*time.Second),
		MaxUploadBytes:     getInt64(get, "MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		NavStateSecret:     get("NAV_STATE_SECRET", ""),
		LogLevel:           strings.ToLower(get("LOG_LEVEL", "info")),
		Texts:              DefaultTexts().merge(file.Texts),
	}
}

func getDuration(get func(string, string) string, key string, def time.Duration) time.Duration {
	raw := get(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("config: invalid %s=%q, using %s", key, raw, def)
		return def
	}
	return d
}

func getInt64(get func(string, string) string, key string, def int64) int64 {
	raw := get(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		log.Printf("config: invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

// IsDevLike reports whether the environment is a developer setup.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}
