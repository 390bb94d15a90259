// Package config loads application configuration from environment
// variables. Required variables are enforced by must(); optional
// ones fall back to sensible defaults so a bare `go run` starts a
// development server on the in-memory store.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds the runtime configuration. Database fields are
// optional: when DBHost is empty the server keeps all state in
// memory, which matches the original deployment of this app and is
// what the test suites use.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	JWTSecret string // secret shared with the identity provider for verifying bearer tokens

	DBUser string // database username (optional)
	DBPass string // database password (optional)
	DBHost string // database host; empty selects the in-memory store
	DBPort string // database port
	DBName string // database name

	RequestTimeout time.Duration // per-request bound on store calls
}

// Load reads configuration from the environment. Missing required
// variables abort startup with a fatal log message.
func Load() Config {
	return Config{
		Env:            getenv("APP_ENV", "dev"),
		Port:           must("APP_PORT"),
		JWTSecret:      must("AUTH_JWT_SECRET"),
		DBUser:         os.Getenv("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         getenv("DB_PORT", "3306"),
		DBName:         getenv("DB_NAME", "careconnect"),
		RequestTimeout: envDur("REQUEST_TIMEOUT", 5*time.Second),
	}
}

// UseDatabase reports whether a MySQL host was configured.
func (c Config) UseDatabase() bool { return c.DBHost != "" }

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "yes", "on":
		return true
	case "0", "false", "FALSE", "no", "off":
		return false
	}
	return def
}
