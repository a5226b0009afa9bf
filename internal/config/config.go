package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	StaticFilesPath string
	TemplatesPath   string
	Debug           bool

	// Parking backend
	APIBaseURL string
	APITimeout time.Duration
	PageSize   int

	// Session storage
	SessionBackend  string // memory, sql or redis
	SessionDuration time.Duration
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	CSRFSecret string
	RolePolicy string // email or claim
	// TrustProxy honours X-Forwarded-For when keying rate limits
	TrustProxy bool

	AuditAMQPURL  string
	AuditExchange string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		TemplatesPath:   getEnv("TEMPLATES_PATH", "./internal/templates"),
		Debug:           getEnvBool("DEBUG", false),

		APIBaseURL: strings.TrimSuffix(getEnv("API_BASE_URL", "http://localhost:8000/api/v1"), "/"),
		APITimeout: getEnvDuration("API_TIMEOUT", 15*time.Second),
		PageSize:   getEnvInt("PAGE_SIZE", 10),

		SessionBackend:  strings.ToLower(getEnv("SESSION_BACKEND", "sql")),
		SessionDuration: getEnvDuration("SESSION_DURATION", 24*time.Hour),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./console.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),

		CSRFSecret: csrfSecret(),
		RolePolicy: strings.ToLower(getEnv("ROLE_POLICY", "email")),
		TrustProxy: getEnvBool("TRUST_PROXY", false),

		AuditAMQPURL:  getEnv("AUDIT_AMQP_URL", ""),
		AuditExchange: getEnv("AUDIT_EXCHANGE", "console.audit"),
	}
}

// csrfSecret reads CSRF_SECRET. Without one a random secret is generated,
// so form tokens stop validating when the process restarts.
func csrfSecret() string {
	if secret := os.Getenv("CSRF_SECRET"); secret != "" {
		return secret
	}
	log.Println("Warning: CSRF_SECRET is not set, using a random per-process secret")
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}
	return hex.EncodeToString(b)
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid duration for %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
