package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	Debug           bool
	LogLevel        string
	AppBaseURL      string
	DBDriver        string
	DatabaseURL     string
	JWTSecret       string
	JWTAccessExpiry time.Duration
	AdminEmail      string
	AdminPassword   string

	// Firebase / Google Cloud
	FirebaseCredentials string
	GoogleProjectID     string
	GoogleCredentials   string
	PubSubTopic         string
	PubSubSubscription  string

	// Chat presence
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ChatPresenceTTL time.Duration

	// Token hygiene
	TokenStaleAfter    time.Duration
	TokenSweepSchedule string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	topic := getEnv("PUBSUB_TOPIC", "repairhub-events")

	return &Config{
		Port:                getEnv("PORT", "8080"),
		Debug:               getBool("DEBUG", false),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		AppBaseURL:          getEnv("APP_BASE_URL", "http://localhost:3000"),
		DBDriver:            getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:         getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=repairhub port=5432 sslmode=disable"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:     getDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
		AdminEmail:          getEnv("ADMIN_EMAIL", ""),
		AdminPassword:       getEnv("ADMIN_PASSWORD", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		GoogleCredentials:   getEnv("GOOGLE_CREDENTIALS", ""),
		PubSubTopic:         topic,
		PubSubSubscription:  getEnv("PUBSUB_SUBSCRIPTION", topic+"-sub"),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getInt("REDIS_DB", 0),
		ChatPresenceTTL:     getDuration("CHAT_PRESENCE_TTL", 2*time.Minute),
		TokenStaleAfter:     getDuration("TOKEN_STALE_AFTER", 1440*time.Hour), // 60 days
		TokenSweepSchedule:  getEnv("TOKEN_SWEEP_SCHEDULE", "@every 1h"),
	}
}

// FCMEnabled reports whether push delivery can be configured at all.
func (c *Config) FCMEnabled() bool {
	return c.FirebaseCredentials != "" || c.GoogleProjectID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}
