package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "development"
	EnvProd  = "production"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env     string
	Port    string
	BaseURL string

	// ✅ Database
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	SQLitePath     string
	DBMaxOpenConns int

	// ✅ Identity
	JWTSecret        string
	JWTPublicKeyPath string
	JWTIssuer        string
	AdminEmails      []string

	// ✅ Redis Config
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ✅ Kafka outbox relay
	KafkaBrokers    []string
	KafkaTopic      string
	OutboxBatchSize int
	OutboxInterval  time.Duration

	// ✅ FCM Config
	FCMCredentialsPath string
	FCMProjectID       string

	// ✅ Check-in rules
	OverlapTolerance   time.Duration
	WorkshopsListLimit int

	RateLimitPerMinute int64
	CORSOrigins        []string
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	return &Config{
		Env:     getEnv("ENV", EnvLocal),
		Port:    getEnv("PORT", "8080"),
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		DBDriver:       getEnv("DB_DRIVER", DriverPostgres),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		SQLitePath:     getEnv("SQLITE_PATH", "./storage/workshops.db"),
		DBMaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 20),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTPublicKeyPath: os.Getenv("JWT_PUBLIC_KEY_PATH"),
		JWTIssuer:        os.Getenv("JWT_ISSUER"),
		AdminEmails:      getList("ADMIN_EMAILS"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		KafkaBrokers:    getList("KAFKA_BROKERS"),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "workshop-checkins"),
		OutboxBatchSize: getInt("OUTBOX_BATCH_SIZE", 100),
		OutboxInterval:  getPositiveDuration("OUTBOX_INTERVAL", 5*time.Second),

		FCMCredentialsPath: os.Getenv("FCM_CREDENTIALS_PATH"),
		FCMProjectID:       os.Getenv("FCM_PROJECT_ID"),

		OverlapTolerance:   getDuration("CHECKIN_OVERLAP_TOLERANCE", 0),
		WorkshopsListLimit: getInt("WORKSHOPS_LIST_LIMIT", 100),

		RateLimitPerMinute: int64(getInt("RATE_LIMIT_PER_MINUTE", 100)),
		CORSOrigins:        getListDefault("CORS_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Printf("⚠️ Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

// getPositiveDuration is getDuration for tickers, which reject zero.
func getPositiveDuration(key string, fallback time.Duration) time.Duration {
	d := getDuration(key, fallback)
	if d <= 0 {
		log.Printf("⚠️ Invalid %s=%s, using %s", key, d, fallback)
		return fallback
	}
	return d
}

func getList(key string) []string {
	return getListDefault(key, nil)
}

func getListDefault(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
