package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every process-wide setting. It is loaded once in main and
// handed to constructors; nothing reads the environment after startup.
type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBNameTest string

	RedisHost string
	RedisPort int

	ServerPort     int
	Environment    string
	AllowedOrigins string
	UploadDir      string

	JWTSecret string
	TokenTTL  time.Duration
}

// minSecretLen is the floor for the JWT signing secret. A shorter secret
// makes HS256 tokens brute-forceable, so startup refuses it outright.
const minSecretLen = 32

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GO_ENV") != "test" {
			fmt.Fprintln(os.Stderr, "No .env file found, using environment values")
		}
	}

	cfg := Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnvAsInt("DB_PORT", 5432),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         getEnv("DB_NAME", "kanban"),
		DBNameTest:     getEnv("DB_NAME_TEST", "kanban_test"),
		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnvAsInt("REDIS_PORT", 6379),
		ServerPort:     getEnvAsInt("SERVER_PORT", 8080),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3001"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing environment variable: JWT_SECRET")
	}
	if len(cfg.JWTSecret) < minSecretLen {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least %d characters, got %d", minSecretLen, len(cfg.JWTSecret))
	}

	return cfg, nil
}

func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// PostgresDSN renders the lib/pq connection string for the given database.
func (c Config) PostgresDSN(dbName string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, dbName)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
