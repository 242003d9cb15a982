package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	AuthModeJWT      = "jwt"
	AuthModeFirebase = "firebase"
)

type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	StoreDriver             string
	PostgresConnStr         string
	DBAutoMigrate           bool
	MongoURI                string
	MongoDatabase           string
	AuthMode                string
	JWTSecret               string
	FirebaseCredentialsPath string
	FirebaseCheckRevoked    bool
	MaxPageSize             int
}

// Load reads .env when present, then the process environment
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		StoreDriver:             getEnv("STORE_DRIVER", StoreDriverPostgres),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		DBAutoMigrate:           getEnvBool("DB_AUTO_MIGRATE", true),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "socialmedia"),
		AuthMode:                getEnv("AUTH_MODE", AuthModeJWT),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		FirebaseCheckRevoked:    getEnvBool("FIREBASE_CHECK_REVOKED", false),
		MaxPageSize:             getEnvInt("MAX_PAGE_SIZE", 100),
	}
}

// Validate reports settings that would stop the server from starting
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.PostgresConnStr == "" {
			errs = append(errs, errors.New("POSTGRES_CONN_STR environment variable not set"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.AuthMode {
	case AuthModeJWT:
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET environment variable not set"))
		}
	case AuthModeFirebase:
		if c.FirebaseCredentialsPath == "" {
			errs = append(errs, errors.New("FIREBASE_CREDENTIALS_PATH environment variable not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode))
	}

	if c.MaxPageSize < 1 {
		errs = append(errs, fmt.Errorf("MAX_PAGE_SIZE must be positive, got %d", c.MaxPageSize))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns -1 for a value that is set but not a number so that
// Validate rejects it instead of silently using the default.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
