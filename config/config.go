package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Tracking backends understood by Load.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds all environment-driven settings of the cleaning step.
type Config struct {
	Project         string
	ArtifactRoot    string
	TrackingBackend string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	SQLitePath string

	CleanOutputPath string
	LogLevel        string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Project:         getEnv("PROJECT", "nyc_airbnb"),
		ArtifactRoot:    getEnv("ARTIFACT_ROOT", "./wandb-store"),
		TrackingBackend: getEnv("TRACKING_BACKEND", BackendFile),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "tracking"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "tracking123"),
		PostgresDB:       getEnv("POSTGRES_DB", "tracking_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		SQLitePath: getEnv("SQLITE_PATH", "./wandb-store/tracking.db"),

		CleanOutputPath: getEnv("CLEAN_OUTPUT_PATH", "clean_sample.csv"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
