// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// JWTSecret signs bearer tokens. Required.
	JWTSecret string

	// JWTTTL is how long an issued token stays valid. Defaults to one week.
	JWTTTL time.Duration

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// RunMigrations applies pending goose migrations on startup.
	RunMigrations bool

	// BookingCapacityCheck rejects bookings that exceed the seats left on a leg.
	BookingCapacityCheck bool

	// DeleteDriverProfileOnRoleRemoval and DeletePassengerProfileOnRoleRemoval
	// decide whether dropping a role hard-deletes its profile.
	DeleteDriverProfileOnRoleRemoval    bool
	DeletePassengerProfileOnRoleRemoval bool

	// Push backends. FCM wins when credentials are set, then AMQP; with
	// neither, pushes are only logged.
	FirebaseCredentialsFile   string
	FirebaseCredentialsBase64 string
	AMQPURL                   string
	AMQPExchange              string
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory, when present, seeds variables that
// are not already set. Returns an error listing every required variable
// that is missing and every value that does not parse.
func Load() (Config, error) {
	_ = godotenv.Load()

	var problems []string
	cfg := Config{
		Port:                      getEnv("PORT", "8080"),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		CORSOrigins:               splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		FirebaseCredentialsFile:   os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		FirebaseCredentialsBase64: os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		AMQPURL:                   os.Getenv("AMQP_URL"),
		AMQPExchange:              getEnv("AMQP_EXCHANGE", "ugur.notifications"),
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "168h")); err != nil || cfg.JWTTTL <= 0 {
		problems = append(problems, "JWT_TTL must be a positive duration")
	}
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil || cfg.MaxBodyBytes <= 0 {
		problems = append(problems, "MAX_BODY_BYTES must be a positive integer")
	}
	cfg.RunMigrations = getBool("RUN_MIGRATIONS", true, &problems)
	cfg.BookingCapacityCheck = getBool("BOOKING_CAPACITY_CHECK", true, &problems)
	cfg.DeleteDriverProfileOnRoleRemoval = getBool("DELETE_DRIVER_PROFILE_ON_ROLE_REMOVAL", true, &problems)
	cfg.DeletePassengerProfileOnRoleRemoval = getBool("DELETE_PASSENGER_PROFILE_ON_ROLE_REMOVAL", false, &problems)

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getBool parses a boolean variable, recording a problem when it is malformed.
func getBool(key string, fallback bool, problems *[]string) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*problems = append(*problems, key+" must be a boolean")
		return fallback
	}
	return b
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
