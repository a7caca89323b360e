package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used
// in the application: strings for identifiers and secrets, ints for
// durations and costs, and a resolved *time.Location for the checkpoint
// time zone.
type Config struct {
	Env          string         // application environment (e.g. "dev", "prod")
	Port         string         // HTTP port to listen on
	DBUser       string         // database username
	DBPass       string         // database password (optional)
	DBHost       string         // database host address
	DBPort       string         // database port number
	DBName       string         // database name
	JWTSecret    string         // secret used to sign JWTs
	AccessTTLMin int            // access token time-to-live in minutes
	BcryptCost   int            // bcrypt cost for password hashing
	Checkpoint   *time.Location // local zone entry timestamps are kept in
}

// Load reads configuration values from environment variables and returns
// a Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. CHECKPOINT_TZ is
// optional and defaults to Asia/Kolkata, the zone of the original
// deployment.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"),
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),
		Checkpoint:   mustZone("CHECKPOINT_TZ", "Asia/Kolkata"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// mustZone resolves an IANA zone name from the environment, falling back
// to def when unset and exiting when the name does not resolve.
func mustZone(key, def string) *time.Location {
	name := os.Getenv(key)
	if name == "" {
		name = def
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid time zone for %s: %q", key, name)
	}
	return loc
}
