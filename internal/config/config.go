// Package config reads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config holds every setting the server needs at startup.
type Config struct {
	Port string

	DatabaseDriver string
	DatabasePath   string
	MongoURI       string
	MongoDatabase  string
	StoreTimeout   time.Duration

	JWTSecret  string
	BCryptCost int

	GitHubAPIURL   string
	GitHubToken    string
	GitHubTimeout  time.Duration
	MemcacheURL    string
	GitHubCacheTTL time.Duration
}

// FromEnvironment loads a .env file from the working directory, if one
// exists, and then reads the process environment. Variables already set
// in the environment win over the file.
func FromEnvironment() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Load(os.Getenv)
}

// Load builds a Config from getenv and validates it.
func Load(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:           env("PORT", "5000"),
		DatabaseDriver: env("DATABASE_DRIVER", DriverSQLite),
		DatabasePath:   env("DATABASE_PATH", "devconnector.db"),
		MongoURI:       getenv("MONGODB_URI"),
		MongoDatabase:  env("MONGODB_DATABASE", "devconnector"),
		JWTSecret:      getenv("JWT_SECRET"),
		GitHubAPIURL:   env("GITHUB_API_URL", "https://api.github.com"),
		GitHubToken:    getenv("GITHUB_TOKEN"),
		MemcacheURL:    getenv("MEMCACHE_URL"),
	}

	var err error
	if cfg.BCryptCost, err = intVar(getenv, "BCRYPT_COST", 10); err != nil {
		return Config{}, err
	}
	if cfg.StoreTimeout, err = durationVar(getenv, "STORE_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.GitHubTimeout, err = durationVar(getenv, "GITHUB_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.GitHubCacheTTL, err = durationVar(getenv, "GITHUB_CACHE_TTL", 10*time.Minute); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BCryptCost)
	}
	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI is required when DATABASE_DRIVER is mongo")
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	return nil
}

func intVar(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationVar(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
