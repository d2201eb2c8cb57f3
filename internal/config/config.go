package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
)

// Config holds application configuration, loaded once at process
// startup from the environment.
type Config struct {
	Port        int
	Database    DatabaseConfig
	Environment string
	CORSOrigins []string

	Scheduler SchedulerConfig
	Notifier  NotifierConfig
	Snapshot  SnapshotConfig

	AllowPrivateIPs        bool
	AllowMetadataEndpoints bool
}

// DatabaseConfig holds database configuration. Postgres only — the
// lease-based scheduler lock needs a real row-level lock that a
// single-writer embedded database can't give multiple instances.
type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// SchedulerConfig tunes the once-a-minute probe tick.
type SchedulerConfig struct {
	TickIntervalSeconds       int
	MaxConcurrentProbes       int
	MaxDueMonitorsPerTick     int
	RetentionCheckResultsDays int
	LeaseTTLSeconds           int
}

// NotifierConfig tunes webhook dispatch concurrency.
type NotifierConfig struct {
	MaxConcurrentNotifications int
}

// SnapshotConfig tunes the public snapshot's read-through cache.
type SnapshotConfig struct {
	FreshSeconds    int
	RefreshSeconds  int
	MaxStaleSeconds int
}

// Load loads configuration from environment variables and exits the
// process on a validation failure.
func Load() *Config {
	env := getEnv("ENVIRONMENT", "production")

	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Database: DatabaseConfig{
			DSN:          getEnv("DATABASE_DSN", buildPostgresDSN()),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		Environment: env,
		CORSOrigins: loadCORSOrigins(env),
		Scheduler: SchedulerConfig{
			TickIntervalSeconds:       getEnvInt("TICK_INTERVAL_SECONDS", 60),
			MaxConcurrentProbes:       getEnvInt("MAX_CONCURRENT_PROBES", 20),
			MaxDueMonitorsPerTick:     getEnvInt("MAX_DUE_MONITORS_PER_TICK", 500),
			RetentionCheckResultsDays: getEnvInt("RETENTION_CHECK_RESULTS_DAYS", 30),
			LeaseTTLSeconds:           getEnvInt("LEASE_TTL_SECONDS", 120),
		},
		Notifier: NotifierConfig{
			MaxConcurrentNotifications: getEnvInt("MAX_CONCURRENT_NOTIFICATIONS", 5),
		},
		Snapshot: SnapshotConfig{
			FreshSeconds:    getEnvInt("SNAPSHOT_FRESH_SECONDS", 60),
			RefreshSeconds:  getEnvInt("SNAPSHOT_STALE_SECONDS", 30),
			MaxStaleSeconds: getEnvInt("SNAPSHOT_MAX_STALE_SECONDS", 600),
		},
		AllowPrivateIPs:        getEnvBool("ALLOW_PRIVATE_IPS", false),
		AllowMetadataEndpoints: getEnvBool("ALLOW_METADATA_ENDPOINTS", false),
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration validation failed: %v", err)
	}

	return cfg
}

func buildPostgresDSN() string {
	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "uptimer")
	password := getEnv("POSTGRES_PASSWORD", "secret")
	dbName := getEnv("POSTGRES_DB", "uptimer")
	sslMode := getEnv("POSTGRES_SSLMODE", "disable")

	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(user, password),
		Host:   fmt.Sprintf("%s:%s", host, port),
		Path:   dbName,
	}

	query := u.Query()
	query.Set("sslmode", sslMode)
	u.RawQuery = query.Encode()

	return u.String()
}

// Validate fails fast on misconfiguration that would otherwise surface
// as a confusing runtime error deep in the scheduler or notifier.
func (c *Config) Validate() error {
	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("at least one CORS origin must be configured")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN (or POSTGRES_* variables) must resolve to a non-empty DSN")
	}
	if c.Scheduler.TickIntervalSeconds <= 0 {
		return fmt.Errorf("TICK_INTERVAL_SECONDS must be positive")
	}
	if c.Scheduler.MaxConcurrentProbes <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_PROBES must be positive")
	}
	if c.Scheduler.LeaseTTLSeconds < 2*c.Scheduler.TickIntervalSeconds {
		return fmt.Errorf("LEASE_TTL_SECONDS must be at least 2x TICK_INTERVAL_SECONDS so a slow tick can't expire its own lease")
	}
	if c.Notifier.MaxConcurrentNotifications <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_NOTIFICATIONS must be positive")
	}
	if c.Snapshot.RefreshSeconds >= c.Snapshot.FreshSeconds {
		return fmt.Errorf("SNAPSHOT_STALE_SECONDS must be less than SNAPSHOT_FRESH_SECONDS")
	}
	if c.Snapshot.MaxStaleSeconds <= c.Snapshot.FreshSeconds {
		return fmt.Errorf("SNAPSHOT_MAX_STALE_SECONDS must be greater than SNAPSHOT_FRESH_SECONDS")
	}
	return nil
}

func loadCORSOrigins(env string) []string {
	if appURL := getAppURL(); appURL != "" {
		return []string{appURL}
	}
	if env == "development" {
		return []string{"http://localhost:3000", "http://localhost:8080"}
	}
	log.Println("WARNING: APP_URL not set. Using default localhost origins.")
	log.Println("WARNING: Set APP_URL environment variable for production deployments.")
	return []string{"http://localhost:3000", "http://localhost:8080"}
}

func getAppURL() string {
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		return ""
	}
	for len(appURL) > 0 && appURL[len(appURL)-1] == '/' {
		appURL = appURL[:len(appURL)-1]
	}
	return appURL
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
