package internal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// devJWTSecret signs tokens in development when JWT_SECRET is unset.
const devJWTSecret = "sdview-development-secret-do-not-use"

// minJWTSecretLen applies outside development.
const minJWTSecretLen = 32

// Config is read once at startup from the environment and an optional .env
// file.
type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	JWTSecret string
	JWTTTL    time.Duration

	// StorageProvider selects where async reports are kept: "local" or "r2".
	StorageProvider  string
	LocalStoragePath string
	LocalStorageURL  string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2Endpoint        string // S3-compatible endpoint override, e.g. MinIO
	R2PublicURL       string

	WorkerEnabled      bool
	WorkerConcurrency  int
	WorkerPollInterval time.Duration
	WorkerJobTimeout   time.Duration

	// ReportHeaderImageURL is fetched into the header band of every report.
	ReportHeaderImageURL string
	// ReportTimezone decides which calendar day "today" is.
	ReportTimezone string
	ReportLocation *time.Location

	// Basic auth for /metrics. Empty leaves the endpoint open.
	MetricsUsername string
	MetricsPassword string
}

// IsDevelopment reports whether ENV is "development".
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// NewConfig loads and validates the configuration. Every problem found is
// reported, not just the first.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnvInt("PORT", 8080),
		LogLevel:    getEnv("LOG_LEVEL", "debug"),
		DatabaseUrl: os.Getenv("DATABASE_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./storage"),
		LocalStorageURL:  getEnv("LOCAL_STORAGE_URL", "http://localhost:8080/files"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2Endpoint:        os.Getenv("R2_ENDPOINT"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		WorkerEnabled:      getEnvBool("WORKER_ENABLED", true),
		WorkerConcurrency:  getEnvInt("WORKER_CONCURRENCY", 2),
		WorkerPollInterval: getEnvDuration("WORKER_POLL_INTERVAL", 5*time.Second),
		WorkerJobTimeout:   getEnvDuration("WORKER_JOB_TIMEOUT", 2*time.Minute),

		ReportHeaderImageURL: os.Getenv("REPORT_HEADER_IMAGE_URL"),
		ReportTimezone:       getEnv("REPORT_TIMEZONE", "UTC"),

		MetricsUsername: os.Getenv("METRICS_USERNAME"),
		MetricsPassword: os.Getenv("METRICS_PASSWORD"),
	}

	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = devJWTSecret
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// validate checks cfg and resolves ReportLocation.
func (c *Config) validate() error {
	var errs []error
	if c.DatabaseUrl == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}

	switch {
	case c.JWTSecret == "":
		errs = append(errs, fmt.Errorf("JWT_SECRET is required when ENV is %q", c.Env))
	case !c.IsDevelopment() && len(c.JWTSecret) < minJWTSecretLen:
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLen))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %v", c.JWTTTL))
	}

	switch c.StorageProvider {
	case "local":
	case "r2":
		if c.R2AccountID == "" && c.R2Endpoint == "" {
			errs = append(errs, errors.New("R2_ACCOUNT_ID or R2_ENDPOINT is required for r2 storage"))
		}
		for _, req := range []struct{ key, val string }{
			{"R2_ACCESS_KEY_ID", c.R2AccessKeyID},
			{"R2_SECRET_ACCESS_KEY", c.R2SecretAccessKey},
			{"R2_BUCKET_NAME", c.R2BucketName},
		} {
			if req.val == "" {
				errs = append(errs, fmt.Errorf("%s is required for r2 storage", req.key))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_PROVIDER must be \"local\" or \"r2\", got %q", c.StorageProvider))
	}

	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("REPORT_TIMEZONE %q: %w", c.ReportTimezone, err))
	}
	c.ReportLocation = loc

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseEnv returns fallback when key is unset or fails to parse.
func parseEnv[T any](key string, fallback T, parse func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := parse(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	return parseEnv(key, fallback, strconv.Atoi)
}

func getEnvBool(key string, fallback bool) bool {
	return parseEnv(key, fallback, strconv.ParseBool)
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	return parseEnv(key, fallback, time.ParseDuration)
}
