// Package config loads service settings from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Object stores the radar data is fetched from.
	Level2Bucket       string
	Level2ChunkBucket  string
	Level3Bucket       string
	AWSRegion          string
	GCSCredentialsFile string

	FetchTimeout time.Duration
	ListingLimit int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	listingLimit := 30
	if s := os.Getenv("LISTING_LIMIT"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, errors.New("invalid LISTING_LIMIT")
		}
		listingLimit = n
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8081"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout: shutdownTimeout,

		Level2Bucket:       envOrDefault("LEVEL2_BUCKET", "noaa-nexrad-level2"),
		Level2ChunkBucket:  envOrDefault("LEVEL2_CHUNK_BUCKET", "unidata-nexrad-level2-chunks"),
		Level3Bucket:       envOrDefault("LEVEL3_BUCKET", "gcp-public-data-nexrad-l3-realtime"),
		AWSRegion:          envOrDefault("AWS_REGION", "us-east-1"),
		GCSCredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),

		FetchTimeout: fetchTimeout,
		ListingLimit: listingLimit,
	}

	if cfg.Level2Bucket == "" {
		return nil, errors.New("LEVEL2_BUCKET is required")
	}
	if cfg.Level3Bucket == "" {
		return nil, errors.New("LEVEL3_BUCKET is required")
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.New("LOG_FORMAT must be text or json")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, errors.New("invalid LOG_LEVEL")
	}

	return cfg, nil
}

// Logger returns a logrus logger configured with the level and format.
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

func envOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}
