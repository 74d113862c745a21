package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "noaa-nexrad-level2", cfg.Level2Bucket)
	assert.Equal(t, "unidata-nexrad-level2-chunks", cfg.Level2ChunkBucket)
	assert.Equal(t, "gcp-public-data-nexrad-l3-realtime", cfg.Level3Bucket)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Empty(t, cfg.GCSCredentialsFile)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 30, cfg.ListingLimit)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("LEVEL2_BUCKET", "my-level2")
	t.Setenv("LEVEL2_CHUNK_BUCKET", "my-chunks")
	t.Setenv("LEVEL3_BUCKET", "my-level3")
	t.Setenv("AWS_REGION", "us-west-2")
	t.Setenv("GCS_CREDENTIALS_FILE", "/etc/gcs.json")
	t.Setenv("FETCH_TIMEOUT", "2m")
	t.Setenv("LISTING_LIMIT", "100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "my-level2", cfg.Level2Bucket)
	assert.Equal(t, "my-chunks", cfg.Level2ChunkBucket)
	assert.Equal(t, "my-level3", cfg.Level3Bucket)
	assert.Equal(t, "us-west-2", cfg.AWSRegion)
	assert.Equal(t, "/etc/gcs.json", cfg.GCSCredentialsFile)
	assert.Equal(t, 2*time.Minute, cfg.FetchTimeout)
	assert.Equal(t, 100, cfg.ListingLimit)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"ShutdownTimeout", "SHUTDOWN_TIMEOUT", "soon"},
		{"NegativeFetchTimeout", "FETCH_TIMEOUT", "-1s"},
		{"ListingLimit", "LISTING_LIMIT", "zero"},
		{"ZeroListingLimit", "LISTING_LIMIT", "0"},
		{"EmptyLevel2Bucket", "LEVEL2_BUCKET", ""},
		{"EmptyLevel3Bucket", "LEVEL3_BUCKET", ""},
		{"LogFormat", "LOG_FORMAT", "xml"},
		{"LogLevel", "LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestConfig_Logger(t *testing.T) {
	cfg := &Config{LogLevel: "trace", LogFormat: "json"}
	log := cfg.Logger()
	assert.Equal(t, logrus.TraceLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = (&Config{LogLevel: "warn", LogFormat: "text"}).Logger()
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}
