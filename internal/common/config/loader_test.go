package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// ==========================
// Loading
// ==========================

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
search:
  api_base_url: https://api.example.test
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "package-provider", cfg.App.Name)
	assert.Equal(t, "dptrips", cfg.Search.SearchResource)
	assert.Equal(t, "hotels", cfg.Search.MetadataResource)
	assert.Equal(t, 10, cfg.Search.MaxConcurrency)
	assert.Equal(t, "lambda-searcher", cfg.Search.ProviderID)
	assert.Equal(t, SinkStdout, cfg.Output.Sink)
	assert.Equal(t, 5000, cfg.Output.DeliveryTimeout)
	assert.Equal(t, "search:results", cfg.Output.Redis.KeyPrefix)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "package-provider", cfg.Observability.ServiceName)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Search.RequireHotelKeys)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
search:
  api_base_url: https://api.example.test
  stage: v1
output:
  sink: stdout
`)

	t.Setenv("SEARCH_STAGE", "prod")
	t.Setenv("OUTPUT_SINK", "redis")
	t.Setenv("DATABASE_REDIS_ADDRESS", "localhost:6379")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Search.Stage)
	assert.Equal(t, SinkRedis, cfg.Output.Sink)
	assert.Equal(t, "localhost:6379", cfg.Database.Redis.Address)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("TEST_TOPIC_ARN", "arn:aws:sns:eu-west-1:123456789012:results")
	path := writeConfig(t, `
search:
  api_base_url: https://api.example.test
  stage: $LATEST
aws:
  region: eu-west-1
output:
  sink: sns
  sns:
    topic_arn: ${TEST_TOPIC_ARN}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "arn:aws:sns:eu-west-1:123456789012:results", cfg.Output.SNS.TopicARN)
	assert.Equal(t, "$LATEST", cfg.Search.Stage)
}

func TestLoadFromFile_GatewayEndpointFallback(t *testing.T) {
	t.Setenv("API_GATEWAY_ENDPOINT", "gateway.example.test")
	path := writeConfig(t, "logging:\n  level: debug\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example.test", cfg.Search.APIBaseURL)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// ==========================
// Validation
// ==========================

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Search.APIBaseURL = "https://api.example.test"
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid stdout", mutate: func(*Config) {}},
		{
			name:    "missing api base url",
			mutate:  func(c *Config) { c.Search.APIBaseURL = "" },
			wantErr: "search.api_base_url is required",
		},
		{
			name:    "negative concurrency",
			mutate:  func(c *Config) { c.Search.MaxConcurrency = -1 },
			wantErr: "search.max_concurrency",
		},
		{
			name:    "sns without topic",
			mutate:  func(c *Config) { c.Output.Sink = SinkSNS; c.AWS.Region = "eu-west-1" },
			wantErr: "output.sns.topic_arn",
		},
		{
			name: "sns without region",
			mutate: func(c *Config) {
				c.Output.Sink = SinkSNS
				c.Output.SNS.TopicARN = "arn:aws:sns:eu-west-1:1:t"
			},
			wantErr: "aws.region",
		},
		{
			name:    "redis without address",
			mutate:  func(c *Config) { c.Output.Sink = SinkRedis },
			wantErr: "database.redis.address",
		},
		{
			name:    "unknown sink",
			mutate:  func(c *Config) { c.Output.Sink = "kafka" },
			wantErr: "output.sink must be one of",
		},
		{
			name:    "camunda without broker",
			mutate:  func(c *Config) { c.Camunda.Enabled = true },
			wantErr: "camunda.broker_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// ==========================
// Helpers
// ==========================

func TestWorkerConfigHelpers(t *testing.T) {
	cfg := &Config{
		Search: SearchConfig{APIBaseURL: "https://api.example.test"},
		Workers: map[string]WorkerConfig{
			"package-search": {Enabled: false},
		},
	}
	applyDefaults(cfg)

	wc := GetWorkerConfig(cfg, "package-search")
	assert.False(t, wc.Enabled)
	assert.Equal(t, 5, wc.MaxJobsActive)
	assert.Equal(t, 30000, wc.Timeout)
	assert.Equal(t, 3, wc.MaxRetries)
	assert.False(t, IsWorkerEnabled(cfg, "package-search"))

	fallback := GetWorkerConfig(cfg, "unknown")
	assert.True(t, fallback.Enabled)
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))

	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
