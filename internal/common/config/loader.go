// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml
// on top and lets environment variables override any key (search.stage -> SEARCH_STAGE).
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finalize(v)
}

// LoadFromFile reads a single YAML file, still honouring env overrides.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finalize(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	return v
}

// AutomaticEnv only resolves keys viper already knows about, so keys that are
// commonly absent from the YAML are bound explicitly.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"search.api_base_url",
		"search.stage",
		"search.image_map_path",
		"output.sink",
		"output.sns.topic_arn",
		"database.redis.address",
		"database.redis.password",
		"aws.region",
		"camunda.enabled",
		"camunda.broker_address",
		"server.address",
		"observability.jaeger_endpoint",
		"logging.level",
		"logging.format",
	} {
		_ = v.BindEnv(key)
	}
}

func finalize(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1 && strVal != "$LATEST") {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills values that deployments conventionally provide
// under their own names rather than the viper key path.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Search.APIBaseURL == "" {
		if val := os.Getenv("API_GATEWAY_ENDPOINT"); val != "" {
			if !strings.Contains(val, "://") {
				val = "https://" + val
			}
			cfg.Search.APIBaseURL = val
		}
	}

	if cfg.Search.Stage == "" {
		if val := os.Getenv("DEPLOYMENT_VERSION"); val != "" {
			cfg.Search.Stage = val
		}
	}

	if cfg.AWS.Region == "" {
		if val := os.Getenv("AWS_REGION"); val != "" {
			cfg.AWS.Region = val
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "package-provider"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.InvokeTimeout == 0 {
		cfg.Server.InvokeTimeout = 30000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	if cfg.Search.SearchResource == "" {
		cfg.Search.SearchResource = "dptrips"
	}
	if cfg.Search.MetadataResource == "" {
		cfg.Search.MetadataResource = "hotels"
	}
	if cfg.Search.MaxConcurrency == 0 {
		cfg.Search.MaxConcurrency = 10
	}
	if cfg.Search.RequestTimeout == 0 {
		cfg.Search.RequestTimeout = 10000
	}
	if cfg.Search.ProviderID == "" {
		cfg.Search.ProviderID = "lambda-searcher"
	}

	if cfg.Output.Sink == "" {
		cfg.Output.Sink = SinkStdout
	}
	if cfg.Output.DeliveryTimeout == 0 {
		cfg.Output.DeliveryTimeout = 5000
	}
	if cfg.Output.Redis.KeyPrefix == "" {
		cfg.Output.Redis.KeyPrefix = "search:results"
	}
	if cfg.Output.Redis.ChannelPrefix == "" {
		cfg.Output.Redis.ChannelPrefix = "search:client"
	}
	if cfg.Output.Redis.TTL == 0 {
		cfg.Output.Redis.TTL = 15 * 60 * 1000
	}

	if cfg.Database.Redis.PoolSize == 0 {
		cfg.Database.Redis.PoolSize = 10
	}
	if cfg.Database.Redis.MinIdleConns == 0 {
		cfg.Database.Redis.MinIdleConns = 5
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Search.APIBaseURL == "" {
		return fmt.Errorf("search.api_base_url is required")
	}
	if cfg.Search.MaxConcurrency < 1 {
		return fmt.Errorf("search.max_concurrency must be positive, got %d", cfg.Search.MaxConcurrency)
	}

	switch cfg.Output.Sink {
	case SinkSNS:
		if cfg.Output.SNS.TopicARN == "" {
			return fmt.Errorf("output.sns.topic_arn is required for the sns sink")
		}
		if cfg.AWS.Region == "" {
			return fmt.Errorf("aws.region is required for the sns sink")
		}
	case SinkRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis sink")
		}
	case SinkStdout:
	default:
		return fmt.Errorf("output.sink must be one of sns, redis, stdout; got %q", cfg.Output.Sink)
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	return nil
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
