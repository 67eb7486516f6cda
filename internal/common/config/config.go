// internal/common/config/config.go
package config

type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Server        ServerConfig            `mapstructure:"server"`
	Search        SearchConfig            `mapstructure:"search"`
	Output        OutputConfig            `mapstructure:"output"`
	Database      DatabaseConfig          `mapstructure:"database"`
	AWS           AWSConfig               `mapstructure:"aws"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	InvokeTimeout   int    `mapstructure:"invoke_timeout"`   // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// SearchConfig drives the upstream package search and hotel metadata calls.
type SearchConfig struct {
	APIBaseURL       string `mapstructure:"api_base_url"`
	Stage            string `mapstructure:"stage"`
	SearchResource   string `mapstructure:"search_resource"`
	MetadataResource string `mapstructure:"metadata_resource"`
	MaxConcurrency   int    `mapstructure:"max_concurrency"`
	RequestTimeout   int    `mapstructure:"request_timeout"` // milliseconds
	RequireHotelKeys bool   `mapstructure:"require_hotel_keys"`
	ImageMapPath     string `mapstructure:"image_map_path"`
	ProviderID       string `mapstructure:"provider_id"`
}

type OutputConfig struct {
	Sink            string          `mapstructure:"sink"`             // sns | redis | stdout
	DeliveryTimeout int             `mapstructure:"delivery_timeout"` // milliseconds
	SNS             SNSOutputConfig `mapstructure:"sns"`
	Redis           RedisOutput     `mapstructure:"redis"`
}

type SNSOutputConfig struct {
	TopicARN string `mapstructure:"topic_arn"`
}

type RedisOutput struct {
	KeyPrefix     string `mapstructure:"key_prefix"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
	TTL           int    `mapstructure:"ttl"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address      string `mapstructure:"address"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

const (
	SinkSNS    = "sns"
	SinkRedis  = "redis"
	SinkStdout = "stdout"
)
