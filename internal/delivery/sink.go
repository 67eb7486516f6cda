// internal/delivery/sink.go
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"

	"package-provider/internal/common/config"
	"package-provider/internal/common/logger"
	"package-provider/internal/models"
)

// Sink pushes one envelope at a time to the client-facing channel. Any
// returned error is fatal for the run.
type Sink interface {
	Push(ctx context.Context, envelope models.OutputEnvelope) error
	Name() string
}

// SinkFunc adapts a function to Sink, mainly for tests.
type SinkFunc func(ctx context.Context, envelope models.OutputEnvelope) error

func (f SinkFunc) Push(ctx context.Context, envelope models.OutputEnvelope) error {
	return f(ctx, envelope)
}

func (f SinkFunc) Name() string { return "func" }

func encode(envelope models.OutputEnvelope) ([]byte, error) {
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return data, nil
}

// Backends holds the clients a sink may be built from. Only the one the
// configured sink needs must be set.
type Backends struct {
	SNS    SNSService
	Redis  redis.UniversalClient
	Writer io.Writer
}

// NewFromConfig builds the sink named by cfg.Sink.
func NewFromConfig(cfg config.OutputConfig, backends Backends, log logger.Logger) (Sink, error) {
	switch cfg.Sink {
	case config.SinkSNS:
		return NewSNSSink(backends.SNS, cfg.SNS.TopicARN, log)
	case config.SinkRedis:
		if backends.Redis == nil {
			return nil, fmt.Errorf("redis sink selected but no redis client configured")
		}
		return NewRedisSink(backends.Redis, cfg.Redis, log), nil
	case config.SinkStdout, "":
		w := backends.Writer
		if w == nil {
			w = os.Stdout
		}
		return NewWriterSink(w), nil
	default:
		return nil, fmt.Errorf("unknown output sink %q", cfg.Sink)
	}
}
