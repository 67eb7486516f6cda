// internal/delivery/redis.go
package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"package-provider/internal/common/config"
	"package-provider/internal/common/logger"
	"package-provider/internal/models"
)

const (
	defaultKeyPrefix     = "search:results"
	defaultChannelPrefix = "search:client"
	defaultResultTTL     = 15 * time.Minute
)

// RedisSink appends each envelope to a per-search list and announces it on a
// per-connection channel. The list expires; it is a delivery buffer for
// clients that reconnect, not a store of record.
type RedisSink struct {
	client        redis.UniversalClient
	keyPrefix     string
	channelPrefix string
	ttl           time.Duration
	logger        logger.Logger
}

func NewRedisSink(client redis.UniversalClient, cfg config.RedisOutput, log logger.Logger) *RedisSink {
	s := &RedisSink{
		client:        client,
		keyPrefix:     cfg.KeyPrefix,
		channelPrefix: cfg.ChannelPrefix,
		ttl:           config.GetDuration(cfg.TTL),
		logger:        log,
	}
	if s.keyPrefix == "" {
		s.keyPrefix = defaultKeyPrefix
	}
	if s.channelPrefix == "" {
		s.channelPrefix = defaultChannelPrefix
	}
	if s.ttl <= 0 {
		s.ttl = defaultResultTTL
	}
	return s
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) ListKey(searchID string) string {
	return s.keyPrefix + ":" + searchID
}

func (s *RedisSink) Channel(connectionID string) string {
	return s.channelPrefix + ":" + connectionID
}

func (s *RedisSink) Push(ctx context.Context, envelope models.OutputEnvelope) error {
	body, err := encode(envelope)
	if err != nil {
		return err
	}

	key := s.ListKey(envelope.SearchID)
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, body)
	pipe.Expire(ctx, key, s.ttl)
	pipe.Publish(ctx, s.Channel(envelope.ConnectionID), body)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis push %s: %w", key, err)
	}

	s.logger.Debug("envelope pushed", map[string]interface{}{
		"key":            key,
		"searchComplete": envelope.SearchComplete,
	})
	return nil
}
