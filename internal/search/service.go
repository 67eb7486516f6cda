// internal/search/service.go
package search

import (
	"context"
	"time"

	"package-provider/internal/common/errors"
	"package-provider/internal/common/logger"
	"package-provider/internal/common/metrics"
	"package-provider/internal/common/observability"
	"package-provider/internal/delivery"
	"package-provider/internal/models"
)

// Service is what the triggers call: normalize an event, run it, record
// the outcome.
type Service struct {
	normalizer  *Normalizer
	coordinator *Coordinator
	obs         *observability.Observability
	logger      logger.Logger
}

func NewService(normalizer *Normalizer, coordinator *Coordinator, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		normalizer:  normalizer,
		coordinator: coordinator,
		obs:         obs,
		logger:      log,
	}
}

// HandleEvent runs the search carried by a raw event (SNS envelope or bare
// message). Input errors are returned before anything is pushed.
func (s *Service) HandleEvent(ctx context.Context, trigger string, raw []byte, sink delivery.Sink) (*models.RunSummary, error) {
	start := time.Now()

	params, err := s.normalizer.Normalize(raw)
	if err != nil {
		s.record(ctx, trigger, err, start, 0)
		s.logger.Warn("rejected search event", map[string]interface{}{
			"trigger": trigger,
			"error":   err,
		})
		return nil, err
	}
	return s.run(ctx, trigger, params, sink, start)
}

// HandleMessage runs an already decoded search message.
func (s *Service) HandleMessage(ctx context.Context, trigger string, msg models.SearchMessage, sink delivery.Sink) (*models.RunSummary, error) {
	start := time.Now()

	params, err := s.normalizer.NormalizeMessage(msg)
	if err != nil {
		s.record(ctx, trigger, err, start, 0)
		return nil, err
	}
	return s.run(ctx, trigger, params, sink, start)
}

func (s *Service) run(ctx context.Context, trigger string, params models.SearchParameters, sink delivery.Sink, start time.Time) (*models.RunSummary, error) {
	summary, err := s.coordinator.Run(ctx, params, sink)
	delivered := 0
	if summary != nil {
		delivered = summary.Delivered
	}
	s.record(ctx, trigger, err, start, delivered)
	return summary, err
}

func (s *Service) record(ctx context.Context, trigger string, err error, start time.Time, delivered int) {
	status := "success"
	switch {
	case err == nil:
	case errors.IsInputError(err):
		status = "invalid"
	case errors.IsDeliveryError(err):
		status = "delivery_failed"
	default:
		status = "error"
	}
	metrics.SearchRuns.WithLabelValues(trigger, status).Inc()
	s.obs.RecordRun(ctx, trigger, status, time.Since(start), delivered)
}
