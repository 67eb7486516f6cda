// internal/search/coordinator.go
package search

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"package-provider/internal/common/errors"
	"package-provider/internal/common/logger"
	"package-provider/internal/common/metrics"
	"package-provider/internal/common/observability"
	"package-provider/internal/delivery"
	"package-provider/internal/models"
)

const (
	DefaultMaxConcurrency  = 10
	DefaultDeliveryTimeout = 5 * time.Second
)

// Searcher returns every offer upstream has for one hotel.
type Searcher interface {
	Search(ctx context.Context, params models.SearchParameters, hotelKey string) ([]models.RawOffer, error)
}

// MetadataResolver returns descriptive data for one hotel.
type MetadataResolver interface {
	Resolve(ctx context.Context, params models.SearchParameters, hotelKey string) (*models.HotelMetadata, error)
}

type branchOutcome string

const (
	outcomeEmitted  branchOutcome = "emitted"
	outcomeNoOffers branchOutcome = "no_offers"
	outcomeNoResult branchOutcome = "no_result"
	outcomeSkipped  branchOutcome = "skipped"
)

type CoordinatorOptions struct {
	MaxConcurrency  int
	DeliveryTimeout time.Duration
	Observability   *observability.Observability
}

// Coordinator fans a search out over its hotel keys and streams each result
// to a sink, finishing with a single completion envelope.
type Coordinator struct {
	searcher        Searcher
	resolver        MetadataResolver
	mapper          *Mapper
	maxConcurrency  int64
	deliveryTimeout time.Duration
	obs             *observability.Observability
	logger          logger.Logger
}

func NewCoordinator(searcher Searcher, resolver MetadataResolver, mapper *Mapper, log logger.Logger, opts CoordinatorOptions) *Coordinator {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = DefaultDeliveryTimeout
	}
	if mapper == nil {
		mapper = NewMapper(nil, "")
	}
	return &Coordinator{
		searcher:        searcher,
		resolver:        resolver,
		mapper:          mapper,
		maxConcurrency:  int64(opts.MaxConcurrency),
		deliveryTimeout: opts.DeliveryTimeout,
		obs:             opts.Observability,
		logger:          log,
	}
}

type runTally struct {
	mu       sync.Mutex
	outcomes map[branchOutcome]int
}

func (t *runTally) add(o branchOutcome) {
	metrics.SearchBranches.WithLabelValues(string(o)).Inc()
	t.mu.Lock()
	t.outcomes[o]++
	t.mu.Unlock()
}

// Run processes every hotel key in params. It returns a DeliveryError if the
// sink rejects a push; in that case no completion envelope is sent. Upstream
// and mapping failures only empty their own branch. Cancelling ctx stops
// dispatching new work but the completion envelope still goes out.
func (c *Coordinator) Run(ctx context.Context, params models.SearchParameters, sink delivery.Sink) (*models.RunSummary, error) {
	start := time.Now()
	summary := &models.RunSummary{
		RunID:     uuid.NewString(),
		SearchID:  params.SearchID,
		Requested: len(params.HotelKeys),
	}
	log := c.logger.WithFields(map[string]interface{}{
		"runId":    summary.RunID,
		"searchId": params.SearchID,
	})

	ctx, span := c.obs.StartSpan(ctx, "search.run",
		attribute.String("search.id", params.SearchID),
		attribute.Int("search.hotels", len(params.HotelKeys)),
	)
	defer span.End()

	log.Info("search run started", map[string]interface{}{
		"hotels": len(params.HotelKeys),
		"sink":   sink.Name(),
	})

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	// Buffered for every possible envelope so branches never block on the sink.
	out := make(chan models.OutputEnvelope, len(params.HotelKeys)+1)
	drained := make(chan struct{})
	var (
		deliveryErr error
		delivered   int
	)
	go func() {
		defer close(drained)
		for envelope := range out {
			if deliveryErr != nil {
				continue
			}
			if err := c.push(ctx, sink, envelope); err != nil {
				deliveryErr = errors.NewDeliveryError(sink.Name(), err)
				cancelRun()
				continue
			}
			if !envelope.SearchComplete {
				delivered++
			}
		}
	}()

	tally := &runTally{outcomes: make(map[branchOutcome]int)}
	sem := semaphore.NewWeighted(c.maxConcurrency)
	var g errgroup.Group
	for _, key := range params.HotelKeys {
		if runCtx.Err() != nil {
			tally.add(outcomeSkipped)
			continue
		}
		if err := sem.Acquire(runCtx, 1); err != nil {
			tally.add(outcomeSkipped)
			continue
		}
		key := key
		g.Go(func() error {
			defer sem.Release(1)
			tally.add(c.branch(runCtx, params.ForHotel(key), key, out))
			return nil
		})
	}
	_ = g.Wait()

	// Dropped by the drain if a push already failed.
	out <- models.NewCompletionEnvelope(params)
	close(out)
	<-drained

	summary.Delivered = delivered
	summary.NoOffers = tally.outcomes[outcomeNoOffers]
	summary.NoResult = tally.outcomes[outcomeNoResult]
	summary.Skipped = tally.outcomes[outcomeSkipped]
	summary.Cancelled = ctx.Err() != nil
	summary.DurationMs = time.Since(start).Milliseconds()

	fields := map[string]interface{}{
		"requested":  summary.Requested,
		"delivered":  summary.Delivered,
		"noOffers":   summary.NoOffers,
		"noResult":   summary.NoResult,
		"skipped":    summary.Skipped,
		"cancelled":  summary.Cancelled,
		"durationMs": summary.DurationMs,
	}
	if deliveryErr != nil {
		span.RecordError(deliveryErr)
		span.SetStatus(codes.Error, "delivery failed")
		log.WithError(deliveryErr).Error("search run aborted", fields)
		return summary, deliveryErr
	}

	log.Info("search run complete", fields)
	return summary, nil
}

// branch walks one hotel key through search, selection, metadata and
// mapping. The context is checked between steps.
func (c *Coordinator) branch(ctx context.Context, params models.SearchParameters, hotelKey string, out chan<- models.OutputEnvelope) branchOutcome {
	metrics.SearchBranchesInFlight.Inc()
	defer metrics.SearchBranchesInFlight.Dec()

	ctx, span := c.obs.StartSpan(ctx, "search.branch", attribute.String("hotel.key", hotelKey))
	defer span.End()

	log := c.logger.WithFields(map[string]interface{}{
		"searchId": params.SearchID,
		"hotelKey": hotelKey,
	})

	if ctx.Err() != nil {
		return outcomeSkipped
	}

	offers, err := c.searcher.Search(ctx, params, hotelKey)
	if err != nil {
		if ctx.Err() != nil {
			return outcomeSkipped
		}
		log.Warn("package search failed, treating as no offers", map[string]interface{}{
			"error": err,
			"code":  string(errors.CodeOf(err)),
		})
		return outcomeNoOffers
	}

	offer, ok := SelectCheapest(offers)
	if !ok {
		log.Debug("no packages found", nil)
		return outcomeNoOffers
	}

	if ctx.Err() != nil {
		return outcomeSkipped
	}

	hotel, err := c.resolver.Resolve(ctx, params, hotelKey)
	if err != nil {
		if ctx.Err() != nil {
			return outcomeSkipped
		}
		log.Warn("unable to get hotel info", map[string]interface{}{
			"error": err,
		})
		return outcomeNoResult
	}

	result, err := c.mapper.Map(params, offer, hotel)
	if err != nil {
		log.Warn("offer could not be mapped", map[string]interface{}{
			"error": err,
			"code":  string(errors.CodeOf(err)),
		})
		return outcomeNoResult
	}
	if result == nil {
		return outcomeNoResult
	}

	out <- models.NewResultEnvelope(params, *result)
	log.Debug("package result queued", map[string]interface{}{
		"price": offer.Price,
	})
	return outcomeEmitted
}

// push delivers on a context detached from run cancellation so the
// completion envelope survives a deadline.
func (c *Coordinator) push(ctx context.Context, sink delivery.Sink, envelope models.OutputEnvelope) error {
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.deliveryTimeout)
	defer cancel()

	if err := sink.Push(pushCtx, envelope); err != nil {
		metrics.EnvelopesDelivered.WithLabelValues(sink.Name(), "error").Inc()
		c.logger.Error("failed to push envelope", map[string]interface{}{
			"sink":           sink.Name(),
			"searchId":       envelope.SearchID,
			"searchComplete": envelope.SearchComplete,
			"error":          err,
		})
		return err
	}
	metrics.EnvelopesDelivered.WithLabelValues(sink.Name(), "ok").Inc()
	return nil
}
