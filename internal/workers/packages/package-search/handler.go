// internal/workers/packages/package-search/handler.go
package packagesearch

import (
	"context"
	"encoding/json"
	"fmt"

	"package-provider/internal/common/errors"
	"package-provider/internal/common/logger"
	"package-provider/internal/common/metrics"
	"package-provider/internal/delivery"
	"package-provider/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "package-search"
	trigger  = "zeebe"
)

// EventRunner runs one search event against a sink.
type EventRunner interface {
	HandleEvent(ctx context.Context, trigger string, raw []byte, sink delivery.Sink) (*models.RunSummary, error)
}

type Handler struct {
	config       *Config
	runner       EventRunner
	sink         delivery.Sink
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, runner EventRunner, sink delivery.Sink, log logger.Logger) *Handler {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		runner:       runner,
		sink:         sink,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, errors.NewInvalidSearchEventError(fmt.Sprintf("parse job variables: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	raw, err := input.eventBytes()
	if err != nil {
		return nil, err
	}

	summary, err := h.runner.HandleEvent(ctx, trigger, raw, h.sink)
	if err != nil {
		return nil, err
	}
	return &Output{SearchSummary: *summary}, nil
}

// eventBytes prefers "event", which may be an object or a JSON string.
func (in *Input) eventBytes() ([]byte, error) {
	if len(in.Event) > 0 && string(in.Event) != "null" {
		var encoded string
		if err := json.Unmarshal(in.Event, &encoded); err == nil {
			return []byte(encoded), nil
		}
		return in.Event, nil
	}
	if in.Context == nil {
		return nil, errors.NewMissingParameterError("event")
	}

	msg := models.SearchMessage{Context: *in.Context, Query: in.Query, Content: in.Content}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.NewInvalidSearchEventError(err.Error())
	}
	return data, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.errorHandler.HandleJobError(context.WithoutCancel(ctx), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
