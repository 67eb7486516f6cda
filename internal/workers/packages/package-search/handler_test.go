package packagesearch

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"package-provider/internal/common/config"
	"package-provider/internal/common/errors"
	"package-provider/internal/common/logger"
	"package-provider/internal/delivery"
	"package-provider/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeGateway struct {
	pb.GatewayClient
	completed []*pb.CompleteJobRequest
	failed    []*pb.FailJobRequest
	thrown    []*pb.ThrowErrorRequest
}

func (g *fakeGateway) CompleteJob(_ context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.completed = append(g.completed, in)
	return &pb.CompleteJobResponse{}, nil
}

func (g *fakeGateway) FailJob(_ context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.failed = append(g.failed, in)
	return &pb.FailJobResponse{}, nil
}

func (g *fakeGateway) ThrowError(_ context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.thrown = append(g.thrown, in)
	return &pb.ThrowErrorResponse{}, nil
}

func noRetry(context.Context, error) bool { return false }

type fakeJobClient struct {
	gateway *fakeGateway
}

func (c *fakeJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gateway, noRetry)
}

func (c *fakeJobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gateway, noRetry)
}

func (c *fakeJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gateway, noRetry)
}

// runnerFunc adapts a function to EventRunner and records what it was given.
type runnerFunc func(ctx context.Context, raw []byte) (*models.RunSummary, error)

func (f runnerFunc) HandleEvent(ctx context.Context, _ string, raw []byte, _ delivery.Sink) (*models.RunSummary, error) {
	return f(ctx, raw)
}

func createTestHandler(t *testing.T, runner EventRunner) *Handler {
	sink := delivery.NewWriterSink(&discard{})
	return NewHandler(&Config{Timeout: 5 * time.Second}, runner, sink, logger.NewTestLogger(t))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func testJob(variables string, retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                7,
		Type:               TaskType,
		ProcessInstanceKey: 70,
		Retries:            retries,
		Variables:          variables,
	}}
}

const bareMessage = `{"context":{"searchId":"s-1","connectionId":"c-1","userId":"u-1"},"content":{"hotels":["a.b.118060"]}}`

// ==========================
// Core Functionality Tests
// ==========================

func TestHandle_CompletesWithSummary(t *testing.T) {
	var got []byte
	runner := runnerFunc(func(_ context.Context, raw []byte) (*models.RunSummary, error) {
		got = raw
		return &models.RunSummary{RunID: "run-1", SearchID: "s-1", Requested: 1, Delivered: 1}, nil
	})

	gw := &fakeGateway{}
	createTestHandler(t, runner).Handle(&fakeJobClient{gateway: gw}, testJob(bareMessage, 3))

	require.Len(t, gw.completed, 1)
	assert.Empty(t, gw.failed)
	assert.Empty(t, gw.thrown)

	var vars Output
	require.NoError(t, json.Unmarshal([]byte(gw.completed[0].Variables), &vars))
	assert.Equal(t, "run-1", vars.SearchSummary.RunID)
	assert.Equal(t, 1, vars.SearchSummary.Delivered)

	var msg models.SearchMessage
	require.NoError(t, json.Unmarshal(got, &msg))
	assert.Equal(t, "s-1", msg.Context.SearchID)
	assert.Equal(t, []string{"a.b.118060"}, msg.Content.Hotels)
}

func TestInput_EventBytes(t *testing.T) {
	snsEnvelope := `{"Records":[{"Sns":{"Message":"{}"}}]}`

	tests := []struct {
		name      string
		variables string
		expected  string
		code      errors.ErrorCode
	}{
		{name: "event object", variables: `{"event":` + snsEnvelope + `}`, expected: snsEnvelope},
		{name: "event as string", variables: `{"event":"{\"context\":{}}"}`, expected: `{"context":{}}`},
		{name: "nothing usable", variables: `{"other":1}`, code: errors.ErrCodeMissingParameter},
		{name: "null event", variables: `{"event":null}`, code: errors.ErrCodeMissingParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in Input
			require.NoError(t, json.Unmarshal([]byte(tt.variables), &in))

			raw, err := in.eventBytes()
			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(raw))
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandle_InputErrorThrowsBPMNError(t *testing.T) {
	runner := runnerFunc(func(context.Context, []byte) (*models.RunSummary, error) {
		return nil, errors.NewInvalidSearchEventError("context.searchId: required")
	})

	gw := &fakeGateway{}
	createTestHandler(t, runner).Handle(&fakeJobClient{gateway: gw}, testJob(bareMessage, 3))

	require.Len(t, gw.thrown, 1)
	assert.Equal(t, "INVALID_SEARCH_EVENT", gw.thrown[0].ErrorCode)
	assert.Empty(t, gw.failed)
	assert.Empty(t, gw.completed)
}

func TestHandle_UnparseableVariables(t *testing.T) {
	gw := &fakeGateway{}
	runner := runnerFunc(func(context.Context, []byte) (*models.RunSummary, error) {
		t.Fatal("runner must not be called")
		return nil, nil
	})
	createTestHandler(t, runner).Handle(&fakeJobClient{gateway: gw}, testJob("{oops", 3))

	require.Len(t, gw.thrown, 1)
	assert.Equal(t, "INVALID_SEARCH_EVENT", gw.thrown[0].ErrorCode)
}

func TestHandle_DeliveryErrorFailsWithRetries(t *testing.T) {
	runner := runnerFunc(func(context.Context, []byte) (*models.RunSummary, error) {
		return &models.RunSummary{}, errors.NewDeliveryError("sns", stderrors.New("throttled"))
	})

	gw := &fakeGateway{}
	createTestHandler(t, runner).Handle(&fakeJobClient{gateway: gw}, testJob(bareMessage, 3))

	require.Len(t, gw.failed, 1)
	assert.Equal(t, int32(2), gw.failed[0].Retries)
	assert.Empty(t, gw.thrown)
}

func TestHandle_DeliveryErrorOnLastRetryThrows(t *testing.T) {
	runner := runnerFunc(func(context.Context, []byte) (*models.RunSummary, error) {
		return nil, errors.NewDeliveryError("sns", stderrors.New("throttled"))
	})

	gw := &fakeGateway{}
	createTestHandler(t, runner).Handle(&fakeJobClient{gateway: gw}, testJob(bareMessage, 0))

	require.Len(t, gw.thrown, 1)
	assert.Equal(t, "DELIVERY_FAILED", gw.thrown[0].ErrorCode)
}

func TestLoadConfig(t *testing.T) {
	cfg := &config.Config{
		Camunda: config.CamundaConfig{MaxJobsActive: 10},
		Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: true, MaxJobsActive: 4, Timeout: 15000},
		},
	}
	c := LoadConfig(cfg)
	assert.Equal(t, 15*time.Second, c.Timeout)
	assert.Equal(t, 4, c.MaxJobsActive)

	c = LoadConfig(&config.Config{Workers: map[string]config.WorkerConfig{TaskType: {}}, Camunda: config.CamundaConfig{MaxJobsActive: 10}})
	assert.Equal(t, defaultTimeout, c.Timeout)
	assert.Equal(t, 10, c.MaxJobsActive)
}
