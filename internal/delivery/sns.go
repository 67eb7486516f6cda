// internal/delivery/sns.go
package delivery

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"package-provider/internal/common/logger"
	"package-provider/internal/models"
)

// SNSService is the subset of the SNS client the sink uses.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSink publishes each envelope as a JSON message to one topic. The
// routing ids are copied into message attributes for subscription filters.
type SNSSink struct {
	client   SNSService
	topicARN string
	logger   logger.Logger
}

func NewSNSSink(client SNSService, topicARN string, log logger.Logger) (*SNSSink, error) {
	if client == nil {
		return nil, fmt.Errorf("sns client is nil")
	}
	if topicARN == "" {
		return nil, fmt.Errorf("sns topic arn is empty")
	}
	return &SNSSink{client: client, topicARN: topicARN, logger: log}, nil
}

func (s *SNSSink) Name() string { return "sns" }

func (s *SNSSink) Push(ctx context.Context, envelope models.OutputEnvelope) error {
	body, err := encode(envelope)
	if err != nil {
		return err
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"searchId":       stringAttribute(envelope.SearchID),
			"connectionId":   stringAttribute(envelope.ConnectionID),
			"searchComplete": stringAttribute(strconv.FormatBool(envelope.SearchComplete)),
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}

	if out != nil && out.MessageId != nil {
		s.logger.Debug("envelope published", map[string]interface{}{
			"messageId":      *out.MessageId,
			"searchId":       envelope.SearchID,
			"searchComplete": envelope.SearchComplete,
		})
	}
	return nil
}

// SNS rejects empty string attribute values.
func stringAttribute(v string) types.MessageAttributeValue {
	if v == "" {
		v = "-"
	}
	return types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
}
