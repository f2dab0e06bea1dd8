// internal/events/sns.go
package events

import (
	"context"
	"fmt"

	apperrors "activity-signup/internal/common/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSService is the subset of the SNS client the sink needs.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSink publishes events to a topic with the event type as a message attribute,
// so subscribers can filter on it.
type SNSSink struct {
	client   SNSService
	topicARN string
}

func NewSNSSink(client SNSService, topicARN string) *SNSSink {
	return &SNSSink{client: client, topicARN: topicARN}
}

func (s *SNSSink) Name() string { return "sns" }

func (s *SNSSink) Deliver(ctx context.Context, evt Event) error {
	payload, err := evt.Payload()
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("marshal event: %w", err))
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(payload)),
		Subject:  aws.String(string(evt.Type)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(string(evt.Type))},
			"activity":   {DataType: aws.String("String"), StringValue: aws.String(evt.Activity)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
