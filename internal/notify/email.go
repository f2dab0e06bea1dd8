// Package notify sends participants a confirmation email when they join or
// leave an activity.
package notify

import (
	"context"
	"fmt"

	apperrors "activity-signup/internal/common/errors"
	"activity-signup/internal/common/logger"
	"activity-signup/internal/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the subset of the SES client the sink needs.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailSink is an events.Sink that mails the participant named in the event.
type EmailSink struct {
	client    SESService
	fromEmail string
	templates map[events.Type]Template
	logger    logger.Logger
}

func NewEmailSink(client SESService, fromEmail string, templates map[events.Type]Template, log logger.Logger) *EmailSink {
	if templates == nil {
		templates = DefaultTemplates()
	}
	return &EmailSink{
		client:    client,
		fromEmail: fromEmail,
		templates: templates,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

func (s *EmailSink) Name() string { return "ses" }

func (s *EmailSink) Deliver(ctx context.Context, evt events.Event) error {
	tmpl, ok := s.templates[evt.Type]
	if !ok {
		s.logger.Debug("no template for event type", map[string]interface{}{
			"eventType": string(evt.Type),
		})
		return nil
	}

	data := map[string]string{
		"activity":   evt.Activity,
		"email":      evt.Email,
		"occurredAt": evt.OccurredAt.Format("Jan 2, 2006 3:04 PM MST"),
	}
	subject := renderTemplate(tmpl.Subject, data)
	body := renderTemplate(tmpl.Body, data)

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{evt.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(s.fromEmail),
	})
	if err != nil {
		return apperrors.NewNotificationSendFailedError(string(evt.Type), fmt.Errorf("ses send to %s: %w", evt.Email, err))
	}

	s.logger.Info("confirmation email sent", map[string]interface{}{
		"eventId":   evt.ID,
		"activity":  evt.Activity,
		"messageId": aws.ToString(out.MessageId),
	})
	return nil
}
