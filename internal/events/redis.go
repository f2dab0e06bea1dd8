// internal/events/redis.go
package events

import (
	"context"
	"fmt"

	apperrors "activity-signup/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// RedisSink publishes events as JSON on a pub/sub channel.
type RedisSink struct {
	client  *redis.Client
	channel string
}

func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Deliver(ctx context.Context, evt Event) error {
	payload, err := evt.Payload()
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("marshal event: %w", err))
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish to %s: %w", s.channel, err)
	}
	return nil
}
