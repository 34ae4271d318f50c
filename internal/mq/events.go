package mq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/usersvc/apiserver/types"
)

const attrEventType = "event_type"

// UserEventPublisher encodes user changes and publishes them on one channel.
type UserEventPublisher struct {
	mq      *MQ
	channel string
	now     func() time.Time
}

func NewUserEventPublisher(m *MQ, channel string) *UserEventPublisher {
	return &UserEventPublisher{mq: m, channel: channel, now: time.Now}
}

// PublishUserEvent wraps user in a UserEvent and sends it.
func (p *UserEventPublisher) PublishUserEvent(ctx context.Context, eventType string, user types.User) error {
	event := types.UserEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		User:       user,
		OccurredAt: p.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}
	if _, err := p.mq.Publish(ctx, p.channel, data, map[string]string{attrEventType: eventType}); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

// DecodeUserEvent parses a message produced by PublishUserEvent.
func DecodeUserEvent(msg Message) (types.UserEvent, error) {
	var event types.UserEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return types.UserEvent{}, fmt.Errorf("decode user event: %w", err)
	}
	if event.Type == "" {
		return types.UserEvent{}, errors.New("decode user event: missing type")
	}
	return event, nil
}
