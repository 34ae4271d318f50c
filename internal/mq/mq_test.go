package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/usersvc/apiserver/config"
	"github.com/usersvc/apiserver/types"
)

type published struct {
	channel string
	data    []byte
	attrs   map[string]string
}

type fakeBackend struct {
	published []published
	err       error
	closed    bool
}

func (f *fakeBackend) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, published{channel: channel, data: data, attrs: attrs})
	return "msg-1", nil
}

func (f *fakeBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	for i, p := range f.published {
		if p.channel != channel {
			continue
		}
		if err := handler(ctx, Message{ID: string(rune('a' + i)), Data: p.data, Attributes: p.attrs}); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func TestPublishUserEventRoundTrip(t *testing.T) {
	backend := &fakeBackend{}
	m := New(backend)
	pub := NewUserEventPublisher(m, "user-events")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	age := 30
	user := types.User{ID: 7, FirstName: "Ada", LastName: "Lovelace", Age: &age}
	if err := pub.PublishUserEvent(context.Background(), types.UserUpdated, user); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(backend.published) != 1 {
		t.Fatalf("expected one message, got %d", len(backend.published))
	}
	msg := backend.published[0]
	if msg.channel != "user-events" || msg.attrs[attrEventType] != types.UserUpdated {
		t.Fatalf("unexpected message: %+v", msg)
	}

	var got []types.UserEvent
	err := m.Subscribe(context.Background(), "user-events", func(_ context.Context, msg Message) error {
		event, err := DecodeUserEvent(msg)
		if err != nil {
			return err
		}
		got = append(got, event)
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one event, got %d", len(got))
	}
	event := got[0]
	if event.ID == "" || event.Type != types.UserUpdated || !event.OccurredAt.Equal(fixed) {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.User.ID != 7 || event.User.Age == nil || *event.User.Age != 30 || event.User.Active != nil {
		t.Fatalf("unexpected user: %+v", event.User)
	}
}

func TestPublishUserEventBackendError(t *testing.T) {
	pub := NewUserEventPublisher(New(&fakeBackend{err: errors.New("unreachable")}), "user-events")
	if err := pub.PublishUserEvent(context.Background(), types.UserCreated, types.User{ID: 1}); err == nil {
		t.Fatalf("expected publish error")
	}
}

func TestDecodeUserEventRejectsGarbage(t *testing.T) {
	if _, err := DecodeUserEvent(Message{Data: []byte("not json")}); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := DecodeUserEvent(Message{Data: []byte(`{"id":"x"}`)}); err == nil {
		t.Fatalf("expected missing type error")
	}
}

func TestOpenDisabled(t *testing.T) {
	for _, backend := range []string{"", "none", " NONE "} {
		m, err := Open(context.Background(), config.EventsConfig{Backend: backend})
		if err != nil || m != nil {
			t.Fatalf("%q: expected nil MQ, got %v, %v", backend, m, err)
		}
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), config.EventsConfig{Backend: "kafka"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestOpenRequiresConnectionSettings(t *testing.T) {
	if _, err := Open(context.Background(), config.EventsConfig{Backend: BackendRabbitMQ}); err == nil {
		t.Fatalf("expected error without rabbitmq url")
	}
	if _, err := Open(context.Background(), config.EventsConfig{Backend: BackendPubSub}); err == nil {
		t.Fatalf("expected error without pubsub project")
	}
}

func TestHeadersToAttributes(t *testing.T) {
	if attrs := headersToAttributes(nil); attrs != nil {
		t.Fatalf("expected nil for empty headers, got %v", attrs)
	}
	attrs := headersToAttributes(amqp.Table{"event_type": "user.created", "raw": []byte("x"), "n": int32(3)})
	if attrs["event_type"] != "user.created" || attrs["raw"] != "x" || attrs["n"] != "3" {
		t.Fatalf("unexpected attrs: %v", attrs)
	}
}

func TestCloseDelegates(t *testing.T) {
	backend := &fakeBackend{}
	if err := New(backend).Close(); err != nil || !backend.closed {
		t.Fatalf("expected backend to be closed")
	}
}
