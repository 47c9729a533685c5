package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestBrokerDeliversAndDrops(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe(1)
	defer cancel()

	ctx := context.Background()
	_ = b.Send(ctx, Event{Kind: KindViewUpdated, SubjectID: "v1"})
	_ = b.Send(ctx, Event{Kind: KindViewUpdated, SubjectID: "v2"}) // buffer full: dropped

	select {
	case ev := <-ch:
		if ev.SubjectID != "v1" {
			t.Fatalf("got %q, want v1", ev.SubjectID)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected an event")
	}
	select {
	case ev := <-ch:
		t.Fatalf("expected dropped event, got %+v", ev)
	default:
	}
}

func TestBrokerCancelClosesChannel(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe(0)
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	if err := b.Send(context.Background(), Event{Kind: KindTrashChanged}); err != nil {
		t.Fatalf("Send after cancel error: %v", err)
	}
}

type failingSender struct{}

func (failingSender) Send(context.Context, Event) error { return errors.New("boom") }

func TestMultiJoinsErrors(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe(4)
	defer cancel()

	err := Multi{failingSender{}, nil, b}.Send(context.Background(), Event{Kind: KindFavorite})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if ev := <-ch; ev.Kind != KindFavorite {
		t.Fatalf("broker still expected to receive the event, got %+v", ev)
	}
}

func TestRedisPublisher(t *testing.T) {
	s := miniredis.RunT(t)

	p, err := NewRedisPublisher("redis://"+s.Addr(), "")
	if err != nil {
		t.Fatalf("NewRedisPublisher error: %v", err)
	}
	defer p.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()
	sub := client.Subscribe(ctx, DefaultChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}
	msgs := sub.Channel()

	if err := p.Send(ctx, Event{Kind: KindMovedToTrash, WorkspaceID: "ws", SubjectID: "v1"}); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	select {
	case msg := <-msgs:
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if ev.Kind != KindMovedToTrash || ev.SubjectID != "v1" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no message published")
	}
}

func TestNewRedisPublisherBadURL(t *testing.T) {
	if _, err := NewRedisPublisher("not-a-url", ""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	if err := (LogSender{Log: log}).Send(context.Background(), Event{Kind: KindRecentChanged, ViewIDs: []string{"a"}}); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if !strings.Contains(buf.String(), `"kind":"recent_changed"`) {
		t.Fatalf("unexpected log: %s", buf.String())
	}
}
