package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eluss/chromabet/internal/domain"
)

func TestRedisPublisherDeliversToSubscribers(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()

	sub := client.Subscribe(ctx, "rounds")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	publisher := NewRedisPublisher(client, "rounds", zerolog.Nop(), nil)

	event := &domain.Event{
		ID:      "event-1",
		Type:    domain.EventTypeRoundEnded,
		RoundID: "round-1",
		Payload: map[string]any{
			"round_id": "round-1",
			"outcome":  "violet",
		},
		CreatedAt: time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC),
	}

	if err := publisher.Publish(ctx, event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got envelope
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("invalid event payload: %v", err)
		}
		if got.ID != "event-1" || got.Type != domain.EventTypeRoundEnded || got.RoundID != "round-1" {
			t.Fatalf("unexpected event: %+v", got)
		}
		if got.Payload["outcome"] != "violet" {
			t.Fatalf("unexpected payload: %+v", got.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestLogPublisherNeverFails(t *testing.T) {
	publisher := NewLogPublisher(zerolog.Nop())

	event := &domain.Event{
		ID:      "event-1",
		Type:    domain.EventTypeRoundStarted,
		RoundID: "round-1",
		Payload: map[string]any{"round_number": int64(1)},
	}

	if err := publisher.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
}
