package redis

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"github.com/xavier7x/VentasDigitalesWs/internal/domain"
	"github.com/xavier7x/VentasDigitalesWs/pkg/logger"
)

// RelaySubscriber consumes the cluster channel and hands each remote event
// to the handler. The handler is responsible for dropping the worker's own
// publications; the subscriber only decodes and forwards.
type RelaySubscriber struct {
	client  *redis.Client
	channel string
	log     logger.Logger
}

func NewRelaySubscriber(client *redis.Client, channel string, log logger.Logger) *RelaySubscriber {
	return &RelaySubscriber{
		client:  client,
		channel: channel,
		log:     log,
	}
}

func (r *RelaySubscriber) SubscribeToRoomEvents(ctx context.Context, handler domain.RemoteEventHandler) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	r.log.Info("Subscribed to cluster channel", "channel", r.channel)

	for {
		select {
		case msg := <-ch:
			event, err := decodeRemoteEvent(msg.Payload)
			if err != nil {
				r.log.Error("Failed to parse remote event", "payload", msg.Payload, "error", err)
				continue
			}

			if err := handler(event); err != nil {
				r.log.Error("Failed to handle remote event", "room", event.Room,
					"origin", event.Origin, "error", err)
			}

		case <-ctx.Done():
			r.log.Info("Relay subscriber stopped")
			return ctx.Err()
		}
	}
}

func decodeRemoteEvent(payload string) (*domain.RemoteEvent, error) {
	var event domain.RemoteEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, err
	}
	return &event, nil
}
