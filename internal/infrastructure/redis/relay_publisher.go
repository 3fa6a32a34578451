package redis

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"github.com/xavier7x/VentasDigitalesWs/internal/domain"
)

// RelayPublisher pushes room broadcasts onto the cluster channel so workers
// that hold other members of the room can deliver them locally.
type RelayPublisher struct {
	client  *redis.Client
	channel string
}

func NewRelayPublisher(client *redis.Client, channel string) *RelayPublisher {
	return &RelayPublisher{client: client, channel: channel}
}

func (r *RelayPublisher) PublishRoomEvent(ctx context.Context, event *domain.RemoteEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}
