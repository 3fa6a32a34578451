package domain

import (
	"context"
)

// Connection is the transport-side handle the core holds for a live session.
// The transport issues the ID and guarantees it is never reused for a
// different session within the process lifetime.
type Connection interface {
	ID() string
	UserID() string
	Send(message interface{}) error
	Close() error
}

// Event interfaces (cluster fan-out)
type EventPublisher interface {
	PublishRoomEvent(ctx context.Context, event *RemoteEvent) error
}

type EventSubscriber interface {
	SubscribeToRoomEvents(ctx context.Context, handler RemoteEventHandler) error
}

// RemoteEventHandler delivers a remote event through the local broadcast
// path. It must not re-publish to the cluster.
type RemoteEventHandler func(event *RemoteEvent) error
