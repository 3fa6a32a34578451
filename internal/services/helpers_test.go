package services

import (
	"context"
	"errors"
	"sync"

	"github.com/xavier7x/VentasDigitalesWs/internal/domain"
)

// fakeConn records every frame sent to it.
type fakeConn struct {
	id       string
	userID   string
	mu       sync.Mutex
	frames   []domain.DomainEvent
	closed   bool
	failSend bool
}

func newFakeConn(id, userID string) *fakeConn {
	return &fakeConn{id: id, userID: userID}
}

func (f *fakeConn) ID() string     { return f.id }
func (f *fakeConn) UserID() string { return f.userID }

func (f *fakeConn) Send(message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return errors.New("send failed")
	}
	frame, ok := message.(domain.DomainEvent)
	if !ok {
		return errors.New("unexpected message type")
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() []domain.DomainEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.DomainEvent, len(f.frames))
	copy(out, f.frames)
	return out
}

// memoryBus is an in-process stand-in for the cluster channel: every
// publication reaches every subscribed handler, the publisher's own
// included, mirroring pub/sub semantics.
type memoryBus struct {
	mu       sync.Mutex
	handlers []domain.RemoteEventHandler
}

func (b *memoryBus) Subscribe(handler domain.RemoteEventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

func (b *memoryBus) PublishRoomEvent(_ context.Context, event *domain.RemoteEvent) error {
	b.mu.Lock()
	handlers := make([]domain.RemoteEventHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.Unlock()

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			return err
		}
	}
	return nil
}
