package services

import (
	"context"
	"encoding/json"

	"github.com/xavier7x/VentasDigitalesWs/internal/domain"
	"github.com/xavier7x/VentasDigitalesWs/pkg/logger"
)

// EventRouter validates domain events, resolves their target room, and fans
// them out to every member of that room — including the sender. Malformed
// events are dropped and logged; the sender receives no ack or nack.
type EventRouter struct {
	conns      *ConnectionRegistry
	rooms      *RoomRegistry
	publisher  domain.EventPublisher // nil when running a single worker
	instanceID string
	log        logger.Logger
}

func NewEventRouter(conns *ConnectionRegistry, rooms *RoomRegistry,
	publisher domain.EventPublisher, instanceID string, log logger.Logger) *EventRouter {
	return &EventRouter{
		conns:      conns,
		rooms:      rooms,
		publisher:  publisher,
		instanceID: instanceID,
		log:        log,
	}
}

// Route broadcasts the event to its target room. The explicit room on the
// frame wins; otherwise the event routes through the single room the sender
// occupies. The payload is forwarded unmodified.
func (er *EventRouter) Route(ctx context.Context, sourceConnID string, event domain.DomainEvent) error {
	if err := validatePayload(event); err != nil {
		er.log.Warn("Event rejected", "room", roomTag(event.Room), "event", event.Event,
			"connection_id", sourceConnID, "error", err)
		return err
	}

	room, err := er.resolveRoom(sourceConnID, event.Room)
	if err != nil {
		er.log.Warn("Event rejected", "room", domain.RoomGeneral, "event", event.Event,
			"connection_id", sourceConnID, "error", err)
		return err
	}

	frame := domain.DomainEvent{Event: event.Event, Room: room, Payload: event.Payload}
	delivered := er.broadcastLocal(room, frame)

	if er.publisher != nil {
		remote := &domain.RemoteEvent{
			Origin:  er.instanceID,
			Room:    room,
			Event:   event.Event,
			Payload: event.Payload,
		}
		if err := er.publisher.PublishRoomEvent(ctx, remote); err != nil {
			// Local members already got the event; the cluster channel owner
			// restarts delivery, so log and carry on.
			er.log.Error("Failed to publish to cluster channel", "room", room, "error", err)
		}
	}

	er.log.Info("Event broadcast", "room", room, "event", event.Event,
		"connection_id", sourceConnID, "delivered", delivered)
	return nil
}

// HandleRemote delivers an event relayed from another worker through the
// local send path without re-publishing it.
func (er *EventRouter) HandleRemote(event *domain.RemoteEvent) error {
	if event.Origin == er.instanceID {
		// Our own publication echoed back by the channel.
		return nil
	}

	frame := domain.DomainEvent{Event: event.Event, Room: event.Room, Payload: event.Payload}
	delivered := er.broadcastLocal(event.Room, frame)

	er.log.Info("Remote event broadcast", "room", event.Room, "event", event.Event,
		"origin", event.Origin, "delivered", delivered)
	return nil
}

func (er *EventRouter) resolveRoom(sourceConnID, explicitRoom string) (string, error) {
	if explicitRoom != "" {
		return explicitRoom, nil
	}

	occupied := er.rooms.RoomsContaining(sourceConnID)
	if len(occupied) != 1 {
		return "", domain.ErrNoActiveRoom
	}
	return occupied[0], nil
}

func (er *EventRouter) broadcastLocal(room string, frame domain.DomainEvent) int {
	members := er.rooms.Members(room)

	delivered := 0
	for _, connID := range members {
		conn, exists := er.conns.Get(connID)
		if !exists {
			continue
		}
		if err := conn.Send(frame); err != nil {
			er.log.Error("Failed to send event", "room", room, "connection_id", connID,
				"error", err)
			// Continue to other members
			continue
		}
		delivered++
	}
	return delivered
}

// validatePayload enforces the required fields per event kind. A field is
// required to be present and non-null; values are otherwise opaque.
func validatePayload(event domain.DomainEvent) error {
	var fields map[string]interface{}
	if len(event.Payload) == 0 || json.Unmarshal(event.Payload, &fields) != nil {
		return domain.ErrMalformedEvent
	}

	switch event.Event {
	case domain.EventSaleStatusUpdate:
		if !hasField(fields, domain.FieldSaleID) || !hasField(fields, domain.FieldNewStatus) {
			return domain.ErrMalformedEvent
		}
	case domain.EventNewComment:
		// Older clients send the comment under estado_nuevo.
		if !hasField(fields, domain.FieldSaleID) ||
			(!hasField(fields, domain.FieldComment) && !hasField(fields, domain.FieldNewStatus)) {
			return domain.ErrMalformedEvent
		}
	default:
		return domain.ErrUnknownEvent
	}
	return nil
}

func hasField(fields map[string]interface{}, name string) bool {
	value, present := fields[name]
	return present && value != nil
}

func roomTag(room string) string {
	if room == "" {
		return domain.RoomGeneral
	}
	return room
}
