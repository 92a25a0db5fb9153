package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"chatrelay/internal/app/user"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
)

const eventChannelBuffer = 256

// inboundEvent pairs a frame with the connection that sent it.
type inboundEvent struct {
	client *Client
	env    Envelope
}

// Hub is the event dispatcher. One goroutine owns the Run loop; client
// registration, deregistration, and every inbound event flow through its
// channels, so each event runs to completion before the next is processed.
//
// The hub reads and writes the registry and fans broadcasts out to the
// members' send queues in registry join order.
type Hub struct {
	registry *user.Registry
	filter   *Filter

	// clients maps connection id to the active client, maintained only by
	// the Run goroutine.
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	events     chan inboundEvent
	stop       chan struct{}

	wg     sync.WaitGroup
	logger zerolog.Logger
}

// NewHub constructs the hub and starts its Run loop. Callers must Shutdown
// when done.
func NewHub(registry *user.Registry, filter *Filter) *Hub {
	h := &Hub{
		registry:   registry,
		filter:     filter,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan inboundEvent, eventChannelBuffer),
		stop:       make(chan struct{}),
		logger:     logx.Logger().With().Str("component", "hub").Logger(),
	}

	h.wg.Add(1)
	go h.run()

	return h
}

// Register queues a new connection for the dispatcher.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.stop:
	}
}

// Unregister queues removal of a connection. Safe to call after Shutdown.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stop:
	}
}

// Dispatch queues an inbound frame for the dispatcher. A full queue drops
// the frame; the sender sees no ack and may retry.
func (h *Hub) Dispatch(c *Client, env Envelope) {
	select {
	case h.events <- inboundEvent{client: c, env: env}:
	default:
		h.logger.Warn().Str("event", string(env.Event)).Msg("Event queue full, dropping frame")
	}
}

// Shutdown stops the Run loop and closes every client send queue, which
// makes the write pumps send close frames and exit.
func (h *Hub) Shutdown() {
	close(h.stop)
	h.wg.Wait()

	h.logger.Info().Msg("Hub shutdown complete")
}

func (h *Hub) run() {
	defer h.wg.Done()

	h.logger.Info().Msg("Hub dispatch loop started")

	for {
		select {
		case c := <-h.register:
			h.clients[c.id] = c
			h.logger.Info().Str("client_id", c.id).Int("total_clients", len(h.clients)).Msg("Client connected")

		case c := <-h.unregister:
			h.dropClient(c)

		case ev := <-h.events:
			h.handleEvent(ev.client, ev.env)

		case <-h.stop:
			for _, c := range h.clients {
				close(c.send)
			}
			h.clients = nil
			return
		}
	}
}

// dropClient handles transport-level disconnects: removes the connection,
// then runs the same leave flow as an explicit Disconnect event.
func (h *Hub) dropClient(c *Client) {
	current, ok := h.clients[c.id]
	if !ok || current != c {
		return
	}

	delete(h.clients, c.id)
	close(c.send)
	h.logger.Info().Str("client_id", c.id).Int("total_clients", len(h.clients)).Msg("Client disconnected")

	h.removeAndAnnounce(c.id)
}

func (h *Hub) handleEvent(c *Client, env Envelope) {
	switch env.Event {
	case EventJoin:
		h.handleJoin(c, env.Payload)
	case EventMessage:
		h.handleMessage(c, env.Payload)
	case EventDisconnect:
		h.handleDisconnect(env.Payload)
	case EventValidate:
		h.handleValidate(c, env.Payload)
	default:
		h.logger.Warn().Str("event", string(env.Event)).Msg("Client sent unsupported event")
	}
}

// handleJoin registers the user, welcomes the joiner, announces the join to
// the rest of the room, broadcasts the updated roster, and acks last. Every
// failure is reported in the ack; the connection stays open.
func (h *Hub) handleJoin(c *Client, payload []byte) {
	p, perr := decode[JoinPayload](payload)
	if perr != nil {
		h.logger.Warn().Err(perr).Str("client_id", c.id).Msg("Invalid Join payload")
		h.send(c, EventJoinAck, JoinAck{Error: errs.NewError(errs.ErrInvalidParams).Message})
		return
	}

	u, err := h.registry.Add(c.id, p.Username, p.Room)
	if err != nil {
		h.send(c, EventJoinAck, JoinAck{Error: err.Message})
		return
	}

	h.send(c, EventMessage, NewChatMessage(AdminSender, "Welcome!"))
	h.broadcast(u.Room, EventMessage, NewChatMessage(AdminSender, u.Username+" has joined!"), u.ID)
	h.broadcast(u.Room, EventRoomData, RoomData{Room: u.Room, Users: h.registry.InRoom(u.Room)}, "")

	h.logger.Info().Str("client_id", u.ID).Str("username", u.Username).Str("room", u.Room).Msg("User joined room")

	h.send(c, EventJoinAck, JoinAck{ID: u.ID})
}

// handleMessage relays filtered chat text to the sender's room, including
// the sender. An unknown id fails the ack and broadcasts nothing.
func (h *Hub) handleMessage(c *Client, payload []byte) {
	p, perr := decode[MessagePayload](payload)
	if perr != nil {
		h.logger.Warn().Err(perr).Str("client_id", c.id).Msg("Invalid Message payload")
		h.send(c, EventMessageAck, MessageAck{Error: errs.NewError(errs.ErrInvalidParams).Message})
		return
	}

	u, ok := h.registry.Get(p.ID)
	if !ok {
		h.send(c, EventMessageAck, MessageAck{Error: errs.NewError(errs.ErrUserNotFound).Message})
		return
	}

	h.broadcast(u.Room, EventMessage, NewChatMessage(u.Username, h.filter.Clean(p.Message)), "")

	h.send(c, EventMessageAck, MessageAck{Success: true})
}

// handleDisconnect is fire-and-forget: no ack, and an unknown id is a no-op.
func (h *Hub) handleDisconnect(payload []byte) {
	p, perr := decode[IDPayload](payload)
	if perr != nil {
		h.logger.Warn().Err(perr).Msg("Invalid Disconnect payload")
		return
	}

	h.removeAndAnnounce(p.ID)
}

func (h *Hub) handleValidate(c *Client, payload []byte) {
	p, perr := decode[IDPayload](payload)
	if perr != nil {
		h.logger.Warn().Err(perr).Str("client_id", c.id).Msg("Invalid Validate payload")
		h.send(c, EventValidateAck, ValidateAck{IsValid: false})
		return
	}

	u, ok := h.registry.Get(p.ID)
	if !ok {
		h.send(c, EventValidateAck, ValidateAck{IsValid: false})
		return
	}

	h.send(c, EventValidateAck, ValidateAck{IsValid: true, User: &u})
}

// removeAndAnnounce removes the user for id and, if one was registered,
// broadcasts the leave announcement and the updated roster to its room.
func (h *Hub) removeAndAnnounce(id string) {
	u, ok := h.registry.Remove(id)
	if !ok {
		return
	}

	h.broadcast(u.Room, EventMessage, NewChatMessage(AdminSender, u.Username+" has left!"), "")
	h.broadcast(u.Room, EventRoomData, RoomData{Room: u.Room, Users: h.registry.InRoom(u.Room)}, "")

	h.logger.Info().Str("client_id", u.ID).Str("username", u.Username).Str("room", u.Room).Msg("User left room")
}

// broadcast fans a frame out to every member of room in join order,
// skipping excludeID when set. Delivery is a non-blocking enqueue per
// member.
func (h *Hub) broadcast(room string, kind EventKind, payload any, excludeID string) {
	frame, err := NewEnvelope(kind, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", string(kind)).Msg("Failed to build broadcast frame")
		return
	}

	for _, member := range h.registry.InRoom(room) {
		if member.ID == excludeID {
			continue
		}

		if c, ok := h.clients[member.ID]; ok {
			c.enqueue(frame)
		}
	}
}

// send unicasts one event to a single client. Clients already dropped by
// the dispatcher are skipped; their send queue is closed.
func (h *Hub) send(c *Client, kind EventKind, payload any) {
	if current, ok := h.clients[c.id]; !ok || current != c {
		return
	}

	frame, err := NewEnvelope(kind, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", string(kind)).Msg("Failed to build frame")
		return
	}

	c.enqueue(frame)
}
