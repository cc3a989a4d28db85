package hub

import (
	"context"
	"errors"
	"slices"

	"github.com/DoyleJ11/inwo-backend/internal/engine"
	"github.com/DoyleJ11/inwo-backend/internal/eventbus"
	"github.com/DoyleJ11/inwo-backend/internal/registry"
	"github.com/DoyleJ11/inwo-backend/pkg/protocol"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("hub is closed")

type Msg interface{ isHubMsg() }

// Connect registers the outbox a connection wants its events written to.
type Connect struct {
	ConnID string
	Outbox chan protocol.Envelope
}

// Disconnect removes the connection from every room it sits in and closes its outbox.
type Disconnect struct {
	ConnID string
}

type FromClient struct {
	ConnID string
	Msg    protocol.Inbound
}

// Inspect replies with a copy of one room's state, or nil if the room does not exist.
type Inspect struct {
	RoomID string
	Reply  chan *View
}

type GetStats struct {
	Reply chan Stats
}

type Shutdown struct{}

func (Connect) isHubMsg()    {}
func (Disconnect) isHubMsg() {}
func (FromClient) isHubMsg() {}
func (Inspect) isHubMsg()    {}
func (GetStats) isHubMsg()   {}
func (Shutdown) isHubMsg()   {}

type View struct {
	RoomID       string
	Players      []engine.Player
	MaxPlayers   int
	Phase        engine.Phase
	TurnNumber   int
	CurrentTurn  string
	Table        []engine.CardInstance
	ReadyCount   int
	KnockedCount int
}

type Stats struct {
	Rooms       int            `json:"rooms"`
	Connections int            `json:"connections"`
	Players     map[string]int `json:"players"`
}

// Hub is the single event loop that owns every room. Each message runs to completion
// before the next one is read, so sessions need no locking.
type Hub struct {
	inbox     chan Msg
	rooms     *registry.Registry
	clients   map[string]chan protocol.Envelope
	dropped   []string
	publisher eventbus.Publisher
	log       *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

type Option func(*Hub)

func WithLogger(l *zap.Logger) Option { return func(h *Hub) { h.log = l } }

func WithPublisher(p eventbus.Publisher) Option { return func(h *Hub) { h.publisher = p } }

func WithRegistry(r *registry.Registry) Option { return func(h *Hub) { h.rooms = r } }

func NewHub(parent context.Context, opts ...Option) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:     make(chan Msg, 256),
		rooms:     registry.New(),
		clients:   make(map[string]chan protocol.Envelope),
		publisher: eventbus.Nop{},
		log:       zap.NewNop(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}

	go h.loop()
	return h
}

// Expose the inbox so tests or the WS layer can send messages.
func (h *Hub) Inbox() chan<- Msg { return h.inbox }

// Done is closed once the loop has exited.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Send queues m unless ctx ends or the hub has stopped first.
func (h *Hub) Send(ctx context.Context, m Msg) error {
	select {
	case <-h.done:
		return ErrClosed
	default:
	}

	select {
	case h.inbox <- m:
		return nil
	case <-h.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats asks the loop for a room/connection summary.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	if err := h.Send(ctx, GetStats{Reply: reply}); err != nil {
		return Stats{}, err
	}
	select {
	case st := <-reply:
		return st, nil
	case <-h.done:
		return Stats{}, ErrClosed
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (h *Hub) loop() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Connect:
				h.clients[msg.ConnID] = msg.Outbox
				h.log.Debug("connection registered", zap.String("conn_id", msg.ConnID))

			case Disconnect:
				h.disconnect(msg.ConnID)

			case FromClient:
				h.handle(msg.ConnID, msg.Msg)

			case Inspect:
				msg.Reply <- h.view(msg.RoomID)

			case GetStats:
				msg.Reply <- Stats{
					Rooms:       h.rooms.Len(),
					Connections: len(h.clients),
					Players:     h.rooms.PlayerCounts(),
				}

			case Shutdown:
				h.shutdown()
				return
			}

			h.flushDropped()
		}
	}
}

func (h *Hub) handle(connID string, in protocol.Inbound) {
	roomID := in.Room()
	log := h.log.With(zap.String("room_id", roomID), zap.String("conn_id", connID))
	if roomID == "" {
		log.Debug("message without room ignored")
		return
	}

	var s *engine.Session
	if join, ok := in.(protocol.Join); ok {
		var created bool
		s, created = h.rooms.ResolveOrCreate(roomID, join.Capacity)
		if created {
			log.Info("room created", zap.Int("max_players", s.MaxPlayers))
		}
	} else {
		var ok bool
		s, ok = h.rooms.Get(roomID)
		if !ok {
			log.Debug("message for unknown room ignored")
			return
		}
	}

	events, err := engine.Apply(s, connID, in)
	switch {
	case errors.Is(err, engine.ErrRoomFull):
		log.Info("join rejected, room full", zap.Int("max_players", s.MaxPlayers))
	case err != nil:
		log.Debug("message ignored", zap.Error(err))
	}

	h.deliver(s, connID, events)

	if _, ok := in.(protocol.Leave); ok {
		h.destroyIfEmpty(roomID)
	}
}

func (h *Hub) disconnect(connID string) {
	if out, ok := h.clients[connID]; ok {
		delete(h.clients, connID)
		close(out)
	}
	h.leaveAll(connID)
}

// leaveAll scans every room rather than trusting a single membership.
func (h *Hub) leaveAll(connID string) {
	for _, s := range h.rooms.RoomsOf(connID) {
		events, err := s.Leave(connID)
		if err != nil {
			continue
		}
		h.log.Info("player left",
			zap.String("room_id", s.RoomID),
			zap.String("conn_id", connID),
			zap.Int("player_count", len(s.Players)))
		h.deliver(s, connID, events)
		h.destroyIfEmpty(s.RoomID)
	}
}

func (h *Hub) destroyIfEmpty(roomID string) {
	if h.rooms.DestroyIfEmpty(roomID) {
		h.log.Info("room destroyed", zap.String("room_id", roomID))
	}
}

// deliver fans events out. Recipients are computed from the roster after the mutation.
func (h *Hub) deliver(s *engine.Session, sender string, events []engine.Event) {
	for _, ev := range events {
		env := protocol.Wrap(ev.Payload)

		switch ev.To {
		case engine.ToSender:
			h.send(sender, env)
		case engine.ToOthers:
			for _, p := range s.Players {
				if p.ConnectionID != sender {
					h.send(p.ConnectionID, env)
				}
			}
		case engine.ToAll:
			for _, p := range s.Players {
				h.send(p.ConnectionID, env)
			}
		}

		h.publisher.Publish(s.RoomID, env)
	}
}

func (h *Hub) send(connID string, env protocol.Envelope) {
	out, ok := h.clients[connID]
	if !ok {
		return
	}
	select {
	case out <- env:
	default:
		// Client is slow/full - drop them once this message is done.
		h.log.Warn("outbox full, dropping connection",
			zap.String("conn_id", connID),
			zap.String("event", string(env.Type)))
		close(out)
		delete(h.clients, connID)
		h.dropped = append(h.dropped, connID)
	}
}

func (h *Hub) flushDropped() {
	for len(h.dropped) > 0 {
		connID := h.dropped[0]
		h.dropped = h.dropped[1:]
		h.leaveAll(connID)
	}
}

func (h *Hub) view(roomID string) *View {
	s, ok := h.rooms.Get(roomID)
	if !ok {
		return nil
	}
	return &View{
		RoomID:       s.RoomID,
		Players:      slices.Clone(s.Players),
		MaxPlayers:   s.MaxPlayers,
		Phase:        s.Phase,
		TurnNumber:   s.TurnNumber,
		CurrentTurn:  s.CurrentTurnPlayerID,
		Table:        slices.Clone(s.Table),
		ReadyCount:   s.ReadyCount(),
		KnockedCount: s.KnockedCount(),
	}
}

func (h *Hub) shutdown() {
	for id, ch := range h.clients {
		close(ch) // Tell client no more events
		delete(h.clients, id)
	}
	h.drainInbox()
	h.rooms.Teardown()
	h.cancel()
	h.log.Info("hub stopped")
}

// drainInbox settles messages queued before the loop stopped: outboxes of pending
// connects are closed and pending inspections get a nil view.
func (h *Hub) drainInbox() {
	for {
		select {
		case m := <-h.inbox:
			switch msg := m.(type) {
			case Connect:
				close(msg.Outbox)
			case Inspect:
				select {
				case msg.Reply <- nil:
				default:
				}
			}
		default:
			return
		}
	}
}
