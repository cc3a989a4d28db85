package engine

import (
	"encoding/json"
	"errors"

	"github.com/DoyleJ11/inwo-backend/pkg/protocol"
)

var ErrNotMember = errors.New("sender is not a member of the room")
var ErrWrongPhase = errors.New("not allowed in current phase")
var ErrCardNotFound = errors.New("card not on table")
var ErrRoomFull = errors.New("room is full")
var ErrUnsupportedMessage = errors.New("unsupported message")

type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhasePlaying Phase = "playing"
)

// Audience selects who receives an Event, relative to the sender of the message.
type Audience int

const (
	ToSender Audience = iota
	ToOthers
	ToAll
)

type Event struct {
	To      Audience
	Payload protocol.Outbound
}

// Rand is satisfied by *math/rand/v2.Rand.
type Rand interface {
	IntN(n int) int
}

type Player struct {
	ConnectionID string
	DisplayName  string
}

type CardInstance struct {
	ID                string
	Card              json.RawMessage
	Position          protocol.Position
	Rotation          int
	Tokens            int
	OwnerConnectionID string
}

type Session struct {
	RoomID              string
	Players             []Player
	MaxPlayers          int
	Phase               Phase
	TurnNumber          int
	CurrentTurnPlayerID string
	Table               []CardInstance

	ready     map[string]struct{}
	knocked   map[string]struct{}
	deckReady map[string]struct{}
	nwo       map[string]json.RawMessage

	rng   Rand
	newID func() string
}

// Apply runs one client message against the session. Events are returned even when err is
// non-nil (a full room still answers the joiner); err only explains a no-op or rejection.
func Apply(s *Session, sender string, msg protocol.Inbound) ([]Event, error) {
	switch m := msg.(type) {
	case protocol.Join:
		return s.Join(sender, m.Name)
	case protocol.Leave:
		return s.Leave(sender)
	case protocol.SetReady:
		return s.SetReady(sender)
	case protocol.EndTurn:
		return s.Knock(sender)
	case protocol.PlaceCard:
		return s.PlaceCard(sender, m.Card, m.Position)
	case protocol.UpdateCard:
		return s.UpdateCard(sender, m.CardRef, m.Rotation, m.Tokens)
	case protocol.UpdateCardPosition:
		return s.UpdateCardPosition(sender, m.CardRef, m.Position)
	case protocol.RemoveCard:
		return s.RemoveCard(sender, m.CardRef)
	case protocol.HandCountUpdate:
		return s.RelayHandCounts(sender, m.HandCounts)
	case protocol.SetDeck:
		return s.SetDeck(sender)
	case protocol.RollDice:
		return s.RollDice(sender, m.Sides)
	case protocol.CloseDice:
		return s.CloseDice(sender)
	case protocol.PlayNWO:
		return s.PlayNWO(sender, m.Color, m.Card)
	case protocol.RemoveNWO:
		return s.RemoveNWO(sender, m.Color)
	case protocol.ShowCard:
		return s.ShowCard(sender, m.Card)
	default:
		return nil, ErrUnsupportedMessage
	}
}
