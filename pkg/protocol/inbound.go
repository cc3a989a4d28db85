package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformed = errors.New("malformed message")
var ErrUnknownType = errors.New("unknown message type")

type InboundType string

const (
	TypeJoin               InboundType = "join"
	TypeSetReady           InboundType = "set-ready"
	TypeEndTurn            InboundType = "end-turn"
	TypePlaceCard          InboundType = "place-card"
	TypeUpdateCard         InboundType = "update-card"
	TypeUpdateCardPosition InboundType = "update-card-position"
	TypeRemoveCard         InboundType = "remove-card"
	TypeHandCountUpdate    InboundType = "hand-count-update"
	TypeLeave              InboundType = "leave"
	TypeSetDeck            InboundType = "set-deck"
	TypeRollDice           InboundType = "roll-dice"
	TypeCloseDice          InboundType = "close-dice"
	TypePlayNWO            InboundType = "play-nwo"
	TypeRemoveNWO          InboundType = "remove-nwo"
	TypeShowCard           InboundType = "show-card"
)

// Older clients still speak the socket.io event names.
var aliases = map[string]InboundType{
	"join-room":        TypeJoin,
	"setup-done":       TypeSetReady,
	"knock":            TypeEndTurn,
	"move-card":        TypePlaceCard,
	"hand-update":      TypeHandCountUpdate,
	"show-card-to-all": TypeShowCard,
}

// Inbound is the closed set of client messages. Every variant names the room it targets.
type Inbound interface {
	Room() string
	isInbound()
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CardRef addresses a table entry. CardID wins over CardIndex when both are set.
type CardRef struct {
	CardIndex *int   `json:"cardIndex,omitempty"`
	CardID    string `json:"cardId,omitempty"`
}

type Join struct {
	RoomID   string `json:"roomId"`
	Name     string `json:"playerName"`
	Capacity int    `json:"playerCount,omitempty"`
}

type SetReady struct {
	RoomID string `json:"roomId"`
}

type EndTurn struct {
	RoomID string `json:"roomId"`
}

type PlaceCard struct {
	RoomID   string          `json:"roomId"`
	Card     json.RawMessage `json:"card"`
	Position Position        `json:"position"`
}

type UpdateCard struct {
	RoomID string `json:"roomId"`
	CardRef
	Rotation *int `json:"rotation,omitempty"`
	Tokens   *int `json:"tokens,omitempty"`
}

type UpdateCardPosition struct {
	RoomID string `json:"roomId"`
	CardRef
	Position Position `json:"position"`
}

type RemoveCard struct {
	RoomID string `json:"roomId"`
	CardRef
}

type HandCountUpdate struct {
	RoomID     string          `json:"roomId"`
	HandCounts json.RawMessage `json:"handCounts"`
}

type Leave struct {
	RoomID string `json:"roomId"`
}

type SetDeck struct {
	RoomID string          `json:"roomId"`
	Deck   json.RawMessage `json:"deck,omitempty"`
}

type RollDice struct {
	RoomID string `json:"roomId"`
	Sides  int    `json:"sides,omitempty"`
}

type CloseDice struct {
	RoomID string `json:"roomId"`
}

type PlayNWO struct {
	RoomID string          `json:"roomId"`
	Color  string          `json:"color"`
	Card   json.RawMessage `json:"card"`
}

type RemoveNWO struct {
	RoomID string `json:"roomId"`
	Color  string `json:"color"`
}

type ShowCard struct {
	RoomID string          `json:"roomId"`
	Card   json.RawMessage `json:"card"`
}

func (m Join) Room() string               { return m.RoomID }
func (m SetReady) Room() string           { return m.RoomID }
func (m EndTurn) Room() string            { return m.RoomID }
func (m PlaceCard) Room() string          { return m.RoomID }
func (m UpdateCard) Room() string         { return m.RoomID }
func (m UpdateCardPosition) Room() string { return m.RoomID }
func (m RemoveCard) Room() string         { return m.RoomID }
func (m HandCountUpdate) Room() string    { return m.RoomID }
func (m Leave) Room() string              { return m.RoomID }
func (m SetDeck) Room() string            { return m.RoomID }
func (m RollDice) Room() string           { return m.RoomID }
func (m CloseDice) Room() string          { return m.RoomID }
func (m PlayNWO) Room() string            { return m.RoomID }
func (m RemoveNWO) Room() string          { return m.RoomID }
func (m ShowCard) Room() string           { return m.RoomID }

func (Join) isInbound()               {}
func (SetReady) isInbound()           {}
func (EndTurn) isInbound()            {}
func (PlaceCard) isInbound()          {}
func (UpdateCard) isInbound()         {}
func (UpdateCardPosition) isInbound() {}
func (RemoveCard) isInbound()         {}
func (HandCountUpdate) isInbound()    {}
func (Leave) isInbound()              {}
func (SetDeck) isInbound()            {}
func (RollDice) isInbound()           {}
func (CloseDice) isInbound()          {}
func (PlayNWO) isInbound()            {}
func (RemoveNWO) isInbound()          {}
func (ShowCard) isInbound()           {}

// Decode parses one client frame into its variant.
func Decode(data []byte) (Inbound, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	t := InboundType(head.Type)
	if alias, ok := aliases[head.Type]; ok {
		t = alias
	}

	switch t {
	case TypeJoin:
		return decodeAs[Join](data)
	case TypeSetReady:
		return decodeAs[SetReady](data)
	case TypeEndTurn:
		return decodeAs[EndTurn](data)
	case TypePlaceCard:
		return decodeAs[PlaceCard](data)
	case TypeUpdateCard:
		return decodeAs[UpdateCard](data)
	case TypeUpdateCardPosition:
		return decodeAs[UpdateCardPosition](data)
	case TypeRemoveCard:
		return decodeAs[RemoveCard](data)
	case TypeHandCountUpdate:
		return decodeAs[HandCountUpdate](data)
	case TypeLeave:
		return decodeAs[Leave](data)
	case TypeSetDeck:
		return decodeAs[SetDeck](data)
	case TypeRollDice:
		return decodeAs[RollDice](data)
	case TypeCloseDice:
		return decodeAs[CloseDice](data)
	case TypePlayNWO:
		return decodeAs[PlayNWO](data)
	case TypeRemoveNWO:
		return decodeAs[RemoveNWO](data)
	case TypeShowCard:
		return decodeAs[ShowCard](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, head.Type)
	}
}

func decodeAs[T Inbound](data []byte) (Inbound, error) {
	var m T
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return m, nil
}
