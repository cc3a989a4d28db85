package engine

import (
	"encoding/json"
	"math/rand/v2"
	"slices"

	"github.com/DoyleJ11/inwo-backend/pkg/protocol"
	"github.com/google/uuid"
)

const DefaultCapacity = 2

type Option func(*Session)

// WithRand replaces the source used to pick the starting player and roll dice.
func WithRand(r Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithIDs replaces the card id generator.
func WithIDs(next func() string) Option {
	return func(s *Session) { s.newID = next }
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

func NewSession(roomID string, maxPlayers int, opts ...Option) *Session {
	if maxPlayers <= 0 {
		maxPlayers = DefaultCapacity
	}
	s := &Session{
		RoomID:     roomID,
		MaxPlayers: maxPlayers,
		Phase:      PhaseSetup,
		TurnNumber: 1,
		ready:      map[string]struct{}{},
		knocked:    map[string]struct{}{},
		deckReady:  map[string]struct{}{},
		nwo:        map[string]json.RawMessage{},
		rng:        globalRand{},
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Empty() bool { return len(s.Players) == 0 }

func (s *Session) IsMember(connID string) bool { return s.playerIndex(connID) >= 0 }

func (s *Session) ReadyCount() int { return len(s.ready) }

func (s *Session) KnockedCount() int { return len(s.knocked) }

func (s *Session) IsReady(connID string) bool {
	_, ok := s.ready[connID]
	return ok
}

func (s *Session) playerIndex(connID string) int {
	return slices.IndexFunc(s.Players, func(p Player) bool { return p.ConnectionID == connID })
}

// Snapshot is the full room view handed to a joining player.
func (s *Session) Snapshot() protocol.RoomJoined {
	players := make([]protocol.PlayerInfo, 0, len(s.Players))
	for _, p := range s.Players {
		_, deck := s.deckReady[p.ConnectionID]
		players = append(players, protocol.PlayerInfo{
			ID:        p.ConnectionID,
			Name:      p.DisplayName,
			Ready:     s.IsReady(p.ConnectionID),
			DeckReady: deck,
		})
	}

	table := make([]protocol.TableCard, 0, len(s.Table))
	for _, c := range s.Table {
		table = append(table, protocol.TableCard{
			CardID:   c.ID,
			Card:     c.Card,
			Position: c.Position,
			Rotation: c.Rotation,
			Tokens:   c.Tokens,
			PlayerID: c.OwnerConnectionID,
		})
	}

	var nwo map[string]json.RawMessage
	if len(s.nwo) > 0 {
		nwo = make(map[string]json.RawMessage, len(s.nwo))
		for color, card := range s.nwo {
			nwo[color] = card
		}
	}

	return protocol.RoomJoined{
		RoomID:     s.RoomID,
		Players:    players,
		MaxPlayers: s.MaxPlayers,
		GameState: protocol.GameState{
			Phase:       string(s.Phase),
			TurnNumber:  s.TurnNumber,
			CurrentTurn: s.CurrentTurnPlayerID,
			Table:       table,
			NWO:         nwo,
		},
	}
}

func normalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	snapped := ((deg + 45) / 90) * 90
	return snapped % 360
}

func normalizeTokens(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
