package engine

import (
	"encoding/json"

	"github.com/DoyleJ11/inwo-backend/pkg/protocol"
)

const (
	defaultDieSides = 6
	minDieSides     = 2
	maxDieSides     = 100
)

// RelayHandCounts forwards the sender's hand counts untouched.
func (s *Session) RelayHandCounts(sender string, counts json.RawMessage) ([]Event, error) {
	if !s.IsMember(sender) {
		return nil, ErrNotMember
	}
	return []Event{{To: ToOthers, Payload: protocol.OpponentHandUpdate{
		PlayerID:   sender,
		HandCounts: counts,
	}}}, nil
}

// SetDeck only records that the sender has a deck; the contents stay on the client.
func (s *Session) SetDeck(sender string) ([]Event, error) {
	if !s.IsMember(sender) {
		return nil, ErrNotMember
	}
	s.deckReady[sender] = struct{}{}
	return []Event{{To: ToOthers, Payload: protocol.PlayerDeckReady{PlayerID: sender}}}, nil
}

func (s *Session) RollDice(sender string, sides int) ([]Event, error) {
	if !s.IsMember(sender) {
		return nil, ErrNotMember
	}
	switch {
	case sides <= 0:
		sides = defaultDieSides
	case sides < minDieSides:
		sides = minDieSides
	case sides > maxDieSides:
		sides = maxDieSides
	}

	return []Event{{To: ToAll, Payload: protocol.DiceRolled{
		PlayerID: sender,
		Dice1:    s.rng.IntN(sides) + 1,
		Dice2:    s.rng.IntN(sides) + 1,
	}}}, nil
}

func (s *Session) CloseDice(sender string) ([]Event, error) {
	if !s.IsMember(sender) {
		return nil, ErrNotMember
	}
	return []Event{{To: ToOthers, Payload: protocol.DiceClosed{}}}, nil
}

// PlayNWO fills the New World Order slot for a colour, replacing any previous card.
func (s *Session) PlayNWO(sender, color string, card json.RawMessage) ([]Event, error) {
	if !s.IsMember(sender) {
		return nil, ErrNotMember
	}
	s.nwo[color] = card
	return []Event{{To: ToOthers, Payload: protocol.NWOPlayed{Color: color, Card: card}}}, nil
}

func (s *Session) RemoveNWO(sender, color string) ([]Event, error) {
	if !s.IsMember(sender) {
		return nil, ErrNotMember
	}
	delete(s.nwo, color)
	return []Event{{To: ToOthers, Payload: protocol.NWORemoved{Color: color}}}, nil
}

func (s *Session) ShowCard(sender string, card json.RawMessage) ([]Event, error) {
	if !s.IsMember(sender) {
		return nil, ErrNotMember
	}
	return []Event{{To: ToOthers, Payload: protocol.ShowCardToAll{PlayerID: sender, Card: card}}}, nil
}
