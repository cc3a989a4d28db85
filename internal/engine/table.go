package engine

import (
	"encoding/json"
	"slices"

	"github.com/DoyleJ11/inwo-backend/pkg/protocol"
)

const zonePlayArea = "play-area"

// PlaceCard appends a card to the shared table. The payload is never inspected.
func (s *Session) PlaceCard(sender string, card json.RawMessage, pos protocol.Position) ([]Event, error) {
	if !s.IsMember(sender) {
		return nil, ErrNotMember
	}

	inst := CardInstance{
		ID:                s.newID(),
		Card:              card,
		Position:          pos,
		OwnerConnectionID: sender,
	}
	s.Table = append(s.Table, inst)

	return []Event{{To: ToOthers, Payload: protocol.CardMoved{
		PlayerID:  sender,
		CardID:    inst.ID,
		CardIndex: len(s.Table) - 1,
		Card:      inst.Card,
		To:        zonePlayArea,
		Position:  inst.Position,
		Rotation:  inst.Rotation,
		Tokens:    inst.Tokens,
	}}}, nil
}

func (s *Session) UpdateCard(sender string, ref protocol.CardRef, rotation, tokens *int) ([]Event, error) {
	if !s.IsMember(sender) {
		return nil, ErrNotMember
	}
	idx, ok := s.resolve(ref)
	if !ok {
		return nil, ErrCardNotFound
	}
	if rotation == nil && tokens == nil {
		return nil, nil
	}

	c := &s.Table[idx]
	out := protocol.CardUpdated{PlayerID: sender, CardID: c.ID, CardIndex: idx}
	if rotation != nil {
		r := normalizeRotation(*rotation)
		c.Rotation = r
		out.Rotation = &r
	}
	if tokens != nil {
		n := normalizeTokens(*tokens)
		c.Tokens = n
		out.Tokens = &n
	}

	return []Event{{To: ToOthers, Payload: out}}, nil
}

func (s *Session) UpdateCardPosition(sender string, ref protocol.CardRef, pos protocol.Position) ([]Event, error) {
	if !s.IsMember(sender) {
		return nil, ErrNotMember
	}
	idx, ok := s.resolve(ref)
	if !ok {
		return nil, ErrCardNotFound
	}

	s.Table[idx].Position = pos

	return []Event{{To: ToOthers, Payload: protocol.CardPositionUpdated{
		PlayerID:  sender,
		CardID:    s.Table[idx].ID,
		CardIndex: idx,
		Position:  pos,
	}}}, nil
}

// RemoveCard deletes a table entry; every later entry shifts down by one index.
func (s *Session) RemoveCard(sender string, ref protocol.CardRef) ([]Event, error) {
	if !s.IsMember(sender) {
		return nil, ErrNotMember
	}
	idx, ok := s.resolve(ref)
	if !ok {
		return nil, ErrCardNotFound
	}

	id := s.Table[idx].ID
	s.Table = slices.Delete(s.Table, idx, idx+1)

	return []Event{{To: ToOthers, Payload: protocol.CardRemoved{
		PlayerID:  sender,
		CardID:    id,
		CardIndex: idx,
	}}}, nil
}

func (s *Session) resolve(ref protocol.CardRef) (int, bool) {
	if ref.CardID != "" {
		idx := slices.IndexFunc(s.Table, func(c CardInstance) bool { return c.ID == ref.CardID })
		return idx, idx >= 0
	}
	if ref.CardIndex == nil {
		return 0, false
	}
	idx := *ref.CardIndex
	if idx < 0 || idx >= len(s.Table) {
		return 0, false
	}
	return idx, true
}
