package engine

import (
	"slices"

	"github.com/DoyleJ11/inwo-backend/pkg/protocol"
)

// Join adds the sender to the roster. A repeated join from a member only re-sends the
// snapshot; a join into a full room is answered with room-full and changes nothing.
func (s *Session) Join(sender, name string) ([]Event, error) {
	if s.IsMember(sender) {
		return []Event{{To: ToSender, Payload: s.Snapshot()}}, nil
	}

	if len(s.Players) >= s.MaxPlayers {
		return []Event{{To: ToSender, Payload: protocol.RoomFull{
			RoomID:     s.RoomID,
			MaxPlayers: s.MaxPlayers,
		}}}, ErrRoomFull
	}

	s.Players = append(s.Players, Player{ConnectionID: sender, DisplayName: name})

	return []Event{
		{To: ToSender, Payload: s.Snapshot()},
		{To: ToOthers, Payload: protocol.PlayerJoined{
			PlayerID:           sender,
			PlayerName:         name,
			CurrentPlayerCount: len(s.Players),
			MaxPlayers:         s.MaxPlayers,
		}},
	}, nil
}

// Leave removes the sender and clears its ready and knock signals. Remaining players
// still have to send their own signals; a departure never starts a game or ends a round.
// If the leaver held the turn, it passes to whoever now sits in that seat.
func (s *Session) Leave(sender string) ([]Event, error) {
	idx := s.playerIndex(sender)
	if idx < 0 {
		return nil, ErrNotMember
	}

	gone := s.Players[idx]
	s.Players = slices.Delete(s.Players, idx, idx+1)
	delete(s.ready, sender)
	delete(s.knocked, sender)
	delete(s.deckReady, sender)

	events := []Event{{To: ToOthers, Payload: protocol.PlayerLeft{
		PlayerID:         gone.ConnectionID,
		PlayerName:       gone.DisplayName,
		RemainingPlayers: len(s.Players),
	}}}

	if s.Empty() {
		s.CurrentTurnPlayerID = ""
		return events, nil
	}

	if s.Phase == PhasePlaying && s.CurrentTurnPlayerID == gone.ConnectionID {
		s.CurrentTurnPlayerID = s.Players[idx%len(s.Players)].ConnectionID
		events = append(events, Event{To: ToAll, Payload: protocol.TurnChanged{CurrentTurn: s.CurrentTurnPlayerID}})
	}

	return events, nil
}
