package engine

import "github.com/DoyleJ11/inwo-backend/pkg/protocol"

// SetReady records a "setup done" signal. Duplicates are absorbed. Once every player is
// ready the room moves to Playing with a random starting player.
func (s *Session) SetReady(sender string) ([]Event, error) {
	if !s.IsMember(sender) {
		return nil, ErrNotMember
	}
	if s.Phase != PhaseSetup {
		return nil, ErrWrongPhase
	}
	if s.IsReady(sender) {
		return nil, nil
	}

	s.ready[sender] = struct{}{}

	if len(s.ready) == len(s.Players) {
		return s.startGame(), nil
	}

	return []Event{{To: ToAll, Payload: protocol.SetupProgress{
		ReadyCount:    len(s.ready),
		RequiredCount: len(s.Players),
		MaxPlayers:    s.MaxPlayers,
	}}}, nil
}

func (s *Session) startGame() []Event {
	starter := s.Players[s.rng.IntN(len(s.Players))]

	s.Phase = PhasePlaying
	s.CurrentTurnPlayerID = starter.ConnectionID
	s.TurnNumber = 1
	clear(s.knocked)
	clear(s.ready)

	return []Event{{To: ToAll, Payload: protocol.GameStarted{
		CurrentTurn:        starter.ConnectionID,
		StartingPlayerName: starter.DisplayName,
		TurnNumber:         s.TurnNumber,
	}}}
}

// Knock ends a turn. Any member may knock, not only the current player; the turn always
// advances one seat past the current player.
func (s *Session) Knock(sender string) ([]Event, error) {
	if !s.IsMember(sender) {
		return nil, ErrNotMember
	}
	if s.Phase != PhasePlaying {
		return nil, ErrWrongPhase
	}

	s.knocked[sender] = struct{}{}

	cur := s.playerIndex(s.CurrentTurnPlayerID)
	next := (cur + 1) % len(s.Players)
	s.CurrentTurnPlayerID = s.Players[next].ConnectionID

	var events []Event
	if len(s.knocked) >= len(s.Players) {
		events = append(events, s.completeRound())
	}
	events = append(events, Event{To: ToAll, Payload: protocol.TurnChanged{CurrentTurn: s.CurrentTurnPlayerID}})

	return events, nil
}

func (s *Session) completeRound() Event {
	s.TurnNumber++
	clear(s.knocked)
	return Event{To: ToAll, Payload: protocol.TurnNumberUpdated{TurnNumber: s.TurnNumber}}
}
