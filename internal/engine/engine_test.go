package engine

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/DoyleJ11/inwo-backend/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("card-%d", n)
	}
}

func newTestSession(capacity int, pick int) *Session {
	return NewSession("ABCDEF", capacity, WithRand(fixedRand(pick)), WithIDs(seqIDs()))
}

func mustJoin(t *testing.T, s *Session, id, name string) {
	t.Helper()
	_, err := s.Join(id, name)
	require.NoError(t, err, "join %s", id)
}

// playing joins ids in order and readies all of them; pick chooses the starter.
func playing(t *testing.T, pick int, ids ...string) *Session {
	t.Helper()
	s := newTestSession(len(ids), pick)
	for _, id := range ids {
		mustJoin(t, s, id, id)
	}
	for _, id := range ids {
		_, err := s.SetReady(id)
		require.NoError(t, err)
	}
	require.Equal(t, PhasePlaying, s.Phase)
	return s
}

func payloadsOf(events []Event) []protocol.OutboundType {
	out := make([]protocol.OutboundType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Payload.Type())
	}
	return out
}

func containsEvent(events []Event, t protocol.OutboundType) bool {
	for _, e := range events {
		if e.Payload.Type() == t {
			return true
		}
	}
	return false
}

func intp(v int) *int { return &v }

func TestJoin_CapacityNeverExceeded(t *testing.T) {
	for capacity := 1; capacity <= 4; capacity++ {
		t.Run(fmt.Sprintf("capacity %d", capacity), func(t *testing.T) {
			s := newTestSession(capacity, 0)
			for i := 0; i < capacity; i++ {
				mustJoin(t, s, fmt.Sprintf("c%d", i), fmt.Sprintf("P%d", i))
			}

			events, err := s.Join("late", "Late")
			require.ErrorIs(t, err, ErrRoomFull)
			assert.Len(t, s.Players, capacity)
			require.Len(t, events, 1)
			assert.Equal(t, ToSender, events[0].To)
			assert.Equal(t, protocol.RoomFull{RoomID: "ABCDEF", MaxPlayers: capacity}, events[0].Payload)
		})
	}
}

func TestJoin_DefaultCapacity(t *testing.T) {
	s := NewSession("R", 0)
	assert.Equal(t, DefaultCapacity, s.MaxPlayers)
}

func TestJoin_DuplicateIsIdempotent(t *testing.T) {
	s := newTestSession(2, 0)
	mustJoin(t, s, "a", "Alice")

	events, err := s.Join("a", "Alice")
	require.NoError(t, err)
	assert.Len(t, s.Players, 1, "duplicate join added a player")
	require.Len(t, events, 1)
	assert.Equal(t, protocol.EvtRoomJoined, events[0].Payload.Type())
	assert.Equal(t, ToSender, events[0].To)
}

func TestJoin_SnapshotAndBroadcast(t *testing.T) {
	s := newTestSession(2, 0)
	mustJoin(t, s, "a", "Alice")
	_, _ = s.PlaceCard("a", json.RawMessage(`{"type":"groups"}`), protocol.Position{X: 1, Y: 2})

	events, err := s.Join("b", "Bob")
	require.NoError(t, err)
	require.Len(t, events, 2)

	snap, ok := events[0].Payload.(protocol.RoomJoined)
	require.True(t, ok, "first event should be the snapshot")
	assert.Equal(t, ToSender, events[0].To)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, "Alice", snap.Players[0].Name)
	assert.Equal(t, "Bob", snap.Players[1].Name)
	assert.Len(t, snap.GameState.Table, 1)
	assert.Equal(t, string(PhaseSetup), snap.GameState.Phase)

	joined, ok := events[1].Payload.(protocol.PlayerJoined)
	require.True(t, ok)
	assert.Equal(t, ToOthers, events[1].To)
	assert.Equal(t, "b", joined.PlayerID)
	assert.Equal(t, 2, joined.CurrentPlayerCount)
}

func TestSetReady_Idempotent(t *testing.T) {
	s := newTestSession(3, 0)
	mustJoin(t, s, "a", "Alice")
	mustJoin(t, s, "b", "Bob")
	mustJoin(t, s, "c", "Carol")

	first, _ := s.SetReady("a")
	second, err := s.SetReady("a")
	require.NoError(t, err)
	assert.Equal(t, 1, s.ReadyCount())
	assert.Empty(t, second, "duplicate ready should emit nothing")

	require.Len(t, first, 1)
	assert.Equal(t, protocol.SetupProgress{ReadyCount: 1, RequiredCount: 3, MaxPlayers: 3}, first[0].Payload)
}

func TestSetReady_AllReadyStartsGame(t *testing.T) {
	s := newTestSession(2, 1)
	mustJoin(t, s, "a", "Alice")
	mustJoin(t, s, "b", "Bob")
	_, _ = s.SetReady("a")

	events, err := s.SetReady("b")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ToAll, events[0].To)
	assert.Equal(t, protocol.GameStarted{CurrentTurn: "b", StartingPlayerName: "Bob", TurnNumber: 1}, events[0].Payload)

	assert.Equal(t, PhasePlaying, s.Phase)
	assert.Zero(t, s.ReadyCount())
	assert.Zero(t, s.KnockedCount())

	_, err = s.SetReady("a")
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestKnock_RejectedDuringSetup(t *testing.T) {
	s := newTestSession(2, 0)
	mustJoin(t, s, "a", "Alice")

	_, err := s.Knock("a")
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestKnock_RoundCompletion(t *testing.T) {
	orders := [][]string{{"a", "b"}, {"b", "a"}}
	for _, order := range orders {
		t.Run(fmt.Sprintf("%v", order), func(t *testing.T) {
			s := playing(t, 0, "a", "b")

			before := s.TurnNumber
			var last []Event
			for _, id := range order {
				var err error
				last, err = s.Knock(id)
				require.NoError(t, err, "knock %s", id)
			}
			assert.Equal(t, before+1, s.TurnNumber)
			assert.Zero(t, s.KnockedCount(), "knocked set not cleared")
			// round number goes out before the new turn holder
			assert.Equal(t, []protocol.OutboundType{protocol.EvtTurnNumberUpdated, protocol.EvtTurnChanged}, payloadsOf(last))
		})
	}
}

func TestKnock_DuplicateDoesNotCompleteRound(t *testing.T) {
	s := playing(t, 0, "a", "b")

	_, _ = s.Knock("a")
	events, _ := s.Knock("a")
	assert.False(t, containsEvent(events, protocol.EvtTurnNumberUpdated))
	assert.Equal(t, 1, s.TurnNumber)
	assert.Equal(t, 1, s.KnockedCount())
	// the turn still advances on every knock
	assert.Equal(t, "a", s.CurrentTurnPlayerID)
}

func TestKnock_AdvancesFromCurrentPlayerNotSender(t *testing.T) {
	s := playing(t, 0, "a", "b", "c")
	require.Equal(t, "a", s.CurrentTurnPlayerID)

	// c knocks out of turn; rotation still moves one seat past a
	events, err := s.Knock("c")
	require.NoError(t, err)
	assert.Equal(t, "b", s.CurrentTurnPlayerID)

	last := events[len(events)-1]
	assert.Equal(t, ToAll, last.To)
	assert.Equal(t, protocol.TurnChanged{CurrentTurn: "b"}, last.Payload)
}

func TestScenario_TwoPlayerGame(t *testing.T) {
	s := newTestSession(2, 0)

	events, _ := s.Join("alice", "Alice")
	assert.Len(t, s.Players, 1)
	assert.Equal(t, PhaseSetup, s.Phase)
	assert.Len(t, events, 2)

	events, _ = s.Join("bob", "Bob")
	joined := events[1].Payload.(protocol.PlayerJoined)
	assert.Equal(t, "bob", joined.PlayerID)
	assert.Equal(t, ToOthers, events[1].To)

	_, _ = s.SetReady("alice")
	events, _ = s.SetReady("bob")
	started := events[0].Payload.(protocol.GameStarted)
	assert.Equal(t, "alice", started.CurrentTurn)
	assert.Equal(t, 1, started.TurnNumber)

	events, _ = s.Knock("bob")
	assert.Equal(t, []protocol.OutboundType{protocol.EvtTurnChanged}, payloadsOf(events))
	assert.Equal(t, 1, s.TurnNumber)
	assert.Equal(t, "bob", s.CurrentTurnPlayerID)

	events, _ = s.Knock("alice")
	assert.True(t, containsEvent(events, protocol.EvtTurnChanged))
	assert.True(t, containsEvent(events, protocol.EvtTurnNumberUpdated))
	assert.Equal(t, 2, s.TurnNumber)
}

func TestLeave(t *testing.T) {
	t.Run("unready leaver does not start the game", func(t *testing.T) {
		s := newTestSession(2, 0)
		mustJoin(t, s, "alice", "Alice")
		mustJoin(t, s, "bob", "Bob")
		_, _ = s.SetReady("alice")

		events, err := s.Leave("bob")
		require.NoError(t, err)
		assert.Equal(t, []protocol.OutboundType{protocol.EvtPlayerLeft}, payloadsOf(events))
		assert.Equal(t, PhaseSetup, s.Phase)
		assert.Empty(t, s.CurrentTurnPlayerID)

		// a newcomer can still take part in setup
		mustJoin(t, s, "carol", "Carol")
		events, err = s.SetReady("carol")
		require.NoError(t, err)
		assert.Equal(t, []protocol.OutboundType{protocol.EvtGameStarted}, payloadsOf(events))
		assert.Equal(t, PhasePlaying, s.Phase)
	})

	t.Run("leaver's ready signal is cleared", func(t *testing.T) {
		s := newTestSession(3, 0)
		mustJoin(t, s, "a", "Alice")
		mustJoin(t, s, "b", "Bob")
		mustJoin(t, s, "c", "Carol")
		_, _ = s.SetReady("a")
		_, _ = s.SetReady("c")

		_, _ = s.Leave("c")
		assert.Equal(t, 1, s.ReadyCount())
		assert.False(t, s.IsReady("c"))
		assert.Equal(t, PhaseSetup, s.Phase)
	})

	t.Run("leaving current player passes the turn", func(t *testing.T) {
		s := playing(t, 1, "a", "b", "c")
		require.Equal(t, "b", s.CurrentTurnPlayerID)

		events, err := s.Leave("b")
		require.NoError(t, err)
		assert.Equal(t, "c", s.CurrentTurnPlayerID)
		assert.Equal(t, []protocol.OutboundType{protocol.EvtPlayerLeft, protocol.EvtTurnChanged}, payloadsOf(events))
		assert.Equal(t, protocol.PlayerLeft{PlayerID: "b", PlayerName: "b", RemainingPlayers: 2}, events[0].Payload)
	})

	t.Run("last seat wraps to the first", func(t *testing.T) {
		s := playing(t, 2, "a", "b", "c")
		require.Equal(t, "c", s.CurrentTurnPlayerID)

		_, _ = s.Leave("c")
		assert.Equal(t, "a", s.CurrentTurnPlayerID)
	})

	t.Run("knocks of the rest do not complete the round", func(t *testing.T) {
		s := playing(t, 0, "a", "b", "c")
		_, _ = s.Knock("a")
		_, _ = s.Knock("b")

		events, err := s.Leave("c")
		require.NoError(t, err)
		assert.False(t, containsEvent(events, protocol.EvtTurnNumberUpdated))
		assert.Equal(t, 1, s.TurnNumber)
		assert.Equal(t, 2, s.KnockedCount())
	})

	t.Run("non member", func(t *testing.T) {
		s := newTestSession(2, 0)
		_, err := s.Leave("ghost")
		assert.ErrorIs(t, err, ErrNotMember)
	})
}

func TestApply_NonMemberIsNoOp(t *testing.T) {
	s := newTestSession(2, 0)
	mustJoin(t, s, "a", "Alice")

	msgs := []protocol.Inbound{
		protocol.SetReady{RoomID: "ABCDEF"},
		protocol.PlaceCard{RoomID: "ABCDEF", Card: json.RawMessage(`{}`)},
		protocol.HandCountUpdate{RoomID: "ABCDEF", HandCounts: json.RawMessage(`{"groups":2}`)},
		protocol.RollDice{RoomID: "ABCDEF"},
	}
	for _, m := range msgs {
		events, err := Apply(s, "stranger", m)
		assert.ErrorIs(t, err, ErrNotMember, "%T", m)
		assert.Empty(t, events, "%T", m)
	}
	assert.Empty(t, s.Table, "stranger mutated the table")
}
