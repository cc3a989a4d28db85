package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	idx := 2
	cases := []struct {
		name string
		raw  string
		want Inbound
	}{
		{
			name: "join with capacity",
			raw:  `{"type":"join","roomId":"ABCDEF","playerName":"Alice","playerCount":3}`,
			want: Join{RoomID: "ABCDEF", Name: "Alice", Capacity: 3},
		},
		{
			name: "legacy join-room alias",
			raw:  `{"type":"join-room","roomId":"ABCDEF","playerName":"Bob"}`,
			want: Join{RoomID: "ABCDEF", Name: "Bob"},
		},
		{
			name: "knock alias",
			raw:  `{"type":"knock","roomId":"R1"}`,
			want: EndTurn{RoomID: "R1"},
		},
		{
			name: "setup-done alias",
			raw:  `{"type":"setup-done","roomId":"R1"}`,
			want: SetReady{RoomID: "R1"},
		},
		{
			name: "remove by index",
			raw:  `{"type":"remove-card","roomId":"R1","cardIndex":2}`,
			want: RemoveCard{RoomID: "R1", CardRef: CardRef{CardIndex: &idx}},
		},
		{
			name: "update position by id",
			raw:  `{"type":"update-card-position","roomId":"R1","cardId":"c-1","position":{"x":10,"y":20.5}}`,
			want: UpdateCardPosition{RoomID: "R1", CardRef: CardRef{CardID: "c-1"}, Position: Position{X: 10, Y: 20.5}},
		},
		{
			name: "roll dice",
			raw:  `{"type":"roll-dice","roomId":"R1","sides":6}`,
			want: RollDice{RoomID: "R1", Sides: 6},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want.Room(), got.Room())
		})
	}
}

func TestDecode_KeepsOpaquePayloads(t *testing.T) {
	raw := `{"type":"move-card","roomId":"R1","card":{"type":"groups","name":"The CIA","power":6},"position":{"x":1,"y":2}}`

	got, err := Decode([]byte(raw))
	require.NoError(t, err)

	place, ok := got.(PlaceCard)
	require.True(t, ok, "want PlaceCard, got %T", got)
	assert.JSONEq(t, `{"type":"groups","name":"The CIA","power":6}`, string(place.Card))
	assert.Equal(t, Position{X: 1, Y: 2}, place.Position)
}

func TestDecode_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "not json", raw: `{{`, wantErr: ErrMalformed},
		{name: "unknown type", raw: `{"type":"cheat","roomId":"R1"}`, wantErr: ErrUnknownType},
		{name: "missing type", raw: `{"roomId":"R1"}`, wantErr: ErrUnknownType},
		{name: "wrong field type", raw: `{"type":"roll-dice","roomId":"R1","sides":"six"}`, wantErr: ErrMalformed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.raw))
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestEnvelope_Marshal(t *testing.T) {
	rot := 90
	env := Wrap(CardUpdated{PlayerID: "p1", CardID: "c1", CardIndex: 0, Rotation: &rot})

	b, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"card-updated","data":{"playerId":"p1","cardId":"c1","cardIndex":0,"rotation":90}}`, string(b))
}
