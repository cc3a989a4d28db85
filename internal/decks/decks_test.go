package decks

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("deck-%d", n)
	}
}

func TestMemoryStore_CreateListDelete(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(WithClock(clock), WithIDs(seq()))

	first, err := store.Create(ctx, map[string]json.RawMessage{"name": json.RawMessage(`"Discordians"`)})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := store.Create(ctx, map[string]json.RawMessage{"name": json.RawMessage(`"Bavarians"`)})
	require.NoError(t, err)

	assert.Equal(t, "deck-1", first.ID)
	assert.Equal(t, "Discordians", first.Name())
	assert.Equal(t, time.Minute, second.SavedAt.Sub(first.SavedAt))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"deck-1", "deck-2"}, []string{list[0].ID, list[1].ID})

	require.NoError(t, store.Delete(ctx, "deck-1"))
	assert.ErrorIs(t, store.Delete(ctx, "deck-1"), ErrNotFound)

	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bavarians", list[0].Name())
}

func TestParseFields(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
		want    []string
	}{
		{name: "object", body: `{"name":"Gnomes","cards":[{"type":"groups"}]}`, want: []string{"cards", "name"}},
		{name: "server fields stripped", body: `{"name":"x","id":"forged","savedAt":"1999"}`, want: []string{"name"}},
		{name: "array rejected", body: `[1,2]`, wantErr: true},
		{name: "null rejected", body: `null`, wantErr: true},
		{name: "garbage rejected", body: `{`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields, err := ParseFields([]byte(tc.body))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDeck)
				return
			}
			require.NoError(t, err)
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tc.want, keys)
		})
	}
}

func TestDeck_MarshalJSON(t *testing.T) {
	d := Deck{
		ID:      "deck-9",
		SavedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Fields: map[string]json.RawMessage{
			"name":  json.RawMessage(`"Servants of Cthulhu"`),
			"cards": json.RawMessage(`[{"type":"plots"}]`),
		},
	}

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "deck-9",
		"savedAt": "2025-03-01T12:00:00Z",
		"name": "Servants of Cthulhu",
		"cards": [{"type":"plots"}]
	}`, string(b))
}

func TestDeckRecord_ToDeck(t *testing.T) {
	row := deckRecord{ID: "d1", Name: "x", Body: `{"name":"x"}`, SavedAt: time.Unix(0, 0)}
	d, err := row.toDeck()
	require.NoError(t, err)
	assert.Equal(t, "x", d.Name())

	_, err = deckRecord{ID: "d2", Body: `nope`}.toDeck()
	assert.ErrorIs(t, err, ErrInvalidDeck)
}

func TestGormStore_NewRecordUsesInjectedClockAndIDs(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	g := &GormStore{stamp: newStamper([]Option{
		WithClock(clockwork.NewFakeClockAt(at)),
		WithIDs(seq()),
	})}

	d, row, err := g.newRecord(map[string]json.RawMessage{"name": json.RawMessage(`"Network"`)})
	require.NoError(t, err)

	assert.Equal(t, "deck-1", d.ID)
	assert.Equal(t, at, d.SavedAt)
	assert.Equal(t, deckRecord{ID: "deck-1", Name: "Network", Body: `{"name":"Network"}`, SavedAt: at}, row)

	back, err := row.toDeck()
	require.NoError(t, err)
	assert.Equal(t, d.Fields, back.Fields)
}
