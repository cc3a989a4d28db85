package decks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var ErrNotFound = errors.New("deck not found")
var ErrInvalidDeck = errors.New("invalid deck")

// Deck is a client-defined card list. Fields holds the body exactly as posted; ID and
// SavedAt are assigned by the store and override any client-supplied values.
type Deck struct {
	ID      string
	SavedAt time.Time
	Fields  map[string]json.RawMessage
}

type Store interface {
	List(ctx context.Context) ([]Deck, error)
	Create(ctx context.Context, fields map[string]json.RawMessage) (Deck, error)
	Delete(ctx context.Context, id string) error
}

// Option configures how a store stamps new decks.
type Option func(*stamper)

func WithClock(c clockwork.Clock) Option {
	return func(s *stamper) { s.clock = c }
}

func WithIDs(next func() string) Option {
	return func(s *stamper) { s.newID = next }
}

// stamper assigns the server-owned id and savedAt of a new deck.
type stamper struct {
	clock clockwork.Clock
	newID func() string
}

func newStamper(opts []Option) stamper {
	s := stamper{clock: clockwork.NewRealClock(), newID: uuid.NewString}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s stamper) stamp(fields map[string]json.RawMessage) Deck {
	return Deck{ID: s.newID(), SavedAt: s.clock.Now().UTC(), Fields: fields}
}

// Name returns the "name" field when it is a JSON string.
func (d Deck) Name() string {
	var name string
	if raw, ok := d.Fields["name"]; ok {
		_ = json.Unmarshal(raw, &name)
	}
	return name
}

func (d Deck) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Fields)+2)
	for k, v := range d.Fields {
		out[k] = v
	}
	out["id"] = d.ID
	out["savedAt"] = d.SavedAt.UTC().Format(time.RFC3339Nano)
	return json.Marshal(out)
}

// ParseFields decodes a posted deck body, which must be a JSON object.
func ParseFields(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDeck, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidDeck)
	}
	delete(fields, "id")
	delete(fields, "savedAt")
	return fields, nil
}
