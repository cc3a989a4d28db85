package registry

import (
	"sort"

	"github.com/DoyleJ11/inwo-backend/internal/engine"
)

// Registry maps room ids to live sessions. It is not safe for concurrent use; the hub
// loop is its only caller.
type Registry struct {
	sessions        map[string]*engine.Session
	defaultCapacity int
	maxCapacity     int
	sessionOpts     []engine.Option
}

type Option func(*Registry)

// WithCapacity sets the capacity used when a join does not ask for one, and the ceiling
// applied to requested capacities (0 = unbounded).
func WithCapacity(defaultCapacity, maxCapacity int) Option {
	return func(r *Registry) {
		r.defaultCapacity = defaultCapacity
		r.maxCapacity = maxCapacity
	}
}

// WithSessionOptions is passed to every session the registry creates.
func WithSessionOptions(opts ...engine.Option) Option {
	return func(r *Registry) { r.sessionOpts = append(r.sessionOpts, opts...) }
}

func New(opts ...Option) *Registry {
	r := &Registry{
		sessions:        make(map[string]*engine.Session),
		defaultCapacity: engine.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveOrCreate returns the room's session, creating it with the requested capacity if
// the room does not exist. Capacity is ignored for existing rooms.
func (r *Registry) ResolveOrCreate(roomID string, requestedCapacity int) (*engine.Session, bool) {
	if s := r.sessions[roomID]; s != nil {
		return s, false
	}

	capacity := requestedCapacity
	if capacity <= 0 {
		capacity = r.defaultCapacity
	}
	if r.maxCapacity > 0 && capacity > r.maxCapacity {
		capacity = r.maxCapacity
	}

	s := engine.NewSession(roomID, capacity, r.sessionOpts...)
	r.sessions[roomID] = s
	return s, true
}

func (r *Registry) Get(roomID string) (*engine.Session, bool) {
	s, ok := r.sessions[roomID]
	return s, ok
}

// DestroyIfEmpty drops the room once its roster is empty. Unknown rooms are a no-op.
func (r *Registry) DestroyIfEmpty(roomID string) bool {
	s, ok := r.sessions[roomID]
	if !ok || !s.Empty() {
		return false
	}
	delete(r.sessions, roomID)
	return true
}

// RoomsOf scans every session for the connection, in room id order.
func (r *Registry) RoomsOf(connID string) []*engine.Session {
	var out []*engine.Session
	for _, s := range r.sessions {
		if s.IsMember(connID) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

// PlayerCounts reports the roster size of every live room.
func (r *Registry) PlayerCounts() map[string]int {
	out := make(map[string]int, len(r.sessions))
	for id, s := range r.sessions {
		out[id] = len(s.Players)
	}
	return out
}

func (r *Registry) Len() int { return len(r.sessions) }

func (r *Registry) Teardown() { clear(r.sessions) }
