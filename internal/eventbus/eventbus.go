package eventbus

import (
	"strings"

	"github.com/DoyleJ11/inwo-backend/pkg/protocol"
)

const DefaultSubjectPrefix = "inwo.rooms"

// Publisher receives a copy of every event the hub delivers to a room.
// Implementations must not block; the hub calls Publish from its event loop.
type Publisher interface {
	Publish(roomID string, env protocol.Envelope)
}

type Nop struct{}

func (Nop) Publish(string, protocol.Envelope) {}

var subjectReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_", "\t", "_")

// Subject builds "<prefix>.<room>.<event>" with room ids made safe for NATS tokens.
func Subject(prefix, roomID string, t protocol.OutboundType) string {
	room := subjectReplacer.Replace(roomID)
	if room == "" {
		room = "_"
	}
	return prefix + "." + room + "." + string(t)
}
