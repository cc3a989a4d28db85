package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/DoyleJ11/inwo-backend/pkg/protocol"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type NATSConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultNATSConfig(url string) NATSConfig {
	return NATSConfig{
		URL:           url,
		SubjectPrefix: DefaultSubjectPrefix,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// NATS publishes room events as JSON. Publishing is fire-and-forget, matching the
// at-most-once delivery clients get.
type NATS struct {
	nc     *nats.Conn
	prefix string
	log    *zap.Logger
}

func ConnectNATS(cfg NATSConfig, log *zap.Logger) (*NATS, error) {
	opts := []nats.Option{
		nats.Name("inwo-backend"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error("nats error", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATS{nc: nc, prefix: prefix, log: log}, nil
}

func (n *NATS) Publish(roomID string, env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		n.log.Error("marshal event for nats", zap.String("room_id", roomID), zap.Error(err))
		return
	}
	subject := Subject(n.prefix, roomID, env.Type)
	if err := n.nc.Publish(subject, data); err != nil {
		n.log.Warn("nats publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

// Close flushes pending publishes and closes the connection.
func (n *NATS) Close() error {
	return n.nc.Drain()
}
