package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DoyleJ11/inwo-backend/internal/hub"
	"github.com/DoyleJ11/inwo-backend/pkg/protocol"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Options struct {
	// OriginPatterns is passed to websocket.AcceptOptions; empty means same-origin only.
	OriginPatterns  []string
	OutboxSize      int
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	MaxMessageBytes int64
}

func DefaultOptions() Options {
	return Options{
		OutboxSize:      64,
		WriteTimeout:    5 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageBytes: 64 << 10,
	}
}

// Handler upgrades the request, gives the connection an id and bridges it to the hub
// until either side goes away.
func Handler(h *hub.Hub, log *zap.Logger, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Warn("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()
		conn.SetReadLimit(opts.MaxMessageBytes)

		connID := uuid.NewString()
		log := log.With(zap.String("conn_id", connID))

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan protocol.Envelope, opts.OutboxSize)
		if err := h.Send(ctx, hub.Connect{ConnID: connID, Outbox: out}); err != nil {
			conn.Close(websocket.StatusTryAgainLater, "server unavailable")
			return
		}
		log.Info("client connected", zap.String("remote", r.RemoteAddr))
		defer func() {
			_ = h.Send(context.Background(), hub.Disconnect{ConnID: connID})
			log.Info("client disconnected")
		}()

		// Writer goroutine
		go func() {
			defer cancel()
			for {
				select {
				case <-ctx.Done():
					return
				case <-h.Done():
					conn.Close(websocket.StatusGoingAway, "server shutting down")
					return
				case env, ok := <-out:
					if !ok {
						// the hub closed the outbox: dropped as slow or shutting down
						conn.Close(websocket.StatusGoingAway, "closed by server")
						return
					}
					if err := write(ctx, conn, opts.WriteTimeout, env); err != nil {
						log.Debug("write failed", zap.String("event", string(env.Type)), zap.Error(err))
						return
					}
				}
			}
		}()

		if opts.PingInterval > 0 {
			go heartbeat(ctx, cancel, conn, opts, log)
		}

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					if ctx.Err() == nil {
						log.Debug("read failed", zap.Error(err))
					}
				}
				return
			}

			msg, err := protocol.Decode(data)
			if err != nil {
				writeError(ctx, conn, opts.WriteTimeout, err)
				continue
			}

			if err := h.Send(ctx, hub.FromClient{ConnID: connID, Msg: msg}); err != nil {
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, timeout time.Duration, env protocol.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, payload)
}

func heartbeat(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, opts Options, log *zap.Logger) {
	ticker := time.NewTicker(opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, pcancel := context.WithTimeout(ctx, opts.WriteTimeout)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				log.Debug("ping failed", zap.Error(err))
				cancel()
				return
			}
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, timeout time.Duration, cause error) {
	msg := "bad message"
	if errors.Is(cause, protocol.ErrUnknownType) {
		msg = "unknown type"
	} else if errors.Is(cause, protocol.ErrMalformed) {
		msg = "bad json"
	}

	_ = write(ctx, conn, timeout, protocol.Wrap(protocol.Error{Message: msg}))
}
