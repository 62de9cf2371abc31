package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/microshop/orders-service/internal/adapter/config"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Error is the platform error envelope carried in replies.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("bus error %d: %s", e.Status, e.Message)
}

type envelope struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *Error          `json:"error,omitempty"`
}

// Bus wraps the NATS connection with the platform JSON request/reply
// conventions.
type Bus struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewBus(conf *config.Bus, log *zap.Logger) (*Bus, error) {
	conn, err := nats.Connect(conf.URL,
		nats.Name("orders-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("bus disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("bus reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bus at %s: %w", conf.URL, err)
	}

	return &Bus{conn: conn, logger: log}, nil
}

// Request sends a request/reply command and decodes the reply envelope into
// result. An error envelope in the reply is returned as *Error.
func (b *Bus) Request(ctx context.Context, subject string, payload any, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error encoding request %s: %w", subject, err)
	}

	msg, err := b.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", subject, err)
	}

	var env envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		return fmt.Errorf("error decoding reply for %s: %w", subject, err)
	}
	if env.Error != nil {
		return env.Error
	}
	if result != nil {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("error decoding reply for %s: %w", subject, err)
		}
	}

	return nil
}

// QueueSubscribe registers a handler in the service queue group, so each
// message is delivered to one instance only.
func (b *Bus) QueueSubscribe(subject, queue string, handler nats.MsgHandler) (*nats.Subscription, error) {
	sub, err := b.conn.QueueSubscribe(subject, queue, handler)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return sub, nil
}

// Reply responds to a request with a success envelope.
func (b *Bus) Reply(msg *nats.Msg, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		b.logger.Error("error encoding reply", zap.String("subject", msg.Subject), zap.Error(err))
		b.ReplyError(msg, &Error{Status: 500, Message: "internal server error"})
		return
	}
	b.respond(msg, &envelope{Data: raw})
}

// ReplyError responds to a request with an error envelope.
func (b *Bus) ReplyError(msg *nats.Msg, busErr *Error) {
	b.respond(msg, &envelope{Error: busErr})
}

func (b *Bus) respond(msg *nats.Msg, env *envelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		b.logger.Error("error encoding envelope", zap.String("subject", msg.Subject), zap.Error(err))
		return
	}
	if err := msg.Respond(raw); err != nil {
		b.logger.Error("error sending reply", zap.String("subject", msg.Subject), zap.Error(err))
	}
}

// Drain flushes in-flight messages and closes the connection.
func (b *Bus) Drain() error {
	return b.conn.Drain()
}
