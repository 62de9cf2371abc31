package rpc

import (
	"context"
	"time"

	"github.com/microshop/orders-service/internal/adapter/bus"
	"github.com/microshop/orders-service/internal/adapter/metrics"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const queueGroup = "orders"

const handleTimeout = 10 * time.Second

type commandFunc func(ctx context.Context, data []byte) (any, error)

// Router binds the order handlers to their bus subjects. Commands are
// request/reply in the service queue group; the payment-success event is
// consumed without a reply.
type Router struct {
	bus     *bus.Bus
	handler *OrderHandler
	logger  *zap.Logger
	subs    []*nats.Subscription
}

func NewRouter(b *bus.Bus, handler *OrderHandler, logger *zap.Logger) (*Router, error) {
	return &Router{
		bus:     b,
		handler: handler,
		logger:  logger,
	}, nil
}

func (r *Router) Subscribe() error {
	commands := []struct {
		subject string
		handler commandFunc
	}{
		{"create-order", r.handler.CreateOrder},
		{"get-orders", r.handler.GetOrders},
		{"get-order", r.handler.GetOrder},
		{"change-order-status", r.handler.ChangeOrderStatus},
	}

	for _, command := range commands {
		sub, err := r.bus.QueueSubscribe(command.subject, queueGroup, r.command(command.subject, command.handler))
		if err != nil {
			return err
		}
		r.subs = append(r.subs, sub)
	}

	sub, err := r.bus.QueueSubscribe("order-payment-success", queueGroup, r.paymentSuccess())
	if err != nil {
		return err
	}
	r.subs = append(r.subs, sub)

	return nil
}

// command wraps a handler: each message is served on its own goroutine with
// a deadline, the result or the mapped error envelope is sent as the reply.
func (r *Router) command(subject string, handler commandFunc) nats.MsgHandler {
	return func(msg *nats.Msg) {
		go func() {
			start := time.Now()

			ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
			defer cancel()

			outcome := "ok"
			resp, err := handler(ctx, msg.Data)
			if err != nil {
				outcome = "error"
				r.bus.ReplyError(msg, busError(err))
			} else {
				r.bus.Reply(msg, resp)
			}

			metrics.CommandsTotal.WithLabelValues(subject, outcome).Inc()
			metrics.CommandDuration.WithLabelValues(subject).Observe(time.Since(start).Seconds())
		}()
	}
}

// paymentSuccess consumes the fire-and-forget event. Failures are logged and
// left to the payment service's redelivery; applying twice is safe.
func (r *Router) paymentSuccess() nats.MsgHandler {
	return func(msg *nats.Msg) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
			defer cancel()

			if err := r.handler.OrderPaymentSuccess(ctx, msg.Data); err != nil {
				r.logger.Error("payment success event", zap.Error(err))
				metrics.CommandsTotal.WithLabelValues("order-payment-success", "error").Inc()
				return
			}
			metrics.CommandsTotal.WithLabelValues("order-payment-success", "ok").Inc()
		}()
	}
}

// Unsubscribe detaches all subject bindings.
func (r *Router) Unsubscribe() {
	for _, sub := range r.subs {
		if err := sub.Unsubscribe(); err != nil {
			r.logger.Warn("unsubscribe", zap.Error(err))
		}
	}
	r.subs = nil
}
