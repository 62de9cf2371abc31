package payment

import (
	"context"
	"fmt"

	"github.com/microshop/orders-service/internal/core/domain"
	"go.uber.org/zap"
)

const subjectCreatePaymentSession = "create-payment-session"

// Requester is the request/reply surface of the bus the gateway needs.
type Requester interface {
	Request(ctx context.Context, subject string, payload any, result any) error
}

// Client is the payment gateway for the synchronous session request. The
// asynchronous payment-success event lands in the RPC router, not here.
type Client struct {
	bus    Requester
	logger *zap.Logger
}

func NewPaymentClient(b Requester, log *zap.Logger) (*Client, error) {
	return &Client{bus: b, logger: log}, nil
}

type sessionRequest struct {
	OrderID  string        `json:"orderId"`
	Currency string        `json:"currency"`
	Items    []sessionItem `json:"items"`
}

type sessionItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type sessionPayload struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	CancelURL  string `json:"cancelUrl"`
	SuccessURL string `json:"successUrl"`
}

func (c *Client) CreatePaymentSession(ctx context.Context, order *domain.Order, currency string) (*domain.PaymentSession, error) {
	req := sessionRequest{
		OrderID:  order.ID,
		Currency: currency,
		Items:    make([]sessionItem, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		price, ok := item.Price.Float64()
		if !ok {
			return nil, fmt.Errorf("price for product %s does not fit the wire format", item.ProductID)
		}
		req.Items = append(req.Items, sessionItem{
			Name:     item.Name,
			Price:    price,
			Quantity: item.Quantity,
		})
	}

	var resp sessionPayload
	err := c.bus.Request(ctx, subjectCreatePaymentSession, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("create payment session: %w", err)
	}

	c.logger.Debug("payment session created",
		zap.String("order", order.ID), zap.String("session", resp.ID))

	return &domain.PaymentSession{
		ID:         resp.ID,
		URL:        resp.URL,
		CancelURL:  resp.CancelURL,
		SuccessURL: resp.SuccessURL,
	}, nil
}
