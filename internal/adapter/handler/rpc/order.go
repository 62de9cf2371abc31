package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/microshop/orders-service/internal/adapter/metrics"
	"github.com/microshop/orders-service/internal/core/domain"
	"github.com/microshop/orders-service/internal/core/port"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service port.Service
	logger  *zap.Logger
}

func NewOrderHandler(service port.Service, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}, nil
}

type orderItemReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type createOrderReq struct {
	Items []orderItemReq `json:"items"`
}

type orderItemResp struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name,omitempty"`
}

type orderResp struct {
	ID             string          `json:"id"`
	TotalAmount    float64         `json:"totalAmount"`
	TotalItems     int             `json:"totalItems"`
	Status         string          `json:"status"`
	Paid           bool            `json:"paid"`
	PaidAt         *time.Time      `json:"paidAt"`
	StripeChargeID string          `json:"stripeChargeId,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	Items          []orderItemResp `json:"orderItem,omitempty"`
}

type sessionResp struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	CancelURL  string `json:"cancelUrl"`
	SuccessURL string `json:"successUrl"`
}

type createOrderResp struct {
	Order          orderResp   `json:"order"`
	PaymentSession sessionResp `json:"paymentSession"`
}

type listMetaResp struct {
	Page      int   `json:"page"`
	TotalRows int64 `json:"totalRows"`
	LastPage  int   `json:"lastPage"`
}

type listOrdersResp struct {
	Data []orderResp  `json:"data"`
	Meta listMetaResp `json:"meta"`
}

func toOrderResp(order *domain.Order, withItems bool) (orderResp, error) {
	amount, ok := order.TotalAmount.Float64()
	if !ok {
		return orderResp{}, fmt.Errorf("order %s total does not fit the wire format", order.ID)
	}

	resp := orderResp{
		ID:             order.ID,
		TotalAmount:    amount,
		TotalItems:     order.TotalItems,
		Status:         string(order.Status),
		Paid:           order.Paid,
		PaidAt:         order.PaidAt,
		StripeChargeID: order.ChargeID,
		CreatedAt:      order.CreatedAt,
	}

	if !withItems {
		return resp, nil
	}

	resp.Items = make([]orderItemResp, 0, len(order.Items))
	for _, item := range order.Items {
		price, ok := item.Price.Float64()
		if !ok {
			return orderResp{}, fmt.Errorf("item price for product %s does not fit the wire format", item.ProductID)
		}
		resp.Items = append(resp.Items, orderItemResp{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
			Name:      item.Name,
		})
	}

	return resp, nil
}

// CreateOrder handles the create-order command.
func (oh *OrderHandler) CreateOrder(ctx context.Context, data []byte) (any, error) {
	var req createOrderReq
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, domain.ErrBadRequest
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrBadRequest
	}

	items := make([]domain.NewOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, domain.ErrBadRequest
		}
		items = append(items, domain.NewOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, session, err := oh.service.CreateOrder(ctx, items)
	if err != nil {
		return nil, err
	}
	metrics.OrdersCreated.Inc()

	resp, err := toOrderResp(order, true)
	if err != nil {
		oh.logger.Error("encode order", zap.Error(err))
		return nil, domain.ErrInternal
	}

	return createOrderResp{
		Order: resp,
		PaymentSession: sessionResp{
			ID:         session.ID,
			URL:        session.URL,
			CancelURL:  session.CancelURL,
			SuccessURL: session.SuccessURL,
		},
	}, nil
}

type listOrdersReq struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Status string `json:"status"`
}

// GetOrders handles the get-orders command: filtered, 1-based offset
// pagination.
func (oh *OrderHandler) GetOrders(ctx context.Context, data []byte) (any, error) {
	req := listOrdersReq{Page: 1, Limit: 10}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, domain.ErrBadRequest
		}
	}
	if req.Page < 1 || req.Limit < 1 {
		return nil, domain.ErrBadRequest
	}

	var status *domain.OrderStatus
	if req.Status != "" {
		parsed, err := domain.ParseOrderStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = &parsed
	}

	page, err := oh.service.ListOrders(ctx, status, req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	resp := listOrdersResp{
		Data: make([]orderResp, 0, len(page.Orders)),
		Meta: listMetaResp{
			Page:      page.Page,
			TotalRows: page.TotalRows,
			LastPage:  page.LastPage,
		},
	}
	for _, order := range page.Orders {
		r, err := toOrderResp(order, false)
		if err != nil {
			oh.logger.Error("encode order", zap.Error(err))
			return nil, domain.ErrInternal
		}
		resp.Data = append(resp.Data, r)
	}

	return resp, nil
}

type orderIDReq struct {
	ID string `json:"id"`
}

// GetOrder handles the get-order command.
func (oh *OrderHandler) GetOrder(ctx context.Context, data []byte) (any, error) {
	var req orderIDReq
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, domain.ErrBadRequest
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		return nil, domain.ErrBadRequest
	}

	order, err := oh.service.GetOrder(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	resp, err := toOrderResp(order, true)
	if err != nil {
		oh.logger.Error("encode order", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return resp, nil
}

type changeStatusReq struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ChangeOrderStatus handles the administrative change-order-status command.
func (oh *OrderHandler) ChangeOrderStatus(ctx context.Context, data []byte) (any, error) {
	var req changeStatusReq
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, domain.ErrBadRequest
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		return nil, domain.ErrBadRequest
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}

	order, err := oh.service.ChangeOrderStatus(ctx, req.ID, status)
	if err != nil {
		return nil, err
	}

	resp, err := toOrderResp(order, false)
	if err != nil {
		oh.logger.Error("encode order", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return resp, nil
}

type paymentSuccessEvent struct {
	OrderID         string `json:"orderId"`
	StripePaymentID string `json:"stripePaymentId"`
	ReceiptURL      string `json:"receipUrl"`
}

// OrderPaymentSuccess consumes the payment-success event. No reply is sent;
// duplicate deliveries are absorbed downstream.
func (oh *OrderHandler) OrderPaymentSuccess(ctx context.Context, data []byte) error {
	var event paymentSuccessEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.ErrBadRequest
	}
	if event.OrderID == "" {
		return domain.ErrBadRequest
	}

	err := oh.service.OrderPaymentSuccess(ctx, &domain.PaymentNotice{
		OrderID:    event.OrderID,
		ChargeID:   event.StripePaymentID,
		ReceiptURL: event.ReceiptURL,
	})
	if err != nil {
		return err
	}
	metrics.OrdersPaid.Inc()

	return nil
}
