package port

import (
	"context"

	"github.com/microshop/orders-service/internal/core/domain"
)

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type Service interface {
	CreateOrder(ctx context.Context, items []domain.NewOrderItem) (*domain.Order, *domain.PaymentSession, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, status *domain.OrderStatus, page, limit int) (*domain.OrderPage, error)
	ChangeOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	OrderPaymentSuccess(ctx context.Context, notice *domain.PaymentNotice) error
}
