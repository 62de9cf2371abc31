package port

import (
	"context"

	"github.com/microshop/orders-service/internal/core/domain"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	// CreateOrder persists the order and all of its items in one transaction.
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ReadOrder(ctx context.Context, id string) (*domain.Order, error)
	// ListOrders returns one page plus the total row count for the filter.
	ListOrders(ctx context.Context, status *domain.OrderStatus, page, limit int) ([]*domain.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	// ApplyPaymentSuccess marks the order paid and creates its receipt in one
	// transaction. Reapplying to an already paid order is a no-op returning
	// current state.
	ApplyPaymentSuccess(ctx context.Context, notice *domain.PaymentNotice) (*domain.Order, error)
}
