package port

import (
	"context"

	"github.com/microshop/orders-service/internal/core/domain"
)

//go:generate mockgen -source=payment.go -destination=mock/payment.go -package=mock
type PaymentClient interface {
	CreatePaymentSession(ctx context.Context, order *domain.Order, currency string) (*domain.PaymentSession, error)
}
