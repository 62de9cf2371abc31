package service

import (
	"context"
	"errors"

	"github.com/govalues/decimal"
	"github.com/microshop/orders-service/internal/core/domain"
	"github.com/microshop/orders-service/internal/core/port"
	"go.uber.org/zap"
)

type Service struct {
	repo     port.Repository
	catalog  port.CatalogClient
	payment  port.PaymentClient
	currency string
	logger   *zap.Logger
}

func NewService(repo port.Repository, catalog port.CatalogClient,
	payment port.PaymentClient, currency string, logger *zap.Logger) (*Service, error) {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		payment:  payment,
		currency: currency,
		logger:   logger,
	}, nil
}

// CreateOrder runs the order workflow: catalog validation, server-side total
// computation, atomic persistence, then a payment-session request. Failures
// before the payment step leave no partial order behind and surface as the
// invalid-products kind.
func (s *Service) CreateOrder(ctx context.Context, items []domain.NewOrderItem) (*domain.Order, *domain.PaymentSession, error) {
	ids := distinctProductIDs(items)

	products, err := s.catalog.ValidateProducts(ctx, ids)
	if err != nil {
		s.logger.Error("Validate products", zap.Error(err))
		return nil, nil, domain.ErrCatalogUnavailable
	}

	productByID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	var missing []string
	for _, id := range ids {
		if _, ok := productByID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &domain.ProductsNotFoundError{IDs: missing}
	}

	totalAmount := decimal.Zero
	totalItems := 0
	orderItems := make([]domain.OrderItem, 0, len(items))

	for _, item := range items {
		product := productByID[item.ProductID]

		qty, err := decimal.New(int64(item.Quantity), 0)
		if err != nil {
			s.logger.Error("Total computation", zap.Error(err))
			return nil, nil, domain.ErrInvalidProducts
		}
		line, err := product.Price.Mul(qty)
		if err != nil {
			s.logger.Error("Total computation", zap.Error(err))
			return nil, nil, domain.ErrInvalidProducts
		}
		totalAmount, err = totalAmount.Add(line)
		if err != nil {
			s.logger.Error("Total computation", zap.Error(err))
			return nil, nil, domain.ErrInvalidProducts
		}

		totalItems += item.Quantity
		orderItems = append(orderItems, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
	}

	order, err := s.repo.CreateOrder(ctx, &domain.Order{
		TotalAmount: totalAmount,
		TotalItems:  totalItems,
		Status:      domain.OrderStatusPending,
		Items:       orderItems,
	})
	if err != nil {
		s.logger.Error("Create order", zap.Error(err))
		return nil, nil, domain.ErrInvalidProducts
	}

	for i := range order.Items {
		order.Items[i].Name = productByID[order.Items[i].ProductID].Name
	}

	session, err := s.payment.CreatePaymentSession(ctx, order, s.currency)
	if err != nil {
		s.logger.Error("Create payment session",
			zap.String("order", order.ID), zap.Error(err))
		return nil, nil, domain.ErrInternal
	}

	return order, session, nil
}

// GetOrder fetches an order with its items. Name enrichment is best effort:
// a catalog failure on the read path leaves names empty instead of failing
// an otherwise valid read.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.ReadOrder(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return nil, domain.ErrDataNotFound
		}
		s.logger.Error("Read order", zap.Error(err))
		return nil, domain.ErrInternal
	}

	if len(order.Items) == 0 {
		return order, nil
	}

	ids := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}

	names, err := s.catalog.ProductNames(ctx, ids)
	if err != nil {
		s.logger.Warn("Product name enrichment skipped",
			zap.String("order", order.ID), zap.Error(err))
		return order, nil
	}
	for i := range order.Items {
		order.Items[i].Name = names[order.Items[i].ProductID]
	}

	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, status *domain.OrderStatus, page, limit int) (*domain.OrderPage, error) {
	orders, total, err := s.repo.ListOrders(ctx, status, page, limit)
	if err != nil {
		s.logger.Error("List orders", zap.Error(err))
		return nil, domain.ErrInternal
	}

	lastPage := int((total + int64(limit) - 1) / int64(limit))

	return &domain.OrderPage{
		Orders:    orders,
		Page:      page,
		TotalRows: total,
		LastPage:  lastPage,
	}, nil
}

func (s *Service) ChangeOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	order, err := s.repo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return nil, domain.ErrDataNotFound
		}
		s.logger.Error("Update order status", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return order, nil
}

// OrderPaymentSuccess reconciles the asynchronous payment event onto the
// stored order. Duplicate deliveries are absorbed by the idempotent store
// operation; redelivery on failure is the payment service's responsibility.
func (s *Service) OrderPaymentSuccess(ctx context.Context, notice *domain.PaymentNotice) error {
	s.logger.Info("Order payment success", zap.String("order", notice.OrderID))

	_, err := s.repo.ApplyPaymentSuccess(ctx, notice)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return domain.ErrDataNotFound
		}
		s.logger.Error("Apply payment success",
			zap.String("order", notice.OrderID), zap.Error(err))
		return domain.ErrInternal
	}
	return nil
}

func distinctProductIDs(items []domain.NewOrderItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
