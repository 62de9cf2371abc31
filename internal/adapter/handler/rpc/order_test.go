package rpc

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/microshop/orders-service/internal/core/domain"
	"github.com/microshop/orders-service/internal/core/port/mock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const orderID = "7c2bfa4d-32a5-4bb3-8e03-b0006cb3a59d"

func newTestHandler(t *testing.T, mockCtrl *gomock.Controller) (*OrderHandler, *mock.MockService) {
	t.Helper()

	svc := mock.NewMockService(mockCtrl)
	logger, _ := zap.NewProduction()

	oh, err := NewOrderHandler(svc, logger)
	assert.NoError(t, err)
	return oh, svc
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	order := &domain.Order{
		ID:          orderID,
		TotalAmount: decimal.MustParse("25"),
		TotalItems:  3,
		Status:      domain.OrderStatusPending,
		CreatedAt:   time.Now(),
		Items: []domain.OrderItem{
			{ProductID: "A", Quantity: 2, Price: decimal.MustParse("10"), Name: "Keyboard"},
			{ProductID: "B", Quantity: 1, Price: decimal.MustParse("5"), Name: "Mouse"},
		},
	}
	session := &domain.PaymentSession{ID: "cs_1", URL: "https://pay/cs_1"}

	type createTest struct {
		name     string
		payload  string
		mock     func(svc *mock.MockService)
		expError error
	}

	tests := []createTest{
		{
			name:    "Good order",
			payload: `{"items":[{"productId":"A","quantity":2},{"productId":"B","quantity":1}]}`,
			mock: func(svc *mock.MockService) {
				svc.EXPECT().CreateOrder(gomock.Any(), []domain.NewOrderItem{
					{ProductID: "A", Quantity: 2},
					{ProductID: "B", Quantity: 1},
				}).Return(order, session, nil)
			},
		},
		{
			name:     "Malformed payload",
			payload:  `{"items":`,
			mock:     func(svc *mock.MockService) {},
			expError: domain.ErrBadRequest,
		},
		{
			name:     "Empty items",
			payload:  `{"items":[]}`,
			mock:     func(svc *mock.MockService) {},
			expError: domain.ErrBadRequest,
		},
		{
			name:     "Non-positive quantity",
			payload:  `{"items":[{"productId":"A","quantity":0}]}`,
			mock:     func(svc *mock.MockService) {},
			expError: domain.ErrBadRequest,
		},
		{
			name:    "Invalid products",
			payload: `{"items":[{"productId":"Z","quantity":1}]}`,
			mock: func(svc *mock.MockService) {
				svc.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
					Return(nil, nil, &domain.ProductsNotFoundError{IDs: []string{"Z"}})
			},
			expError: domain.ErrInvalidProducts,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			oh, svc := newTestHandler(t, mockCtrl)
			test.mock(svc)

			resp, err := oh.CreateOrder(context.Background(), []byte(test.payload))

			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				return
			}
			assert.NoError(t, err)

			result := resp.(createOrderResp)
			assert.Equal(t, orderID, result.Order.ID)
			assert.Equal(t, float64(25), result.Order.TotalAmount)
			assert.Equal(t, 3, result.Order.TotalItems)
			assert.Len(t, result.Order.Items, 2)
			assert.Equal(t, "Keyboard", result.Order.Items[0].Name)
			assert.Equal(t, "cs_1", result.PaymentSession.ID)
		})
	}
}

func TestOrderHandler_GetOrders(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	type listTest struct {
		name     string
		payload  string
		mock     func(svc *mock.MockService)
		expError error
		expMeta  listMetaResp
	}

	page := &domain.OrderPage{
		Orders:    []*domain.Order{{ID: orderID, Status: domain.OrderStatusPending}},
		Page:      1,
		TotalRows: 25,
		LastPage:  3,
	}

	paid := domain.OrderStatusPaid

	tests := []listTest{
		{
			name:    "Defaults applied",
			payload: ``,
			mock: func(svc *mock.MockService) {
				svc.EXPECT().ListOrders(gomock.Any(), (*domain.OrderStatus)(nil), 1, 10).
					Return(page, nil)
			},
			expMeta: listMetaResp{Page: 1, TotalRows: 25, LastPage: 3},
		},
		{
			name:    "Status filter",
			payload: `{"page":1,"limit":10,"status":"PAID"}`,
			mock: func(svc *mock.MockService) {
				svc.EXPECT().ListOrders(gomock.Any(), &paid, 1, 10).
					Return(page, nil)
			},
			expMeta: listMetaResp{Page: 1, TotalRows: 25, LastPage: 3},
		},
		{
			name:     "Unknown status",
			payload:  `{"status":"REFUNDED"}`,
			mock:     func(svc *mock.MockService) {},
			expError: domain.ErrUnknownOrderStatus,
		},
		{
			name:     "Bad page",
			payload:  `{"page":0,"limit":10}`,
			mock:     func(svc *mock.MockService) {},
			expError: domain.ErrBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			oh, svc := newTestHandler(t, mockCtrl)
			test.mock(svc)

			resp, err := oh.GetOrders(context.Background(), []byte(test.payload))

			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				return
			}
			assert.NoError(t, err)

			result := resp.(listOrdersResp)
			assert.Equal(t, test.expMeta, result.Meta)
			assert.Len(t, result.Data, 1)
		})
	}
}

func TestOrderHandler_GetOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	t.Run("Invalid id", func(t *testing.T) {
		oh, _ := newTestHandler(t, mockCtrl)

		_, err := oh.GetOrder(context.Background(), []byte(`{"id":"not-a-uuid"}`))
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("Not found", func(t *testing.T) {
		oh, svc := newTestHandler(t, mockCtrl)
		svc.EXPECT().GetOrder(gomock.Any(), orderID).Return(nil, domain.ErrDataNotFound)

		_, err := oh.GetOrder(context.Background(), []byte(`{"id":"`+orderID+`"}`))
		assert.ErrorIs(t, err, domain.ErrDataNotFound)
	})

	t.Run("Found", func(t *testing.T) {
		oh, svc := newTestHandler(t, mockCtrl)
		svc.EXPECT().GetOrder(gomock.Any(), orderID).Return(&domain.Order{
			ID:          orderID,
			TotalAmount: decimal.MustParse("25"),
			Status:      domain.OrderStatusPending,
			Items: []domain.OrderItem{
				{ProductID: "A", Quantity: 2, Price: decimal.MustParse("10"), Name: "Keyboard"},
			},
		}, nil)

		resp, err := oh.GetOrder(context.Background(), []byte(`{"id":"`+orderID+`"}`))
		assert.NoError(t, err)

		result := resp.(orderResp)
		assert.Equal(t, orderID, result.ID)
		assert.Equal(t, "Keyboard", result.Items[0].Name)
	})
}

func TestOrderHandler_ChangeOrderStatus(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	t.Run("Status changed", func(t *testing.T) {
		oh, svc := newTestHandler(t, mockCtrl)
		svc.EXPECT().ChangeOrderStatus(gomock.Any(), orderID, domain.OrderStatusCancelled).
			Return(&domain.Order{ID: orderID, Status: domain.OrderStatusCancelled}, nil)

		resp, err := oh.ChangeOrderStatus(context.Background(),
			[]byte(`{"id":"`+orderID+`","status":"CANCELLED"}`))
		assert.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.(orderResp).Status)
	})

	t.Run("Unknown status", func(t *testing.T) {
		oh, _ := newTestHandler(t, mockCtrl)

		_, err := oh.ChangeOrderStatus(context.Background(),
			[]byte(`{"id":"`+orderID+`","status":"REFUNDED"}`))
		assert.ErrorIs(t, err, domain.ErrUnknownOrderStatus)
	})

	t.Run("Not found", func(t *testing.T) {
		oh, svc := newTestHandler(t, mockCtrl)
		svc.EXPECT().ChangeOrderStatus(gomock.Any(), orderID, domain.OrderStatusDelivered).
			Return(nil, domain.ErrDataNotFound)

		_, err := oh.ChangeOrderStatus(context.Background(),
			[]byte(`{"id":"`+orderID+`","status":"DELIVERED"}`))
		assert.ErrorIs(t, err, domain.ErrDataNotFound)
	})
}

func TestOrderHandler_OrderPaymentSuccess(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	t.Run("Event applied", func(t *testing.T) {
		oh, svc := newTestHandler(t, mockCtrl)
		svc.EXPECT().OrderPaymentSuccess(gomock.Any(), &domain.PaymentNotice{
			OrderID:    orderID,
			ChargeID:   "ch_1",
			ReceiptURL: "https://receipts/ch_1",
		}).Return(nil)

		err := oh.OrderPaymentSuccess(context.Background(),
			[]byte(`{"orderId":"`+orderID+`","stripePaymentId":"ch_1","receipUrl":"https://receipts/ch_1"}`))
		assert.NoError(t, err)
	})

	t.Run("Malformed event", func(t *testing.T) {
		oh, _ := newTestHandler(t, mockCtrl)

		err := oh.OrderPaymentSuccess(context.Background(), []byte(`{`))
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("Missing order id", func(t *testing.T) {
		oh, _ := newTestHandler(t, mockCtrl)

		err := oh.OrderPaymentSuccess(context.Background(), []byte(`{"stripePaymentId":"ch_1"}`))
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})
}

func TestBusError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		expStatus  int
		expMessage string
	}{
		{
			name:       "Products not found collapses",
			err:        &domain.ProductsNotFoundError{IDs: []string{"Z"}},
			expStatus:  http.StatusBadRequest,
			expMessage: "Invalid products provided",
		},
		{
			name:       "Catalog unavailable collapses",
			err:        domain.ErrCatalogUnavailable,
			expStatus:  http.StatusBadRequest,
			expMessage: "Invalid products provided",
		},
		{
			name:       "Not found",
			err:        domain.ErrDataNotFound,
			expStatus:  http.StatusNotFound,
			expMessage: "data not found",
		},
		{
			name:       "Unexpected error hidden",
			err:        assert.AnError,
			expStatus:  http.StatusInternalServerError,
			expMessage: "Internal server error",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			busErr := busError(test.err)
			assert.Equal(t, test.expStatus, busErr.Status)
			assert.Equal(t, test.expMessage, busErr.Message)
		})
	}
}
