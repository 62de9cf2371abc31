package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/govalues/decimal"
	"github.com/microshop/orders-service/internal/adapter/cache"
	"github.com/microshop/orders-service/internal/adapter/metrics"
	"github.com/microshop/orders-service/internal/core/domain"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const subjectValidateProducts = "validate-products"

const nameCacheTTL = 10 * time.Minute

// Requester is the request/reply surface of the bus the gateway needs.
type Requester interface {
	Request(ctx context.Context, subject string, payload any, result any) error
}

// Client is the catalog gateway: synchronous request/reply over the bus,
// behind a circuit breaker. Display names are cached for read-path
// enrichment; prices are never served from cache.
type Client struct {
	bus     Requester
	cache   cache.Cache
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewCatalogClient(b Requester, c cache.Cache, log *zap.Logger) (*Client, error) {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			var state float64
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			}
			metrics.CircuitBreakerState.WithLabelValues(name).Set(state)
			log.Info("circuit breaker state changed",
				zap.String("circuit", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	metrics.CircuitBreakerState.WithLabelValues("catalog").Set(0)

	return &Client{
		bus:     b,
		cache:   c,
		breaker: breaker,
		logger:  log,
	}, nil
}

type productPayload struct {
	ID    string  `json:"id"`
	Price float64 `json:"price"`
	Name  string  `json:"name"`
}

func (c *Client) ValidateProducts(ctx context.Context, ids []string) ([]domain.Product, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var resp []productPayload
		err := c.bus.Request(ctx, subjectValidateProducts, ids, &resp)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("validate products: %w", err)
	}

	payload := result.([]productPayload)
	products := make([]domain.Product, 0, len(payload))
	for _, p := range payload {
		price, err := decimal.NewFromFloat64(p.Price)
		if err != nil {
			return nil, fmt.Errorf("bad price for product %s: %w", p.ID, err)
		}
		products = append(products, domain.Product{ID: p.ID, Price: price, Name: p.Name})
	}

	c.warmNameCache(ctx, products)

	return products, nil
}

// ProductNames resolves display names, serving from cache where possible and
// falling back to one catalog call for the rest.
func (c *Client) ProductNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	missing := make([]string, 0)

	for _, id := range ids {
		name, ok, err := c.cache.Get(ctx, c.cache.Key("product-name", id))
		if err != nil {
			c.logger.Warn("name cache read failed", zap.Error(err))
		}
		if ok {
			names[id] = name
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return names, nil
	}

	products, err := c.ValidateProducts(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		names[p.ID] = p.Name
	}

	return names, nil
}

func (c *Client) warmNameCache(ctx context.Context, products []domain.Product) {
	for _, p := range products {
		err := c.cache.Set(ctx, c.cache.Key("product-name", p.ID), p.Name, nameCacheTTL)
		if err != nil {
			c.logger.Warn("name cache write failed", zap.String("product", p.ID), zap.Error(err))
			return
		}
	}
}
