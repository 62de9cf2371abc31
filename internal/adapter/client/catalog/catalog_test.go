package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/microshop/orders-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeBus struct {
	calls   int
	fail    error
	replies []domain.Product
}

func (f *fakeBus) Request(_ context.Context, subject string, payload any, result any) error {
	f.calls++
	if f.fail != nil {
		return f.fail
	}

	resp := result.(*[]productPayload)
	for _, p := range f.replies {
		price, _ := p.Price.Float64()
		*resp = append(*resp, productPayload{ID: p.ID, Price: price, Name: p.Name})
	}
	return nil
}

type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.values[key] = value
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := f.values[key]
	return value, ok, nil
}

func (f *fakeCache) Key(operation, id string) string {
	return "orders:" + operation + ":" + id
}

func TestClient_ValidateProducts(t *testing.T) {
	logger, _ := zap.NewProduction()

	bus := &fakeBus{replies: []domain.Product{
		{ID: "A", Name: "Keyboard"},
		{ID: "B", Name: "Mouse"},
	}}
	cache := newFakeCache()

	client, err := NewCatalogClient(bus, cache, logger)
	assert.NoError(t, err)

	products, err := client.ValidateProducts(context.Background(), []string{"A", "B"})
	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, "A", products[0].ID)

	// names are warmed for the read path
	assert.Equal(t, "Keyboard", cache.values["orders:product-name:A"])
	assert.Equal(t, "Mouse", cache.values["orders:product-name:B"])
}

func TestClient_ValidateProducts_BreakerOpens(t *testing.T) {
	logger, _ := zap.NewProduction()

	bus := &fakeBus{fail: errors.New("request timed out")}

	client, err := NewCatalogClient(bus, newFakeCache(), logger)
	assert.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := client.ValidateProducts(context.Background(), []string{"A"})
		assert.Error(t, err)
	}

	// the breaker tripped, so not every attempt reached the bus
	assert.Less(t, bus.calls, 5)
}

func TestClient_ProductNames(t *testing.T) {
	logger, _ := zap.NewProduction()

	bus := &fakeBus{replies: []domain.Product{{ID: "B", Name: "Mouse"}}}
	cache := newFakeCache()
	cache.values["orders:product-name:A"] = "Keyboard"

	client, err := NewCatalogClient(bus, cache, logger)
	assert.NoError(t, err)

	names, err := client.ProductNames(context.Background(), []string{"A", "B"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "Keyboard", "B": "Mouse"}, names)

	// only the miss went to the catalog
	assert.Equal(t, 1, bus.calls)
}

func TestClient_ProductNames_AllCached(t *testing.T) {
	logger, _ := zap.NewProduction()

	bus := &fakeBus{}
	cache := newFakeCache()
	cache.values["orders:product-name:A"] = "Keyboard"

	client, err := NewCatalogClient(bus, cache, logger)
	assert.NoError(t, err)

	names, err := client.ProductNames(context.Background(), []string{"A"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "Keyboard"}, names)
	assert.Zero(t, bus.calls)
}
