package domain

import "github.com/govalues/decimal"

// Product is a read-only snapshot from the catalog service.
// It is never persisted, only copied into order item snapshots.
type Product struct {
	ID    string
	Price decimal.Decimal
	Name  string
}
