package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")

	// * Communication errors.
	ErrBadRequest = errors.New("error parsing request")

	// * Business errors.
	ErrInvalidProducts    = errors.New("invalid products provided")
	ErrUnknownOrderStatus = errors.New("unknown order status")
)

// ErrCatalogUnavailable marks a failed catalog call. It reports as the
// collapsed invalid-products kind at the transport edge, keeping the
// platform contract, while staying distinguishable internally.
var ErrCatalogUnavailable = fmt.Errorf("%w: catalog unavailable", ErrInvalidProducts)

// ProductsNotFoundError carries the product IDs the catalog did not return.
type ProductsNotFoundError struct {
	IDs []string
}

func (e *ProductsNotFoundError) Error() string {
	return fmt.Sprintf("products not found: %s", strings.Join(e.IDs, ", "))
}

func (e *ProductsNotFoundError) Unwrap() error {
	return ErrInvalidProducts
}
