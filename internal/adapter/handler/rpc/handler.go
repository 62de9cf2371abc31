package rpc

import (
	"errors"
	"net/http"

	"github.com/microshop/orders-service/internal/adapter/bus"
	"github.com/microshop/orders-service/internal/core/domain"
)

var errorStatusMap = map[error]int{
	domain.ErrInternal:        http.StatusInternalServerError,
	domain.ErrDataNotFound:    http.StatusNotFound,
	domain.ErrBadRequest:      http.StatusBadRequest,
	domain.ErrInvalidProducts: http.StatusBadRequest,

	domain.ErrUnknownOrderStatus: http.StatusBadRequest,
}

func statusForError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// busError converts a workflow error into the platform error envelope. The
// tagged catalog failure variants collapse into the one invalid-products
// message the platform contract promises.
func busError(err error) *bus.Error {
	status := statusForError(err)

	message := err.Error()
	switch {
	case errors.Is(err, domain.ErrInvalidProducts):
		message = "Invalid products provided"
	case status == http.StatusInternalServerError:
		message = "Internal server error"
	}

	return &bus.Error{Status: status, Message: message}
}
