package handlers

import (
	"errors"
	"net/http"

	"techstore-system/internal/ledger"
)

// statusForError maps the ledger error taxonomy to HTTP statuses. The
// core never shapes user-facing output itself; that happens here.
func statusForError(err error) int {
	var (
		accessDenied  *ledger.AccessDeniedError
		invalidInput  *ledger.InvalidInputError
		unavailable   *ledger.ProductUnavailableError
		insufficient  *ledger.InsufficientStockError
		constraintErr *ledger.ConstraintViolationError
		timeoutErr    *ledger.TimeoutError
	)

	switch {
	case errors.As(err, &accessDenied):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrEmptyCart),
		errors.Is(err, ledger.ErrInvalidQuantity),
		errors.As(err, &invalidInput):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusNotFound
	case errors.As(err, &insufficient), errors.As(err, &constraintErr):
		return http.StatusConflict
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
