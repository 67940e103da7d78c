package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"techstore-system/internal/ledger"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"access denied", &ledger.AccessDeniedError{Table: "users"}, http.StatusForbidden},
		{"empty cart", ledger.ErrEmptyCart, http.StatusBadRequest},
		{"invalid quantity", ledger.ErrInvalidQuantity, http.StatusBadRequest},
		{"invalid input", &ledger.InvalidInputError{Field: "name"}, http.StatusBadRequest},
		{"unavailable", &ledger.ProductUnavailableError{ProductID: 1, BranchID: 1}, http.StatusNotFound},
		{"insufficient stock", &ledger.InsufficientStockError{Available: 1, Requested: 2}, http.StatusConflict},
		{"constraint", &ledger.ConstraintViolationError{Op: "insert"}, http.StatusConflict},
		{"timeout", &ledger.TimeoutError{Op: "fetch"}, http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusForError(tc.err))
		})
	}
}
