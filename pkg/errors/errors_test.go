package custom_error

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		code     string
	}{
		{"not found", NewNotFound("item", 7), http.StatusNotFound, "not_found"},
		{"insufficient stock", &InsufficientStockError{Available: 1, Requested: 2}, http.StatusConflict, "insufficient_stock"},
		{"conflict", &ConflictError{Resource: "inventory_request", ID: 1, Status: "approved", Expected: "pending"}, http.StatusConflict, "conflict"},
		{"validation", NewValidation("quantity", "must be positive"), http.StatusBadRequest, "validation_error"},
		{"forbidden", &ForbiddenError{Message: "not yours"}, http.StatusForbidden, "forbidden"},
		{"wrapped in batch member", &BatchMemberError{TransferID: 4, Err: &ForbiddenError{Message: "x"}}, http.StatusForbidden, "forbidden"},
		{"wrapped with fmt", fmt.Errorf("approve: %w", NewNotFound("warehouse", 2)), http.StatusNotFound, "not_found"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
			assert.Equal(t, tt.code, Code(tt.err))
		})
	}
}

func TestBatchMemberErrorKeepsCause(t *testing.T) {
	cause := &InsufficientStockError{Pool: "warehouse", OwnerID: 1, ItemType: "n950", Packaging: "box", Available: 0, Requested: 3}
	err := &BatchMemberError{TransferID: 9, Err: cause}

	var stockErr *InsufficientStockError
	assert.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 3, stockErr.Requested)
	assert.Contains(t, err.Error(), "transfer 9")
}

func TestFromDB(t *testing.T) {
	tests := []struct {
		name   string
		code   pq.ErrorCode
		target error
	}{
		{"unique", "23505", ErrConflict},
		{"foreign key", "23503", ErrValidation},
		{"check", "23514", ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromDB(&pq.Error{Code: tt.code, Message: "constraint"})
			assert.ErrorIs(t, err, tt.target)
		})
	}

	plain := errors.New("plain")
	assert.Equal(t, plain, FromDB(plain))
}
