package custom_error

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
)

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NewNotFound(resource string, id interface{}) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}

// InsufficientStockError is returned when a debit would drive a pool
// quantity below zero.
type InsufficientStockError struct {
	Pool      string `json:"pool"`
	OwnerID   int64  `json:"owner_id"`
	ItemType  string `json:"item_type"`
	Packaging string `json:"packaging"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock in %s %d for %s/%s: available %d, requested %d",
		e.Pool, e.OwnerID, e.ItemType, e.Packaging, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ConflictError reports a state-machine violation, e.g. approving a
// request that is no longer pending.
type ConflictError struct {
	Resource string `json:"resource"`
	ID       int64  `json:"id"`
	Status   string `json:"status"`
	Expected string `json:"expected"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %d is %s, expected %s", e.Resource, e.ID, e.Status, e.Expected)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type ValidationError struct {
	Property string `json:"property"`
	Message  string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Property == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Property, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func NewValidation(property, message string) *ValidationError {
	return &ValidationError{Property: property, Message: message}
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// BatchMemberError names the transfer that failed an all-or-nothing batch
// operation. The wrapped error keeps its own kind.
type BatchMemberError struct {
	TransferID int64
	Err        error
}

func (e *BatchMemberError) Error() string {
	return fmt.Sprintf("transfer %d: %v", e.TransferID, e.Err)
}

func (e *BatchMemberError) Unwrap() error { return e.Err }

// HTTPStatus picks the response code for an error coming out of a service.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Code is the machine readable "code" field of an error response.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return "internal_error"
	}
}
