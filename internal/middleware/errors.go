package middleware

import (
	"errors"

	custom_error "fieldstock/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AbortWithError writes the error body used by every handler and logs
// server-side failures.
func AbortWithError(c *gin.Context, logger *zap.Logger, message string, err error) {
	status := custom_error.HTTPStatus(err)
	body := gin.H{
		"error":   message,
		"details": err.Error(),
		"code":    custom_error.Code(err),
	}

	var stockErr *custom_error.InsufficientStockError
	if errors.As(err, &stockErr) {
		body["available"] = stockErr.Available
		body["requested"] = stockErr.Requested
		body["item_type"] = stockErr.ItemType
		body["packaging"] = stockErr.Packaging
	}
	var memberErr *custom_error.BatchMemberError
	if errors.As(err, &memberErr) {
		body["transfer_id"] = memberErr.TransferID
	}
	var validationErr *custom_error.ValidationError
	if errors.As(err, &validationErr) && validationErr.Property != "" {
		body["property"] = validationErr.Property
	}

	if status >= 500 && logger != nil {
		logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, body)
}
