package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codigix/Furnituredemo/internal/domain"
	"github.com/codigix/Furnituredemo/internal/logging"
	"github.com/codigix/Furnituredemo/internal/usecase"
)

// respondError maps the domain taxonomy onto stable reason codes.
// Storage-layer detail never reaches the client; unknown errors log
// and collapse to a generic 500.
func respondError(c *gin.Context, err error) {
	code := domain.ReasonCode(err)
	if errors.Is(err, usecase.ErrDuplicate) {
		code = "duplicate_request"
	}

	var status int
	switch code {
	case "validation_failed", "email_taken":
		status = http.StatusBadRequest
	case "invalid_credentials":
		status = http.StatusUnauthorized
	case "forbidden":
		status = http.StatusForbidden
	case "not_found", "product_not_found":
		status = http.StatusNotFound
	case "conflict", "illegal_transition", "duplicate_request":
		status = http.StatusConflict
	case "insufficient_stock":
		status = http.StatusUnprocessableEntity
	case "storage_unavailable":
		status = http.StatusServiceUnavailable
	default:
		logging.From(c).Error("unhandled error", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "internal error"})
		return
	}

	body := gin.H{"error": code, "message": err.Error()}

	// order rejections carry the failing line index
	var ise *domain.InsufficientStockError
	var upe *domain.UnknownProductError
	if errors.As(err, &ise) {
		body["line"] = ise.Line
	} else if errors.As(err, &upe) {
		body["line"] = upe.Line
	}

	c.JSON(status, body)
}
