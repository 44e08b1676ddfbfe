package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
	usersvc "storefront-api/internal/service/user"
)

// respondError maps core error types to HTTP status codes. The core never
// swallows a failure, so every error surfaces here as a non-2xx response.
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	var ise *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cart is empty"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Msg})
	case errors.As(err, &ise):
		c.JSON(http.StatusConflict, gin.H{"message": ise.Error(), "sku": ise.SKU})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": "Already exists"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.Is(err, usersvc.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal error"})
	}
}
