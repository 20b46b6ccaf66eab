package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
	pkgAuth "github.com/shopflow/choreography/internal/pkg/auth"
	"github.com/shopflow/choreography/internal/server/http/middleware"
)

// CurrentIdentity extracts the authenticated caller from context.
func CurrentIdentity(c *gin.Context) pkgAuth.Identity {
	val, ok := c.Get(middleware.IdentityContextKey)
	if !ok {
		return pkgAuth.Identity{}
	}
	identity, _ := val.(pkgAuth.Identity)
	return identity
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.Status(status)
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
