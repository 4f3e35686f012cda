package httpserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

// apiResponse is the body of every error and of plain acknowledgements.
type apiResponse struct {
	Message string `json:"message"`
	Status  bool   `json:"status"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateResource),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrEmptyResult),
		errors.Is(err, domain.ErrAlreadyInCart),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrReferenced):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Unexpected errors are logged and hidden from the
// caller.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, apiResponse{Message: msg, Status: false})
}
