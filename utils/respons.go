package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-ordering/domain"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func RespondJSON(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// StatusFor maps an error kind onto its HTTP status.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindAuthentication:
		return http.StatusUnauthorized
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes {"error": msg} with the status derived from err. Only gin's
// debug mode exposes the underlying cause.
func RespondError(c *gin.Context, err error) {
	code := StatusFor(err)
	_ = c.Error(err)

	body := ErrorResponse{Error: domain.PublicMessage(err)}
	if gin.Mode() == gin.DebugMode {
		if cause := errors.Unwrap(err); cause != nil {
			body.Detail = cause.Error()
		} else if domain.KindOf(err) == domain.KindUnexpected {
			body.Detail = err.Error()
		}
	}

	c.AbortWithStatusJSON(code, body)
}
