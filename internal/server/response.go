package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/studyscout/internal/apperr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondErr maps a workflow error to its HTTP status.
func respondErr(c *gin.Context, err error) {
	kind := apperr.Kind(err)
	RespondError(c, statusFor(kind), kind, err)
}

func statusFor(kind string) int {
	switch kind {
	case "not_found":
		return http.StatusNotFound
	case "validation":
		return http.StatusBadRequest
	case "ingestion":
		return http.StatusUnprocessableEntity
	case "generation":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
