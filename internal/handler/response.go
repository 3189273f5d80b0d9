package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/shake819/remind-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError maps the application error taxonomy onto HTTP statuses and
// always resolves the request, so callers never hang on an engine failure.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.Is(err, apperrors.ErrBadRequest):
		status = http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	case apperrors.Is(err, apperrors.ErrVersionConflict):
		status = http.StatusConflict
	case apperrors.Is(err, apperrors.ErrDeliveryFailure):
		status = http.StatusBadGateway
	}
	c.JSON(status, NewErrorResponse(err.Error()))
}
