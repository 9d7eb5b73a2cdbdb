package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmagtibay/clinic-api/internal/model"
	apperrors "github.com/rmagtibay/clinic-api/pkg/errors"
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

// RespondError maps business errors to HTTP status codes. Unknown errors
// read as internal; the raw message still goes out, this is an internal API.
func RespondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErrorStatus(appErr.Code), NewErrorResponse(appErr.Message))
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrSlotTaken),
		errors.Is(err, model.ErrAlreadyTransitioned),
		errors.Is(err, model.ErrSaleFinalized):
		status = http.StatusConflict
	case errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrInsufficientStock),
		errors.Is(err, model.ErrInvalidAmount):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, NewErrorResponse(err.Error()))
}

func appErrorStatus(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return http.StatusForbidden
	case apperrors.ErrConflict:
		return http.StatusConflict
	case apperrors.ErrUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
