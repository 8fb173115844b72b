package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/dualfetch/models"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// Created returns a standard response for a newly stored resource.
func Created(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusCreated, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// ErrorStatus maps a data layer error to an HTTP status and business code.
func ErrorStatus(err error) (int, int) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, 40400
	case errors.Is(err, models.ErrInvalidComment):
		return http.StatusBadRequest, 40001
	case errors.Is(err, models.ErrInvalidAuthor):
		return http.StatusBadRequest, 40002
	case errors.Is(err, models.ErrInvalidParent):
		return http.StatusBadRequest, 40003
	default:
		return http.StatusInternalServerError, 50000
	}
}

// Fail writes err using ErrorStatus and logs server-side failures.
func Fail(ctx *gin.Context, err error) {
	status, code := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		Sugar.Errorw("request failed", "path", ctx.Request.URL.Path, "error", err)
	}
	Error(ctx, status, code, err.Error())
}
