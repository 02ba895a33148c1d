package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/developmentHC/conectaBemBack/internal/apperrors"
	"github.com/developmentHC/conectaBemBack/internal/logging"
)

// ResponseData represents the structure of a standard API response.
type ResponseData struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorData is the body of every error response. Clients that only read
// "error" keep working; newer ones switch on "code".
type ErrorData struct {
	Status int            `json:"status"`
	Code   apperrors.Kind `json:"code"`
	Error  string         `json:"error"`
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// SuccessWithMeta sends a success response carrying pagination or other metadata.
func SuccessWithMeta(c *gin.Context, message string, data, meta interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{
		Status:  http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, code apperrors.Kind, errorMessage string) {
	c.JSON(statusCode, ErrorData{
		Status: statusCode,
		Code:   code,
		Error:  errorMessage,
	})
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, errorMessage string) {
	Error(c, http.StatusBadRequest, apperrors.KindValidation, errorMessage)
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, errorMessage string) {
	Error(c, http.StatusUnauthorized, apperrors.KindUnauthorized, errorMessage)
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, errorMessage string) {
	Error(c, http.StatusForbidden, apperrors.KindForbidden, errorMessage)
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, errorMessage string) {
	Error(c, http.StatusNotFound, apperrors.KindNotFound, errorMessage)
}

// InternalServerError logs err and sends a 500 response without leaking it.
func InternalServerError(c *gin.Context, err error) {
	logging.FromContext(c.Request.Context()).Error().Err(err).Msg("request failed")
	Error(c, http.StatusInternalServerError, apperrors.KindInternal, "Internal server error.")
}

// RespondError writes err using its application error kind.
func RespondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal {
		InternalServerError(c, err)
		return
	}
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	Error(c, apperrors.HTTPStatus(kind), kind, message)
}
