// Package handler implements the HTTP endpoints of the catalog, capture and
// invoice APIs.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zantech/instantorder/internal/domain/shared"
	"github.com/zantech/instantorder/internal/infrastructure/logger"
	"github.com/zantech/instantorder/internal/interfaces/http/dto"
	"github.com/zantech/instantorder/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct{}

// Success sends a successful response with data
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 Created response with data
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 No Content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the request id attached
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// ErrorWithCode sends an error response using the status mapped to code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 Bad Request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 Not Found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 Internal Server Error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts err into an error response. Domain errors keep their
// message and details; anything else is logged and hidden behind a generic
// 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	requestID := middleware.GetRequestID(c)

	var de *shared.DomainError
	if !errors.As(err, &de) {
		logger.GetGinLogger(c).Error("unhandled error", zap.Error(err))
		h.InternalError(c, "An internal error occurred")
		return
	}

	code := dto.NormalizeErrorCode(de.Code)
	status := dto.GetHTTPStatus(code)
	if status >= http.StatusInternalServerError || shared.IsRetryable(err) {
		logger.GetGinLogger(c).Warn("request failed",
			zap.String("code", de.Code),
			zap.Error(err),
		)
	}

	resp := dto.NewErrorResponseWithRequestID(code, de.Message, requestID)
	if len(de.Details) > 0 {
		resp.Error.Details = de.Details
	}
	resp.Error.Retryable = shared.IsRetryable(err)
	c.JSON(status, resp)
}

// BindJSON binds the request body into obj and writes the error response on
// failure. It returns false when the handler should stop.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.handleBindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) handleBindError(c *gin.Context, err error) {
	requestID := middleware.GetRequestID(c)

	var maxBytesErr *http.MaxBytesError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &maxBytesErr):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	case errors.Is(err, io.EOF):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is empty")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
	case errors.As(err, &typeErr):
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Invalid field type", requestID,
			map[string]string{typeErr.Field: "Must be a " + typeErr.Type.String()}))
	default:
		if details := middleware.ValidationDetails(err); details != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Validation failed", requestID, details))
			return
		}
		h.BadRequest(c, err.Error())
	}
}

// ParseUUID parses the path parameter name and writes a 400 on failure
func (h *BaseHandler) ParseUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Invalid "+name+" format",
			middleware.GetRequestID(c), map[string]string{name: "Invalid UUID format"}))
		return uuid.Nil, false
	}
	return id, true
}

// isValidationOnly reports whether a bind error came from binding rules
// rather than from decoding the body
func isValidationOnly(err error) bool {
	return middleware.ValidationDetails(err) != nil
}
