package handler

import (
	"errors"
	"net/http"

	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/dentalshop/backend/internal/infrastructure/logger"
	"github.com/dentalshop/backend/internal/interfaces/http/dto"
	"github.com/dentalshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// BaseHandler writes the response envelope; every handler embeds it
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDContextKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// getUserID is the authenticated caller, set by the JWT middleware
func getUserID(c *gin.Context) (uuid.UUID, error) {
	if id := middleware.GetJWTUserUUID(c); id != nil {
		return *id, nil
	}
	return uuid.Nil, errors.New("no authenticated user on the request")
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta answers one page of a list
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Message answers 200 with only a confirmation text
func (h *BaseHandler) Message(c *gin.Context, message string) {
	h.Success(c, dto.MessageData{Message: message})
}

// Error answers the error envelope, stamped with the request id
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindError answers a failed ShouldBind* with per-field details
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError answers a DomainError with the status of its code. Anything
// else is a bug or an outage: it is logged, marked on the request span and
// answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.FromDomainCode(domainErr.Code)
		h.Error(c, dto.StatusFor(code), code, domainErr.Message)
		return
	}

	ctx := c.Request.Context()
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, "unhandled error")
	logger.L(ctx).Error("Unhandled error", zap.String("route", c.FullPath()), zap.Error(err))
	h.InternalError(c, "An unexpected error occurred")
}

// parseID reads a UUID path parameter, answering 400 when it is malformed
func (h *BaseHandler) parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.BadRequest(c, "Invalid "+param+" format")
		return uuid.Nil, false
	}
	return id, true
}
