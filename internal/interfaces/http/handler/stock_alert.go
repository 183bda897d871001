package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/dentalshop/backend/internal/application/stockalert"
	"github.com/dentalshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StockAlertRunner drives one low-stock stream until ctx ends
type StockAlertRunner interface {
	Run(ctx context.Context, emit stockalert.Emitter) error
}

// ErrCodeMaxConnections is returned when the stream cap is reached
const ErrCodeMaxConnections = "ERR_MAX_CONNECTIONS_REACHED"

// StockAlertHandler serves the admin low-stock feed as server-sent events.
// Each connection runs its own poll loop with its own alert state.
type StockAlertHandler struct {
	BaseHandler
	runner     StockAlertRunner
	logger     *zap.Logger
	maxStreams int64
	open       atomic.Int64
}

// StockAlertOption configures the handler
type StockAlertOption func(*StockAlertHandler)

// WithStockAlertLogger sets the logger for the handler
func WithStockAlertLogger(logger *zap.Logger) StockAlertOption {
	return func(h *StockAlertHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMaxStreams caps concurrent streams; 0 means unlimited
func WithMaxStreams(max int) StockAlertOption {
	return func(h *StockAlertHandler) {
		h.maxStreams = int64(max)
	}
}

// NewStockAlertHandler creates a new stock alert handler
func NewStockAlertHandler(runner StockAlertRunner, opts ...StockAlertOption) *StockAlertHandler {
	h := &StockAlertHandler{
		runner:     runner,
		logger:     zap.NewNop(),
		maxStreams: 100,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// acquire reserves a stream slot; the increment is the check, so concurrent
// opens can never exceed maxStreams.
func (h *StockAlertHandler) acquire() bool {
	if n := h.open.Add(1); h.maxStreams > 0 && n > h.maxStreams {
		h.open.Add(-1)
		return false
	}
	return true
}

// Stream holds the connection open and relays notifier events as unnamed
// "data:" frames. The admin check happens once, before the stream opens.
//
//	GET /api/v1/admin/stock_alerts
func (h *StockAlertHandler) Stream(c *gin.Context) {
	if !h.acquire() {
		h.Error(c, http.StatusServiceUnavailable, ErrCodeMaxConnections,
			"Maximum number of stock alert connections reached")
		return
	}
	defer h.open.Add(-1)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	userID := middleware.GetJWTUserID(c)
	h.logger.Info("Stock alert stream opened", zap.String("user_id", userID))

	emit := func(ev stockalert.Event) error {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal %s event: %w", ev.Type, err)
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
			return fmt.Errorf("write %s event: %w", ev.Type, err)
		}
		c.Writer.Flush()
		return nil
	}

	if err := h.runner.Run(c.Request.Context(), emit); err != nil {
		h.logger.Warn("Stock alert stream ended with error",
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}
	h.logger.Info("Stock alert stream closed", zap.String("user_id", userID))
}

// OpenStreams returns the number of live streams
func (h *StockAlertHandler) OpenStreams() int {
	return int(h.open.Load())
}
