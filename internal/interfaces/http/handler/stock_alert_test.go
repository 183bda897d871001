package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dentalshop/backend/internal/application/stockalert"
	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerFunc func(ctx context.Context, emit stockalert.Emitter) error

func (f runnerFunc) Run(ctx context.Context, emit stockalert.Emitter) error {
	return f(ctx, emit)
}

func TestStockAlertHandler_StreamFrames(t *testing.T) {
	id := uuid.New()
	runner := runnerFunc(func(_ context.Context, emit stockalert.Emitter) error {
		if err := emit(stockalert.ConnectionAck()); err != nil {
			return err
		}
		return emit(stockalert.LowStockEvent([]stockalert.LowStockProduct{{ID: id, Name: "Autoclave", StockQuantity: 4}}))
	})
	h := NewStockAlertHandler(runner)
	r := gin.New()
	r.GET("/admin/stock_alerts", h.Stream)

	w := doJSON(r, http.MethodGet, "/admin/stock_alerts", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", w.Header().Get("Connection"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))

	frames := strings.Split(strings.TrimSuffix(w.Body.String(), "\n\n"), "\n\n")
	require.Len(t, frames, 2)
	assert.Equal(t, `data: {"type":"connection_ack","message":"Connected to stock alerts."}`, frames[0])

	require.True(t, strings.HasPrefix(frames[1], "data: "))
	var ev struct {
		Type     string                       `json:"type"`
		Products []stockalert.LowStockProduct `json:"products"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[1], "data: ")), &ev))
	assert.Equal(t, "low_stock", ev.Type)
	require.Len(t, ev.Products, 1)
	assert.Equal(t, id, ev.Products[0].ID)
	assert.Equal(t, 4, ev.Products[0].StockQuantity)

	assert.Equal(t, 0, h.OpenStreams())
}

func TestStockAlertHandler_MaxStreams(t *testing.T) {
	release := make(chan struct{})
	runner := runnerFunc(func(ctx context.Context, _ stockalert.Emitter) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	})
	h := NewStockAlertHandler(runner, WithMaxStreams(1))
	r := gin.New()
	r.GET("/admin/stock_alerts", h.Stream)

	done := make(chan struct{})
	go func() {
		defer close(done)
		doJSON(r, http.MethodGet, "/admin/stock_alerts", nil)
	}()
	require.Eventually(t, func() bool { return h.OpenStreams() == 1 }, time.Second, 5*time.Millisecond)

	w := doJSON(r, http.MethodGet, "/admin/stock_alerts", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, ErrCodeMaxConnections, decodeResponse(t, w).Error.Code)

	close(release)
	<-done
	assert.Equal(t, 0, h.OpenStreams())
}

func TestStockAlertHandler_MaxStreamsUnderConcurrentOpens(t *testing.T) {
	const limit, clients = 3, 24

	release := make(chan struct{})
	var running, peak atomic.Int32
	runner := runnerFunc(func(ctx context.Context, _ stockalert.Emitter) error {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	})
	h := NewStockAlertHandler(runner, WithMaxStreams(limit))
	r := gin.New()
	r.GET("/admin/stock_alerts", h.Stream)

	var rejected atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if w := doJSON(r, http.MethodGet, "/admin/stock_alerts", nil); w.Code == http.StatusServiceUnavailable {
				rejected.Add(1)
			}
		}()
	}
	close(start)

	require.Eventually(t, func() bool {
		return rejected.Load() == clients-limit && running.Load() == limit
	}, 2*time.Second, 5*time.Millisecond)

	close(release)
	wg.Wait()
	assert.Equal(t, int32(limit), peak.Load())
	assert.Equal(t, 0, h.OpenStreams())
}

type flakySource struct {
	calls atomic.Int32
	id    uuid.UUID
}

// FindLowStock reports one low product, then nothing
func (s *flakySource) FindLowStock(context.Context, int) ([]catalog.Product, error) {
	if s.calls.Add(1) == 1 {
		return []catalog.Product{{
			BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: s.id}},
			Name:              "Curing Light",
			StockQuantity:     2,
			IsActive:          true,
		}}, nil
	}
	return nil, nil
}

func TestStockAlertHandler_NotifierOverHTTP(t *testing.T) {
	source := &flakySource{id: uuid.New()}
	notifier := stockalert.NewNotifier(source, stockalert.Config{PollInterval: 10 * time.Millisecond})
	h := NewStockAlertHandler(notifier)
	r := gin.New()
	r.GET("/admin/stock_alerts", h.Stream)

	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/admin/stock_alerts", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var types []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && len(types) < 3 {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev stockalert.Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		types = append(types, string(ev.Type))
	}
	assert.Equal(t, []string{"connection_ack", "low_stock", "stock_ok"}, types)

	// disconnecting ends the server side loop
	cancel()
	require.Eventually(t, func() bool { return h.OpenStreams() == 0 }, 2*time.Second, 10*time.Millisecond)
}
