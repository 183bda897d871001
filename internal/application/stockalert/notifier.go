package stockalert

import (
	"context"
	"fmt"
	"time"

	"github.com/dentalshop/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// Defaults for the poll loop
const (
	DefaultPollInterval = 10 * time.Second
	DefaultErrorBackoff = 30 * time.Second
)

// Source reads the current low-stock set; each call is an independent read
type Source interface {
	FindLowStock(ctx context.Context, threshold int) ([]catalog.Product, error)
}

// Emitter delivers one event to the client. An error ends the stream.
type Emitter func(Event) error

// Observer is told about stream lifecycle and emitted events
type Observer interface {
	StreamOpened()
	StreamClosed()
	EventEmitted(t EventType)
}

type noopObserver struct{}

func (noopObserver) StreamOpened()          {}
func (noopObserver) StreamClosed()          {}
func (noopObserver) EventEmitted(EventType) {}

// Config tunes the poll loop
type Config struct {
	PollInterval time.Duration
	ErrorBackoff time.Duration
}

// Notifier runs the per-connection low-stock poll loop
type Notifier struct {
	source   Source
	cfg      Config
	logger   *zap.Logger
	observer Observer
}

// Option configures a Notifier
type Option func(*Notifier)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithObserver sets the lifecycle observer
func WithObserver(o Observer) Option {
	return func(n *Notifier) {
		if o != nil {
			n.observer = o
		}
	}
}

// NewNotifier creates a Notifier; zero config fields take the defaults
func NewNotifier(source Source, cfg Config, opts ...Option) *Notifier {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = DefaultErrorBackoff
	}
	n := &Notifier{
		source:   source,
		cfg:      cfg,
		logger:   zap.NewNop(),
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Run acknowledges the connection, then polls until ctx is cancelled.
// The first poll runs immediately. A failed query is reported to the client
// and retried after the error backoff. Any other failure is reported once,
// best effort, and ends the stream with that error. Cancellation returns nil.
func (n *Notifier) Run(ctx context.Context, emit Emitter) (err error) {
	n.observer.StreamOpened()
	defer n.observer.StreamClosed()

	defer func() {
		if r := recover(); r != nil {
			err = n.fail(emit, fmt.Errorf("stock alert loop panicked: %v", r))
		}
	}()

	if err := n.send(emit, ConnectionAck()); err != nil {
		return n.fail(emit, err)
	}

	tracker := NewTracker()
	ticker := time.NewTicker(n.cfg.PollInterval)
	defer ticker.Stop()

	for {
		products, queryErr := n.source.FindLowStock(ctx, catalog.LowStockThreshold)
		if ctx.Err() != nil {
			return nil
		}
		if queryErr != nil {
			n.logger.Warn("Stock alert poll failed", zap.Error(queryErr))
			if err := n.send(emit, ErrorEvent(MessageQueryFailed)); err != nil {
				return n.fail(emit, err)
			}
			if !sleep(ctx, n.cfg.ErrorBackoff) {
				return nil
			}
			continue
		}

		delta := tracker.Observe(toLowStock(products))
		if len(delta.LowStock) > 0 {
			if err := n.send(emit, LowStockEvent(delta.LowStock)); err != nil {
				return n.fail(emit, err)
			}
		}
		if len(delta.Restocked) > 0 {
			if err := n.send(emit, StockOKEvent(delta.Restocked)); err != nil {
				return n.fail(emit, err)
			}
		}
		if !delta.Empty() {
			n.logger.Debug("Stock alert batch sent",
				zap.Int("low_stock", len(delta.LowStock)),
				zap.Int("stock_ok", len(delta.Restocked)),
				zap.Int("tracked", tracker.Tracked()),
			)
		}

		ticker.Reset(n.cfg.PollInterval)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (n *Notifier) send(emit Emitter, ev Event) error {
	if err := emit(ev); err != nil {
		return err
	}
	n.observer.EventEmitted(ev.Type)
	return nil
}

// fail makes one attempt at telling the client, then returns cause
func (n *Notifier) fail(emit Emitter, cause error) error {
	n.logger.Error("Stock alert stream aborted", zap.Error(cause))
	if err := emit(ErrorEvent(MessageUnexpected)); err == nil {
		n.observer.EventEmitted(EventError)
	}
	return cause
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func toLowStock(products []catalog.Product) []LowStockProduct {
	out := make([]LowStockProduct, len(products))
	for i := range products {
		out[i] = LowStockProduct{
			ID:            products[i].ID,
			Name:          products[i].Name,
			StockQuantity: products[i].StockQuantity,
		}
	}
	return out
}
