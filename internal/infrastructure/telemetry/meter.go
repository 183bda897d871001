package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/dentalshop/backend/internal/application/stockalert"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// Sink receives the shop's business signals
type Sink interface {
	stockalert.Observer
	OrderPlaced(itemCount int, total decimal.Decimal)
}

// Tee forwards every signal to each sink in turn
type Tee []Sink

func (t Tee) StreamOpened() {
	for _, s := range t {
		s.StreamOpened()
	}
}

func (t Tee) StreamClosed() {
	for _, s := range t {
		s.StreamClosed()
	}
}

func (t Tee) EventEmitted(e stockalert.EventType) {
	for _, s := range t {
		s.EventEmitted(e)
	}
}

func (t Tee) OrderPlaced(itemCount int, total decimal.Decimal) {
	for _, s := range t {
		s.OrderPlaced(itemCount, total)
	}
}

// ShopMeter pushes the shop counters to an OTLP collector. Prometheus keeps
// serving the pull side; this is for deployments that only run a collector.
type ShopMeter struct {
	provider *sdkmetric.MeterProvider

	orders      metric.Int64Counter
	unitsSold   metric.Int64Counter
	orderValue  metric.Float64Histogram
	streams     metric.Int64UpDownCounter
	stockAlerts metric.Int64Counter
}

// NewShopMeter starts the periodic OTLP push when cfg.Enabled. Disabled, the
// instruments come from the no-op provider.
func NewShopMeter(ctx context.Context, cfg Config, interval time.Duration, logger *zap.Logger) (*ShopMeter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sm := &ShopMeter{}
	var mp metric.MeterProvider = noop.NewMeterProvider()

	if cfg.Enabled {
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		res, err := serviceResource(cfg)
		if err != nil {
			return nil, err
		}
		sm.provider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		)
		mp = sm.provider
		logger.Info("Metric export enabled", zap.Duration("interval", interval))
	}

	if err := sm.register(mp.Meter("github.com/dentalshop/backend")); err != nil {
		return nil, err
	}
	return sm, nil
}

// newShopMeterWith registers the instruments on an existing provider
func newShopMeterWith(mp metric.MeterProvider) (*ShopMeter, error) {
	sm := &ShopMeter{}
	return sm, sm.register(mp.Meter("github.com/dentalshop/backend"))
}

func (sm *ShopMeter) register(m metric.Meter) error {
	var err error
	if sm.orders, err = m.Int64Counter("shop.orders",
		metric.WithDescription("Orders placed through checkout"), metric.WithUnit("{order}")); err != nil {
		return err
	}
	if sm.unitsSold, err = m.Int64Counter("shop.units_sold",
		metric.WithDescription("Units sold across placed orders"), metric.WithUnit("{unit}")); err != nil {
		return err
	}
	if sm.orderValue, err = m.Float64Histogram("shop.order.value",
		metric.WithDescription("Order totals"), metric.WithUnit("MAD")); err != nil {
		return err
	}
	if sm.streams, err = m.Int64UpDownCounter("shop.stock_alert.streams",
		metric.WithDescription("Open low-stock alert streams")); err != nil {
		return err
	}
	sm.stockAlerts, err = m.Int64Counter("shop.stock_alert.events",
		metric.WithDescription("Stock alert events written to streams"))
	return err
}

func (sm *ShopMeter) StreamOpened() {
	sm.streams.Add(context.Background(), 1)
}

func (sm *ShopMeter) StreamClosed() {
	sm.streams.Add(context.Background(), -1)
}

func (sm *ShopMeter) EventEmitted(t stockalert.EventType) {
	sm.stockAlerts.Add(context.Background(), 1, metric.WithAttributes(attribute.String("type", string(t))))
}

func (sm *ShopMeter) OrderPlaced(itemCount int, total decimal.Decimal) {
	ctx := context.Background()
	sm.orders.Add(ctx, 1)
	sm.unitsSold.Add(ctx, int64(itemCount))
	sm.orderValue.Record(ctx, total.InexactFloat64())
}

// Shutdown pushes the last collection and stops the exporter
func (sm *ShopMeter) Shutdown(ctx context.Context) error {
	if sm.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := sm.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

var (
	_ Sink = (*ShopMeter)(nil)
	_ Sink = (*Metrics)(nil)
	_ Sink = Tee(nil)
)
