package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	statsComputed      metric.Int64Counter
	statsDuration      metric.Float64Histogram
	statsCache         metric.Int64Counter
	dataAccessFailures metric.Int64Counter
	usersProvisioned   metric.Int64Counter
	provisionConflicts metric.Int64Counter
	rateLimitAllowed   metric.Int64Counter
	rateLimitDenied    metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "leadfuel"
	}
	meter := provider.Meter(name)

	var (
		m   Metrics
		err error
	)
	if m.statsComputed, err = meter.Int64Counter("leadfuel_usage_stats_computed_total"); err != nil {
		return nil, err
	}
	if m.statsDuration, err = meter.Float64Histogram("leadfuel_usage_stats_duration_seconds", metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.statsCache, err = meter.Int64Counter("leadfuel_usage_stats_cache_total"); err != nil {
		return nil, err
	}
	if m.dataAccessFailures, err = meter.Int64Counter("leadfuel_data_access_failures_total"); err != nil {
		return nil, err
	}
	if m.usersProvisioned, err = meter.Int64Counter("leadfuel_users_provisioned_total"); err != nil {
		return nil, err
	}
	if m.provisionConflicts, err = meter.Int64Counter("leadfuel_provisioning_conflicts_total"); err != nil {
		return nil, err
	}
	if m.rateLimitAllowed, err = meter.Int64Counter("leadfuel_rate_limit_allowed_total"); err != nil {
		return nil, err
	}
	if m.rateLimitDenied, err = meter.Int64Counter("leadfuel_rate_limit_denied_total"); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordStatsComputed counts one aggregation and its latency.
func (m *Metrics) RecordStatsComputed(ctx context.Context, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.statsComputed.Add(ctx, 1)
	m.statsDuration.Record(ctx, elapsed.Seconds())
}

// RecordStatsCache counts a cache lookup; result is "hit" or "miss".
func (m *Metrics) RecordStatsCache(ctx context.Context, backend, result string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("backend", strings.TrimSpace(backend)),
		attribute.String("result", strings.TrimSpace(result)),
	)
	m.statsCache.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordDataAccessFailure(ctx context.Context, query string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("query", strings.TrimSpace(query)))
	m.dataAccessFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordUserProvisioned(ctx context.Context, planID int64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.Int64("plan_id", planID))
	m.usersProvisioned.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordProvisioningConflict counts first-login races resolved by re-fetch.
func (m *Metrics) RecordProvisioningConflict(ctx context.Context) {
	if m == nil {
		return
	}
	m.provisionConflicts.Add(ctx, 1)
}

func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// User ids never become labels.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint": {},
	"backend":  {},
	"result":   {},
	"query":    {},
	"plan_id":  {},
	"reason":   {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
