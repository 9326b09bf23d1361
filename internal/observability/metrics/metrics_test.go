package metrics

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsUserLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("endpoint", "/api/usage/stats"),
		attribute.String("user_id", "user_123"),
		attribute.String("query", "weekly_transactions"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "user_id" {
			t.Fatalf("expected user_id to be dropped")
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordStatsComputed(ctx, time.Millisecond)
	m.RecordStatsCache(ctx, "memory", "hit")
	m.RecordDataAccessFailure(ctx, "monthly_transactions")
	m.RecordUserProvisioned(ctx, 1)
	m.RecordProvisioningConflict(ctx)
	m.RecordRateLimitAllowed(ctx, "/api/me")
	m.RecordRateLimitDenied(ctx, "/api/me", "user-rate")
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "leadfuel"}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	m.RecordStatsComputed(context.Background(), 5*time.Millisecond)
}
