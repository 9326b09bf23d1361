package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/leadfuel/internal/observability/metrics"
	"github.com/smallbiznis/leadfuel/internal/observability/tracing"
	transactiondomain "github.com/smallbiznis/leadfuel/internal/transaction/domain"
	"github.com/smallbiznis/leadfuel/internal/usagestats/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const weekDays = 7

type Params struct {
	fx.In

	Data    domain.DataAccess
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

// Aggregator computes usage statistics from the transaction store. It holds
// no per-user state and is safe for concurrent use.
type Aggregator struct {
	data    domain.DataAccess
	log     *zap.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func New(p Params) *Aggregator {
	return &Aggregator{
		data:    p.Data,
		log:     p.Log.Named("usagestats.service"),
		metrics: p.Metrics,
		tracer:  otel.Tracer("leadfuel/usagestats"),
	}
}

func (a *Aggregator) Aggregate(ctx context.Context, userID string, now time.Time) (domain.UsageStatistics, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Empty(), nil
	}

	ctx, span := a.tracer.Start(ctx, "usagestats.Aggregate")
	defer span.End()
	started := time.Now()

	monthStart := startOfMonth(now)
	weekStart := weekWindowStart(now)

	var (
		allocation *int64
		monthly    []transactiondomain.Transaction
		weekly     []transactiondomain.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := a.data.FetchMonthlyAllocation(gctx, userID)
		if err != nil {
			return &domain.DataAccessFailure{Query: domain.QueryMonthlyAllocation, Err: err}
		}
		allocation = v
		return nil
	})
	g.Go(func() error {
		v, err := a.data.FetchTransactions(gctx, userID, monthStart)
		if err != nil {
			return &domain.DataAccessFailure{Query: domain.QueryMonthlyTransactions, Err: err}
		}
		monthly = v
		return nil
	})
	g.Go(func() error {
		v, err := a.data.FetchTransactions(gctx, userID, weekStart)
		if err != nil {
			return &domain.DataAccessFailure{Query: domain.QueryWeeklyTransactions, Err: err}
		}
		weekly = v
		return nil
	})

	if err := g.Wait(); err != nil {
		query := ""
		var failure *domain.DataAccessFailure
		if errors.As(err, &failure) {
			query = failure.Query
		}
		a.metrics.RecordDataAccessFailure(ctx, query)
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "data access failure")
		a.log.Warn("usage stats aggregation failed",
			zap.String("user_id", userID),
			zap.String("query", query),
			zap.Error(err),
		)
		return domain.UsageStatistics{}, err
	}

	stats := Build(now, allocation, monthly, weekly)
	span.SetAttributes(
		attribute.Int("usagestats.monthly_records", len(monthly)),
		attribute.Int("usagestats.weekly_records", len(weekly)),
		attribute.Int64("usagestats.monthly_used", stats.MonthlyUsed),
	)
	a.metrics.RecordStatsComputed(ctx, time.Since(started))
	return stats, nil
}

// Build assembles statistics from already-fetched inputs. Records outside
// the month or week window ending at now are ignored, so callers may pass a
// superset.
func Build(now time.Time, allocation *int64, monthly, weekly []transactiondomain.Transaction) domain.UsageStatistics {
	loc := now.Location()
	monthStart := startOfMonth(now)
	weekStart := weekWindowStart(now)

	stats := domain.Empty()
	if allocation != nil && *allocation > 0 {
		stats.MonthlyAllocation = *allocation
	}

	index := make(map[string]int)
	for _, tx := range monthly {
		if !within(tx.CreatedAt, monthStart, now) {
			continue
		}
		credits := nonNegative(tx.CreditsUsed)
		stats.MonthlyUsed += credits

		label := domain.TypeLabel(tx.Type)
		i, ok := index[label]
		if !ok {
			i = len(stats.CreditTypes)
			index[label] = i
			stats.CreditTypes = append(stats.CreditTypes, domain.CreditTypeUsage{Type: label})
		}
		stats.CreditTypes[i].Count++
		stats.CreditTypes[i].Credits += credits
	}

	byDate := make(map[string]int64, weekDays)
	for _, tx := range weekly {
		if !within(tx.CreatedAt, weekStart, now) {
			continue
		}
		byDate[dateKey(tx.CreatedAt.In(loc))] += nonNegative(tx.CreditsUsed)
	}

	stats.WeeklyUsage = make([]domain.DayUsage, 0, weekDays)
	for i := 0; i < weekDays; i++ {
		day := weekStart.AddDate(0, 0, i)
		key := dateKey(day)
		stats.WeeklyUsage = append(stats.WeeklyUsage, domain.DayUsage{
			Day:     day.Format("Mon"),
			Date:    key,
			Credits: byDate[key],
		})
	}
	return stats
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// weekWindowStart is midnight six days before now, so the window spans seven
// calendar days including today.
func weekWindowStart(now time.Time) time.Time {
	return startOfDay(now.AddDate(0, 0, -(weekDays - 1)))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func dateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
