package domain

import (
	"context"
	"fmt"
	"time"

	transactiondomain "github.com/smallbiznis/leadfuel/internal/transaction/domain"
)

// Query names carried by DataAccessFailure.
const (
	QueryMonthlyAllocation   = "monthly_allocation"
	QueryMonthlyTransactions = "monthly_transactions"
	QueryWeeklyTransactions  = "weekly_transactions"
)

// DataAccess is the read capability the aggregator depends on.
type DataAccess interface {
	// FetchMonthlyAllocation returns nil when the user has no monthly quota.
	FetchMonthlyAllocation(ctx context.Context, userID string) (*int64, error)
	FetchTransactions(ctx context.Context, userID string, since time.Time) ([]transactiondomain.Transaction, error)
}

type Service interface {
	Aggregate(ctx context.Context, userID string, now time.Time) (UsageStatistics, error)
}

// DataAccessFailure reports which query failed during aggregation.
type DataAccessFailure struct {
	Query string
	Err   error
}

func (e *DataAccessFailure) Error() string {
	return fmt.Sprintf("usage stats: %s: %v", e.Query, e.Err)
}

func (e *DataAccessFailure) Unwrap() error {
	return e.Err
}
