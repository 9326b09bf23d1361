package store

import (
	"context"
	"time"

	transactiondomain "github.com/smallbiznis/leadfuel/internal/transaction/domain"
	"github.com/smallbiznis/leadfuel/internal/usagestats/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Transactions transactiondomain.Repository
}

type store struct {
	db           *gorm.DB
	transactions transactiondomain.Repository
}

// New returns the GORM-backed data access for the aggregator.
func New(p Params) domain.DataAccess {
	return &store{db: p.DB, transactions: p.Transactions}
}

type allocationRow struct {
	MonthlyCredits *int64
}

// FetchMonthlyAllocation returns nil for unknown users and lifetime plans.
func (s *store) FetchMonthlyAllocation(ctx context.Context, userID string) (*int64, error) {
	var row allocationRow
	err := s.db.WithContext(ctx).
		Table("users").
		Select("plans.monthly_credits AS monthly_credits").
		Joins("LEFT JOIN plans ON plans.id = users.plan_id").
		Where("users.id = ?", userID).
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return row.MonthlyCredits, nil
}

func (s *store) FetchTransactions(ctx context.Context, userID string, since time.Time) ([]transactiondomain.Transaction, error) {
	return s.transactions.ListSince(ctx, s.db, userID, since)
}
