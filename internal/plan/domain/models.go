package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Plan is a subscription tier. A nil MonthlyCredits marks a lifetime plan
// with no monthly allocation.
type Plan struct {
	ID             int64                       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name           string                      `gorm:"not null;uniqueIndex" json:"name"`
	MonthlyCredits *int64                      `gorm:"column:monthly_credits" json:"monthly_credits"`
	PriceCents     int64                       `gorm:"not null;default:0" json:"price_cents"`
	Features       datatypes.JSONSlice[string] `gorm:"type:json" json:"features"`
	IsActive       bool                        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time                   `gorm:"not null" json:"created_at"`
}

func (Plan) TableName() string { return "plans" }

// IsLifetime reports whether the plan has no monthly allocation.
func (p Plan) IsLifetime() bool {
	return p.MonthlyCredits == nil
}

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Plan, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]*Plan, error)
	Insert(ctx context.Context, db *gorm.DB, plan *Plan) error
}

var ErrNotFound = errors.New("plan_not_found")
