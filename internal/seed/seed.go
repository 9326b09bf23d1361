package seed

import (
	"context"
	"errors"
	"time"

	plandomain "github.com/smallbiznis/leadfuel/internal/plan/domain"
	planrepository "github.com/smallbiznis/leadfuel/internal/plan/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func credits(v int64) *int64 { return &v }

// DefaultPlans are the tiers every installation starts with. Plan 1 is the
// tier assigned on first login.
func DefaultPlans() []plandomain.Plan {
	return []plandomain.Plan{
		{
			ID:             1,
			Name:           "Free",
			MonthlyCredits: credits(10),
			PriceCents:     0,
			Features:       datatypes.JSONSlice[string]{"email_unlock", "phone_unlock"},
			IsActive:       true,
		},
		{
			ID:             2,
			Name:           "Starter",
			MonthlyCredits: credits(250),
			PriceCents:     2900,
			Features:       datatypes.JSONSlice[string]{"email_unlock", "phone_unlock", "export"},
			IsActive:       true,
		},
		{
			ID:             3,
			Name:           "Pro",
			MonthlyCredits: credits(1000),
			PriceCents:     9900,
			Features:       datatypes.JSONSlice[string]{"email_unlock", "phone_unlock", "export", "enrichment", "lists"},
			IsActive:       true,
		},
		{
			ID:         4,
			Name:       "Lifetime",
			PriceCents: 29900,
			Features:   datatypes.JSONSlice[string]{"email_unlock", "phone_unlock", "export", "enrichment", "lists"},
			IsActive:   true,
		},
	}
}

// EnsureDefaultPlans inserts any default plan that is not stored yet. Existing
// rows are left untouched.
func EnsureDefaultPlans(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	repo := planrepository.Provide()
	ctx := context.Background()
	now := time.Now().UTC()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, plan := range DefaultPlans() {
			existing, err := repo.FindByID(ctx, tx, plan.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			plan.CreatedAt = now
			if err := repo.Insert(ctx, tx, &plan); err != nil {
				return err
			}
		}
		return nil
	})
}
