package repository

import (
	"context"

	"github.com/smallbiznis/leadfuel/internal/plan/domain"
	"github.com/smallbiznis/leadfuel/pkg/db/option"
	"github.com/smallbiznis/leadfuel/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) store(db *gorm.DB) repository.Repository[domain.Plan] {
	return repository.ProvideStore[domain.Plan](db)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Plan, error) {
	if id <= 0 {
		return nil, nil
	}
	return r.store(db).FindOne(ctx, &domain.Plan{ID: id})
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]*domain.Plan, error) {
	return r.store(db).Find(ctx, nil,
		option.QueryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
			return stmt.Where("is_active = ?", true)
		}),
		option.WithSortBy(option.QuerySortBy{Column: "id", Allow: map[string]bool{"id": true}}),
	)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return r.store(db).Create(ctx, plan)
}
