package repository

import (
	"context"

	"github.com/smallbiznis/leadfuel/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a generic GORM store for simple lookup tables.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Count(ctx context.Context, query *T) (int64, error)
}
