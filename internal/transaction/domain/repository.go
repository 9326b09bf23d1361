package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/leadfuel/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	// ListSince returns the user's transactions created at or after since,
	// oldest first.
	ListSince(ctx context.Context, db *gorm.DB, userID string, since time.Time) ([]Transaction, error)
	// ListRecent returns up to page.PageSize+1 transactions, newest first,
	// with contact and organization preloaded.
	ListRecent(ctx context.Context, db *gorm.DB, userID string, page pagination.Pagination) ([]*Transaction, error)
}
