package option

import (
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/leadfuel/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a statement before execution.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

// QueryOptionFunc adapts a plain function to QueryOption.
type QueryOptionFunc func(db *gorm.DB) *gorm.DB

func (f QueryOptionFunc) Apply(db *gorm.DB) *gorm.DB {
	return f(db)
}

// WithLimit caps the number of returned rows. Non-positive limits are ignored.
func WithLimit(limit int) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

// QuerySortBy orders by Column when it appears in Allow.
type QuerySortBy struct {
	Column string
	Desc   bool
	Allow  map[string]bool
}

func WithSortBy(sort QuerySortBy) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		column := strings.TrimSpace(sort.Column)
		if column == "" || !sort.Allow[column] {
			return db
		}
		if sort.Desc {
			return db.Order(column + " desc")
		}
		return db.Order(column + " asc")
	})
}

// ApplyPagination applies keyset pagination ordered newest first. The page
// fetches one extra row so callers can detect whether more remain. An
// undecodable token starts from the first page.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if token := strings.TrimSpace(page.PageToken); token != "" {
			if cursor, err := pagination.DecodeCursor(token); err == nil {
				createdAt, timeErr := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
				id, idErr := strconv.ParseInt(cursor.ID, 10, 64)
				if timeErr == nil && idErr == nil {
					db = db.Where("(created_at < ?) OR (created_at = ? AND id < ?)", createdAt, createdAt, id)
				}
			}
		}
		if page.PageSize > 0 {
			db = db.Limit(page.PageSize + 1)
		}
		return db
	})
}
