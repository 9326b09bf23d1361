package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// FindByID returns (nil, nil) when no user has the id.
	FindByID(ctx context.Context, db *gorm.DB, id string) (*User, error)
	Insert(ctx context.Context, db *gorm.DB, user *User) error
}
