package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/leadfuel/pkg/db/pagination"
)

type ListRecentRequest struct {
	UserID    string
	PageSize  int
	PageToken string
}

type ListRecentResponse struct {
	pagination.PageInfo
	Transactions []Transaction `json:"transactions"`
}

type Service interface {
	ListRecent(ctx context.Context, req ListRecentRequest) (ListRecentResponse, error)
}

var ErrInvalidUser = errors.New("invalid_user")
