package service

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/leadfuel/internal/transaction/domain"
	"github.com/smallbiznis/leadfuel/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("transaction.service"),
		repo: p.Repo,
	}
}

func (s *Service) ListRecent(ctx context.Context, req domain.ListRecentRequest) (domain.ListRecentResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.ListRecentResponse{}, domain.ErrInvalidUser
	}

	page := pagination.Pagination{
		PageToken: strings.TrimSpace(req.PageToken),
		PageSize:  req.PageSize,
	}.Normalize()

	items, err := s.repo.ListRecent(ctx, s.db, userID, page)
	if err != nil {
		return domain.ListRecentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, page.PageSize, func(tx *domain.Transaction) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        tx.ID.String(),
			CreatedAt: tx.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > page.PageSize {
		items = items[:page.PageSize]
	}

	transactions := make([]domain.Transaction, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		transactions = append(transactions, *item)
	}

	return domain.ListRecentResponse{
		PageInfo:     pageInfo,
		Transactions: transactions,
	}, nil
}
