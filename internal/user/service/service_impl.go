package service

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/leadfuel/internal/clock"
	"github.com/smallbiznis/leadfuel/internal/config"
	"github.com/smallbiznis/leadfuel/internal/observability/metrics"
	"github.com/smallbiznis/leadfuel/internal/user/domain"
	dbpkg "github.com/smallbiznis/leadfuel/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	Repo         domain.Repository
	Provisioning *config.ProvisioningConfigHolder
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	repo         domain.Repository
	provisioning *config.ProvisioningConfigHolder
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("user.service"),
		clock:        p.Clock,
		repo:         p.Repo,
		provisioning: p.Provisioning,
		metrics:      p.Metrics,
	}
}

func (s *Service) Get(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrInvalidIdentity
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) GetOrProvision(ctx context.Context, identity domain.Identity) (domain.User, error) {
	id := strings.TrimSpace(identity.ID)
	if id == "" {
		return domain.User{}, domain.ErrInvalidIdentity
	}

	existing, err := s.Get(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	defaults := s.provisioning.Get()
	now := s.clock.Now().UTC()
	user := domain.User{
		ID:            id,
		Email:         strings.TrimSpace(identity.Email),
		FirstName:     strings.TrimSpace(identity.FirstName),
		LastName:      strings.TrimSpace(identity.LastName),
		PlanID:        defaults.DefaultPlanID,
		CreditBalance: defaults.StartingCredits,
		Role:          domain.Role(defaults.DefaultRole),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if !dbpkg.IsDuplicateKeyErr(err) {
			s.log.Error("failed to insert user", zap.String("user_id", id), zap.Error(err))
			return domain.User{}, &domain.ProvisioningError{Op: "insert", Err: err}
		}
		// Another request provisioned the same user first.
		s.log.Info("user provisioned concurrently", zap.String("user_id", id))
		s.metrics.RecordProvisioningConflict(ctx)
	} else {
		s.log.Info("user provisioned",
			zap.String("user_id", id),
			zap.Int64("plan_id", user.PlanID),
			zap.Int64("credit_balance", user.CreditBalance),
		)
		s.metrics.RecordUserProvisioned(ctx, user.PlanID)
	}

	stored, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, &domain.ProvisioningError{Op: "refetch", Err: err}
	}
	return stored, nil
}
