package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	userdomain "github.com/smallbiznis/leadfuel/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	Users    userdomain.Service
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	users    userdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		users:    p.Users,
	}
}

func (s *ServiceImpl) AuthorizeUserAccess(ctx context.Context, actor userdomain.User, targetID string, object string) error {
	actorID := strings.TrimSpace(actor.ID)
	if actorID == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	targetID = strings.TrimSpace(targetID)

	action := ActionViewOwn
	if targetID != actorID {
		action = ActionViewOrg
		target, err := s.users.Get(ctx, targetID)
		if err != nil {
			if errors.Is(err, userdomain.ErrNotFound) || errors.Is(err, userdomain.ErrInvalidIdentity) {
				return ErrForbidden
			}
			return err
		}
		if !actor.SameOrganization(target) {
			s.log.Info("cross-organization access denied",
				zap.String("actor_id", actorID),
				zap.String("target_id", targetID),
				zap.String("object", object),
			)
			return ErrForbidden
		}
	}

	subject := fmt.Sprintf("user:%s", actorID)
	dom := domainFor(actor)
	if err := s.ensureGrouping(subject, roleName(actor.Role), dom); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, dom, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("access denied",
			zap.String("actor_id", actorID),
			zap.String("role", string(actor.Role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// Users without an organization get a personal domain.
func domainFor(user userdomain.User) string {
	if user.OrganizationID != nil && strings.TrimSpace(*user.OrganizationID) != "" {
		return fmt.Sprintf("org:%s", strings.TrimSpace(*user.OrganizationID))
	}
	return fmt.Sprintf("personal:%s", user.ID)
}

func roleName(role userdomain.Role) string {
	r := strings.ToLower(strings.TrimSpace(string(role)))
	if r == "" {
		r = string(userdomain.RoleMember)
	}
	return fmt.Sprintf("role:%s", r)
}

// ensureGrouping keeps exactly one role link for subject in dom, replacing a
// stale one after a role change.
func (s *ServiceImpl) ensureGrouping(subject string, role string, dom string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", dom)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == role {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		if _, err := s.enforcer.RemoveGroupingPolicy(params...); err != nil {
			return err
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, role, dom)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, role, dom)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:member", ObjectUsageStats, ActionViewOwn},
		{"role:member", ObjectTransactions, ActionViewOwn},

		{"role:admin", ObjectUsageStats, ActionViewOwn},
		{"role:admin", ObjectUsageStats, ActionViewOrg},
		{"role:admin", ObjectTransactions, ActionViewOwn},
		{"role:admin", ObjectTransactions, ActionViewOrg},
	}

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
