package authorization

import (
	"context"
	"testing"

	userdomain "github.com/smallbiznis/leadfuel/internal/user/domain"
	dbpkg "github.com/smallbiznis/leadfuel/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type userStub struct {
	users map[string]userdomain.User
}

func (s *userStub) Get(_ context.Context, id string) (userdomain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return userdomain.User{}, userdomain.ErrNotFound
	}
	return user, nil
}

func (s *userStub) GetOrProvision(ctx context.Context, identity userdomain.Identity) (userdomain.User, error) {
	return s.Get(ctx, identity.ID)
}

func strPtr(v string) *string { return &v }

func setupAuthorization(t *testing.T, users ...userdomain.User) Service {
	t.Helper()
	db, err := dbpkg.NewTest(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	stub := &userStub{users: map[string]userdomain.User{}}
	for _, u := range users {
		stub.users[u.ID] = u
	}
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer, Users: stub})
}

func TestMemberCanViewOwnData(t *testing.T) {
	member := userdomain.User{ID: "user_m", Role: userdomain.RoleMember}
	svc := setupAuthorization(t, member)

	require.NoError(t, svc.AuthorizeUserAccess(context.Background(), member, "user_m", ObjectUsageStats))
	require.NoError(t, svc.AuthorizeUserAccess(context.Background(), member, "user_m", ObjectTransactions))
}

func TestMemberCannotViewColleague(t *testing.T) {
	member := userdomain.User{ID: "user_m", Role: userdomain.RoleMember, OrganizationID: strPtr("org_1")}
	colleague := userdomain.User{ID: "user_c", Role: userdomain.RoleMember, OrganizationID: strPtr("org_1")}
	svc := setupAuthorization(t, member, colleague)

	err := svc.AuthorizeUserAccess(context.Background(), member, "user_c", ObjectUsageStats)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAdminCanViewSameOrganization(t *testing.T) {
	admin := userdomain.User{ID: "user_a", Role: userdomain.RoleAdmin, OrganizationID: strPtr("org_1")}
	colleague := userdomain.User{ID: "user_c", Role: userdomain.RoleMember, OrganizationID: strPtr("org_1")}
	outsider := userdomain.User{ID: "user_o", Role: userdomain.RoleMember, OrganizationID: strPtr("org_2")}
	svc := setupAuthorization(t, admin, colleague, outsider)

	require.NoError(t, svc.AuthorizeUserAccess(context.Background(), admin, "user_c", ObjectUsageStats))
	assert.ErrorIs(t, svc.AuthorizeUserAccess(context.Background(), admin, "user_o", ObjectUsageStats), ErrForbidden)
	assert.ErrorIs(t, svc.AuthorizeUserAccess(context.Background(), admin, "user_missing", ObjectUsageStats), ErrForbidden)
}

func TestRoleChangeReplacesGrouping(t *testing.T) {
	admin := userdomain.User{ID: "user_a", Role: userdomain.RoleAdmin, OrganizationID: strPtr("org_1")}
	colleague := userdomain.User{ID: "user_c", Role: userdomain.RoleMember, OrganizationID: strPtr("org_1")}
	svc := setupAuthorization(t, admin, colleague)

	require.NoError(t, svc.AuthorizeUserAccess(context.Background(), admin, "user_c", ObjectTransactions))

	demoted := admin
	demoted.Role = userdomain.RoleMember
	assert.ErrorIs(t, svc.AuthorizeUserAccess(context.Background(), demoted, "user_c", ObjectTransactions), ErrForbidden)
}

func TestAuthorizeRejectsInvalidInput(t *testing.T) {
	svc := setupAuthorization(t)
	assert.ErrorIs(t, svc.AuthorizeUserAccess(context.Background(), userdomain.User{}, "x", ObjectUsageStats), ErrInvalidActor)
	assert.ErrorIs(t, svc.AuthorizeUserAccess(context.Background(), userdomain.User{ID: "x"}, "x", " "), ErrInvalidObject)
}

func TestNewEnforcerIsIdempotent(t *testing.T) {
	db, err := dbpkg.NewTest(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	_, err = NewEnforcer(db)
	require.NoError(t, err)
	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	policies, err := enforcer.GetPolicy()
	require.NoError(t, err)
	assert.Len(t, policies, 6)
}
