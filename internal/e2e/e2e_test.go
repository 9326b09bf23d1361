package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/leadfuel/internal/authorization"
	"github.com/smallbiznis/leadfuel/internal/cache"
	"github.com/smallbiznis/leadfuel/internal/clock"
	"github.com/smallbiznis/leadfuel/internal/config"
	contactdomain "github.com/smallbiznis/leadfuel/internal/contact/domain"
	"github.com/smallbiznis/leadfuel/internal/migration"
	"github.com/smallbiznis/leadfuel/internal/observability"
	"github.com/smallbiznis/leadfuel/internal/plan"
	"github.com/smallbiznis/leadfuel/internal/ratelimit"
	"github.com/smallbiznis/leadfuel/internal/server"
	"github.com/smallbiznis/leadfuel/internal/transaction"
	transactiondomain "github.com/smallbiznis/leadfuel/internal/transaction/domain"
	"github.com/smallbiznis/leadfuel/internal/usagestats"
	usagestatsdomain "github.com/smallbiznis/leadfuel/internal/usagestats/domain"
	"github.com/smallbiznis/leadfuel/internal/user"
	userdomain "github.com/smallbiznis/leadfuel/internal/user/domain"
	dbpkg "github.com/smallbiznis/leadfuel/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type testEnv struct {
	app     *fx.App
	server  *server.Server
	db      *gorm.DB
	clock   *clock.FakeClock
	genID   *snowflake.Node
	httpSrv *httptest.Server
	baseURL string
}

var env *testEnv

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	setDefaultEnv()

	var err error
	env, err = startEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start test environment:", err)
		os.Exit(1)
	}

	code := m.Run()
	env.shutdown()
	os.Exit(code)
}

func TestE2E_HealthCheck(t *testing.T) {
	resp, err := http.Get(env.baseURL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestE2E_MeProvisionsFreePlan(t *testing.T) {
	status, body := env.get(t, "/api/me", "e2e-me")
	require.Equal(t, http.StatusOK, status, string(body))

	var resp struct {
		Data userdomain.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "e2e-me", resp.Data.ID)
	assert.Equal(t, int64(1), resp.Data.PlanID)
	assert.Equal(t, int64(10), resp.Data.CreditBalance)
	assert.Equal(t, userdomain.RoleMember, resp.Data.Role)
	require.NotNil(t, resp.Data.Plan)
	assert.Equal(t, "Free", resp.Data.Plan.Name)
}

func TestE2E_UsageStatsAndActivity(t *testing.T) {
	const userID = "e2e-stats"
	status, _ := env.get(t, "/api/me", userID)
	require.Equal(t, http.StatusOK, status)

	now := env.clock.Now()
	contactID := env.insertContact(t, "Acme Corp")
	env.insertTransaction(t, userID, transactiondomain.TypeUnlockEmail, 1, &contactID, now.Add(-1*time.Hour))
	env.insertTransaction(t, userID, transactiondomain.TypeUnlockPhone, 2, &contactID, now.Add(-25*time.Hour))
	env.insertTransaction(t, userID, transactiondomain.TypeUnlockEmail, 1, nil, now.Add(-49*time.Hour))

	status, body := env.get(t, "/api/usage/stats", userID)
	require.Equal(t, http.StatusOK, status, string(body))

	var stats struct {
		Data usagestatsdomain.UsageStatistics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, int64(10), stats.Data.MonthlyAllocation)
	assert.Equal(t, int64(4), stats.Data.MonthlyUsed)
	require.Len(t, stats.Data.WeeklyUsage, 7)
	assert.Equal(t, int64(1), stats.Data.WeeklyUsage[6].Credits)
	assert.Equal(t, []usagestatsdomain.CreditTypeUsage{
		{Type: "Email", Count: 2, Credits: 2},
		{Type: "Phone", Count: 1, Credits: 2},
	}, stats.Data.CreditTypes)

	status, body = env.get(t, "/api/transactions?page_size=2", userID)
	require.Equal(t, http.StatusOK, status, string(body))

	var feed struct {
		Data     []transactiondomain.Transaction `json:"data"`
		PageInfo struct {
			NextPageToken string `json:"next_page_token"`
			HasMore       bool   `json:"has_more"`
		} `json:"page_info"`
	}
	require.NoError(t, json.Unmarshal(body, &feed))
	require.Len(t, feed.Data, 2)
	assert.Equal(t, transactiondomain.TypeUnlockEmail, feed.Data[0].Type)
	require.NotNil(t, feed.Data[0].Contact)
	require.NotNil(t, feed.Data[0].Contact.Organization)
	assert.Equal(t, "Acme Corp", feed.Data[0].Contact.Organization.Name)
	assert.True(t, feed.PageInfo.HasMore)

	status, body = env.get(t, "/api/transactions?page_size=2&page_token="+feed.PageInfo.NextPageToken, userID)
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &feed))
	require.Len(t, feed.Data, 1)
	assert.False(t, feed.PageInfo.HasMore)
}

func TestE2E_CrossUserStatsRequireSameOrganization(t *testing.T) {
	org := "org-e2e"
	require.NoError(t, env.db.Create(&userdomain.User{
		ID: "e2e-admin", PlanID: 1, Role: userdomain.RoleAdmin, OrganizationID: &org,
		CreatedAt: env.clock.Now(), UpdatedAt: env.clock.Now(),
	}).Error)
	require.NoError(t, env.db.Create(&userdomain.User{
		ID: "e2e-colleague", PlanID: 1, Role: userdomain.RoleMember, OrganizationID: &org,
		CreatedAt: env.clock.Now(), UpdatedAt: env.clock.Now(),
	}).Error)

	status, body := env.get(t, "/api/users/e2e-colleague/usage/stats", "e2e-admin")
	assert.Equal(t, http.StatusOK, status, string(body))

	status, _ = env.get(t, "/api/users/e2e-admin/usage/stats", "e2e-colleague")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.get(t, "/api/users/e2e-colleague/usage/stats", "e2e-outsider")
	assert.Equal(t, http.StatusForbidden, status)
}

func TestE2E_MissingIdentity(t *testing.T) {
	status, _ := env.get(t, "/api/usage/stats", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func startEnv() (*testEnv, error) {
	var (
		srv    *server.Server
		dbConn *gorm.DB
		genID  *snowflake.Node
	)
	fakeClock := clock.NewFakeClock(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))

	app := fx.New(
		fx.NopLogger,
		config.Module,
		observability.Module,
		fx.Provide(func() (*gorm.DB, error) {
			return dbpkg.NewTest("leadfuel_e2e")
		}),
		fx.Provide(func() clock.Clock { return fakeClock }),
		fx.Provide(func() (*snowflake.Node, error) { return snowflake.NewNode(1) }),
		cache.Module,
		migration.Module,
		plan.Module,
		user.Module,
		transaction.Module,
		usagestats.Module,
		authorization.Module,
		ratelimit.Module,
		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server) {
			s.RegisterAPIRoutes()
		}),
		fx.Populate(&srv, &dbConn, &genID),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return nil, err
	}

	httpSrv := httptest.NewServer(srv.Engine())
	return &testEnv{
		app:     app,
		server:  srv,
		db:      dbConn,
		clock:   fakeClock,
		genID:   genID,
		httpSrv: httpSrv,
		baseURL: httpSrv.URL,
	}, nil
}

func (e *testEnv) shutdown() {
	if e == nil {
		return
	}
	if e.httpSrv != nil {
		e.httpSrv.Close()
	}
	if e.app != nil {
		_ = e.app.Stop(context.Background())
	}
}

func (e *testEnv) get(t *testing.T, path, userID string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.baseURL+path, nil)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set(server.HeaderUserID, userID)
		req.Header.Set(server.HeaderEmail, userID+"@example.com")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func (e *testEnv) insertContact(t *testing.T, orgName string) snowflake.ID {
	t.Helper()
	org := contactdomain.Organization{ID: e.genID.Generate(), Name: orgName, CreatedAt: e.clock.Now()}
	require.NoError(t, e.db.Create(&org).Error)
	first := "Jane"
	contact := contactdomain.Contact{ID: e.genID.Generate(), OrganizationID: &org.ID, FirstName: &first, CreatedAt: e.clock.Now()}
	require.NoError(t, e.db.Omit("Organization").Create(&contact).Error)
	return contact.ID
}

func (e *testEnv) insertTransaction(t *testing.T, userID string, typ transactiondomain.Type, credits int64, contactID *snowflake.ID, at time.Time) {
	t.Helper()
	require.NoError(t, e.db.Omit("Contact").Create(&transactiondomain.Transaction{
		ID:          e.genID.Generate(),
		UserID:      userID,
		Type:        typ,
		CreditsUsed: credits,
		ContactID:   contactID,
		CreatedAt:   at.UTC(),
	}).Error)
}

func setDefaultEnv() {
	setEnvIfEmpty("ENVIRONMENT", "test")
	setEnvIfEmpty("LOG_LEVEL", "error")
	_ = os.Setenv("DATABASE_TYPE", dbpkg.TypeSQLite)
	_ = os.Setenv("REDIS_ADDR", "")
	_ = os.Setenv("OTEL_ENABLED", "false")
}

func setEnvIfEmpty(key, value string) {
	if strings.TrimSpace(os.Getenv(key)) != "" {
		return
	}
	_ = os.Setenv(key, value)
}
