package seed

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	contactdomain "github.com/smallbiznis/leadfuel/internal/contact/domain"
	plandomain "github.com/smallbiznis/leadfuel/internal/plan/domain"
	transactiondomain "github.com/smallbiznis/leadfuel/internal/transaction/domain"
	userdomain "github.com/smallbiznis/leadfuel/internal/user/domain"
	dbpkg "github.com/smallbiznis/leadfuel/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDefaultPlansIsIdempotent(t *testing.T) {
	db, err := dbpkg.NewTest(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, db.AutoMigrate(&plandomain.Plan{}))

	require.NoError(t, EnsureDefaultPlans(db))
	require.NoError(t, EnsureDefaultPlans(db))

	var plans []plandomain.Plan
	require.NoError(t, db.Order("id asc").Find(&plans).Error)
	require.Len(t, plans, len(DefaultPlans()))

	assert.Equal(t, "Free", plans[0].Name)
	require.NotNil(t, plans[0].MonthlyCredits)
	assert.Equal(t, int64(10), *plans[0].MonthlyCredits)
	assert.True(t, plans[3].IsLifetime())
	assert.Contains(t, plans[2].Features, "enrichment")
}

func TestEnsureDefaultPlansKeepsExistingRows(t *testing.T) {
	db, err := dbpkg.NewTest(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, db.AutoMigrate(&plandomain.Plan{}))

	custom := int64(42)
	require.NoError(t, db.Create(&plandomain.Plan{ID: 1, Name: "Free", MonthlyCredits: &custom, IsActive: true}).Error)

	require.NoError(t, EnsureDefaultPlans(db))

	var free plandomain.Plan
	require.NoError(t, db.First(&free, 1).Error)
	require.NotNil(t, free.MonthlyCredits)
	assert.Equal(t, int64(42), *free.MonthlyCredits)
}

func TestEnsureDemoActivity(t *testing.T) {
	db, err := dbpkg.NewTest(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, db.AutoMigrate(
		&plandomain.Plan{},
		&userdomain.User{},
		&contactdomain.Organization{},
		&contactdomain.Contact{},
		&transactiondomain.Transaction{},
	))
	require.NoError(t, EnsureDefaultPlans(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, EnsureDemoActivity(db, node, "demo-user", now))
	require.NoError(t, EnsureDemoActivity(db, node, "demo-user", now))

	var user userdomain.User
	require.NoError(t, db.Where("id = ?", "demo-user").Take(&user).Error)
	assert.Equal(t, int64(1), user.PlanID)

	var count int64
	require.NoError(t, db.Model(&transactiondomain.Transaction{}).Where("user_id = ?", "demo-user").Count(&count).Error)
	assert.Equal(t, int64(len(demoActivity)), count)

	var orgs int64
	require.NoError(t, db.Model(&contactdomain.Organization{}).Count(&orgs).Error)
	assert.Equal(t, int64(1), orgs)
}

func TestEnsureDemoActivitySkipsBlankUser(t *testing.T) {
	db, err := dbpkg.NewTest(t.Name())
	require.NoError(t, err)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	assert.NoError(t, EnsureDemoActivity(db, node, "  ", time.Now()))
}
