package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/leadfuel/internal/transaction/domain"
	"github.com/smallbiznis/leadfuel/internal/transaction/repository"
	dbpkg "github.com/smallbiznis/leadfuel/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestListRecentNewestFirstWithContact(t *testing.T) {
	node := mustNode(t)
	svc, db := setupTransactionService(t)

	orgID := node.Generate()
	contactID := node.Generate()
	require.NoError(t, db.Exec(`INSERT INTO organizations (id, name, created_at) VALUES (?, 'Acme', ?)`, orgID, baseTime()).Error)
	require.NoError(t, db.Exec(`INSERT INTO contacts (id, organization_id, first_name, last_name, created_at) VALUES (?, ?, 'Grace', 'Hopper', ?)`,
		contactID, orgID, baseTime()).Error)

	insertTransaction(t, db, node.Generate(), "user_1", domain.TypeExport, 1, nil, baseTime())
	newest := node.Generate()
	insertTransaction(t, db, newest, "user_1", domain.TypeUnlockEmail, 2, &contactID, baseTime().Add(time.Hour))
	insertTransaction(t, db, node.Generate(), "user_2", domain.TypeEnrichment, 5, nil, baseTime().Add(2*time.Hour))

	resp, err := svc.ListRecent(context.Background(), domain.ListRecentRequest{UserID: "user_1"})
	require.NoError(t, err)
	require.Len(t, resp.Transactions, 2)
	assert.False(t, resp.HasMore)

	first := resp.Transactions[0]
	assert.Equal(t, newest, first.ID)
	require.NotNil(t, first.Contact)
	assert.Equal(t, "Grace Hopper", first.Contact.DisplayName())
	require.NotNil(t, first.Contact.Organization)
	assert.Equal(t, "Acme", first.Contact.Organization.Name)
	assert.Nil(t, resp.Transactions[1].Contact)
}

func TestListRecentPaginates(t *testing.T) {
	node := mustNode(t)
	svc, db := setupTransactionService(t)

	for i := 0; i < 12; i++ {
		insertTransaction(t, db, node.Generate(), "user_1", domain.TypeUnlockPhone, 1, nil, baseTime().Add(time.Duration(i)*time.Minute))
	}

	page1, err := svc.ListRecent(context.Background(), domain.ListRecentRequest{UserID: "user_1"})
	require.NoError(t, err)
	require.Len(t, page1.Transactions, 10)
	assert.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextPageToken)

	page2, err := svc.ListRecent(context.Background(), domain.ListRecentRequest{UserID: "user_1", PageToken: page1.NextPageToken})
	require.NoError(t, err)
	require.Len(t, page2.Transactions, 2)
	assert.False(t, page2.HasMore)
	assert.True(t, page2.Transactions[0].CreatedAt.Before(page1.Transactions[9].CreatedAt))
}

func TestListRecentClampsPageSize(t *testing.T) {
	node := mustNode(t)
	svc, db := setupTransactionService(t)
	for i := 0; i < 3; i++ {
		insertTransaction(t, db, node.Generate(), "user_1", domain.TypeExport, 1, nil, baseTime().Add(time.Duration(i)*time.Second))
	}

	resp, err := svc.ListRecent(context.Background(), domain.ListRecentRequest{UserID: "user_1", PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Transactions, 2)
	assert.True(t, resp.HasMore)
}

func TestListRecentRequiresUser(t *testing.T) {
	svc, _ := setupTransactionService(t)
	_, err := svc.ListRecent(context.Background(), domain.ListRecentRequest{UserID: " "})
	require.ErrorIs(t, err, domain.ErrInvalidUser)
}

func baseTime() time.Time {
	return time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
}

func insertTransaction(t *testing.T, db *gorm.DB, id snowflake.ID, userID string, typ domain.Type, credits int64, contactID *snowflake.ID, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&domain.Transaction{
		ID:          id,
		UserID:      userID,
		Type:        typ,
		CreditsUsed: credits,
		ContactID:   contactID,
		CreatedAt:   at,
	}).Error)
}

func setupTransactionService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := dbpkg.NewTest(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	prepareTransactionSchema(t, db)

	return New(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide()}), db
}

func prepareTransactionSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Exec(`CREATE TABLE organizations (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		website TEXT,
		industry TEXT,
		size_range TEXT,
		location TEXT,
		description TEXT,
		enrichment_data TEXT,
		created_at DATETIME NOT NULL
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE contacts (
		id INTEGER PRIMARY KEY,
		organization_id INTEGER,
		first_name TEXT,
		last_name TEXT,
		email TEXT,
		phone TEXT,
		title TEXT,
		linkedin_url TEXT,
		location TEXT,
		enrichment_data TEXT,
		is_email_unlocked BOOLEAN NOT NULL DEFAULT 0,
		is_phone_unlocked BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE transactions (
		id INTEGER PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		credits_used INTEGER NOT NULL DEFAULT 0,
		contact_id INTEGER,
		description TEXT,
		metadata TEXT,
		created_at DATETIME NOT NULL
	)`).Error)
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}
