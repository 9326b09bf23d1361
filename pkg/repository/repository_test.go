package repository

import (
	"context"
	"errors"
	"testing"

	dbpkg "github.com/smallbiznis/leadfuel/pkg/db"
	"github.com/smallbiznis/leadfuel/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID    int64 `gorm:"primaryKey"`
	Owner string
}

func setupStore(t *testing.T) (Repository[widget], *gorm.DB) {
	t.Helper()
	db, err := dbpkg.NewTest(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, db.AutoMigrate(&widget{}))
	return ProvideStore[widget](db), db
}

func TestStoreFindAndCount(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, store.Create(ctx, &widget{ID: i, Owner: "a"}))
	}
	require.NoError(t, store.Create(ctx, &widget{ID: 4, Owner: "b"}))

	count, err := store.Count(ctx, &widget{Owner: "a"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	rows, err := store.Find(ctx, &widget{Owner: "a"},
		option.WithSortBy(option.QuerySortBy{Column: "id", Desc: true, Allow: map[string]bool{"id": true}}),
		option.WithLimit(2),
	)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(3), rows[0].ID)
	assert.Equal(t, int64(2), rows[1].ID)

	missing, err := store.FindOne(ctx, &widget{Owner: "c"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoreWithTrxRollsBack(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	errAbort := errors.New("abort")

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := store.WithTrx(tx).Create(ctx, &widget{ID: 1, Owner: "a"}); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	count, err := store.Count(ctx, &widget{})
	require.NoError(t, err)
	assert.Zero(t, count)
}
