package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/drinkbook/backend/config"
	"github.com/pageza/drinkbook/backend/internal/database"
	"github.com/pageza/drinkbook/backend/internal/model"
	"github.com/pageza/drinkbook/backend/internal/remote"
	"github.com/pageza/drinkbook/backend/internal/service"
	"github.com/pageza/drinkbook/backend/internal/testhelpers"
)

func TestMigrationsArePaired(t *testing.T) {
	migrations, err := database.Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, "0001", migrations[0].Version)
	assert.Equal(t, "0001_catalog", migrations[0].Name)
	for i, m := range migrations {
		assert.NotEmpty(t, m.Up, m.Name)
		assert.NotEmpty(t, m.Down, m.Name)
		if i > 0 {
			assert.Less(t, migrations[i-1].Version, m.Version)
		}
	}
}

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "drinks.db"),
	}
	db, err := database.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	ctx := context.Background()
	require.NoError(t, database.RunMigrations(ctx, db, zap.NewNop()))
	require.NoError(t, database.Seed(ctx, db))
	require.NoError(t, database.Seed(ctx, db))

	var count int64
	require.NoError(t, db.Model(&model.Category{}).Count(&count).Error)
	assert.Equal(t, int64(len(model.DefaultCategories())), count)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := database.Open(&config.Config{DBDriver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestCreateIndexes(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	ctx := context.Background()

	extra := service.Index{Equal: "difficulty", Order: remote.OrderName}
	require.NoError(t, database.CreateIndexes(ctx, db, service.IndexSet{extra}))
	require.NoError(t, database.CreateIndexes(ctx, db, service.IndexSet{extra}))

	for _, idx := range append(service.DefaultIndexes(), extra) {
		var n int64
		err := db.Raw("SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name = ?", idx.Name()).Scan(&n).Error
		require.NoError(t, err)
		assert.Equal(t, int64(1), n, idx.Name())
	}
}

func TestPostgresMigrations(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()
	sqlDB, err := db.DB()
	require.NoError(t, err)

	// Re-applying is a no-op.
	require.NoError(t, database.ApplySQL(ctx, sqlDB, zap.NewNop()))

	migrations, err := database.Migrations()
	require.NoError(t, err)
	last := migrations[len(migrations)-1]

	name, err := database.Rollback(ctx, sqlDB, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, last.Name, name)

	require.NoError(t, database.ApplySQL(ctx, sqlDB, zap.NewNop()))

	var applied int
	require.NoError(t, sqlDB.QueryRowContext(ctx, "SELECT count(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, len(migrations), applied)

	for range migrations {
		_, err := database.Rollback(ctx, sqlDB, zap.NewNop())
		require.NoError(t, err)
	}
	_, err = database.Rollback(ctx, sqlDB, zap.NewNop())
	assert.ErrorIs(t, err, database.ErrNoMigrations)
}
