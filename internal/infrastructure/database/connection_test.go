package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/persistence"
	"github.com/andrescamacho/warera-economy-go/internal/infrastructure/config"
)

func TestPostgresDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Type:     "postgres",
		Host:     "db.internal",
		Port:     5433,
		User:     "warera",
		Password: `it's\secret`,
		Name:     "economy",
		SSLMode:  "require",
	}

	assert.Equal(t,
		`host='db.internal' port='5433' user='warera' password='it\'s\\secret' dbname='economy' sslmode='require'`,
		postgresDSN(cfg))

	cfg.Password = ""
	assert.NotContains(t, postgresDSN(cfg), "password")

	cfg.URL = "postgresql://warera@localhost/economy"
	assert.Equal(t, cfg.URL, postgresDSN(cfg))
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:data/warera.db?"+sqliteFileParams, sqliteDSN("data/warera.db"))
	assert.Equal(t, "file:x.db?mode=ro", sqliteDSN("file:x.db?mode=ro"))
}

func TestNewConnection_UnsupportedType(t *testing.T) {
	_, err := NewConnection(&config.DatabaseConfig{Type: "mysql"})

	assert.EqualError(t, err, "unsupported database type: mysql")
}

func TestNewConnection_SqliteFileCreatesDirectory(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "state", "warera.db")
	cfg := &config.DatabaseConfig{
		Type: "sqlite",
		Path: path,
		Pool: config.PoolConfig{MaxOpen: 4, MaxIdle: 2, MaxLifetime: time.Minute},
	}

	// Act
	db, err := NewConnection(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, AutoMigrate(db))

	// Assert
	require.NoError(t, db.Create(&persistence.PlayerModel{ID: "u-1", Username: "baker", ResolvedAt: time.Now()}).Error)
	var count int64
	require.NoError(t, db.Model(&persistence.PlayerModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.FileExists(t, path)
}

func TestNewTestConnection_SharesOneMemoryDatabase(t *testing.T) {
	db, err := NewTestConnection()
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.True(t, db.Migrator().HasTable(&persistence.MarketPriceModel{}))
}
