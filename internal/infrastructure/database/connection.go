package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/persistence"
	"github.com/andrescamacho/warera-economy-go/internal/infrastructure/config"
)

const memoryPath = ":memory:"

// sqlite file databases are shared between the CLI and a running server
const sqliteFileParams = "_busy_timeout=5000&_journal_mode=WAL"

// NewConnection opens the database that backs the price snapshot and the
// player cache
func NewConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying db: %w", err)
	}

	if isMemory(cfg) {
		// each connection to :memory: would otherwise see its own empty database
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	if cfg.Pool.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpen)
	}
	if cfg.Pool.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdle)
	}
	sqlDB.SetConnMaxLifetime(cfg.Pool.MaxLifetime)

	return db, nil
}

func openDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.Open(postgresDSN(cfg)), nil

	case "sqlite":
		if isMemory(cfg) {
			return sqlite.Open(memoryPath), nil
		}
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return sqlite.Open(sqliteDSN(cfg.Path)), nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
}

// postgresDSN prefers database.url (or DATABASE_URL); otherwise it builds a
// key/value DSN with every value quoted
func postgresDSN(cfg *config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}

	pairs := []struct{ key, value string }{
		{"host", cfg.Host},
		{"port", fmt.Sprint(cfg.Port)},
		{"user", cfg.User},
		{"password", cfg.Password},
		{"dbname", cfg.Name},
		{"sslmode", cfg.SSLMode},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.value == "" || p.value == "0" {
			continue
		}
		parts = append(parts, p.key+"="+quoteDSNValue(p.value))
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue applies libpq quoting: single quotes, with ' and \ escaped
func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return "file:" + path + "?" + sqliteFileParams
}

func isMemory(cfg *config.DatabaseConfig) bool {
	return cfg.Type == "sqlite" && (cfg.Path == "" || cfg.Path == memoryPath)
}

// NewTestConnection creates a migrated in-memory SQLite database
func NewTestConnection() (*gorm.DB, error) {
	db, err := NewConnection(&config.DatabaseConfig{Type: "sqlite", Path: memoryPath})
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate test database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates the price snapshot and player tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&persistence.PlayerModel{},
		&persistence.PriceSnapshotModel{},
		&persistence.MarketPriceModel{},
	)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
