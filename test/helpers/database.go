package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/warera-economy-go/internal/infrastructure/database"
)

// FixedTime is the instant mock clocks and seeded prices start from
var FixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// NewTestDB opens a private, migrated in-memory SQLite database that lives
// until t finishes. Tests sharing one database across scenarios use
// SharedTestDB instead.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { _ = database.Close(db) })

	return db
}

// CountRows returns how many rows the table behind model holds
func CountRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
