package persistence

import (
	"testing"

	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/dentalshop/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newSQLiteDB opens a migrated in-memory database that lives for one test
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

func newStoredProduct(t *testing.T, db *gorm.DB, name string, category catalog.Category, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, category, decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(t.Context(), p))
	return p
}
