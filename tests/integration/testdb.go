//go:build integration

// Package integration runs the storefront against a real PostgreSQL started
// with testcontainers. Run with: go test -tags integration ./tests/integration/...
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/dentalshop/backend/internal/infrastructure/config"
	"github.com/dentalshop/backend/internal/infrastructure/logger"
	"github.com/dentalshop/backend/internal/infrastructure/migration"
	"github.com/dentalshop/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

// tables created by the migrations, children first
var storefrontTables = []string{"product_reviews", "orders", "products", "users", "articles", "case_studies"}

const (
	pgImage    = "postgres:16-alpine"
	pgDatabase = "dentalshop_test"
	pgUser     = "postgres"
	pgPassword = "postgres"
)

// TestDB is a migrated database inside its own container, opened the same
// way the server opens its database
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	t     *testing.T
}

// NewTestDB starts PostgreSQL, applies the embedded migrations and tears
// everything down when t ends. Set TEST_DB_DEBUG to log every statement.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, pgImage,
		tcpostgres.WithDatabase(pgDatabase),
		tcpostgres.WithUsername(pgUser),
		tcpostgres.WithPassword(pgPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	level := "silent"
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = "debug"
	}
	db, err := persistence.NewDatabaseWithCustomLogger(&config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            host,
		Port:            port.Int(),
		User:            pgUser,
		Password:        pgPassword,
		DBName:          pgDatabase,
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
	}, logger.NewGormLogger(zaptest.NewLogger(t), logger.GormConfig{Level: level}))
	require.NoError(t, err, "connect to postgres")
	t.Cleanup(func() { _ = db.Close() })

	m, err := migration.New(db.Pool(), "", zap.NewNop())
	require.NoError(t, err, "create migrator")
	require.NoError(t, m.Up(), "apply migrations")

	return &TestDB{DB: db.DB, SqlDB: db.Pool(), t: t}
}

// CleanTables empties every storefront table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()
	for _, table := range storefrontTables {
		err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error
		require.NoError(tdb.t, err, "truncate %s", table)
	}
}
