package persistence

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dentalshop/backend/internal/infrastructure/config"
	"github.com/dentalshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultSQLitePath = "dentalshop.db"

// Database is an open gorm handle plus the pool behind it
type Database struct {
	DB     *gorm.DB
	Driver string
	pool   *sql.DB
}

// NewDatabase opens cfg without SQL logging; the seeder and tests use it
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	return NewDatabaseWithCustomLogger(cfg, logger.Discard)
}

// NewDatabaseWithCustomLogger opens cfg, sizes the pool and pings once
func NewDatabaseWithCustomLogger(cfg *config.DatabaseConfig, gormLogger logger.Interface) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		// sqlite statements are cheap to prepare and the cache pins connections
		PrepareStmt: cfg.Driver != config.DriverSQLite,
		NowFunc:     func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	d := &Database{DB: db, Driver: cfg.Driver, pool: pool}
	d.sizePool(cfg)

	if err := pool.Ping(); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return d, nil
}

func (d *Database) sizePool(cfg *config.DatabaseConfig) {
	if cfg.Driver == config.DriverSQLite && isMemorySQLite(cfg.SQLitePath) {
		// every connection to :memory: opens its own empty database
		d.pool.SetMaxOpenConns(1)
	} else {
		d.pool.SetMaxOpenConns(cfg.MaxOpenConns)
		d.pool.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	d.pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	d.pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = defaultSQLitePath
		}
		return sqlite.Open(path), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func isMemorySQLite(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// AutoMigrate creates the tables from the persistence models. Only the
// sqlite path uses it; postgres schemas come from the SQL migrations.
func (d *Database) AutoMigrate() error {
	if err := d.DB.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	return nil
}

// Pool is the connection pool, for health checks and pool metrics
func (d *Database) Pool() *sql.DB {
	return d.pool
}

func (d *Database) Ping() error {
	return d.pool.Ping()
}

func (d *Database) Close() error {
	return d.pool.Close()
}

// Transaction runs fn in a transaction, rolling back when it fails
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return d.DB.Transaction(fn)
}
