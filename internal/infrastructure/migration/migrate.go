package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dentalshop/backend/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Migrator runs the versioned postgres schema. SQLite databases never go
// through it; they are built by AutoMigrate at startup.
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// Status is the applied version next to what the migration set offers
type Status struct {
	Version uint
	Dirty   bool
	Latest  uint
	Pending []uint
}

// New wraps an open postgres pool. dir names a migrations directory; empty
// means the set compiled into the binary.
func New(db *sql.DB, dir string, logger *zap.Logger) (*Migrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	target, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}
	name, src, err := openSource(dir)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithInstance(name, src, "postgres", target)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{logger.Named("migrate").Sugar()}
	return &Migrator{m: m, log: logger}, nil
}

func openSource(dir string) (string, source.Driver, error) {
	if dir == "" {
		d, err := iofs.New(migrations.FS, ".")
		if err != nil {
			return "", nil, fmt.Errorf("failed to open embedded migrations: %w", err)
		}
		return "iofs", d, nil
	}
	d, err := (&file.File{}).Open("file://" + dir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open migrations in %s: %w", dir, err)
	}
	return "file", d, nil
}

// apply runs one migrate operation. Having nothing to do is not an error.
func (m *Migrator) apply(op string, run func() error, fields ...zap.Field) error {
	log := m.log.With(zap.String("op", op))
	log.Info("Migration started", fields...)

	err := run()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("Schema already up to date")
		return nil
	case err != nil:
		return fmt.Errorf("migration %s failed: %w", op, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Info("Migration finished", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func (m *Migrator) Up() error {
	return m.apply("up", m.m.Up)
}

// Down rolls back every migration
func (m *Migrator) Down() error {
	return m.apply("down", m.m.Down)
}

// Steps applies n migrations, rolling back when n is negative
func (m *Migrator) Steps(n int) error {
	return m.apply("steps", func() error { return m.m.Steps(n) }, zap.Int("steps", n))
}

// GoTo migrates up or down to version
func (m *Migrator) GoTo(version uint) error {
	return m.apply("goto", func() error { return m.m.Migrate(version) }, zap.Uint("target", version))
}

// Force records version as applied without running anything. It clears
// the dirty flag once a failed migration has been repaired by hand.
func (m *Migrator) Force(version int) error {
	m.log.Warn("Forcing migration version", zap.Int("version", version))
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Version returns the applied version; 0 on a fresh database
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, nil
}

// Status compares the applied version with the sorted available versions
func (m *Migrator) Status(available []uint) (*Status, error) {
	version, dirty, err := m.Version()
	if err != nil {
		return nil, err
	}
	st := &Status{Version: version, Dirty: dirty, Pending: PendingVersions(version, available)}
	if len(available) > 0 {
		st.Latest = available[len(available)-1]
	}
	return st, nil
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

// PendingVersions returns the versions in available newer than current
func PendingVersions(current uint, available []uint) []uint {
	var pending []uint
	for _, v := range available {
		if v > current {
			pending = append(pending, v)
		}
	}
	return pending
}

// migrateLogger routes golang-migrate's progress lines to zap at debug
type migrateLogger struct {
	s *zap.SugaredLogger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.s.Debugf(strings.TrimRight(format, "\n"), v...)
}

func (l migrateLogger) Verbose() bool {
	return l.s.Desugar().Core().Enabled(zap.DebugLevel)
}
