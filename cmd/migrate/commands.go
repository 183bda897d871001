package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/dentalshop/backend/internal/infrastructure/config"
	"github.com/dentalshop/backend/internal/infrastructure/logger"
	"github.com/dentalshop/backend/internal/infrastructure/migration"
	"github.com/dentalshop/backend/migrations"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultCreateDir = "migrations"

type options struct {
	dir      string
	logLevel string
	log      *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the dental shop database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := logger.New(logger.Config{
				Level:      opts.logLevel,
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			}, "migrate")
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.log = l
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logger.Sync(opts.log)
		},
	}
	root.PersistentFlags().StringVar(&opts.dir, "dir", "",
		"migrations directory (default: the migrations compiled into this binary)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: opts.withMigrator(func(m *migration.Migrator, _ []string) error {
				return m.Up()
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			Args:  cobra.NoArgs,
			RunE: opts.withMigrator(func(m *migration.Migrator, _ []string) error {
				return m.Down()
			}),
		},
		&cobra.Command{
			Use:   "steps <n>",
			Short: "Apply n migrations, or roll back when n is negative",
			Args:  cobra.ExactArgs(1),
			RunE: opts.withMigrator(func(m *migration.Migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil || n == 0 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return m.Steps(n)
			}),
		},
		&cobra.Command{
			Use:   "goto <version>",
			Short: "Migrate up or down to a version",
			Args:  cobra.ExactArgs(1),
			RunE: opts.withMigrator(func(m *migration.Migrator, args []string) error {
				v, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(v))
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Record a version as applied without running it",
			Args:  cobra.ExactArgs(1),
			RunE: opts.withMigrator(func(m *migration.Migrator, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.Force(v)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied version",
			Args:  cobra.NoArgs,
			RunE: opts.withMigrator(func(m *migration.Migrator, _ []string) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if v == 0 {
					opts.log.Info("No migrations applied")
					return nil
				}
				opts.log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied, latest and pending versions",
			Args:  cobra.NoArgs,
			RunE: opts.withMigrator(func(m *migration.Migrator, _ []string) error {
				entries, err := migration.ListMigrations(opts.sourceFS())
				if err != nil {
					return err
				}
				st, err := m.Status(migration.Versions(entries))
				if err != nil {
					return err
				}
				opts.log.Info("Migration status",
					zap.Uint("version", st.Version),
					zap.Uint("latest", st.Latest),
					zap.Bool("dirty", st.Dirty),
					zap.Uints("pending", st.Pending),
				)
				return nil
			}),
		},
		newCreateCmd(opts),
	)
	return root
}

func newCreateCmd(opts *options) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Write the next sequential up/down migration pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := opts.dir
			if dir == "" {
				dir = defaultCreateDir
			}
			mf, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			opts.log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "description written into the file header")
	return cmd
}

// sourceFS is the migration set the migrator reads from
func (o *options) sourceFS() fs.FS {
	if o.dir == "" {
		return migrations.FS
	}
	return os.DirFS(o.dir)
}

// withMigrator opens the configured postgres database and hands a Migrator
// to run. The connection is closed when run returns.
func (o *options) withMigrator(run func(*migration.Migrator, []string) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.Database.Driver != config.DriverPostgres {
			return fmt.Errorf("migrations target postgres; driver %q builds its schema at startup", cfg.Database.Driver)
		}

		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			return fmt.Errorf("failed to reach database: %w", err)
		}

		m, err := migration.New(db, o.dir, o.log)
		if err != nil {
			return err
		}
		defer m.Close()

		o.log.Info("Migration started", zap.String("dir", o.dirLabel()))
		return run(m, args)
	}
}

func (o *options) dirLabel() string {
	if o.dir == "" {
		return "embedded"
	}
	return o.dir
}
