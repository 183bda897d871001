package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dentalshop/backend/internal/infrastructure/config"
	"github.com/dentalshop/backend/internal/infrastructure/logger"
	"github.com/dentalshop/backend/internal/infrastructure/migration"
	"github.com/dentalshop/backend/internal/infrastructure/persistence"
	"github.com/dentalshop/backend/internal/infrastructure/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	seed.Options
	fixtures string
	randSeed uint64
	migrate  bool
	logLevel string
	timeout  time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{Options: seed.DefaultOptions()}

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Load demo data into the dental shop database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := logger.New(logger.Config{
				Level:      opts.logLevel,
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			}, "seed")
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync(l)

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			return run(ctx, opts, l)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.AdminUsername, "admin-username", opts.AdminUsername, "admin account to create; empty skips it")
	f.StringVar(&opts.AdminEmail, "admin-email", opts.AdminEmail, "admin account email")
	f.StringVar(&opts.AdminPassword, "admin-password", opts.AdminPassword, "admin account password")
	f.IntVar(&opts.RandomProducts, "products", opts.RandomProducts, "generated products added to the curated catalog")
	f.IntVar(&opts.MaxReviewsPerProduct, "max-reviews", opts.MaxReviewsPerProduct, "upper bound of generated reviews per product")
	f.IntVar(&opts.DemoOrders, "orders", opts.DemoOrders, "demo orders to create")
	f.StringVar(&opts.fixtures, "fixtures", "", "YAML fixtures file (default: the catalog compiled into this binary)")
	f.Uint64Var(&opts.randSeed, "rand-seed", 0, "seed for generated data; 0 picks one from the clock")
	f.BoolVar(&opts.migrate, "migrate", false, "apply pending postgres migrations before seeding")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall deadline")
	return cmd
}

func run(ctx context.Context, opts *options, log *zap.Logger) error {
	fixtures, err := loadFixtures(opts.fixtures)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := prepareSchema(db, cfg.Database.Driver, opts.migrate, log); err != nil {
		return err
	}

	randSeed := opts.randSeed
	if randSeed == 0 {
		randSeed = uint64(time.Now().UnixNano())
	}

	s := seed.New(seed.Repositories{
		Products:    persistence.NewGormProductRepository(db.DB),
		Reviews:     persistence.NewGormReviewRepository(db.DB),
		Users:       persistence.NewGormUserRepository(db.DB),
		Orders:      persistence.NewGormOrderRepository(db.DB),
		Articles:    persistence.NewGormArticleRepository(db.DB),
		CaseStudies: persistence.NewGormCaseStudyRepository(db.DB),
	}, fixtures, seed.WithLogger(log), seed.WithRandSeed(randSeed))

	log.Info("Seeding database",
		zap.String("driver", cfg.Database.Driver),
		zap.Uint64("rand_seed", randSeed),
	)
	_, err = s.Run(ctx, opts.Options)
	return err
}

// prepareSchema builds tables for sqlite and, when asked, runs the
// embedded migrations against postgres.
func prepareSchema(db *persistence.Database, driver string, migrate bool, log *zap.Logger) error {
	if driver == config.DriverSQLite {
		return db.AutoMigrate()
	}
	if !migrate {
		return nil
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	m, err := migration.New(sqlDB, "", log)
	if err != nil {
		return err
	}
	// Closing the migrator would close sqlDB, which the seeder still needs.
	return m.Up()
}

func loadFixtures(path string) (*seed.Fixtures, error) {
	if path == "" {
		return seed.DefaultFixtures()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return seed.ParseFixtures(data)
}
