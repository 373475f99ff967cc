package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"procissue/internal/bootstrap/config"
	"procissue/internal/bootstrap/database"
	"procissue/internal/bootstrap/logging"
	domain "procissue/internal/domain/processing"
	"procissue/internal/errs"
	cacheinfra "procissue/internal/infrastructure/cache"
	sqliterepo "procissue/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "procissue/internal/infrastructure/persistence/sqlite/uow"
	"procissue/internal/ports"
	"procissue/internal/usecase/processing"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(provideTaxonomy),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewProcessingIssueRepository,
			fx.As(new(ports.ProcessingIssueRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(processing.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideTaxonomy(ctx context.Context, cfg config.Config) (*domain.Taxonomy, error) {
	taxonomy, err := domain.LoadTaxonomy(cfg.Processing.TaxonomyFile)
	if err != nil {
		return nil, errs.Wrapf(err, "load taxonomy %q", cfg.Processing.TaxonomyFile)
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx")),
		"fault taxonomy loaded",
		slog.Int("types", len(taxonomy.Kinds())),
	)
	return taxonomy, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}
