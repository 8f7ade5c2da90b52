package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/okian/taskmatch/internal/adapters/repository"
	"github.com/okian/taskmatch/internal/adapters/storage/db"
	"github.com/okian/taskmatch/internal/config"
	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/pkg/logger"
	"github.com/okian/taskmatch/pkg/metrics"
)

// OpenRoster builds the roster the configuration asks for. With a database
// URL the roster lives in Postgres and the roster file (or the sample team)
// seeds it when migrations are enabled. Without one the roster is held in
// memory. The returned close function releases the database pool, if any.
func OpenRoster(ctx context.Context, cfg *config.Config) (repository.Roster, func() error, error) {
	const op = "service.open_roster"
	log := logger.Named("bootstrap")
	noop := func() error { return nil }

	employees, err := seedEmployees(cfg.RosterFile)
	if err != nil {
		return nil, noop, model.Wrap(op, err)
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		r, err := repository.NewMemoryRoster(employees)
		if err != nil {
			return nil, noop, model.Wrap(op, err)
		}
		log.Info(ctx, "using in-memory roster", logger.Int("employees", len(employees)))
		return r, noop, nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL, db.DefaultServerOptions())
	if err != nil {
		return nil, noop, model.Wrap(op, err)
	}
	r, err := openPGRoster(ctx, database, cfg.RunMigrations, employees)
	if err != nil {
		_ = database.Close()
		return nil, noop, model.Wrap(op, err)
	}
	log.Info(ctx, "using postgres roster", logger.Bool("migrated", cfg.RunMigrations))
	return r, database.Close, nil
}

func openPGRoster(ctx context.Context, database *sql.DB, migrate bool, seed []model.Employee) (*repository.PGRoster, error) {
	r := &repository.PGRoster{DB: database}
	if migrate {
		for i := range seed {
			if err := seed[i].Validate(); err != nil {
				return nil, err
			}
		}
		if err := db.RunMigrations(ctx, database); err != nil {
			return nil, err
		}
		if err := r.SeedRoster(ctx, seed); err != nil {
			return nil, err
		}
	}
	n, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}
	metrics.UpdateRosterSize(n)
	return r, nil
}

func seedEmployees(path string) ([]model.Employee, error) {
	if strings.TrimSpace(path) == "" {
		return repository.SampleRoster(), nil
	}
	return repository.LoadRosterFile(path)
}
