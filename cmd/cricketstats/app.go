package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/maxviazov/cricket-stats-service/internal/config"
	"github.com/maxviazov/cricket-stats-service/internal/intent"
	"github.com/maxviazov/cricket-stats-service/internal/logger"
	"github.com/maxviazov/cricket-stats-service/internal/repository"
	"github.com/maxviazov/cricket-stats-service/internal/repository/postgres"
	"github.com/maxviazov/cricket-stats-service/internal/service"
)

// app is everything a command needs once config, logger and pool are up.
type app struct {
	cfg *config.Config
	log zerolog.Logger
	db  *repository.Repository

	// recompute writes and queries read under the same lock
	lock sync.RWMutex
}

// run handles config loading, DB connection and signal-driven cancellation.
func run(fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config loading failed: %w", err)
	}
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	db, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	defer db.Close()

	return fn(ctx, &app{cfg: cfg, log: appLogger, db: db})
}

func (a *app) policy() service.AggregationPolicy {
	return service.AggregationPolicy{
		CreditAllWicketsToBowler: a.cfg.Aggregation.CreditAllWicketsToBowler,
		LostIncludesNoDecision:   a.cfg.Aggregation.LostIncludesNoDecision,
		ComputeHighestScore:      a.cfg.Aggregation.ComputeHighestScore,
	}
}

func (a *app) ingestService() service.IngestService {
	pool := a.db.Pool()
	return service.NewIngestService(service.IngestRepos{
		Matches:    postgres.NewMatchRepository(pool),
		Innings:    postgres.NewInningsRepository(pool),
		Deliveries: postgres.NewDeliveryRepository(pool),
		Teams:      postgres.NewTeamRepository(pool),
		Players:    postgres.NewPlayerRepository(pool),
	}, postgres.NewTxManager(pool), a.log)
}

func (a *app) statsService() service.StatsService {
	pool := a.db.Pool()
	return service.NewStatsService(service.AggregateRepos{
		Matches:    postgres.NewMatchRepository(pool),
		Innings:    postgres.NewInningsRepository(pool),
		Deliveries: postgres.NewDeliveryRepository(pool),
		Teams:      postgres.NewTeamRepository(pool),
		Stats:      postgres.NewStatsRepository(pool),
	}, postgres.NewTxManager(pool), a.policy(), &a.lock, a.log)
}

func (a *app) queryService() (service.QueryService, error) {
	pool := a.db.Pool()
	rules := intent.Catalogue(intent.Queries{
		Analytics: postgres.NewAnalyticsRepository(pool),
		Matches:   postgres.NewMatchRepository(pool),
		Standings: postgres.NewStatsRepository(pool),
	})
	d, err := intent.NewDispatcher(rules, a.log)
	if err != nil {
		return nil, err
	}
	return service.NewQueryService(d, &a.lock, a.log), nil
}
