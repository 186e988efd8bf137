package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/maxviazov/cricket-stats-service/internal/cricsheet"
	"github.com/maxviazov/cricket-stats-service/internal/handler"
	"github.com/maxviazov/cricket-stats-service/internal/repository"
	"github.com/maxviazov/cricket-stats-service/internal/repository/postgres"
)

const shutdownTimeout = 10 * time.Second

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|reset|status]",
		Short:     "Apply or inspect the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{repository.MigrateUp, repository.MigrateDown, repository.MigrateReset, repository.MigrateStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := repository.MigrateUp
			if len(args) == 1 {
				command = args[0]
			}
			return run(func(ctx context.Context, a *app) error {
				return repository.Migrate(ctx, a.db.Pool(), command, a.log)
			})
		},
	}
}

func ingestCmd() *cobra.Command {
	var (
		dataDir       string
		reset         bool
		skipRecompute bool
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load match files from a directory, then rebuild statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app) error {
				command := repository.MigrateUp
				if reset {
					a.log.Warn().Msg("Resetting database before ingestion")
					command = repository.MigrateReset
				}
				if err := repository.Migrate(ctx, a.db.Pool(), command, a.log); err != nil {
					return err
				}

				dir := dataDir
				if dir == "" {
					dir = a.cfg.Ingest.DataDir
				}
				src, err := cricsheet.OpenDir(dir, a.cfg.Ingest.Extension, a.log)
				if err != nil {
					return err
				}
				if src.Len() == 0 {
					return fmt.Errorf("no %s files in %s", a.cfg.Ingest.Extension, dir)
				}
				res, err := a.ingestService().IngestAll(ctx, src)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully loaded %d matches (%d already stored, %d failed)\n",
					res.Ingested, res.Skipped, res.Failed)

				if skipRecompute {
					return nil
				}
				stats, err := a.statsService().Recompute(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Statistics rebuilt for %d players and %d teams\n", stats.Players, stats.Teams)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory of match files (defaults to ingest.data_dir)")
	cmd.Flags().BoolVar(&reset, "reset", false, "Drop and recreate the schema first")
	cmd.Flags().BoolVar(&skipRecompute, "skip-recompute", false, "Leave derived statistics untouched")
	return cmd
}

func recomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild player and team statistics from stored deliveries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app) error {
				res, err := a.statsService().Recompute(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Statistics rebuilt for %d players and %d teams from %d deliveries\n",
					res.Players, res.Teams, res.Deliveries)
				return nil
			})
		},
	}
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <question>",
		Short: "Answer one free-text question and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app) error {
				svc, err := a.queryService()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), svc.Answer(ctx, strings.Join(args, " ")))
				return nil
			})
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the question-answering HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app) error {
				n, err := postgres.NewMatchRepository(a.db.Pool()).Count(ctx)
				if err != nil {
					return fmt.Errorf("count matches: %w", err)
				}
				if n == 0 {
					return errors.New("no matches stored, run `cricketstats ingest` first")
				}

				svc, err := a.queryService()
				if err != nil {
					return err
				}
				if a.cfg.App.Env == "prod" {
					gin.SetMode(gin.ReleaseMode)
				}
				router := handler.NewRouter(postgres.NewPinger(a.db.Pool()), svc, handler.OptionsFromConfig(a.cfg.HTTP), a.log)

				srv := &http.Server{
					Addr:              fmt.Sprintf(":%d", a.cfg.App.Port),
					Handler:           router,
					ReadHeaderTimeout: 5 * time.Second,
					ReadTimeout:       10 * time.Second,
					WriteTimeout:      30 * time.Second,
					IdleTimeout:       60 * time.Second,
				}

				errCh := make(chan error, 1)
				go func() {
					a.log.Info().Str("addr", srv.Addr).Int("matches", n).Msg("🚀 Service started")
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						errCh <- err
					}
					close(errCh)
				}()

				select {
				case err := <-errCh:
					return fmt.Errorf("http server: %w", err)
				case <-ctx.Done():
				}

				a.log.Info().Msg("Shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
				a.log.Info().Msg("Server stopped")
				return nil
			})
		},
	}
}
