package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/maxviazov/cricket-stats-service/internal/cricsheet"
	"github.com/maxviazov/cricket-stats-service/internal/model"
	"github.com/maxviazov/cricket-stats-service/internal/repository"
	"github.com/rs/zerolog"
)

// IngestRepos groups the stores one ingestion pass writes to.
type IngestRepos struct {
	Matches    repository.MatchRepository
	Innings    repository.InningsRepository
	Deliveries repository.DeliveryRepository
	Teams      repository.TeamRepository
	Players    repository.PlayerRepository
}

type ingestService struct {
	repos IngestRepos
	tx    repository.TxManager
	log   zerolog.Logger
}

func NewIngestService(repos IngestRepos, tx repository.TxManager, logger zerolog.Logger) IngestService {
	l := logger.With().Str("module", "service").Str("component", "ingest").Logger()
	return &ingestService{repos: repos, tx: tx, log: l}
}

// seen remembers natural keys already written in this pass, so a player who
// appears in every file costs one existence query rather than one per file.
type seen struct {
	teams   map[string]struct{}
	players map[string]struct{}
}

func (s *ingestService) IngestAll(ctx context.Context, src cricsheet.Source) (IngestResult, error) {
	if src == nil {
		return IngestResult{}, errors.New("ingest: source is nil")
	}
	start := time.Now()
	var res IngestResult
	cache := seen{teams: map[string]struct{}{}, players: map[string]struct{}{}}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for {
			rec, err := src.Next(ctx)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			res.Read++

			if rec.Err != nil {
				res.Failed++
				s.log.Warn().Err(rec.Err).Str("match_id", rec.ExternalID).Msg("Skipping unreadable record")
				continue
			}

			created, err := s.ingestRecord(ctx, rec, &cache)
			switch {
			case err != nil:
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				res.Failed++
				s.log.Warn().Err(err).Str("match_id", rec.ExternalID).Msg("Skipping record that failed to ingest")
			case created:
				res.Ingested++
			default:
				res.Skipped++
				s.log.Debug().Str("match_id", rec.ExternalID).Msg("Match already stored, skipping")
			}
		}
	})
	res.Duration = time.Since(start)
	if err != nil {
		s.log.Error().Err(err).Int("read", res.Read).Msg("Ingestion batch aborted")
		return IngestResult{Read: res.Read, Duration: res.Duration}, fmt.Errorf("ingest batch: %w", err)
	}

	s.log.Info().
		Int("read", res.Read).
		Int("ingested", res.Ingested).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Dur("duration", res.Duration).
		Msg("Ingestion batch committed")
	return res, nil
}

// ingestRecord stores one record inside its own savepoint. It reports false
// without error when the match id is already present.
func (s *ingestService) ingestRecord(ctx context.Context, rec cricsheet.Record, cache *seen) (bool, error) {
	raw, err := cricsheet.Decode(rec.Data)
	if err != nil {
		return false, err
	}
	bundle, err := Normalize(rec.ExternalID, raw, rec.Data)
	if err != nil {
		return false, err
	}

	var (
		created    bool
		newTeams   []string
		newPlayers []string
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.repos.Matches.ExistsByExternalID(ctx, bundle.Match.MatchID)
		if err != nil {
			return fmt.Errorf("check match: %w", err)
		}
		if exists {
			return nil
		}

		m, err := s.repos.Matches.Create(ctx, bundle.Match)
		if err != nil {
			return fmt.Errorf("create match: %w", err)
		}
		for _, in := range bundle.Innings {
			in.MatchID = m.ID
			if _, err := s.repos.Innings.Create(ctx, in); err != nil {
				return fmt.Errorf("create innings %d: %w", in.Number, err)
			}
		}
		for i := range bundle.Deliveries {
			bundle.Deliveries[i].MatchID = m.ID
		}
		if _, err := s.repos.Deliveries.CreateBatch(ctx, bundle.Deliveries); err != nil {
			return fmt.Errorf("create deliveries: %w", err)
		}

		for _, name := range bundle.Teams {
			ok, err := s.ensureTeam(ctx, name, cache)
			if err != nil {
				return err
			}
			if ok {
				newTeams = append(newTeams, name)
			}
		}
		for _, p := range bundle.Players {
			ok, err := s.ensurePlayer(ctx, p, cache)
			if err != nil {
				return err
			}
			if ok {
				newPlayers = append(newPlayers, p.CricsheetID)
			}
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}

	// only remember keys whose savepoint actually committed
	for _, t := range newTeams {
		cache.teams[t] = struct{}{}
	}
	for _, p := range newPlayers {
		cache.players[p] = struct{}{}
	}
	return created, nil
}

func (s *ingestService) ensureTeam(ctx context.Context, name string, cache *seen) (bool, error) {
	if _, ok := cache.teams[name]; ok {
		return false, nil
	}
	exists, err := s.repos.Teams.ExistsByName(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check team %q: %w", name, err)
	}
	if exists {
		cache.teams[name] = struct{}{}
		return false, nil
	}
	if _, err := s.repos.Teams.Create(ctx, model.Team{Name: name}); err != nil {
		return false, fmt.Errorf("create team %q: %w", name, err)
	}
	return true, nil
}

func (s *ingestService) ensurePlayer(ctx context.Context, p model.Player, cache *seen) (bool, error) {
	if _, ok := cache.players[p.CricsheetID]; ok {
		return false, nil
	}
	exists, err := s.repos.Players.ExistsByExternalID(ctx, p.CricsheetID)
	if err != nil {
		return false, fmt.Errorf("check player %q: %w", p.CricsheetID, err)
	}
	if exists {
		cache.players[p.CricsheetID] = struct{}{}
		return false, nil
	}
	if _, err := s.repos.Players.Create(ctx, p); err != nil {
		return false, fmt.Errorf("create player %q: %w", p.CricsheetID, err)
	}
	return true, nil
}
