package service

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// EmptyQueryMessage is returned for blank questions.
const EmptyQueryMessage = "Please provide a query."

// Resolver maps free text to a rendered answer. It must never fail.
type Resolver interface {
	Resolve(ctx context.Context, text string) string
}

type queryService struct {
	resolver Resolver
	lock     *sync.RWMutex
	log      zerolog.Logger
}

// NewQueryService wraps the resolver with the read side of lock, the same lock
// handed to NewStatsService.
func NewQueryService(resolver Resolver, lock *sync.RWMutex, logger zerolog.Logger) QueryService {
	if lock == nil {
		lock = &sync.RWMutex{}
	}
	l := logger.With().Str("module", "service").Str("component", "query").Logger()
	return &queryService{resolver: resolver, lock: lock, log: l}
}

func (s *queryService) Answer(ctx context.Context, question string) string {
	if strings.TrimSpace(question) == "" {
		return EmptyQueryMessage
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	answer := s.resolver.Resolve(ctx, question)
	s.log.Debug().Str("query", question).Int("answer_len", len(answer)).Msg("Query answered")
	return answer
}
