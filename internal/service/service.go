// Package service holds the use cases: turning raw match records into stored
// entities, rebuilding the derived statistics and answering free-text questions.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/maxviazov/cricket-stats-service/internal/cricsheet"
)

// ErrInvalidInput is the marker error for aggregated validation failures.
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a raw record or request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string {
	parts := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error, or nil when fe is empty.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// IngestResult summarizes one ingestion pass.
type IngestResult struct {
	Read     int           `json:"read"`
	Ingested int           `json:"ingested"`
	Skipped  int           `json:"skipped"` // already stored
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// RecomputeResult summarizes one aggregation run.
type RecomputeResult struct {
	Players    int           `json:"players"`
	Teams      int           `json:"teams"`
	Deliveries int           `json:"deliveries"`
	Duration   time.Duration `json:"duration"`
}

// IngestService loads raw records into the normalized store.
type IngestService interface {
	// IngestAll drains src inside one transaction. A record that fails is logged
	// and skipped; only a source or commit failure returns an error.
	IngestAll(ctx context.Context, src cricsheet.Source) (IngestResult, error)
}

// StatsService owns the derived projections.
type StatsService interface {
	// Recompute rebuilds PlayerStats and TeamStats from scratch. On error both
	// tables keep their previous contents.
	Recompute(ctx context.Context) (RecomputeResult, error)
}

// QueryService is the single question-answering capability. It never fails:
// errors come back as text.
type QueryService interface {
	Answer(ctx context.Context, question string) string
}
