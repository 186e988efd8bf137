package cricsheet

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Record is one raw match payload and the id it will be stored under.
// Err is set when this record alone could not be read; the stream stays usable.
type Record struct {
	ExternalID string
	Data       []byte
	Err        error
}

// Source streams raw records. Next returns io.EOF once exhausted.
type Source interface {
	Next(ctx context.Context) (Record, error)
}

// DirSource reads every file with the configured extension from one directory,
// in lexical order. The file name without extension is the external id.
type DirSource struct {
	dir    string
	files  []string
	pos    int
	logger zerolog.Logger
}

const progressEvery = 100

// OpenDir lists dir up front so an unreadable directory fails the whole batch.
func OpenDir(dir, ext string, logger zerolog.Logger) (*DirSource, error) {
	if ext == "" {
		ext = ".json"
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("open data dir %q: %w", dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	l := logger.With().Str("component", "cricsheet").Str("dir", dir).Logger()
	l.Info().Int("files", len(files)).Msg("Found match files to process")
	return &DirSource{dir: dir, files: files, logger: l}, nil
}

// Len reports how many files were found.
func (s *DirSource) Len() int { return len(s.files) }

func (s *DirSource) Next(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if s.pos >= len(s.files) {
		return Record{}, io.EOF
	}
	name := s.files[s.pos]
	s.pos++
	if s.pos%progressEvery == 0 {
		s.logger.Info().Int("done", s.pos).Int("total", len(s.files)).Msg("Reading match files")
	}

	rec := Record{ExternalID: strings.TrimSuffix(name, filepath.Ext(name))}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		rec.Err = fmt.Errorf("read %s: %w", name, err)
		return rec, nil
	}
	rec.Data = data
	return rec, nil
}

// SliceSource serves records from memory.
type SliceSource struct {
	records []Record
	pos     int
}

func NewSliceSource(records ...Record) *SliceSource {
	return &SliceSource{records: records}
}

func (s *SliceSource) Next(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if s.pos >= len(s.records) {
		return Record{}, io.EOF
	}
	r := s.records[s.pos]
	s.pos++
	return r, nil
}

var (
	_ Source = (*DirSource)(nil)
	_ Source = (*SliceSource)(nil)
)
