package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/rollcall/internal/domain/model"
	"github.com/okian/rollcall/pkg/logger"
)

// ReadCSV decodes a CSV stream with a header row into raw rows.
// Short or ragged rows are padded with empty fields; blank lines are skipped.
func ReadCSV(r io.Reader, cols Columns) ([]model.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []model.RawRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := resolve(header, cols)
	if err != nil {
		return nil, err
	}

	rows := []model.RawRow{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if blank(rec) {
			continue
		}
		rows = append(rows, idx.row(rec))
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// FileSource reads a CSV file on every fetch.
type FileSource struct {
	path    string
	columns Columns
	logger  logger.Logger
}

// NewFileSource constructs a FileSource for path.
func NewFileSource(path string, opts ...Option) *FileSource {
	s := newSettings(opts)
	return &FileSource{path: path, columns: s.columns, logger: s.logger}
}

// Name implements Source.
func (s *FileSource) Name() string { return KindCSV }

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context) ([]model.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(s.Name(), err)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}
	defer f.Close()

	rows, err := ReadCSV(f, s.columns)
	if err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("%s: %w", s.path, err))
	}
	s.logger.Debug(ctx, "csv file read", logger.String("path", s.path), logger.Int("rows", len(rows)))
	return rows, nil
}
