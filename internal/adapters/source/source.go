// Package source reads raw attendance rows from the external feed: a CSV
// file, a published spreadsheet CSV over HTTP, or a SQL table.
package source

import (
	"context"
	"strings"

	"github.com/okian/rollcall/internal/domain/model"
)

// Source kinds accepted by configuration.
const (
	KindCSV  = "csv"
	KindHTTP = "http"
	KindSQL  = "sql"
)

// Source yields the full current set of raw rows.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.RawRow, error)
}

// Columns maps row fields to header (or result column) names.
// Date and Name are required; Rank and Label are optional.
type Columns struct {
	Date  string
	Name  string
	Rank  string
	Label string
}

// DefaultColumns matches the attendance sheet layout.
func DefaultColumns() Columns {
	return Columns{Date: "date", Name: "name", Rank: "idx", Label: "label"}
}

// index resolves each configured column against a header row. Lookup is
// case-insensitive and whitespace-trimmed. Missing optional columns are -1.
type index struct {
	date, name, rank, label int
}

func resolve(header []string, cols Columns) (index, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	find := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := pos[strings.ToLower(strings.TrimSpace(name))]; ok {
			return i
		}
		return -1
	}
	idx := index{date: find(cols.Date), name: find(cols.Name), rank: find(cols.Rank), label: find(cols.Label)}
	if idx.date < 0 {
		return idx, missingColumn(cols.Date)
	}
	if idx.name < 0 {
		return idx, missingColumn(cols.Name)
	}
	return idx, nil
}

func (ix index) row(values []string) model.RawRow {
	at := func(i int) string {
		if i < 0 || i >= len(values) {
			return ""
		}
		return values[i]
	}
	return model.RawRow{Date: at(ix.date), Name: at(ix.name), Rank: at(ix.rank), Label: at(ix.label)}
}

// Static serves a fixed set of rows. It backs tests and the seed tool.
type Static struct {
	Label string
	Rows  []model.RawRow
	Err   error
}

// Name implements Source.
func (s *Static) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

// Fetch implements Source.
func (s *Static) Fetch(ctx context.Context) ([]model.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(s.Name(), err)
	}
	if s.Err != nil {
		return nil, unavailable(s.Name(), s.Err)
	}
	out := make([]model.RawRow, len(s.Rows))
	copy(out, s.Rows)
	return out, nil
}
