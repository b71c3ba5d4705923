package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/okian/rollcall/internal/domain/model"
)

// ExpectedSummary is the independently recomputed answer for a feed.
type ExpectedSummary struct {
	Start         model.Date
	End           model.Date
	TopAttendance []model.NameCount
}

// Expect recomputes the top-k attendance of rows without the service's
// ingestion code: rows with an unparseable date or blank name are skipped and
// each (name, date) pair counts once.
func Expect(rows []model.RawRow, k int) ExpectedSummary {
	type key struct {
		name string
		date model.Date
	}
	seen := make(map[key]struct{})
	counts := make(map[string]int)
	var out ExpectedSummary

	for _, r := range rows {
		name := strings.TrimSpace(r.Name)
		d, err := model.ParseDate(r.Date)
		if err != nil || name == "" {
			continue
		}
		kk := key{name: name, date: d}
		if _, dup := seen[kk]; dup {
			continue
		}
		seen[kk] = struct{}{}
		counts[name]++
		if out.Start.IsZero() || d.Before(out.Start) {
			out.Start = d
		}
		if d.After(out.End) {
			out.End = d
		}
	}

	all := make([]model.NameCount, 0, len(counts))
	for n, c := range counts {
		all = append(all, model.NameCount{Name: n, Count: c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Name < all[j].Name
	})
	if k < 0 {
		k = 0
	}
	if k < len(all) {
		all = all[:k]
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	out.TopAttendance = all
	return out
}

// ReadCSV reads a feed written by WriteCSV.
func ReadCSV(r io.Reader) ([]model.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < len(CSVHeader) {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var rows []model.RawRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := model.RawRow{}
		if len(rec) > 0 {
			row.Date = rec[0]
		}
		if len(rec) > 1 {
			row.Name = rec[1]
		}
		if len(rec) > 2 {
			row.Rank = rec[2]
		}
		rows = append(rows, row)
	}
}
