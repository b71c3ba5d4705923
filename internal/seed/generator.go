// Package seed generates synthetic attendance feeds and checks a running
// server's summaries against them.
package seed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/rollcall/internal/domain/model"
)

// CSVHeader is the column layout written by WriteCSV.
var CSVHeader = []string{"date", "name", "idx"}

// Generate builds a shuffled feed: per-day check-ins with arrival ranks, plus
// duplicate and invalid rows according to the configured ratios. Duplicates
// always come after every original row. The same non-zero seed always yields
// the same rows.
func Generate(ctx context.Context, cfg Config) ([]model.RawRow, Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Stats{}, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	stats := Stats{RunID: uuid.NewString(), Seed: seed}

	users := make([]string, cfg.Users)
	for i := range users {
		users[i] = fmt.Sprintf("user%03d", i+1)
	}

	var rows []model.RawRow
	for d := 0; d < cfg.Days; d++ {
		if err := ctx.Err(); err != nil {
			return nil, Stats{}, err
		}
		day := cfg.Start.AddDays(d).String()

		var present []string
		for _, u := range users {
			if rng.Float64() < cfg.AttendProb {
				present = append(present, u)
			}
		}
		rng.Shuffle(len(present), func(i, j int) { present[i], present[j] = present[j], present[i] })
		for rank, u := range present {
			rows = append(rows, model.RawRow{Date: day, Name: u, Rank: fmt.Sprint(rank + 1)})
		}
	}
	stats.Valid = len(rows)

	var dups []model.RawRow
	if stats.Valid > 0 {
		stats.Duplicates = int(float64(stats.Valid) * cfg.DuplicateRatio)
		for i := 0; i < stats.Duplicates; i++ {
			orig := rows[rng.IntN(stats.Valid)]
			// A repeated check-in arrives later than the original.
			dups = append(dups, model.RawRow{Date: orig.Date, Name: orig.Name, Rank: fmt.Sprint(cfg.Users + i + 1)})
		}
	}

	stats.Invalid = int(float64(stats.Valid) * cfg.InvalidRatio)
	for i := 0; i < stats.Invalid; i++ {
		if i%2 == 0 {
			rows = append(rows, model.RawRow{Date: "not-a-date", Name: users[rng.IntN(len(users))], Rank: "1"})
		} else {
			rows = append(rows, model.RawRow{Date: cfg.Start.String(), Name: "  ", Rank: "2"})
		}
	}

	// Duplicates trail the shuffled body so keep-first dedupe retains the
	// original arrival ranks.
	rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	rng.Shuffle(len(dups), func(i, j int) { dups[i], dups[j] = dups[j], dups[i] })
	rows = append(rows, dups...)
	stats.Total = len(rows)

	return rows, stats, nil
}

// WriteCSV writes rows under CSVHeader.
func WriteCSV(w io.Writer, rows []model.RawRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Date, r.Name, r.Rank}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
