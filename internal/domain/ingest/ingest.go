// Package ingest turns raw source rows into a clean, deduplicated EventLog.
package ingest

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/okian/rollcall/internal/domain/dedupe"
	"github.com/okian/rollcall/internal/domain/model"
	"github.com/okian/rollcall/pkg/logger"
)

// Default date layouts, tried in order.
var defaultDateLayouts = []string{
	model.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// Default labels meaning "first to arrive that day".
var defaultFirstPlaceLabels = []string{"1st", "1st place", "first", "1등"}

// Report counts what happened to the input rows. Input == Kept + all discards.
type Report struct {
	Input       int `json:"input"`
	Kept        int `json:"kept"`
	MissingDate int `json:"missing_date"`
	InvalidDate int `json:"invalid_date"`
	MissingName int `json:"missing_name"`
	Duplicates  int `json:"duplicates"`
}

// Discarded returns the number of rows that did not make it into the log.
func (r Report) Discarded() int {
	return r.MissingDate + r.InvalidDate + r.MissingName + r.Duplicates
}

// Normalizer cleans, parses and deduplicates raw rows.
type Normalizer struct {
	layouts     []string
	firstLabels map[string]struct{}
	policy      dedupe.Policy
	logger      logger.Logger
}

// New constructs a Normalizer with defaults: canonical layouts, keep-first.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		layouts: append([]string(nil), defaultDateLayouts...),
		policy:  dedupe.KeepFirst,
		logger:  logger.Nop(),
	}
	WithFirstPlaceLabels(defaultFirstPlaceLabels)(n)
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Policy returns the dedupe policy in effect.
func (n *Normalizer) Policy() dedupe.Policy { return n.policy }

// Normalize builds an EventLog from rows. Invalid rows are dropped and
// counted; an empty or fully invalid input yields an empty log.
func (n *Normalizer) Normalize(ctx context.Context, rows []model.RawRow) (*model.EventLog, Report) {
	rep := Report{Input: len(rows)}
	parsed := make([]model.Record, 0, len(rows))

	for i, row := range rows {
		rawDate := strings.TrimSpace(row.Date)
		if rawDate == "" {
			rep.MissingDate++
			continue
		}
		date, err := model.ParseDate(rawDate, n.layouts...)
		if err != nil {
			rep.InvalidDate++
			n.logger.Debug(ctx, "dropping row with unparseable date",
				logger.Int("row", i),
				logger.String("date", row.Date),
			)
			continue
		}
		name := strings.TrimSpace(row.Name)
		if name == "" {
			rep.MissingName++
			continue
		}
		parsed = append(parsed, model.Record{
			Name: name,
			Date: date,
			Rank: n.rankOf(row),
		})
	}

	d := dedupe.NewInMemoryDeduper(dedupe.WithSizeHint(len(parsed)))
	kept, dropped := dedupe.Apply(ctx, d, n.policy, parsed)
	rep.Duplicates = dropped
	rep.Kept = len(kept)

	return model.NewEventLog(kept), rep
}

// rankOf interprets the optional rank/label fields. Anything that is not a
// positive integer or a first-place label is treated as absent.
func (n *Normalizer) rankOf(row model.RawRow) int {
	if n.isFirstLabel(row.Label) {
		return 1
	}
	raw := strings.TrimSpace(row.Rank)
	if raw == "" {
		return 0
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return positive(v)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if f == math.Trunc(f) && f >= 1 && f <= math.MaxInt32 {
			return int(f)
		}
		return 0
	}
	if n.isFirstLabel(raw) {
		return 1
	}
	return 0
}

func (n *Normalizer) isFirstLabel(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return false
	}
	_, ok := n.firstLabels[s]
	return ok
}

func positive(v int) int {
	if v < 1 {
		return 0
	}
	return v
}
