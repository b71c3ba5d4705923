// Package aggregate holds the read-only computations run over an EventLog:
// top attendance, top promptness, daily unique attendees and the full
// per-user timeline.
package aggregate

import (
	"sort"

	"github.com/okian/rollcall/internal/domain/model"
)

// Default k values for the two top-k aggregators.
const (
	DefaultAttendanceK = 7
	DefaultPromptnessK = 5
)

// TopAttendance counts records per name, keeps the k highest counts
// (ties broken by name) and returns them sorted by name ascending.
func TopAttendance(log *model.EventLog, k int) []model.NameCount {
	counts := countBy(log, func(model.Record) bool { return true })
	top := selectTop(counts, k)
	sort.Slice(top, func(i, j int) bool { return top[i].Name < top[j].Name })
	return top
}

// TopPromptness counts first arrivals per name, keeps the k highest counts
// (ties broken by name) and returns them sorted by count ascending, then name.
func TopPromptness(log *model.EventLog, k int) []model.NameCount {
	counts := countBy(log, model.Record.FirstArrival)
	top := selectTop(counts, k)
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count < top[j].Count
		}
		return top[i].Name < top[j].Name
	})
	return top
}

// DailyUniqueCounts returns the number of distinct names per date present
// in the log, ascending by date. Dates without records are not emitted.
func DailyUniqueCounts(log *model.EventLog) []model.DailyCount {
	out := []model.DailyCount{}
	var (
		cur  model.Date
		seen map[string]struct{}
	)
	flush := func() {
		if seen != nil {
			out = append(out, model.DailyCount{Date: cur, Users: len(seen)})
		}
	}
	// canonical order groups each date contiguously
	log.Each(func(r model.Record) {
		if seen == nil || r.Date != cur {
			flush()
			cur = r.Date
			seen = make(map[string]struct{})
		}
		seen[r.Name] = struct{}{}
	})
	flush()
	return out
}

// Timeline builds the dense user x date attendance matrix over the whole log.
// Columns are every distinct date ascending; rows are every distinct name ascending.
func Timeline(log *model.EventLog) model.Timeline {
	dates := log.Dates()
	names := log.Names()

	col := make(map[model.Date]int, len(dates))
	for i, d := range dates {
		col[d] = i
	}
	row := make(map[string]int, len(names))
	rows := make([]model.UserTimeline, len(names))
	for i, n := range names {
		row[n] = i
		rows[i] = model.UserTimeline{Name: n, Cells: make([]bool, len(dates))}
	}

	log.Each(func(r model.Record) {
		u := &rows[row[r.Name]]
		if c := col[r.Date]; !u.Cells[c] {
			u.Cells[c] = true
			u.Attended++
		}
	})
	return model.Timeline{Dates: dates, Rows: rows}
}

func countBy(log *model.EventLog, match func(model.Record) bool) []model.NameCount {
	idx := make(map[string]int)
	var counts []model.NameCount
	log.Each(func(r model.Record) {
		if !match(r) {
			return
		}
		i, ok := idx[r.Name]
		if !ok {
			i = len(counts)
			idx[r.Name] = i
			counts = append(counts, model.NameCount{Name: r.Name})
		}
		counts[i].Count++
	})
	return counts
}

// selectTop orders by count desc then name asc and cuts at k.
func selectTop(counts []model.NameCount, k int) []model.NameCount {
	if k <= 0 || len(counts) == 0 {
		return []model.NameCount{}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	if len(counts) > k {
		counts = counts[:k]
	}
	out := make([]model.NameCount, len(counts))
	copy(out, counts)
	return out
}
