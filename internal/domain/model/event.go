package model

import (
	"sort"
	"strconv"
)

// RawRow is one loosely-typed input row as read from a source.
// Date and Name are required; Rank and Label are optional.
type RawRow struct {
	Date  string // calendar date, usually YYYY-MM-DD
	Name  string // attendee identifier
	Rank  string // arrival order that day, e.g. "1" or "1.0"
	Label string // optional tag, e.g. "1st place"
}

// Record is one normalized attendance event.
type Record struct {
	Name string `json:"name"`
	Date Date   `json:"date"`
	Rank int    `json:"rank,omitempty"` // 0 when absent
}

// FirstArrival reports whether the record was the first arrival of its day.
func (r Record) FirstArrival() bool { return r.Rank == 1 }

// less orders records by date, then name.
func less(a, b Record) bool {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c < 0
	}
	return a.Name < b.Name
}

// EventLog is an immutable collection of normalized records.
// Records are held in canonical order: date ascending, then name ascending.
type EventLog struct {
	records []Record
	dates   []Date
	names   []string
}

// NewEventLog builds an EventLog from records. The input slice is copied
// and sorted; callers are responsible for (name, date) uniqueness.
func NewEventLog(records []Record) *EventLog {
	rs := make([]Record, len(records))
	copy(rs, records)
	sort.Slice(rs, func(i, j int) bool { return less(rs[i], rs[j]) })

	l := &EventLog{records: rs}
	seenNames := make(map[string]struct{})
	for i, r := range rs {
		if i == 0 || r.Date != rs[i-1].Date {
			l.dates = append(l.dates, r.Date)
		}
		if _, ok := seenNames[r.Name]; !ok {
			seenNames[r.Name] = struct{}{}
			l.names = append(l.names, r.Name)
		}
	}
	sort.Strings(l.names)
	return l
}

// Len returns the number of records. A nil log is empty.
func (l *EventLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.records)
}

// Empty reports whether the log holds no records.
func (l *EventLog) Empty() bool { return l.Len() == 0 }

// Records returns a copy of the records in canonical order.
func (l *EventLog) Records() []Record {
	if l.Empty() {
		return []Record{}
	}
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Each calls fn for every record in canonical order.
func (l *EventLog) Each(fn func(Record)) {
	if l == nil {
		return
	}
	for _, r := range l.records {
		fn(r)
	}
}

// Select returns a new log holding the records for which keep returns true.
func (l *EventLog) Select(keep func(Record) bool) *EventLog {
	var out []Record
	l.Each(func(r Record) {
		if keep(r) {
			out = append(out, r)
		}
	})
	return NewEventLog(out)
}

// MinDate returns the earliest date and false when the log is empty.
func (l *EventLog) MinDate() (Date, bool) {
	if l.Empty() {
		return Date{}, false
	}
	return l.records[0].Date, true
}

// MaxDate returns the latest date and false when the log is empty.
func (l *EventLog) MaxDate() (Date, bool) {
	if l.Empty() {
		return Date{}, false
	}
	return l.records[len(l.records)-1].Date, true
}

// Dates returns the distinct dates present, ascending.
func (l *EventLog) Dates() []Date {
	if l.Empty() {
		return []Date{}
	}
	out := make([]Date, len(l.dates))
	copy(out, l.dates)
	return out
}

// Names returns the distinct attendee names present, ascending.
func (l *EventLog) Names() []string {
	if l.Empty() {
		return []string{}
	}
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// On returns the records of a single day in name order.
func (l *EventLog) On(d Date) []Record {
	out := []Record{}
	if l.Empty() {
		return out
	}
	i := sort.Search(len(l.records), func(i int) bool { return !l.records[i].Date.Before(d) })
	for ; i < len(l.records) && l.records[i].Date == d; i++ {
		out = append(out, l.records[i])
	}
	return out
}

// RawRows projects the log back into input rows using the canonical date layout.
func (l *EventLog) RawRows() []RawRow {
	out := make([]RawRow, 0, l.Len())
	l.Each(func(r Record) {
		row := RawRow{Date: r.Date.String(), Name: r.Name}
		if r.Rank > 0 {
			row.Rank = strconv.Itoa(r.Rank)
		}
		out = append(out, row)
	})
	return out
}
