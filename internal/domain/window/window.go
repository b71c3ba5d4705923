// Package window validates inclusive date ranges against an EventLog and
// selects the records that fall inside them.
package window

import (
	"fmt"

	"github.com/okian/rollcall/internal/domain/model"
)

// Status is the outcome of validating a range.
type Status string

const (
	// StatusOK means the range is usable as-is.
	StatusOK Status = "ok"
	// StatusStartAfterEnd means start > end.
	StatusStartAfterEnd Status = "start-after-end"
	// StatusStartBeforeEarliest means start precedes the earliest recorded event.
	StatusStartBeforeEarliest Status = "start-before-earliest"
	// StatusStartAfterLatest means start is after the latest recorded event.
	StatusStartAfterLatest Status = "start-after-latest"
	// StatusNoDataAfter means end is after the latest recorded event. Aggregation still proceeds.
	StatusNoDataAfter Status = "no-data-after"
	// StatusEmptyLog means there are no records at all. Aggregation proceeds on nothing.
	StatusEmptyLog Status = "empty-log"
)

// Blocking reports whether the status must stop aggregation.
func (s Status) Blocking() bool {
	switch s {
	case StatusStartAfterEnd, StatusStartBeforeEarliest, StatusStartAfterLatest:
		return true
	default:
		return false
	}
}

// Warning reports whether the status is a non-blocking condition the caller should surface.
func (s Status) Warning() bool {
	return s == StatusNoDataAfter || s == StatusEmptyLog
}

// Result describes a validated range.
type Result struct {
	Status    Status     `json:"status"`
	Start     model.Date `json:"start"`
	End       model.Date `json:"end"`
	Earliest  model.Date `json:"earliest"`
	Latest    model.Date `json:"latest"`
	SingleDay bool       `json:"single_day"`
}

// Blocking reports whether aggregation must be skipped.
func (r Result) Blocking() bool { return r.Status.Blocking() }

// Message renders a human-readable description of the status.
func (r Result) Message() string {
	switch r.Status {
	case StatusStartAfterEnd:
		return fmt.Sprintf("start date %s is after end date %s", r.Start, r.End)
	case StatusStartBeforeEarliest:
		return fmt.Sprintf("start date cannot precede the earliest recorded event (%s)", r.Earliest)
	case StatusStartAfterLatest:
		return fmt.Sprintf("start date %s is after the latest recorded event (%s)", r.Start, r.Latest)
	case StatusNoDataAfter:
		return fmt.Sprintf("no data after %s", r.Latest)
	case StatusEmptyLog:
		return "no attendance recorded yet"
	default:
		return ""
	}
}

// Err returns nil for non-blocking results, otherwise an error wrapping the
// status sentinel and ErrInvalidRange.
func (r Result) Err() error {
	var kind error
	switch r.Status {
	case StatusStartAfterEnd:
		kind = ErrStartAfterEnd
	case StatusStartBeforeEarliest:
		kind = ErrStartBeforeEarliest
	case StatusStartAfterLatest:
		kind = ErrStartAfterLatest
	default:
		return nil
	}
	return fmt.Errorf("%w: %s", kind, r.Message())
}

// Validate checks [start, end] against log. Rules apply in order:
// start <= end, start >= earliest, start <= latest; then end > latest is
// reported as StatusNoDataAfter. SingleDay is set whenever start == end.
func Validate(log *model.EventLog, start, end model.Date) Result {
	res := Result{
		Status:    StatusOK,
		Start:     start,
		End:       end,
		SingleDay: start == end,
	}
	if start.After(end) {
		res.Status = StatusStartAfterEnd
		return res
	}
	earliest, ok := log.MinDate()
	if !ok {
		res.Status = StatusEmptyLog
		return res
	}
	latest, _ := log.MaxDate()
	res.Earliest, res.Latest = earliest, latest

	switch {
	case start.Before(earliest):
		res.Status = StatusStartBeforeEarliest
	case start.After(latest):
		res.Status = StatusStartAfterLatest
	case end.After(latest):
		res.Status = StatusNoDataAfter
	}
	return res
}

// Filter returns the records with start <= date <= end. It does not validate.
func Filter(log *model.EventLog, start, end model.Date) *model.EventLog {
	return log.Select(func(r model.Record) bool {
		return !r.Date.Before(start) && !r.Date.After(end)
	})
}

// Contains reports whether d lies in [start, end].
func Contains(d, start, end model.Date) bool {
	return !d.Before(start) && !d.After(end)
}
