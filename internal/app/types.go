package service

import (
	"time"

	"github.com/okian/rollcall/internal/domain/model"
	"github.com/okian/rollcall/internal/domain/window"
)

// SummaryRequest selects an inclusive range. Nil bounds are filled in from
// the configured default start and the log's earliest and latest dates.
type SummaryRequest struct {
	Start *model.Date
	End   *model.Date
}

// Summary is everything the dashboard renders for one range.
type Summary struct {
	Start         model.Date         `json:"start"`
	End           model.Date         `json:"end"`
	Validity      window.Result      `json:"validity"`
	Message       string             `json:"message,omitempty"`
	SingleDay     bool               `json:"single_day"`
	Records       []model.Record     `json:"records,omitempty"`
	TopAttendance []model.NameCount  `json:"top_attendance"`
	TopPromptness []model.NameCount  `json:"top_promptness"`
	Daily         []model.DailyCount `json:"daily"`
	Latest        model.Date         `json:"latest"`
	RefreshedAt   time.Time          `json:"refreshed_at"`
}
