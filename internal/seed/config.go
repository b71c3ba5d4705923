package seed

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/rollcall/internal/domain/model"
)

// Generation defaults.
const (
	DefaultUsers          = 25
	DefaultDays           = 30
	DefaultAttendProb     = 0.6
	DefaultDuplicateRatio = 0.05
	DefaultInvalidRatio   = 0.02
	DefaultTopK           = 7
	DefaultTimeout        = 30 * time.Second
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid seed config")

// Config holds generation parameters.
type Config struct {
	Users          int        // Distinct attendees
	Days           int        // Consecutive days starting at Start
	Start          model.Date // First generated day
	AttendProb     float64    // Chance a user checks in on a given day
	DuplicateRatio float64    // Extra rows repeating an existing (name, date)
	InvalidRatio   float64    // Extra rows with a bad date or empty name
	Seed           uint64     // Zero picks a random seed
}

// DefaultConfig returns the generator defaults starting on 2024-04-24.
func DefaultConfig() Config {
	return Config{
		Users:          DefaultUsers,
		Days:           DefaultDays,
		Start:          model.NewDate(2024, time.April, 24),
		AttendProb:     DefaultAttendProb,
		DuplicateRatio: DefaultDuplicateRatio,
		InvalidRatio:   DefaultInvalidRatio,
	}
}

// Validate checks ranges.
func (c Config) Validate() error {
	switch {
	case c.Users <= 0:
		return fmt.Errorf("%w: users must be positive", ErrInvalidConfig)
	case c.Days <= 0:
		return fmt.Errorf("%w: days must be positive", ErrInvalidConfig)
	case c.Start.IsZero():
		return fmt.Errorf("%w: start date is required", ErrInvalidConfig)
	case c.AttendProb < 0 || c.AttendProb > 1:
		return fmt.Errorf("%w: attend probability must be within [0, 1]", ErrInvalidConfig)
	case c.DuplicateRatio < 0 || c.InvalidRatio < 0:
		return fmt.Errorf("%w: ratios must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Stats describes one generated data set.
type Stats struct {
	RunID      string
	Seed       uint64
	Valid      int // Distinct (name, date) check-ins
	Duplicates int
	Invalid    int
	Total      int
}
