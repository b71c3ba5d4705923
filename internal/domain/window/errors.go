package window

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. Every range error also matches ErrInvalidRange.
var (
	ErrInvalidRange        = errors.New("invalid date range")
	ErrStartAfterEnd       = fmt.Errorf("%w: start after end", ErrInvalidRange)
	ErrStartBeforeEarliest = fmt.Errorf("%w: start before earliest", ErrInvalidRange)
	ErrStartAfterLatest    = fmt.Errorf("%w: start after latest", ErrInvalidRange)
)
