package source

import (
	"errors"
	"fmt"
)

// Sentinel kinds for source errors.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrMissingColumn     = errors.New("required column missing")
	ErrUnexpectedStatus  = errors.New("unexpected http status")
	ErrUnknownKind       = errors.New("unknown source kind")
)

func unavailable(name string, err error) error {
	if errors.Is(err, ErrSourceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, name, err)
}

func missingColumn(name string) error {
	return fmt.Errorf("%w: %q", ErrMissingColumn, name)
}
