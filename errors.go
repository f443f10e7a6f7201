package docload

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRounds is returned when the round count is negative.
	ErrInvalidRounds = errors.New("rounds must not be negative")

	// ErrInvalidSplitSize is returned when the split size is not positive.
	ErrInvalidSplitSize = errors.New("split size must be positive")

	// ErrInvalidCeiling is returned when the in-flight round ceiling is not positive.
	ErrInvalidCeiling = errors.New("ceiling must be positive")

	// ErrInvalidPollInterval is returned when the poll interval is negative.
	ErrInvalidPollInterval = errors.New("poll interval must not be negative")

	// ErrInvalidMode is returned for an unknown mode name.
	ErrInvalidMode = errors.New("invalid mode")

	// ErrNoCorpus is returned when no corpus is given.
	ErrNoCorpus = errors.New("corpus is required")

	// ErrNoStore is returned when no store pool is given.
	ErrNoStore = errors.New("store pool is required")
)

// RoundError reports the failed writes of one round.
//
// The first underlying write error can be accessed via errors.Unwrap.
type RoundError struct {
	Round  int
	Failed int
	Total  int
	cause  error
}

func (e *RoundError) Error() string {
	return fmt.Sprintf("round %d: %d of %d writes failed: %v", e.Round, e.Failed, e.Total, e.cause)
}

func (e *RoundError) Unwrap() error { return e.cause }
