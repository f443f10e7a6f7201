package docload

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how a round writes the corpus.
type Mode int

const (
	// ModeBatched writes splits with one batch call each and overlaps rounds.
	ModeBatched Mode = iota

	// ModePerItem writes every document concurrently and serializes rounds.
	ModePerItem
)

// Default document name prefixes per mode.
const (
	DefaultBatchedURIBase = "/performance/restbatch/"
	DefaultPerItemURIBase = "/performance/restfast/"
)

// Default completion polling periods per mode.
const (
	DefaultBatchedPollInterval = 200 * time.Millisecond
	DefaultPerItemPollInterval = 500 * time.Millisecond
)

func (m Mode) String() string {
	switch m {
	case ModeBatched:
		return "batch"
	case ModePerItem:
		return "item"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name. Accepted names are "batch" and "item"
// plus the aliases "batched", "per-item" and "fast".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "batch", "batched":
		return ModeBatched, nil
	case "item", "per-item", "peritem", "fast":
		return ModePerItem, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// URIBase returns the default document name prefix of the mode.
func (m Mode) URIBase() string {
	if m == ModePerItem {
		return DefaultPerItemURIBase
	}
	return DefaultBatchedURIBase
}

// PollInterval returns the default completion polling period of the mode.
func (m Mode) PollInterval() time.Duration {
	if m == ModePerItem {
		return DefaultPerItemPollInterval
	}
	return DefaultBatchedPollInterval
}
