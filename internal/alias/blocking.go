package alias

import (
	"fmt"
	"strings"
)

// BlockingMode is the three-valued view over an alias's enabled and
// block_list_emails flags.
//
// The ordinal order ALL < PROMOTIONS < NONE is the sort order of the
// blocking column.
type BlockingMode int

const (
	// BlockAll drops every message (enabled=false).
	BlockAll BlockingMode = iota
	// BlockPromotions drops bulk and list mail (enabled=true, block_list_emails=true).
	BlockPromotions
	// BlockNone forwards everything (enabled=true, block_list_emails=false).
	BlockNone
)

// BlockingModes lists every mode in ordinal order.
var BlockingModes = []BlockingMode{BlockAll, BlockPromotions, BlockNone}

// BlockingFromFlags decodes the two API booleans into a BlockingMode.
// enabled=false dominates regardless of blockList.
func BlockingFromFlags(enabled, blockList bool) BlockingMode {
	switch {
	case !enabled:
		return BlockAll
	case blockList:
		return BlockPromotions
	default:
		return BlockNone
	}
}

// Flags encodes the mode back into (enabled, block_list_emails).
func (m BlockingMode) Flags() (enabled, blockList bool) {
	switch m {
	case BlockAll:
		return false, true
	case BlockPromotions:
		return true, true
	default:
		return true, false
	}
}

// String returns the upper-case label used in prompts and plain output.
func (m BlockingMode) String() string {
	switch m {
	case BlockAll:
		return "ALL"
	case BlockPromotions:
		return "PROMOTIONS"
	case BlockNone:
		return "NONE"
	default:
		return fmt.Sprintf("BlockingMode(%d)", int(m))
	}
}

// Valid reports whether m is one of the three defined modes.
func (m BlockingMode) Valid() bool {
	return m >= BlockAll && m <= BlockNone
}

// ParseBlockingMode parses a mode label case-insensitively.
func ParseBlockingMode(s string) (BlockingMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ALL":
		return BlockAll, nil
	case "PROMOTIONS":
		return BlockPromotions, nil
	case "NONE":
		return BlockNone, nil
	}
	return 0, &ValidationError{
		Field:  "blocking",
		Value:  s,
		Reason: "must be one of ALL, PROMOTIONS, NONE",
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m BlockingMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid blocking mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *BlockingMode) UnmarshalText(text []byte) error {
	parsed, err := ParseBlockingMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
