package types

import "fmt"

// Mode selects how many fields the customization form shows.
type Mode string

// Editing modes. Basic shows the category's curated subset; full shows every
// resolved field.
const (
	ModeBasic Mode = "basic"
	ModeFull  Mode = "full"
)

// ParseMode converts s to a Mode. An empty string selects ModeFull.
// Returns ErrInvalidMode for anything else.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeFull:
		return ModeFull, nil
	case ModeBasic:
		return ModeBasic, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}
