package enums

import "fmt"

// TickType maps to the tick_type enum in Postgres. It is the verification
// badge tier shown beside a user's name.
type TickType string

const (
	TickTypeNone  TickType = "none"
	TickTypeGreen TickType = "green"
	TickTypeBlue  TickType = "blue"
	TickTypeGold  TickType = "gold"
)

var validTickTypes = []TickType{
	TickTypeNone,
	TickTypeGreen,
	TickTypeBlue,
	TickTypeGold,
}

// IsValid reports whether the value matches the canonical tick type enum.
func (t TickType) IsValid() bool {
	for _, candidate := range validTickTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTickType converts raw input into TickType.
func ParseTickType(value string) (TickType, error) {
	for _, candidate := range validTickTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tick type %q", value)
}
