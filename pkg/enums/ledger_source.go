package enums

import "fmt"

// LedgerSource maps to the ledger_source enum in Postgres. Every points
// movement carries exactly one source describing the activity that produced it.
type LedgerSource string

const (
	LedgerSourceCheckIn       LedgerSource = "check_in"
	LedgerSourceChallenge     LedgerSource = "challenge"
	LedgerSourceQuiz          LedgerSource = "quiz"
	LedgerSourceEvent         LedgerSource = "event"
	LedgerSourcePlastic       LedgerSource = "plastic"
	LedgerSourceStorePurchase LedgerSource = "store_purchase"
	LedgerSourceAdjustment    LedgerSource = "adjustment"
)

var validLedgerSources = []LedgerSource{
	LedgerSourceCheckIn,
	LedgerSourceChallenge,
	LedgerSourceQuiz,
	LedgerSourceEvent,
	LedgerSourcePlastic,
	LedgerSourceStorePurchase,
	LedgerSourceAdjustment,
}

// IsValid reports whether the value matches the canonical ledger source enum.
func (s LedgerSource) IsValid() bool {
	for _, candidate := range validLedgerSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLedgerSource converts raw input into LedgerSource.
func ParseLedgerSource(value string) (LedgerSource, error) {
	for _, candidate := range validLedgerSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger source %q", value)
}
