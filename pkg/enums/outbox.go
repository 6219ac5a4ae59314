package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateUser                OutboxAggregateType = "user"
	AggregateLedgerEntry         OutboxAggregateType = "ledger_entry"
	AggregateDailyCheckin        OutboxAggregateType = "daily_checkin"
	AggregateChallengeSubmission OutboxAggregateType = "challenge_submission"
	AggregateQuizSubmission      OutboxAggregateType = "quiz_submission"
	AggregateEventAttendance     OutboxAggregateType = "event_attendance"
	AggregateOrder               OutboxAggregateType = "order"
	AggregateUserStreak          OutboxAggregateType = "user_streak"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateUser,
	AggregateLedgerEntry,
	AggregateDailyCheckin,
	AggregateChallengeSubmission,
	AggregateQuizSubmission,
	AggregateEventAttendance,
	AggregateOrder,
	AggregateUserStreak,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventUserRegistered     OutboxEventType = "user_registered"
	EventCheckinRecorded    OutboxEventType = "checkin_recorded"
	EventChallengeSubmitted OutboxEventType = "challenge_submitted"
	EventQuizAnswered       OutboxEventType = "quiz_answered"
	EventEventRSVPed        OutboxEventType = "event_rsvped"
	EventEventAttended      OutboxEventType = "event_attended"
	EventPlasticLogged      OutboxEventType = "plastic_logged"
	EventPointsAwarded      OutboxEventType = "points_awarded"
	EventPointsRedeemed     OutboxEventType = "points_redeemed"
	EventStreakReset        OutboxEventType = "streak_reset"
)

var validOutboxEventTypes = []OutboxEventType{
	EventUserRegistered,
	EventCheckinRecorded,
	EventChallengeSubmitted,
	EventQuizAnswered,
	EventEventRSVPed,
	EventEventAttended,
	EventPlasticLogged,
	EventPointsAwarded,
	EventPointsRedeemed,
	EventStreakReset,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
