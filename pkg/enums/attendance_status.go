package enums

import "fmt"

// AttendanceStatus maps to the attendance_status enum in Postgres.
type AttendanceStatus string

const (
	AttendanceStatusRegistered AttendanceStatus = "registered"
	AttendanceStatusAttended   AttendanceStatus = "attended"
)

var validAttendanceStatuses = []AttendanceStatus{
	AttendanceStatusRegistered,
	AttendanceStatusAttended,
}

// IsValid reports whether the value matches the canonical attendance status enum.
func (s AttendanceStatus) IsValid() bool {
	for _, candidate := range validAttendanceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAttendanceStatus converts raw input into AttendanceStatus.
func ParseAttendanceStatus(value string) (AttendanceStatus, error) {
	for _, candidate := range validAttendanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attendance status %q", value)
}
