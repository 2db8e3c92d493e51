package types

import (
	"time"

	"github.com/google/uuid"
)

// newV7 panics on clock regression (uuid.Must); acceptable for ID generation.
func newV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewFormID generates a UUIDv7 form identifier.
func NewFormID() FormID { return FormID(newV7()) }

// NewStepID generates a UUIDv7 step identifier.
func NewStepID() StepID { return StepID(newV7()) }

// NewFieldID generates a UUIDv7 field identifier.
func NewFieldID() FieldID { return FieldID(newV7()) }

// NewOptionID generates a UUIDv7 option identifier.
func NewOptionID() OptionID { return OptionID(newV7()) }

// NewSubmissionID generates a UUIDv7 submission identifier.
// Time-ordered IDs keep submission listings in insertion order.
func NewSubmissionID() SubmissionID { return SubmissionID(newV7()) }

// ParseFormID validates and converts a string to FormID.
func ParseFormID(s string) (FormID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return FormID(s), nil
}

// ParseStepID validates and converts a string to StepID.
func ParseStepID(s string) (StepID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return StepID(s), nil
}

// ParseSubmissionID validates and converts a string to SubmissionID.
func ParseSubmissionID(s string) (SubmissionID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return SubmissionID(s), nil
}

// SubmissionTime extracts the timestamp embedded in a UUIDv7 submission ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func SubmissionTime(id SubmissionID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
