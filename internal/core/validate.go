package core

import (
	"strings"
	"time"
)

// TransactionDraft is a candidate record as it arrives from the outside,
// before any identity or audit fields exist.
type TransactionDraft struct {
	Description   string
	Kind          Kind
	Amount        int64
	OccurredAt    time.Time
	AttendeeCount *int
}

// ValidationResult carries every rule violation found in a draft, in rule
// order. It is the recoverable error kind: the caller shows the messages
// and lets the user resubmit.
type ValidationResult struct {
	Errors []string
}

func (v ValidationResult) Valid() bool {
	return len(v.Errors) == 0
}

// Error makes the result usable where a single error value is expected.
// Empty results must not be treated as errors; callers check Valid first.
func (v ValidationResult) Error() string {
	return strings.Join(v.Errors, "; ")
}

// ValidateDraft checks a candidate transaction against the field rules.
// Every rule is evaluated independently so the user sees all problems at
// once instead of fixing them one submit at a time. Total and
// deterministic: no panics, no side effects.
func ValidateDraft(d TransactionDraft) ValidationResult {
	var res ValidationResult

	if strings.TrimSpace(d.Description) == "" {
		res.Errors = append(res.Errors, ErrEmptyDescription.Error())
	}

	if d.Kind == KindIncome && (d.AttendeeCount == nil || *d.AttendeeCount < 1) {
		res.Errors = append(res.Errors, ErrInvalidAttendees.Error())
	}

	if d.Amount < MinAmount {
		res.Errors = append(res.Errors, ErrInvalidAmount.Error())
	}

	return res
}
