package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"

	RoleStandard Role = "standard"
	RoleElevated Role = "elevated"
)

// MinAmount is the smallest nominal accepted for a transaction, in whole rupiah.
const MinAmount int64 = 1000

type (
	// Kind classifies a transaction as money coming in or going out.
	Kind string

	// Role is the access level of an authenticated actor. Elevated actors
	// (source term "pengurus") may mutate the ledger; standard actors
	// ("anggota"/"jemaat") are read-only.
	Role string

	// Money is a rupiah amount in whole units. IDR carries no minor unit
	// here, so no cents conversion is ever applied.
	Money struct {
		Rupiah int64
	}

	// MonthKey identifies the calendar month a transaction is attributed
	// to, formatted as zero-padded "YYYY-MM" so lexicographic order equals
	// chronological order.
	MonthKey string

	// Actor identifies who performed a write, for audit display.
	Actor struct {
		ID   string
		Name string
	}

	// Transaction is one ledger entry. MonthKey is a stored denormalization
	// of OccurredAt's year-month: the write path recomputes it on every
	// create and update, and readers trust the stored value.
	Transaction struct {
		ID            string
		Description   string
		Kind          Kind
		Amount        Money
		OccurredAt    time.Time
		MonthKey      MonthKey
		AttendeeCount *int
		CreatedBy     Actor
		UpdatedBy     Actor
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("amount must be at least 1000")
	ErrEmptyDescription = errors.New("description required")
	ErrInvalidAttendees = errors.New("attendee count must be at least 1")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidRole      = errors.New("invalid role")
)

// ParseKind checks external input against the closed Kind enumeration.
// The legacy Indonesian values are accepted so documents written by the
// old client keep loading.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "pemasukan":
		return KindIncome, nil
	case "expense", "pengeluaran":
		return KindExpense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// ParseRole checks external input against the closed Role enumeration.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "elevated", "pengurus":
		return RoleElevated, nil
	case "standard", "anggota", "jemaat":
		return RoleStandard, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleElevated
}

// Signed returns the amount with income positive and expense negative.
func (t Transaction) Signed() int64 {
	if t.Kind == KindIncome {
		return t.Amount.Rupiah
	}
	return -t.Amount.Rupiah
}

func (m Money) Validate() error {
	if m.Rupiah < MinAmount {
		return ErrInvalidAmount
	}
	return nil
}

// MonthKeyOf derives the month key for a point in time.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey(t.Format("2006-01"))
}

// Valid reports whether the key is well-formed "YYYY-MM".
func (m MonthKey) Valid() bool {
	_, err := time.Parse("2006-01", string(m))
	return err == nil
}

// Prev returns the key of the preceding calendar month.
func (m MonthKey) Prev() MonthKey {
	t, err := time.Parse("2006-01", string(m))
	if err != nil {
		return ""
	}
	return MonthKey(t.AddDate(0, -1, 0).Format("2006-01"))
}

// Year returns the "YYYY" part of the key.
func (m MonthKey) Year() string {
	if len(m) < 4 {
		return ""
	}
	return string(m[:4])
}

// Matches reports whether the stored key agrees with a timestamp's
// year-month. Aggregation never corrects a mismatch, but callers can use
// this to surface drift.
func (m MonthKey) Matches(t time.Time) bool {
	return m == MonthKeyOf(t)
}
