// Package core provides the pure domain of the cash book: money handling,
// month keys, transaction records, validation and report aggregation.
//
// This file contains rupiah parsing and display formatting. Amounts are
// whole-unit IDR integers; there is no fractional part anywhere.
package core

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// FormatRupiah renders an amount the way the id-ID locale does:
// "Rp 1.000" with dots as thousands separators and no decimals.
//
// Examples:
//
//	FormatRupiah(0)        -> "Rp 0"
//	FormatRupiah(1500000)  -> "Rp 1.500.000"
//	FormatRupiah(-30000)   -> "-Rp 30.000"
func FormatRupiah(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}

// ParseRupiah extracts the integer amount from user input that may carry
// the "Rp" prefix, separators or stray whitespace. Input with no digits
// parses to zero, matching the permissive behavior of the form layer:
// the validator rejects zero later with a proper message.
func ParseRupiah(s string) int64 {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	v, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		// More digits than int64 holds; treat as unparseable.
		return 0
	}
	return v
}

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// MonthName returns the Indonesian month name for a key, e.g. "Maret 2024".
// Malformed keys are returned unchanged so they stay visible in reports.
func (m MonthKey) MonthName() string {
	t, err := time.Parse("2006-01", string(m))
	if err != nil {
		return string(m)
	}
	return indonesianMonths[int(t.Month())-1] + " " + strconv.Itoa(t.Year())
}

// FormatDate renders a timestamp for display, id-ID style: "02 Januari 2024 15:04".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 ") + indonesianMonths[int(t.Month())-1] + t.Format(" 2006 15:04")
}

// FormatDateShort renders just the calendar date: "02 Januari 2024".
func FormatDateShort(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 ") + indonesianMonths[int(t.Month())-1] + t.Format(" 2006")
}
