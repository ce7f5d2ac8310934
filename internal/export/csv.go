// Package export renders ledger data into downloadable and copyable forms:
// a CSV matching the layout of the group's old workbook, and the plain-text
// monthly recap that gets pasted into the group chat.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
)

// csvHeader matches the column layout of the exported workbook.
var csvHeader = []string{"Tanggal", "Keterangan", "Anggota", "Nominal", "Tipe", "Petugas"}

// WriteCSV writes the records as CSV, one row per transaction in the order
// given. Dates are id-ID formatted; amounts are bare numbers so spreadsheets
// treat them as numeric.
func WriteCSV(w io.Writer, records []core.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, tx := range records {
		if err := cw.Write(csvRow(tx)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func csvRow(tx core.Transaction) []string {
	description := tx.Description
	if description == "" {
		description = "-"
	}

	// Attendee count only applies to income rows
	attendees := "-"
	if tx.Kind == core.KindIncome && tx.AttendeeCount != nil {
		attendees = strconv.Itoa(*tx.AttendeeCount)
	}

	kind := "Keluar"
	if tx.Kind == core.KindIncome {
		kind = "Masuk"
	}

	// Prefer the last editor, fall back to the creator
	officer := tx.UpdatedBy.Name
	if officer == "" {
		officer = tx.CreatedBy.Name
	}
	if officer == "" {
		officer = "-"
	}

	return []string{
		core.FormatDateShort(tx.OccurredAt),
		description,
		attendees,
		strconv.FormatInt(tx.Amount.Rupiah, 10),
		kind,
		officer,
	}
}
