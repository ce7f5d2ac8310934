package export

import (
	"fmt"
	"strings"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
)

// RecapText builds the copyable monthly recap. The opening balance is the
// closing balance of the latest earlier month in the report, zero when the
// month is the first one on record. Zero totals are marked with a dash the
// way the treasurers write it by hand.
func RecapText(report core.Report, month core.MonthKey) (string, error) {
	summary, ok := report.Months[month]
	if !ok {
		return "", fmt.Errorf("no transactions recorded for %s", month)
	}

	var b strings.Builder
	b.WriteString("Laporan kas\n")
	b.WriteString(month.MonthName())
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Saldo awal : %s\n", core.FormatRupiah(report.Opening(month)))
	fmt.Fprintf(&b, "Pemasukan : %s%s\n", core.FormatRupiah(summary.TotalIncome), zeroMark(summary.TotalIncome))
	fmt.Fprintf(&b, "Pengeluaran : %s%s\n", core.FormatRupiah(summary.TotalExpense), zeroMark(summary.TotalExpense))
	fmt.Fprintf(&b, "Saldo akhir %s : %s", month.MonthName(), core.FormatRupiah(summary.ClosingBalance))

	return b.String(), nil
}

func zeroMark(amount int64) string {
	if amount == 0 {
		return " / -"
	}
	return ""
}
