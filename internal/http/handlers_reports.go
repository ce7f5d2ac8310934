package http

import (
	"net/http"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/export"
)

type monthSummaryResponse struct {
	MonthKey         string                `json:"month_key"`
	MonthName        string                `json:"month_name"`
	OpeningBalance   int64                 `json:"opening_balance"`
	TotalIncome      int64                 `json:"total_income"`
	TotalExpense     int64                 `json:"total_expense"`
	ClosingBalance   int64                 `json:"closing_balance"`
	Formatted        monthFormatted        `json:"formatted"`
	TransactionCount int                   `json:"transaction_count"`
	Transactions     []transactionResponse `json:"transactions"`
}

type monthFormatted struct {
	OpeningBalance string `json:"opening_balance"`
	TotalIncome    string `json:"total_income"`
	TotalExpense   string `json:"total_expense"`
	ClosingBalance string `json:"closing_balance"`
}

func toMonthSummaryResponse(report core.Report, ms *core.MonthlySummary) monthSummaryResponse {
	opening := report.Opening(ms.MonthKey)
	return monthSummaryResponse{
		MonthKey:       string(ms.MonthKey),
		MonthName:      ms.MonthKey.MonthName(),
		OpeningBalance: opening,
		TotalIncome:    ms.TotalIncome,
		TotalExpense:   ms.TotalExpense,
		ClosingBalance: ms.ClosingBalance,
		Formatted: monthFormatted{
			OpeningBalance: core.FormatRupiah(opening),
			TotalIncome:    core.FormatRupiah(ms.TotalIncome),
			TotalExpense:   core.FormatRupiah(ms.TotalExpense),
			ClosingBalance: core.FormatRupiah(ms.ClosingBalance),
		},
		TransactionCount: len(ms.Transactions),
		Transactions:     toTransactionResponses(ms.Transactions),
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Refresh(r.Context()); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	report := s.ledger.Report()
	cur := report.CurrentMonth
	writeJSON(w, http.StatusOK, map[string]any{
		"total_balance":           report.TotalBalance,
		"total_balance_formatted": core.FormatRupiah(report.TotalBalance),
		"current_month": map[string]any{
			"month_key":               string(cur.MonthKey),
			"month_name":              cur.MonthKey.MonthName(),
			"total_income":            cur.TotalIncome,
			"total_income_formatted":  core.FormatRupiah(cur.TotalIncome),
			"total_expense":           cur.TotalExpense,
			"total_expense_formatted": core.FormatRupiah(cur.TotalExpense),
			"transaction_count":       len(cur.Transactions),
		},
	})
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Refresh(r.Context()); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	report := s.ledger.Report()

	months := report.Descending()
	if year := r.URL.Query().Get("year"); year != "" {
		months = report.ForYear(year)
	}

	out := make([]monthSummaryResponse, 0, len(months))
	for _, ms := range months {
		out = append(out, toMonthSummaryResponse(report, ms))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"months": out,
		"years":  report.Years(),
	})
}

func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request) {
	month := core.MonthKey(r.PathValue("month"))
	if !month.Valid() {
		writeError(w, http.StatusBadRequest, "month must be formatted YYYY-MM")
		return
	}

	if err := s.ledger.Refresh(r.Context()); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	text, err := export.RecapText(s.ledger.Report(), month)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"month_key": string(month),
		"recap":     text,
	})
}
