package core

import (
	"sort"
	"time"
)

type (
	// MonthlySummary is the derived per-month rollup. It has no identity of
	// its own: summaries are discarded and regenerated on every refresh.
	MonthlySummary struct {
		MonthKey     MonthKey
		TotalIncome  int64
		TotalExpense int64
		// ClosingBalance is cumulative across all history through this
		// month, not month-local.
		ClosingBalance int64
		Transactions   []Transaction
	}

	// Report is the full aggregation output for one snapshot of the ledger.
	Report struct {
		// Months indexes summaries by their stored month key.
		Months map[MonthKey]*MonthlySummary
		// Ascending holds the summaries ordered oldest month first; this is
		// the order the running balance was computed in.
		Ascending []*MonthlySummary
		// TotalBalance is the signed sum over all records, computed
		// independently of the monthly walk as a cross-check.
		TotalBalance int64
		// CurrentMonth carries the wall-clock month's totals for the
		// dashboard. Zero-valued when that month has no records.
		CurrentMonth MonthlySummary
	}
)

// Aggregate groups the records by their stored month key, sums income and
// expense per month and walks the months in ascending key order carrying a
// running balance from zero.
//
// Grouping deliberately uses Transaction.MonthKey rather than recomputing
// from OccurredAt: a record whose two fields drifted apart is aggregated
// under the stored key, so the drift stays inspectable instead of being
// silently corrected.
//
// Input order does not matter. Grouping and summation are commutative, and
// the only order-sensitive step, the running-balance walk, depends solely on
// the sorted key set.
func Aggregate(records []Transaction, now time.Time) Report {
	rep := Report{Months: make(map[MonthKey]*MonthlySummary)}

	for _, t := range records {
		ms, ok := rep.Months[t.MonthKey]
		if !ok {
			ms = &MonthlySummary{MonthKey: t.MonthKey}
			rep.Months[t.MonthKey] = ms
		}
		ms.Transactions = append(ms.Transactions, t)
		switch t.Kind {
		case KindIncome:
			ms.TotalIncome += t.Amount.Rupiah
		case KindExpense:
			ms.TotalExpense += t.Amount.Rupiah
		}
		rep.TotalBalance += t.Signed()
	}

	rep.Ascending = make([]*MonthlySummary, 0, len(rep.Months))
	for _, ms := range rep.Months {
		rep.Ascending = append(rep.Ascending, ms)
	}
	// Zero-padded YYYY-MM keys: lexicographic order is chronological order.
	sort.Slice(rep.Ascending, func(i, j int) bool {
		return rep.Ascending[i].MonthKey < rep.Ascending[j].MonthKey
	})

	var running int64
	for _, ms := range rep.Ascending {
		running += ms.TotalIncome - ms.TotalExpense
		ms.ClosingBalance = running
	}

	cur := MonthKeyOf(now)
	rep.CurrentMonth = MonthlySummary{MonthKey: cur}
	if ms, ok := rep.Months[cur]; ok {
		rep.CurrentMonth = *ms
	}

	return rep
}

// Descending returns the summaries newest month first, the order reports
// are displayed in.
func (r Report) Descending() []*MonthlySummary {
	out := make([]*MonthlySummary, len(r.Ascending))
	for i, ms := range r.Ascending {
		out[len(out)-1-i] = ms
	}
	return out
}

// Opening returns the balance carried into a month: the closing balance of
// the latest earlier month present in the data, or 0 when there is none.
// A gap month simply carries the prior balance forward.
func (r Report) Opening(m MonthKey) int64 {
	var opening int64
	for _, ms := range r.Ascending {
		if ms.MonthKey >= m {
			break
		}
		opening = ms.ClosingBalance
	}
	return opening
}

// ForYear filters the descending view to months of one "YYYY" year.
func (r Report) ForYear(year string) []*MonthlySummary {
	var out []*MonthlySummary
	for _, ms := range r.Descending() {
		if ms.MonthKey.Year() == year {
			out = append(out, ms)
		}
	}
	return out
}

// Years lists the distinct years present in the data, newest first, for
// the report year filter.
func (r Report) Years() []string {
	seen := make(map[string]bool)
	var years []string
	for _, ms := range r.Ascending {
		y := ms.MonthKey.Year()
		if y != "" && !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}
