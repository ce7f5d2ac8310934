package core

import (
	"math/rand"
	"testing"
	"time"
)

func tx(kind Kind, amount int64, month MonthKey, day int) Transaction {
	t, _ := time.Parse("2006-01", string(month))
	return Transaction{
		ID:         string(month) + "-" + string(kind),
		Kind:       kind,
		Amount:     Money{Rupiah: amount},
		OccurredAt: t.AddDate(0, 0, day-1),
		MonthKey:   month,
	}
}

var fixedNow = time.Date(2024, time.February, 20, 12, 0, 0, 0, time.UTC)

func TestAggregateScenario(t *testing.T) {
	records := []Transaction{
		tx(KindIncome, 100000, "2024-01", 7),
		tx(KindExpense, 30000, "2024-01", 14),
		tx(KindIncome, 50000, "2024-02", 4),
	}

	rep := Aggregate(records, fixedNow)

	jan := rep.Months["2024-01"]
	if jan == nil {
		t.Fatal("missing 2024-01 summary")
	}
	if jan.TotalIncome != 100000 || jan.TotalExpense != 30000 || jan.ClosingBalance != 70000 {
		t.Fatalf("2024-01: got income=%d expense=%d closing=%d",
			jan.TotalIncome, jan.TotalExpense, jan.ClosingBalance)
	}

	feb := rep.Months["2024-02"]
	if feb == nil {
		t.Fatal("missing 2024-02 summary")
	}
	if feb.TotalIncome != 50000 || feb.TotalExpense != 0 || feb.ClosingBalance != 120000 {
		t.Fatalf("2024-02: got income=%d expense=%d closing=%d",
			feb.TotalIncome, feb.TotalExpense, feb.ClosingBalance)
	}

	if rep.TotalBalance != 120000 {
		t.Fatalf("total balance: expected 120000, got %d", rep.TotalBalance)
	}

	// now falls in February, so the dashboard summary is February's.
	if rep.CurrentMonth.MonthKey != "2024-02" || rep.CurrentMonth.TotalIncome != 50000 {
		t.Fatalf("current month: got %+v", rep.CurrentMonth)
	}
}

func TestAggregateEmpty(t *testing.T) {
	rep := Aggregate(nil, fixedNow)
	if len(rep.Months) != 0 || len(rep.Ascending) != 0 {
		t.Fatalf("expected empty report, got %d months", len(rep.Months))
	}
	if rep.TotalBalance != 0 {
		t.Fatalf("expected zero balance, got %d", rep.TotalBalance)
	}
	if rep.Opening("2024-01") != 0 {
		t.Fatal("opening of any month in an empty report must be 0")
	}
}

func TestAggregatePermutationInvariant(t *testing.T) {
	records := []Transaction{
		tx(KindIncome, 100000, "2024-01", 1),
		tx(KindExpense, 30000, "2024-01", 8),
		tx(KindIncome, 50000, "2024-02", 2),
		tx(KindExpense, 120000, "2024-03", 3),
		tx(KindIncome, 90000, "2023-11", 20),
	}
	want := Aggregate(records, fixedNow)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 25; i++ {
		shuffled := make([]Transaction, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := Aggregate(shuffled, fixedNow)
		if got.TotalBalance != want.TotalBalance {
			t.Fatalf("permutation %d: total balance changed", i)
		}
		if len(got.Ascending) != len(want.Ascending) {
			t.Fatalf("permutation %d: month count changed", i)
		}
		for j := range want.Ascending {
			w, g := want.Ascending[j], got.Ascending[j]
			if w.MonthKey != g.MonthKey || w.TotalIncome != g.TotalIncome ||
				w.TotalExpense != g.TotalExpense || w.ClosingBalance != g.ClosingBalance {
				t.Fatalf("permutation %d: month %s diverged: %+v vs %+v", i, w.MonthKey, w, g)
			}
		}
	}
}

func TestAggregateCrossCheck(t *testing.T) {
	records := []Transaction{
		tx(KindIncome, 75000, "2023-12", 3),
		tx(KindExpense, 20000, "2024-01", 5),
		tx(KindExpense, 15000, "2024-01", 9),
		tx(KindIncome, 40000, "2024-03", 1),
	}
	rep := Aggregate(records, fixedNow)

	var sumIncome, sumExpense int64
	for _, ms := range rep.Ascending {
		sumIncome += ms.TotalIncome
		sumExpense += ms.TotalExpense
	}
	if sumIncome-sumExpense != rep.TotalBalance {
		t.Fatalf("cross-check failed: %d - %d != %d", sumIncome, sumExpense, rep.TotalBalance)
	}
}

func TestAggregateRunningBalanceRecurrence(t *testing.T) {
	records := []Transaction{
		tx(KindIncome, 10000, "2024-01", 1),
		tx(KindExpense, 4000, "2024-02", 1),
		tx(KindIncome, 2500, "2024-04", 1), // gap: no 2024-03
		tx(KindExpense, 9000, "2024-05", 1),
	}
	rep := Aggregate(records, fixedNow)

	var prev int64
	for _, ms := range rep.Ascending {
		want := prev + ms.TotalIncome - ms.TotalExpense
		if ms.ClosingBalance != want {
			t.Fatalf("%s: closing %d, expected %d", ms.MonthKey, ms.ClosingBalance, want)
		}
		prev = ms.ClosingBalance
	}
}

func TestAggregateExpensesOnlyMonth(t *testing.T) {
	records := []Transaction{
		tx(KindIncome, 50000, "2024-01", 2),
		tx(KindExpense, 20000, "2024-02", 2),
	}
	rep := Aggregate(records, fixedNow)

	feb := rep.Months["2024-02"]
	if feb.TotalIncome != 0 {
		t.Fatalf("expected zero income, got %d", feb.TotalIncome)
	}
	if feb.ClosingBalance != 30000 {
		t.Fatalf("balance must decrease: expected 30000, got %d", feb.ClosingBalance)
	}
}

// A record whose stored month key disagrees with its date is grouped under
// the stored key. The engine surfaces drift, it does not repair it.
func TestAggregateUsesStoredMonthKey(t *testing.T) {
	drifted := Transaction{
		ID:         "drifted",
		Kind:       KindIncome,
		Amount:     Money{Rupiah: 10000},
		OccurredAt: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		MonthKey:   "2024-02",
	}
	rep := Aggregate([]Transaction{drifted}, fixedNow)

	if _, ok := rep.Months["2024-03"]; ok {
		t.Fatal("drifted record must not appear under its date's month")
	}
	feb := rep.Months["2024-02"]
	if feb == nil || feb.TotalIncome != 10000 {
		t.Fatalf("drifted record must be grouped under stored key: %+v", feb)
	}
	if drifted.MonthKey.Matches(drifted.OccurredAt) {
		t.Fatal("fixture should actually drift")
	}
}

func TestReportOpening(t *testing.T) {
	records := []Transaction{
		tx(KindIncome, 100000, "2024-01", 1),
		tx(KindExpense, 30000, "2024-01", 2),
		tx(KindIncome, 50000, "2024-02", 1),
		tx(KindIncome, 10000, "2024-04", 1),
	}
	rep := Aggregate(records, fixedNow)

	if got := rep.Opening("2024-01"); got != 0 {
		t.Fatalf("first month opens at 0, got %d", got)
	}
	if got := rep.Opening("2024-02"); got != 70000 {
		t.Fatalf("2024-02 opening: expected 70000, got %d", got)
	}
	// 2024-03 is absent; it still carries 2024-02's closing balance.
	if got := rep.Opening("2024-04"); got != 120000 {
		t.Fatalf("2024-04 opening across gap: expected 120000, got %d", got)
	}
}

func TestReportDescendingAndYears(t *testing.T) {
	records := []Transaction{
		tx(KindIncome, 10000, "2023-12", 1),
		tx(KindIncome, 10000, "2024-01", 1),
		tx(KindIncome, 10000, "2024-03", 1),
	}
	rep := Aggregate(records, fixedNow)

	desc := rep.Descending()
	if desc[0].MonthKey != "2024-03" || desc[len(desc)-1].MonthKey != "2023-12" {
		t.Fatalf("descending order wrong: %s .. %s", desc[0].MonthKey, desc[len(desc)-1].MonthKey)
	}

	years := rep.Years()
	if len(years) != 2 || years[0] != "2024" || years[1] != "2023" {
		t.Fatalf("unexpected years: %v", years)
	}

	only2024 := rep.ForYear("2024")
	if len(only2024) != 2 || only2024[0].MonthKey != "2024-03" {
		t.Fatalf("unexpected 2024 filter: %d months", len(only2024))
	}
}
