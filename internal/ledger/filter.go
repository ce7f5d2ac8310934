package ledger

import (
	"sort"
	"strings"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
)

// Sort orders accepted by Filter.
const (
	SortLatest  = "latest"
	SortOldest  = "oldest"
	SortHighest = "highest"
	SortLowest  = "lowest"
)

// Query narrows and orders the transaction list for display. Zero values
// mean "no constraint"; an unknown sort falls back to latest-first.
type Query struct {
	Search string
	Kind   core.Kind
	Month  core.MonthKey
	Year   string
	Sort   string
}

// Filter applies the query to the current snapshot. The result is a fresh
// slice; the snapshot itself is never reordered.
func (s *Store) Filter(q Query) []core.Transaction {
	records := s.Snapshot()

	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := records[:0:0]
	for _, tx := range records {
		if q.Kind != "" && tx.Kind != q.Kind {
			continue
		}
		if q.Month != "" && tx.MonthKey != q.Month {
			continue
		}
		if q.Year != "" && tx.MonthKey.Year() != q.Year {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(tx.Description), search) {
			continue
		}
		out = append(out, tx)
	}

	switch q.Sort {
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		})
	case SortHighest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Amount.Rupiah > out[j].Amount.Rupiah
		})
	case SortLowest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Amount.Rupiah < out[j].Amount.Rupiah
		})
	default: // SortLatest
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		})
	}

	return out
}
