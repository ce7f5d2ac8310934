package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/export"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/ledger"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/log"
)

// handleExportCSV streams the filtered ledger as a CSV download. The same
// query parameters as the transaction list apply, so a client exports
// exactly what it is looking at.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Refresh(r.Context()); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	query := r.URL.Query()
	q := ledger.Query{
		Search: query.Get("search"),
		Month:  core.MonthKey(query.Get("month")),
		Year:   query.Get("year"),
		Sort:   query.Get("sort"),
	}
	if raw := query.Get("kind"); raw != "" {
		kind, err := core.ParseKind(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		q.Kind = kind
	}

	records := s.ledger.Filter(q)

	filename := fmt.Sprintf("kas-pemuda-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteCSV(w, records); err != nil {
		// Headers are already out; all we can do is log the broken stream.
		s.logger.ErrorContext(r.Context(), "csv export failed",
			log.FieldError, err,
			log.FieldCount, len(records))
		return
	}

	s.logger.InfoContext(r.Context(), "csv exported",
		log.FieldCount, len(records),
		log.FieldUserID, requestUser(r).ID)
}
