package http

import (
	"net/http"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/ledger"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": toTransactionResponses(records),
		"count":        len(records),
	})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Refresh(r.Context()); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	tx, ok := s.ledger.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, ledger.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := req.toDraft()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	tx, err := s.ledger.Create(r.Context(), requestUser(r), draft)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "transaction created",
		log.FieldTransactionID, tx.ID,
		log.FieldMonthKey, string(tx.MonthKey),
		log.FieldUserID, requestUser(r).ID)

	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := req.toDraft()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	tx, err := s.ledger.Update(r.Context(), requestUser(r), r.PathValue("id"), draft)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "transaction updated",
		log.FieldTransactionID, tx.ID,
		log.FieldMonthKey, string(tx.MonthKey),
		log.FieldUserID, requestUser(r).ID)

	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.Delete(r.Context(), requestUser(r), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "transaction deleted",
		log.FieldTransactionID, id,
		log.FieldUserID, requestUser(r).ID)

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
