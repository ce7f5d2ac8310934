package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/auth"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/ledger"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/log"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
	SignOut bool     `json:"sign_out,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps domain errors onto HTTP statuses. Unrecognized
// errors are logged and reported as a generic 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var validation core.ValidationResult
	if errors.As(err, &validation) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation failed",
			Details: validation.Errors,
		})
		return
	}

	var persistence *ledger.PersistenceError
	if errors.As(err, &persistence) {
		s.logger.ErrorContext(r.Context(), "storage failure",
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
		writeError(w, http.StatusBadGateway, "storage unavailable, try again later")
		return
	}

	switch {
	case errors.Is(err, ledger.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrProfileNotFound):
		// The account behind the session is gone; the client must sign out.
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   err.Error(),
			SignOut: true,
		})
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrEmptyDisplayName):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.ErrorContext(r.Context(), "unhandled error",
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// amountField accepts either a bare number or a formatted rupiah string
// ("Rp 1.500.000") so clients can post back what they displayed.
type amountField int64

func (a *amountField) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountField(core.ParseRupiah(s))
		return nil
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return err
	}
	*a = amountField(n)
	return nil
}

type transactionRequest struct {
	Description   string      `json:"description"`
	Kind          string      `json:"kind"`
	Amount        amountField `json:"amount"`
	OccurredAt    string      `json:"occurred_at"`
	AttendeeCount *int        `json:"attendee_count,omitempty"`
}

// toDraft parses the wire form into a validation draft. Date parsing
// errors surface as a validation failure so the client gets one shape.
func (req transactionRequest) toDraft() (core.TransactionDraft, error) {
	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		return core.TransactionDraft{}, core.ValidationResult{Errors: []string{err.Error()}}
	}

	occurredAt, err := time.Parse("2006-01-02", req.OccurredAt)
	if err != nil {
		return core.TransactionDraft{}, core.ValidationResult{Errors: []string{"occurred_at must be a YYYY-MM-DD date"}}
	}

	return core.TransactionDraft{
		Description:   req.Description,
		Kind:          kind,
		Amount:        int64(req.Amount),
		OccurredAt:    occurredAt,
		AttendeeCount: req.AttendeeCount,
	}, nil
}

type transactionResponse struct {
	ID              string `json:"id"`
	Description     string `json:"description"`
	Kind            string `json:"kind"`
	Amount          int64  `json:"amount"`
	AmountFormatted string `json:"amount_formatted"`
	OccurredAt      string `json:"occurred_at"`
	DateFormatted   string `json:"date_formatted"`
	MonthKey        string `json:"month_key"`
	AttendeeCount   *int   `json:"attendee_count,omitempty"`
	CreatedBy       string `json:"created_by"`
	UpdatedBy       string `json:"updated_by,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:              tx.ID,
		Description:     tx.Description,
		Kind:            string(tx.Kind),
		Amount:          tx.Amount.Rupiah,
		AmountFormatted: core.FormatRupiah(tx.Amount.Rupiah),
		OccurredAt:      tx.OccurredAt.Format("2006-01-02"),
		DateFormatted:   core.FormatDate(tx.OccurredAt),
		MonthKey:        string(tx.MonthKey),
		AttendeeCount:   tx.AttendeeCount,
		CreatedBy:       tx.CreatedBy.Name,
		UpdatedBy:       tx.UpdatedBy.Name,
		CreatedAt:       tx.CreatedAt.Format(time.RFC3339),
	}
	if !tx.UpdatedAt.IsZero() {
		resp.UpdatedAt = tx.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func toTransactionResponses(records []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(records))
	for _, tx := range records {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}

type userResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
	}
}
