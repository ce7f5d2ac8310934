package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/amqp"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/log"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/storage"
)

// Store is the in-memory view of the cash book backed by a Repository.
// Reads are served from a snapshot guarded by an RWMutex; every successful
// mutation goes to the repository first and then refreshes the snapshot, so
// concurrent edits resolve as last write wins.
type Store struct {
	repo   Repository
	events EventPublisher
	logger *log.Logger
	clock  func() time.Time

	mu      sync.RWMutex
	records []core.Transaction
	report  core.Report
}

func NewStore(repo Repository, events EventPublisher, logger *log.Logger) *Store {
	return &Store{
		repo:   repo,
		events: events,
		logger: logger,
		clock:  time.Now,
	}
}

// CanMutate reports whether a role is allowed to change the ledger.
func CanMutate(role core.Role) bool {
	return role == core.RoleElevated
}

// Refresh reloads all records from the repository and rebuilds the monthly
// report. Derived summaries are never patched incrementally.
func (s *Store) Refresh(ctx context.Context) error {
	records, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return &PersistenceError{Op: "refresh", Err: err}
	}

	report := core.Aggregate(records, s.clock())

	s.mu.Lock()
	s.records = records
	s.report = report
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "ledger snapshot refreshed", log.FieldCount, len(records))
	return nil
}

// Snapshot returns a copy of the current records, newest first.
func (s *Store) Snapshot() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Transaction, len(s.records))
	copy(out, s.records)
	return out
}

// Report returns the monthly aggregation of the current snapshot.
func (s *Store) Report() core.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Get looks a transaction up in the current snapshot.
func (s *Store) Get(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.records {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

// lookup reads from the snapshot first and falls back to the repository,
// so a stale snapshot cannot hide a committed record from an edit.
func (s *Store) lookup(ctx context.Context, id string) (core.Transaction, error) {
	if tx, ok := s.Get(id); ok {
		return tx, nil
	}

	tx, err := s.repo.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, &PersistenceError{Op: "lookup", Err: err}
	}
	return tx, nil
}

// Create validates the draft and appends a new transaction. Only elevated
// actors may call this; everyone else gets ErrUnauthorized and the ledger
// is untouched.
func (s *Store) Create(ctx context.Context, actor core.User, draft core.TransactionDraft) (core.Transaction, error) {
	if !CanMutate(actor.Role) {
		return core.Transaction{}, ErrUnauthorized
	}

	draft.Description = strings.TrimSpace(draft.Description)
	if res := core.ValidateDraft(draft); !res.Valid() {
		return core.Transaction{}, res
	}

	now := s.clock()
	tx := core.Transaction{
		ID:            uuid.NewString(),
		Description:   draft.Description,
		Kind:          draft.Kind,
		Amount:        core.Money{Rupiah: draft.Amount},
		OccurredAt:    draft.OccurredAt,
		MonthKey:      core.MonthKeyOf(draft.OccurredAt),
		AttendeeCount: draft.AttendeeCount,
		CreatedBy:     actor.Actor(),
		UpdatedBy:     actor.Actor(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if tx.Kind == core.KindExpense {
		tx.AttendeeCount = nil
	}

	if err := s.repo.InsertTransaction(ctx, tx); err != nil {
		return core.Transaction{}, &PersistenceError{Op: "create", Err: err}
	}

	if err := s.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "refresh after create failed", log.FieldError, err)
	}

	s.publish(ctx, amqp.EventCreated, tx.ID, tx.MonthKey)
	return tx, nil
}

// Update replaces a transaction's editable fields, recomputing the month
// key from the new date.
func (s *Store) Update(ctx context.Context, actor core.User, id string, draft core.TransactionDraft) (core.Transaction, error) {
	if !CanMutate(actor.Role) {
		return core.Transaction{}, ErrUnauthorized
	}

	existing, err := s.lookup(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	draft.Description = strings.TrimSpace(draft.Description)
	if res := core.ValidateDraft(draft); !res.Valid() {
		return core.Transaction{}, res
	}

	tx := existing
	tx.Description = draft.Description
	tx.Kind = draft.Kind
	tx.Amount = core.Money{Rupiah: draft.Amount}
	tx.OccurredAt = draft.OccurredAt
	tx.MonthKey = core.MonthKeyOf(draft.OccurredAt)
	tx.AttendeeCount = draft.AttendeeCount
	if tx.Kind == core.KindExpense {
		tx.AttendeeCount = nil
	}
	tx.UpdatedBy = actor.Actor()
	tx.UpdatedAt = s.clock()

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, &PersistenceError{Op: "update", Err: err}
	}

	if err := s.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "refresh after update failed", log.FieldError, err)
	}

	s.publish(ctx, amqp.EventUpdated, tx.ID, tx.MonthKey)
	return tx, nil
}

// Delete removes a transaction.
func (s *Store) Delete(ctx context.Context, actor core.User, id string) error {
	if !CanMutate(actor.Role) {
		return ErrUnauthorized
	}

	existing, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}

	if err := s.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "refresh after delete failed", log.FieldError, err)
	}

	s.publish(ctx, amqp.EventDeleted, id, existing.MonthKey)
	return nil
}

func (s *Store) publish(ctx context.Context, event, id string, monthKey core.MonthKey) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, event, id, string(monthKey)); err != nil {
		s.logger.WarnContext(ctx, "publish ledger event failed",
			log.FieldError, err,
			log.FieldEvent, event,
			log.FieldTransactionID, id)
	}
}
