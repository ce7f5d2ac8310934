package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/amqp"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/log"
	mock_ledger "github.com/RexzyOfficial/Kas-Pemuda/internal/ledger/mocks"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/storage"
)

var (
	fixedNow = time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC)

	treasurer = core.User{ID: "u1", DisplayName: "Budi", Role: core.RoleElevated}
	member    = core.User{ID: "u2", DisplayName: "Sari", Role: core.RoleStandard}
)

func intPtr(n int) *int { return &n }

func testLogger() *log.Logger {
	return log.New(log.Config{Component: log.ComponentLedger})
}

func newTestStore(t *testing.T, repo Repository, events EventPublisher) *Store {
	t.Helper()
	s := NewStore(repo, events, testLogger())
	s.clock = func() time.Time { return fixedNow }
	return s
}

func validDraft() core.TransactionDraft {
	return core.TransactionDraft{
		Description:   "Kas mingguan",
		Kind:          core.KindIncome,
		Amount:        50000,
		OccurredAt:    time.Date(2024, 2, 18, 0, 0, 0, 0, time.UTC),
		AttendeeCount: intPtr(12),
	}
}

func TestStore_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_ledger.NewMockRepository(ctrl)
	events := mock_ledger.NewMockEventPublisher(ctrl)
	store := newTestStore(t, repo, events)

	var inserted core.Transaction
	repo.EXPECT().
		InsertTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx core.Transaction) error {
			inserted = tx
			return nil
		})
	repo.EXPECT().
		ListTransactions(gomock.Any()).
		DoAndReturn(func(_ context.Context) ([]core.Transaction, error) {
			return []core.Transaction{inserted}, nil
		})
	events.EXPECT().
		PublishLedgerEvent(gomock.Any(), amqp.EventCreated, gomock.Any(), "2024-02").
		Return(nil)

	tx, err := store.Create(context.Background(), treasurer, validDraft())
	require.NoError(t, err)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, "Kas mingguan", tx.Description)
	assert.Equal(t, core.KindIncome, tx.Kind)
	assert.Equal(t, int64(50000), tx.Amount.Rupiah)
	assert.Equal(t, core.MonthKey("2024-02"), tx.MonthKey)
	assert.Equal(t, treasurer.Actor(), tx.CreatedBy)
	assert.Equal(t, treasurer.Actor(), tx.UpdatedBy)
	assert.Equal(t, fixedNow, tx.CreatedAt)

	// Snapshot was refreshed
	assert.Len(t, store.Snapshot(), 1)
	assert.Equal(t, int64(50000), store.Report().TotalBalance)
}

func TestStore_Create_Unauthorized(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No repository or publisher calls are expected at all
	repo := mock_ledger.NewMockRepository(ctrl)
	events := mock_ledger.NewMockEventPublisher(ctrl)
	store := newTestStore(t, repo, events)

	_, err := store.Create(context.Background(), member, validDraft())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, store.Snapshot())
}

func TestStore_Create_ValidationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_ledger.NewMockRepository(ctrl)
	store := newTestStore(t, repo, nil)

	draft := core.TransactionDraft{
		Description: "   ",
		Kind:        core.KindIncome,
		Amount:      500,
		OccurredAt:  fixedNow,
	}

	_, err := store.Create(context.Background(), treasurer, draft)
	require.Error(t, err)

	var res core.ValidationResult
	require.ErrorAs(t, err, &res)
	assert.Equal(t, []string{
		"description required",
		"attendee count must be at least 1",
		"amount must be at least 1000",
	}, res.Errors)
}

func TestStore_Create_PersistenceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_ledger.NewMockRepository(ctrl)
	store := newTestStore(t, repo, nil)

	dbErr := errors.New("disk full")
	repo.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).Return(dbErr)

	_, err := store.Create(context.Background(), treasurer, validDraft())
	require.Error(t, err)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "create", perr.Op)
	assert.ErrorIs(t, err, dbErr)
}

func TestStore_Create_PublishFailureDoesNotFailMutation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_ledger.NewMockRepository(ctrl)
	events := mock_ledger.NewMockEventPublisher(ctrl)
	store := newTestStore(t, repo, events)

	repo.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).Return(nil)
	repo.EXPECT().ListTransactions(gomock.Any()).Return(nil, nil)
	events.EXPECT().
		PublishLedgerEvent(gomock.Any(), amqp.EventCreated, gomock.Any(), gomock.Any()).
		Return(errors.New("broker down"))

	_, err := store.Create(context.Background(), treasurer, validDraft())
	assert.NoError(t, err)
}

func seedStore(t *testing.T, store *Store, repo *mock_ledger.MockRepository, records []core.Transaction) {
	t.Helper()
	repo.EXPECT().ListTransactions(gomock.Any()).Return(records, nil)
	require.NoError(t, store.Refresh(context.Background()))
}

func existingTransaction() core.Transaction {
	return core.Transaction{
		ID:            "tx-1",
		Description:   "Kas mingguan",
		Kind:          core.KindIncome,
		Amount:        core.Money{Rupiah: 50000},
		OccurredAt:    time.Date(2024, 2, 18, 0, 0, 0, 0, time.UTC),
		MonthKey:      core.MonthKey("2024-02"),
		AttendeeCount: intPtr(12),
		CreatedBy:     treasurer.Actor(),
		UpdatedBy:     treasurer.Actor(),
		CreatedAt:     fixedNow.Add(-time.Hour),
		UpdatedAt:     fixedNow.Add(-time.Hour),
	}
}

func TestStore_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_ledger.NewMockRepository(ctrl)
	events := mock_ledger.NewMockEventPublisher(ctrl)
	store := newTestStore(t, repo, events)

	seedStore(t, store, repo, []core.Transaction{existingTransaction()})

	// The edit moves the record to March: the month key must follow the date
	var updated core.Transaction
	repo.EXPECT().
		UpdateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx core.Transaction) error {
			updated = tx
			return nil
		})
	repo.EXPECT().
		ListTransactions(gomock.Any()).
		DoAndReturn(func(_ context.Context) ([]core.Transaction, error) {
			return []core.Transaction{updated}, nil
		})
	events.EXPECT().
		PublishLedgerEvent(gomock.Any(), amqp.EventUpdated, "tx-1", "2024-03").
		Return(nil)

	draft := core.TransactionDraft{
		Description: "Donasi gedung",
		Kind:        core.KindExpense,
		Amount:      30000,
		OccurredAt:  time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}

	tx, err := store.Update(context.Background(), treasurer, "tx-1", draft)
	require.NoError(t, err)

	assert.Equal(t, "tx-1", tx.ID)
	assert.Equal(t, "Donasi gedung", tx.Description)
	assert.Equal(t, core.KindExpense, tx.Kind)
	assert.Equal(t, core.MonthKey("2024-03"), tx.MonthKey)
	assert.Nil(t, tx.AttendeeCount)
	assert.Equal(t, fixedNow, tx.UpdatedAt)
	// Creation audit fields survive the edit
	assert.Equal(t, fixedNow.Add(-time.Hour), tx.CreatedAt)
	assert.Equal(t, treasurer.Actor(), tx.CreatedBy)
}

func TestStore_Update_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_ledger.NewMockRepository(ctrl)
	store := newTestStore(t, repo, nil)

	// Not in the snapshot, and the repository confirms it is gone.
	repo.EXPECT().
		GetTransaction(gomock.Any(), "missing").
		Return(core.Transaction{}, storage.ErrNotFound)

	_, err := store.Update(context.Background(), treasurer, "missing", validDraft())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Update_ReadsThroughStaleSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_ledger.NewMockRepository(ctrl)
	store := newTestStore(t, repo, nil)

	// The record was committed by another writer and is missing from this
	// store's snapshot; the edit must still find it.
	repo.EXPECT().
		GetTransaction(gomock.Any(), "tx-1").
		Return(existingTransaction(), nil)
	repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)
	repo.EXPECT().ListTransactions(gomock.Any()).Return(nil, nil)

	tx, err := store.Update(context.Background(), treasurer, "tx-1", validDraft())
	require.NoError(t, err)
	assert.Equal(t, "tx-1", tx.ID)
}

func TestStore_Update_LookupPersistenceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_ledger.NewMockRepository(ctrl)
	store := newTestStore(t, repo, nil)

	dbErr := errors.New("database is locked")
	repo.EXPECT().
		GetTransaction(gomock.Any(), "tx-1").
		Return(core.Transaction{}, dbErr)

	_, err := store.Update(context.Background(), treasurer, "tx-1", validDraft())

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "lookup", perr.Op)
	assert.ErrorIs(t, err, dbErr)
}

func TestStore_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_ledger.NewMockRepository(ctrl)
	events := mock_ledger.NewMockEventPublisher(ctrl)
	store := newTestStore(t, repo, events)

	seedStore(t, store, repo, []core.Transaction{existingTransaction()})

	repo.EXPECT().DeleteTransaction(gomock.Any(), "tx-1").Return(nil)
	repo.EXPECT().ListTransactions(gomock.Any()).Return(nil, nil)
	events.EXPECT().
		PublishLedgerEvent(gomock.Any(), amqp.EventDeleted, "tx-1", "2024-02").
		Return(nil)

	require.NoError(t, store.Delete(context.Background(), treasurer, "tx-1"))
	assert.Empty(t, store.Snapshot())
}

func TestStore_Delete_StandardRoleLeavesLedgerUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_ledger.NewMockRepository(ctrl)
	store := newTestStore(t, repo, nil)

	seedStore(t, store, repo, []core.Transaction{existingTransaction()})

	err := store.Delete(context.Background(), member, "tx-1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// The record is still there
	_, ok := store.Get("tx-1")
	assert.True(t, ok)
	assert.Len(t, store.Snapshot(), 1)
}

func TestStore_Refresh_PersistenceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_ledger.NewMockRepository(ctrl)
	store := newTestStore(t, repo, nil)

	repo.EXPECT().ListTransactions(gomock.Any()).Return(nil, errors.New("db locked"))

	err := store.Refresh(context.Background())
	require.Error(t, err)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "refresh", perr.Op)
}

func TestStore_Filter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_ledger.NewMockRepository(ctrl)
	store := newTestStore(t, repo, nil)

	mk := func(id, desc string, kind core.Kind, amount int64, day int, month time.Month, year int) core.Transaction {
		at := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		return core.Transaction{
			ID:          id,
			Description: desc,
			Kind:        kind,
			Amount:      core.Money{Rupiah: amount},
			OccurredAt:  at,
			MonthKey:    core.MonthKeyOf(at),
		}
	}

	seedStore(t, store, repo, []core.Transaction{
		mk("a", "Kas mingguan", core.KindIncome, 50000, 18, time.February, 2024),
		mk("b", "Beli konsumsi", core.KindExpense, 30000, 20, time.February, 2024),
		mk("c", "Donasi natal", core.KindIncome, 100000, 5, time.December, 2023),
		mk("d", "Kas mingguan", core.KindIncome, 45000, 3, time.March, 2024),
	})

	t.Run("default sort is latest first", func(t *testing.T) {
		got := store.Filter(Query{})
		require.Len(t, got, 4)
		assert.Equal(t, "d", got[0].ID)
		assert.Equal(t, "c", got[3].ID)
	})

	t.Run("oldest first", func(t *testing.T) {
		got := store.Filter(Query{Sort: SortOldest})
		assert.Equal(t, "c", got[0].ID)
	})

	t.Run("highest amount first", func(t *testing.T) {
		got := store.Filter(Query{Sort: SortHighest})
		assert.Equal(t, "c", got[0].ID)
		assert.Equal(t, "b", got[3].ID)
	})

	t.Run("lowest amount first", func(t *testing.T) {
		got := store.Filter(Query{Sort: SortLowest})
		assert.Equal(t, "b", got[0].ID)
	})

	t.Run("search is case-insensitive substring", func(t *testing.T) {
		got := store.Filter(Query{Search: "kas MINGGUAN"})
		require.Len(t, got, 2)
	})

	t.Run("filter by kind", func(t *testing.T) {
		got := store.Filter(Query{Kind: core.KindExpense})
		require.Len(t, got, 1)
		assert.Equal(t, "b", got[0].ID)
	})

	t.Run("filter by month", func(t *testing.T) {
		got := store.Filter(Query{Month: core.MonthKey("2024-02")})
		require.Len(t, got, 2)
	})

	t.Run("filter by year", func(t *testing.T) {
		got := store.Filter(Query{Year: "2023"})
		require.Len(t, got, 1)
		assert.Equal(t, "c", got[0].ID)
	})

	t.Run("combined filters", func(t *testing.T) {
		got := store.Filter(Query{Search: "kas", Year: "2024", Sort: SortOldest})
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID)
	})
}
