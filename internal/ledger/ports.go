package ledger

import (
	"context"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports.go -package=mock_ledger

// Repository is the persistence port for ledger records.
type Repository interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	InsertTransaction(ctx context.Context, tx core.Transaction) error
	UpdateTransaction(ctx context.Context, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
}

// EventPublisher announces ledger mutations to interested consumers.
// Publishing is best-effort: a failed publish never fails the mutation.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event, transactionID, monthKey string) error
}
