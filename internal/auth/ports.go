package auth

import (
	"context"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports.go -package=mock_auth

// UserStore is the persistence port for member profiles. Implementations
// return storage.ErrNotFound when the user does not exist.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
	GetUserByID(ctx context.Context, id string) (core.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	UpdateUserDisplayName(ctx context.Context, id, displayName string) error
}
