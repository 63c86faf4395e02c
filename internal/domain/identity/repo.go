package identity

import (
	"context"
)

// AccountRepository persists local accounts.
type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByGoogleSubject(ctx context.Context, subject string) (*Account, error)
	LinkGoogle(ctx context.Context, id, subject string) error
}
