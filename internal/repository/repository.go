package repository

import (
	"context"

	"github.com/PeHo89/backend-template/internal/domain"
)

// AccountStore defines the persistence contract for accounts and their
// refresh-token history. Inactive accounts are invisible to every lookup.
type AccountStore interface {
	// FindActiveByID retrieves an active account by its unique identifier,
	// including its refresh-token records.
	FindActiveByID(ctx context.Context, id string) (*domain.Account, error)

	// FindActiveByEmail retrieves an active account by its email address.
	FindActiveByEmail(ctx context.Context, email string) (*domain.Account, error)

	// Create inserts a new active account with the given email and password
	// hash and returns it. Fails if an active account with the email exists.
	Create(ctx context.Context, email, passwordHash string) (*domain.Account, error)

	// Save persists the account's current state, including refresh-token
	// records (new records get identifiers assigned). The write is atomic
	// per account: concurrent saves for the same account are serialized so
	// read-modify-write sequences do not lose updates.
	Save(ctx context.Context, account *domain.Account) (*domain.Account, error)
}
