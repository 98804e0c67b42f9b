package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PeHo89/backend-template/internal/domain"
	apperrors "github.com/PeHo89/backend-template/pkg/errors"
)

// AccountStore is an in-memory reference implementation of
// repository.AccountStore. A single mutex serializes all writes, so Save is
// atomic per account. Accounts are deep-copied on the way in and out; callers
// never share memory with the store.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

// NewAccountStore creates an empty in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]*domain.Account),
	}
}

// Create inserts a new active account with the given email and password hash.
func (s *AccountStore) Create(_ context.Context, email, passwordHash string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.Active && a.Email == email {
			return nil, apperrors.AlreadyExists("account", "email", email)
		}
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.accounts[account.ID] = cloneAccount(account)
	return account, nil
}

// FindActiveByID retrieves an active account by its ID.
func (s *AccountStore) FindActiveByID(_ context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok || !a.Active {
		return nil, apperrors.ErrNotFound
	}
	return cloneAccount(a), nil
}

// FindActiveByEmail retrieves an active account by its email address.
func (s *AccountStore) FindActiveByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.Active && a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// Save persists the account's current state, assigning identifiers to new
// refresh-token records.
func (s *AccountStore) Save(_ context.Context, account *domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID]; !ok {
		return nil, apperrors.NotFound("account", account.ID)
	}

	for _, other := range s.accounts {
		if other.ID != account.ID && other.Active && account.Active && other.Email == account.Email {
			return nil, apperrors.AlreadyExists("account", "email", account.Email)
		}
	}

	now := time.Now().UTC()
	account.UpdatedAt = now
	for i := range account.RefreshTokens {
		rt := &account.RefreshTokens[i]
		if rt.ID == "" {
			rt.ID = uuid.New().String()
			rt.CreatedAt = now
		}
		rt.UpdatedAt = now
	}

	s.accounts[account.ID] = cloneAccount(account)
	return account, nil
}

// cloneAccount returns a deep copy of the account.
func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	c.EmailConfirmSentAt = cloneTime(a.EmailConfirmSentAt)
	c.EmailConfirmedAt = cloneTime(a.EmailConfirmedAt)
	c.ResetSentAt = cloneTime(a.ResetSentAt)
	c.ResetConfirmedAt = cloneTime(a.ResetConfirmedAt)
	c.RefreshTokens = make([]domain.RefreshToken, len(a.RefreshTokens))
	copy(c.RefreshTokens, a.RefreshTokens)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
