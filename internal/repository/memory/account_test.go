package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeHo89/backend-template/internal/domain"
	apperrors "github.com/PeHo89/backend-template/pkg/errors"
)

func TestAccountStore_Create(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()

	account, err := store.Create(ctx, "alice@example.com", "hashed")
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.True(t, account.Active)

	_, err = store.Create(ctx, "alice@example.com", "other-hash")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestAccountStore_CreateReusesEmailOfDeactivatedAccount(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()

	account, err := store.Create(ctx, "alice@example.com", "hashed")
	require.NoError(t, err)

	account.Active = false
	_, err = store.Save(ctx, account)
	require.NoError(t, err)

	_, err = store.Create(ctx, "alice@example.com", "new-hash")
	assert.NoError(t, err)
}

func TestAccountStore_FindActiveByID(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "alice@example.com", "hashed")
	require.NoError(t, err)

	found, err := store.FindActiveByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = store.FindActiveByID(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAccountStore_FindActiveByIDExcludesDeactivated(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "alice@example.com", "hashed")
	require.NoError(t, err)

	created.Active = false
	_, err = store.Save(ctx, created)
	require.NoError(t, err)

	_, err = store.FindActiveByID(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAccountStore_FindActiveByEmail(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "alice@example.com", "hashed")
	require.NoError(t, err)

	found, err := store.FindActiveByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = store.FindActiveByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAccountStore_SaveAssignsRefreshTokenIDs(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()

	account, err := store.Create(ctx, "alice@example.com", "hashed")
	require.NoError(t, err)

	account.RefreshTokens = append(account.RefreshTokens, domain.RefreshToken{
		Token:  "refresh-jwt",
		Active: true,
	})

	saved, err := store.Save(ctx, account)
	require.NoError(t, err)
	require.Len(t, saved.RefreshTokens, 1)
	assert.NotEmpty(t, saved.RefreshTokens[0].ID)
	assert.False(t, saved.RefreshTokens[0].CreatedAt.IsZero())

	found, err := store.FindActiveByID(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, found.RefreshTokens, 1)
	assert.Equal(t, "refresh-jwt", found.RefreshTokens[0].Token)
}

func TestAccountStore_SaveUnknownAccount(t *testing.T) {
	store := NewAccountStore()

	_, err := store.Save(context.Background(), &domain.Account{ID: "missing"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAccountStore_ReturnedAccountsAreCopies(t *testing.T) {
	store := NewAccountStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "alice@example.com", "hashed")
	require.NoError(t, err)

	found, err := store.FindActiveByID(ctx, created.ID)
	require.NoError(t, err)
	found.Email = "mutated@example.com"
	found.RefreshTokens = append(found.RefreshTokens, domain.RefreshToken{Token: "rogue"})

	again, err := store.FindActiveByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", again.Email)
	assert.Empty(t, again.RefreshTokens)
}
