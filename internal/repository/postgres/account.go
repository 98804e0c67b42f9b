package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/PeHo89/backend-template/internal/domain"
	"github.com/PeHo89/backend-template/pkg/database"
	apperrors "github.com/PeHo89/backend-template/pkg/errors"
)

// AccountStore implements repository.AccountStore using PostgreSQL.
type AccountStore struct {
	pool database.DBTX
}

// NewAccountStore creates a new PostgreSQL-backed account store.
func NewAccountStore(pool database.DBTX) *AccountStore {
	return &AccountStore{pool: pool}
}

const accountColumns = `id, username, email, password_hash,
		email_confirm_token, email_confirm_sent_at, email_confirmed_at,
		reset_token, reset_sent_at, reset_confirmed_at, reset_in_progress,
		active, created_at, updated_at`

// Create inserts a new active account with the given email and password hash.
func (s *AccountStore) Create(ctx context.Context, email, passwordHash string) (*domain.Account, error) {
	now := time.Now().UTC()
	account := &domain.Account{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := `
		INSERT INTO accounts (id, username, email, password_hash, reset_in_progress, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.ResetInProgress,
		account.Active,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.AlreadyExists("account", "email", email)
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	return account, nil
}

// FindActiveByID retrieves an active account by its ID, including its
// refresh-token records.
func (s *AccountStore) FindActiveByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1 AND active = true`

	return s.scanAccount(ctx, query, id)
}

// FindActiveByEmail retrieves an active account by its email address.
func (s *AccountStore) FindActiveByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE email = $1 AND active = true`

	return s.scanAccount(ctx, query, email)
}

// Save persists the account and reconciles its refresh-token records inside a
// transaction. The account row is locked first, serializing concurrent saves
// for the same account.
func (s *AccountStore) Save(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked string
	err = tx.QueryRow(ctx, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, account.ID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("account", account.ID)
		}
		return nil, fmt.Errorf("lock account row: %w", err)
	}

	account.UpdatedAt = time.Now().UTC()

	updateQuery := `
		UPDATE accounts
		SET username = $1, email = $2, password_hash = $3,
		    email_confirm_token = $4, email_confirm_sent_at = $5, email_confirmed_at = $6,
		    reset_token = $7, reset_sent_at = $8, reset_confirmed_at = $9, reset_in_progress = $10,
		    active = $11, updated_at = $12
		WHERE id = $13`

	_, err = tx.Exec(ctx, updateQuery,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.EmailConfirmToken,
		account.EmailConfirmSentAt,
		account.EmailConfirmedAt,
		account.ResetToken,
		account.ResetSentAt,
		account.ResetConfirmedAt,
		account.ResetInProgress,
		account.Active,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.AlreadyExists("account", "email", account.Email)
		}
		return nil, fmt.Errorf("update account: %w", err)
	}

	for i := range account.RefreshTokens {
		rt := &account.RefreshTokens[i]
		if rt.ID == "" {
			rt.ID = uuid.New().String()
			rt.CreatedAt = account.UpdatedAt
			rt.UpdatedAt = account.UpdatedAt

			_, err = tx.Exec(ctx, `
				INSERT INTO refresh_tokens (id, account_id, token, active, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				rt.ID, account.ID, rt.Token, rt.Active, rt.CreatedAt, rt.UpdatedAt,
			)
			if err != nil {
				return nil, fmt.Errorf("insert refresh token: %w", err)
			}
			continue
		}

		rt.UpdatedAt = account.UpdatedAt
		_, err = tx.Exec(ctx, `
			UPDATE refresh_tokens
			SET token = $1, active = $2, updated_at = $3
			WHERE id = $4 AND account_id = $5`,
			rt.Token, rt.Active, rt.UpdatedAt, rt.ID, account.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("update refresh token: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return account, nil
}

// scanAccount executes a query expected to return a single account row and
// loads the account's refresh tokens.
func (s *AccountStore) scanAccount(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	var a domain.Account

	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.PasswordHash,
		&a.EmailConfirmToken,
		&a.EmailConfirmSentAt,
		&a.EmailConfirmedAt,
		&a.ResetToken,
		&a.ResetSentAt,
		&a.ResetConfirmedAt,
		&a.ResetInProgress,
		&a.Active,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	tokens, err := s.loadRefreshTokens(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.RefreshTokens = tokens

	return &a, nil
}

// loadRefreshTokens returns the account's refresh-token records, oldest first.
func (s *AccountStore) loadRefreshTokens(ctx context.Context, accountID string) ([]domain.RefreshToken, error) {
	query := `
		SELECT id, token, active, created_at, updated_at
		FROM refresh_tokens
		WHERE account_id = $1
		ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list refresh tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.RefreshToken
	for rows.Next() {
		var rt domain.RefreshToken
		if err := rows.Scan(&rt.ID, &rt.Token, &rt.Active, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan refresh token row: %w", err)
		}
		tokens = append(tokens, rt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refresh token rows: %w", err)
	}

	return tokens, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
