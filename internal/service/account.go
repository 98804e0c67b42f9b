package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/PeHo89/backend-template/pkg/errors"

	"github.com/PeHo89/backend-template/internal/auth"
	"github.com/PeHo89/backend-template/internal/crypto"
	"github.com/PeHo89/backend-template/internal/domain"
	"github.com/PeHo89/backend-template/internal/mail"
	"github.com/PeHo89/backend-template/internal/repository"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// confirmTokenBytes is the entropy of confirmation and reset tokens.
const confirmTokenBytes = 32

// resetTokenTTL is how long a password-reset token stays valid.
const resetTokenTTL = 15 * time.Minute

// AccountService implements the business logic for account and auth
// operations.
type AccountService struct {
	store    repository.AccountStore
	tokens   *auth.TokenManager
	notifier mail.Notifier
	locker   *accountLocker
	logger   *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(
	store repository.AccountStore,
	tokens *auth.TokenManager,
	notifier mail.Notifier,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		store:    store,
		tokens:   tokens,
		notifier: notifier,
		locker:   newAccountLocker(),
		logger:   logger,
	}
}

// UpdateInput holds the parameters for updating an account. Nil fields are
// left untouched.
type UpdateInput struct {
	Email    *string
	Username *string
	Password *string
}

// --- Auth Operations ---

// SignUp registers a new account, dispatches the confirmation email, and
// signs the account in.
func (s *AccountService) SignUp(ctx context.Context, email, password string) (*domain.Account, *domain.TokenPair, error) {
	if email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if err := validatePassword(password); err != nil {
		return nil, nil, err
	}

	if _, err := s.store.FindActiveByEmail(ctx, email); err == nil {
		s.logger.WarnContext(ctx, "email already exists",
			slog.String("email", email),
		)
		return nil, nil, apperrors.Conflict("email already exists")
	}

	hash, err := crypto.Hash(password, bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.store.Create(ctx, email, hash)
	if err != nil {
		return nil, nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.InfoContext(ctx, "account registered",
		slog.String("account_id", account.ID),
		slog.String("email", account.Email),
	)

	// Best effort. Confirmation state is only recorded when the email went
	// out; a delivery failure never fails the sign-up.
	s.dispatchEmailConfirmation(ctx, account)

	// No re-fetch under the lock here: the unsaved confirmation state on the
	// freshly created account has to survive into signIn's Save.
	unlock := s.locker.lock(account.ID)
	tokens, err := s.signIn(ctx, account)
	unlock()
	if err != nil {
		return nil, nil, err
	}

	return account, tokens, nil
}

// Authenticate checks an email and password pair and returns the matching
// active account.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.store.FindActiveByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	if !crypto.Verify(password, account.PasswordHash) {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	return account, nil
}

// SignIn issues a fresh token pair for the account, rotating its stored
// refresh token.
func (s *AccountService) SignIn(ctx context.Context, account *domain.Account) (*domain.TokenPair, error) {
	unlock := s.locker.lock(account.ID)
	defer unlock()

	// The caller loaded the account before the lock was held. Re-read it so
	// a rotation that won the race is not clobbered with the stale snapshot.
	fresh, err := s.store.FindActiveByID(ctx, account.ID)
	if err != nil {
		return nil, apperrors.NotFound("account", account.ID)
	}
	*account = *fresh

	return s.signIn(ctx, account)
}

// signIn mints a linked access/refresh token pair, deactivates the previous
// refresh-token record, appends the new one, and persists the account. The
// caller holds the account lock where rotation can race.
func (s *AccountService) signIn(ctx context.Context, account *domain.Account) (*domain.TokenPair, error) {
	tokenID := s.tokens.NewTokenID()

	accessToken, err := s.tokens.GenerateAccessToken(account.ID, tokenID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(tokenID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if active := account.ActiveRefreshToken(); active != nil {
		active.Active = false
	}

	account.RefreshTokens = append(account.RefreshTokens, domain.RefreshToken{
		Token:  refreshToken,
		Active: true,
	})

	saved, err := s.store.Save(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}
	*account = *saved

	s.logger.InfoContext(ctx, "account signed in",
		slog.String("account_id", account.ID),
	)

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges an expired access token plus its linked refresh token for
// a fresh pair. Both tokens are verified for signature first, with expiry
// deliberately ignored, then checked against the stored state.
func (s *AccountService) Refresh(ctx context.Context, accessToken, refreshToken string) (*domain.TokenPair, error) {
	accessClaims, err := s.tokens.ParseAccessToken(accessToken, true)
	if err != nil {
		return nil, apperrors.InvalidSignature("invalid access token")
	}

	refreshClaims, err := s.tokens.ParseRefreshToken(refreshToken, true)
	if err != nil {
		return nil, apperrors.InvalidSignature("invalid refresh token")
	}

	unlock := s.locker.lock(accessClaims.Subject)
	defer unlock()

	account, err := s.store.FindActiveByID(ctx, accessClaims.Subject)
	if err != nil {
		return nil, apperrors.NotFound("account", accessClaims.Subject)
	}

	stored := account.ActiveRefreshToken()
	if stored == nil {
		s.logger.WarnContext(ctx, "account has no stored active refresh token",
			slog.String("account_id", account.ID),
		)
		return nil, apperrors.InvalidState("account has no stored active refresh token")
	}

	if stored.Token != refreshToken {
		s.logger.WarnContext(ctx, "received refresh token does not match the stored one",
			slog.String("account_id", account.ID),
		)
		return nil, apperrors.InvalidState("received refresh token does not match the stored one")
	}

	if accessClaims.ID != refreshClaims.LinkedTokenID {
		s.logger.WarnContext(ctx, "refresh token and access token are not linked",
			slog.String("account_id", account.ID),
		)
		return nil, apperrors.InvalidState("refresh token and access token are not linked")
	}

	now := time.Now().UTC()

	if refreshClaims.ExpiresAt == nil || refreshClaims.ExpiresAt.Before(now) {
		s.logger.WarnContext(ctx, "refresh token has already expired",
			slog.String("account_id", account.ID),
		)
		return nil, apperrors.InvalidState("refresh token has already expired")
	}

	// Refreshing is only allowed once the access token has actually lapsed.
	// A still-valid access token does not need replacing.
	if accessClaims.ExpiresAt != nil && accessClaims.ExpiresAt.After(now) {
		s.logger.WarnContext(ctx, "access token has not yet expired",
			slog.String("account_id", account.ID),
		)
		return nil, apperrors.InvalidState("access token has not yet expired")
	}

	return s.signIn(ctx, account)
}

// VerifyAccessToken validates an access token, expiry enforced, and returns
// the account ID it was issued for.
func (s *AccountService) VerifyAccessToken(tokenString string) (string, error) {
	claims, err := s.tokens.ParseAccessToken(tokenString, false)
	if err != nil {
		return "", apperrors.Unauthorized("invalid or expired token")
	}
	return claims.Subject, nil
}

// --- Account Operations ---

// GetAccount returns the active account with the given ID.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.store.FindActiveByID(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "no account found",
			slog.String("account_id", id),
		)
		return nil, apperrors.NotFound("account", id)
	}
	return account, nil
}

// Update applies the given changes to the account. Changing the email resets
// the confirmation state and triggers a new confirmation email.
func (s *AccountService) Update(ctx context.Context, accountID string, input UpdateInput) (*domain.Account, error) {
	unlock := s.locker.lock(accountID)
	defer unlock()

	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if input.Email == nil && input.Username == nil && input.Password == nil {
		return account, nil
	}

	if input.Email != nil && *input.Email != account.Email {
		if _, err := s.store.FindActiveByEmail(ctx, *input.Email); err == nil {
			s.logger.WarnContext(ctx, "email already exists",
				slog.String("email", *input.Email),
			)
			return nil, apperrors.Conflict("email already exists")
		}

		account.Email = *input.Email

		// The new address must be confirmed again.
		s.dispatchEmailConfirmation(ctx, account)
	}

	if input.Username != nil {
		account.Username = *input.Username
	}

	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := crypto.Hash(*input.Password, bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		account.PasswordHash = hash
	}

	saved, err := s.store.Save(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}

	s.logger.InfoContext(ctx, "account updated",
		slog.String("account_id", saved.ID),
	)

	return saved, nil
}

// Deactivate soft-deletes the account. The record is kept but becomes
// invisible to every lookup.
func (s *AccountService) Deactivate(ctx context.Context, accountID string) error {
	unlock := s.locker.lock(accountID)
	defer unlock()

	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}

	account.Active = false

	if _, err := s.store.Save(ctx, account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	s.logger.InfoContext(ctx, "account deactivated",
		slog.String("account_id", accountID),
	)

	return nil
}

// findAndLockByEmail resolves the active account for the address, takes its
// lock, and re-reads the record so the caller sees the state as of lock
// acquisition rather than a pre-lock snapshot. The returned unlock must be
// called exactly once.
func (s *AccountService) findAndLockByEmail(ctx context.Context, email string) (*domain.Account, func(), error) {
	account, err := s.store.FindActiveByEmail(ctx, email)
	if err != nil {
		s.logger.WarnContext(ctx, "no account found",
			slog.String("email", email),
		)
		return nil, nil, apperrors.NotFound("account", email)
	}

	unlock := s.locker.lock(account.ID)

	account, err = s.store.FindActiveByEmail(ctx, email)
	if err != nil {
		unlock()
		s.logger.WarnContext(ctx, "no account found",
			slog.String("email", email),
		)
		return nil, nil, apperrors.NotFound("account", email)
	}

	return account, unlock, nil
}

// --- Email Confirmation ---

// ResendEmailConfirmation issues a fresh confirmation token and email for the
// account with the given address.
func (s *AccountService) ResendEmailConfirmation(ctx context.Context, email string) (*domain.Account, error) {
	account, unlock, err := s.findAndLockByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if s.dispatchEmailConfirmation(ctx, account) {
		saved, err := s.store.Save(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("save account: %w", err)
		}
		account = saved
	}

	return account, nil
}

// ConfirmEmail completes the double opt-in for the account.
func (s *AccountService) ConfirmEmail(ctx context.Context, email, token string) (*domain.Account, error) {
	account, unlock, err := s.findAndLockByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if account.EmailConfirmedAt != nil {
		s.logger.WarnContext(ctx, "email already confirmed",
			slog.String("email", email),
		)
		return nil, apperrors.Conflict("email already confirmed")
	}

	if account.EmailConfirmToken == "" || account.EmailConfirmToken != token {
		s.logger.WarnContext(ctx, "token for confirmation is invalid",
			slog.String("email", email),
		)
		return nil, apperrors.Conflict("token for confirmation is invalid")
	}

	now := time.Now().UTC()
	account.EmailConfirmedAt = &now

	saved, err := s.store.Save(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}

	s.logger.InfoContext(ctx, "email confirmed",
		slog.String("account_id", saved.ID),
		slog.String("email", email),
	)

	return saved, nil
}

// --- Password Reset ---

// RequestPasswordReset starts a password reset for the account with the given
// address by sending a reset token via email.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) (*domain.Account, error) {
	account, unlock, err := s.findAndLockByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if s.dispatchPasswordReset(ctx, account) {
		saved, err := s.store.Save(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("save account: %w", err)
		}
		account = saved
	}

	return account, nil
}

// SetNewPassword completes a password reset. The token must match the stored
// one and must have been issued within the last 15 minutes.
func (s *AccountService) SetNewPassword(ctx context.Context, email, token, password string) (*domain.Account, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	account, unlock, err := s.findAndLockByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if !account.ResetInProgress {
		s.logger.WarnContext(ctx, "no password reset issued",
			slog.String("email", email),
		)
		return nil, apperrors.InvalidState("no password reset issued")
	}

	if account.ResetToken != token {
		s.logger.WarnContext(ctx, "token for setting new password is invalid",
			slog.String("email", email),
		)
		return nil, apperrors.Conflict("token for setting new password is invalid")
	}

	now := time.Now().UTC()
	if account.ResetSentAt == nil || now.Sub(*account.ResetSentAt) > resetTokenTTL {
		s.logger.WarnContext(ctx, "token for setting new password has already expired",
			slog.String("email", email),
		)
		return nil, apperrors.InvalidState("token has already expired")
	}

	hash, err := crypto.Hash(password, bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account.PasswordHash = hash
	account.ResetInProgress = false
	account.ResetConfirmedAt = &now

	saved, err := s.store.Save(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}

	s.logger.InfoContext(ctx, "new password set",
		slog.String("account_id", saved.ID),
	)

	return saved, nil
}

// --- Dispatch helpers ---

// dispatchEmailConfirmation sends a confirmation email with a fresh token and,
// on success, records the token on the account and clears any previous
// confirmation. On failure the account is left untouched and the error only
// logged. Returns whether the account state changed.
func (s *AccountService) dispatchEmailConfirmation(ctx context.Context, account *domain.Account) bool {
	token, err := crypto.RandomToken(confirmTokenBytes)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate confirmation token",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
		return false
	}

	if err := s.notifier.SendEmailConfirmation(ctx, account.Email, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to send confirmation email",
			slog.String("account_id", account.ID),
			slog.String("email", account.Email),
			slog.String("error", err.Error()),
		)
		return false
	}

	now := time.Now().UTC()
	account.EmailConfirmToken = token
	account.EmailConfirmSentAt = &now
	account.EmailConfirmedAt = nil

	return true
}

// dispatchPasswordReset sends a reset email with a fresh token and, on
// success, records the token and opens the reset window. On failure the
// account is left untouched and the error only logged. Returns whether the
// account state changed.
func (s *AccountService) dispatchPasswordReset(ctx context.Context, account *domain.Account) bool {
	token, err := crypto.RandomToken(confirmTokenBytes)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate reset token",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
		return false
	}

	if err := s.notifier.SendPasswordReset(ctx, account.Email, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to send password reset email",
			slog.String("account_id", account.ID),
			slog.String("email", account.Email),
			slog.String("error", err.Error()),
		)
		return false
	}

	now := time.Now().UTC()
	account.ResetToken = token
	account.ResetSentAt = &now
	account.ResetInProgress = true

	return true
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}
