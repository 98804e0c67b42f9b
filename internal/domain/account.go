package domain

import (
	"time"
)

// Account represents a registered account in the system.
//
// Confirmation and reset fields are never exposed over the wire; only id,
// username, and email are serialized.
type Account struct {
	ID           string `json:"id"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`

	// Double-opt-in email confirmation state.
	EmailConfirmToken  string     `json:"-"`
	EmailConfirmSentAt *time.Time `json:"-"`
	EmailConfirmedAt   *time.Time `json:"-"`

	// Password reset state.
	ResetToken       string     `json:"-"`
	ResetSentAt      *time.Time `json:"-"`
	ResetConfirmedAt *time.Time `json:"-"`
	ResetInProgress  bool       `json:"-"`

	Active bool `json:"-"`

	// RefreshTokens holds every refresh token ever issued to the account,
	// oldest first. At most one record is active at any time.
	RefreshTokens []RefreshToken `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ActiveRefreshToken returns the account's currently active refresh token
// record, or nil if none is active.
func (a *Account) ActiveRefreshToken() *RefreshToken {
	for i := range a.RefreshTokens {
		if a.RefreshTokens[i].Active {
			return &a.RefreshTokens[i]
		}
	}
	return nil
}

// RefreshToken represents a stored refresh token record owned by an account.
// Superseded records are marked inactive, never deleted.
type RefreshToken struct {
	ID        string    `json:"-"`
	Token     string    `json:"-"`
	Active    bool      `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TokenPair holds an access and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
