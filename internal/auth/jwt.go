package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "account-service"

// Sentinel errors returned by token parsing. Callers can distinguish a lapsed
// token from a tampered or malformed one.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// AccessClaims represents the JWT claims for an access token. The subject is
// the account ID; the jti identifies this token so the matching refresh token
// can reference it.
type AccessClaims struct {
	jwt.RegisteredClaims
}

// RefreshClaims represents the JWT claims for a refresh token. LinkedTokenID
// holds the jti of the access token issued alongside it, binding the pair.
type RefreshClaims struct {
	LinkedTokenID string `json:"linked_token_id"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies access and refresh tokens. Each token class
// uses its own symmetric secret and lifetime.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewTokenManager creates a new token manager with the given secrets and
// expiry durations.
func NewTokenManager(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// NewTokenID mints a fresh token identifier used as the access token's jti
// and the refresh token's linkage claim.
func (m *TokenManager) NewTokenID() string {
	return uuid.New().String()
}

// GenerateAccessToken creates a signed access token for the given account,
// carrying tokenID as its jti claim.
func (m *TokenManager) GenerateAccessToken(accountID, tokenID string) (string, error) {
	now := time.Now().UTC()
	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessExpiry)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signedToken, nil
}

// GenerateRefreshToken creates a signed refresh token linked to the access
// token identified by linkedTokenID.
func (m *TokenManager) GenerateRefreshToken(linkedTokenID string) (string, error) {
	now := time.Now().UTC()
	claims := &RefreshClaims{
		LinkedTokenID: linkedTokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshExpiry)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}

	return signedToken, nil
}

// ParseAccessToken verifies an access token's signature and structure and
// returns its claims. With ignoreExpiration the expiry claim is not enforced,
// but a tampered token still fails with ErrTokenInvalid.
func (m *TokenManager) ParseAccessToken(tokenString string, ignoreExpiration bool) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenString, claims, m.accessSecret, ignoreExpiration); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefreshToken verifies a refresh token's signature and structure and
// returns its claims. With ignoreExpiration the expiry claim is not enforced.
func (m *TokenManager) ParseRefreshToken(tokenString string, ignoreExpiration bool) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenString, claims, m.refreshSecret, ignoreExpiration); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *TokenManager) parse(tokenString string, claims jwt.Claims, secret []byte, ignoreExpiration bool) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if ignoreExpiration {
		// Signature and structure are still verified; only claims
		// validation (expiry among them) is skipped.
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if !token.Valid && !ignoreExpiration {
		return ErrTokenInvalid
	}

	return nil
}
