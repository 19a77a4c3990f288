package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"docproof/internal/platform/middleware"
)

// sessionClaims is the JWT payload. Organization sessions carry a wallet
// address, verifier sessions an email; both carry the internal id as subject.
type sessionClaims struct {
	WalletAddress string `json:"walletAddress,omitempty"`
	Email         string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates session credentials. Tokens are immutable
// once issued; expiry is the only termination mechanism.
type TokenIssuer struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// TokenIssuerOption configures a TokenIssuer.
type TokenIssuerOption func(*TokenIssuer)

// WithTokenClock overrides the time source (useful for tests).
func WithTokenClock(fn func() time.Time) TokenIssuerOption {
	return func(t *TokenIssuer) {
		if fn != nil {
			t.now = fn
		}
	}
}

func NewTokenIssuer(signingKey string, ttl time.Duration, opts ...TokenIssuerOption) *TokenIssuer {
	issuer := &TokenIssuer{
		signingKey: []byte(signingKey),
		ttl:        ttl,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer
}

// IssueOrganization mints a session bound to a wallet identity.
func (t *TokenIssuer) IssueOrganization(accountID, wallet string) (string, error) {
	return t.sign(sessionClaims{
		WalletAddress: wallet,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(t.now()),
			ExpiresAt: jwt.NewNumericDate(t.now().Add(t.ttl)),
		},
	})
}

// IssueVerifier mints a session bound to a verifier account.
func (t *TokenIssuer) IssueVerifier(accountID, email string) (string, error) {
	return t.sign(sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(t.now()),
			ExpiresAt: jwt.NewNumericDate(t.now().Add(t.ttl)),
		},
	})
}

func (t *TokenIssuer) sign(claims sessionClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature and expiry and returns the decoded session
// identity. Implements middleware.SessionValidator.
func (t *TokenIssuer) ValidateToken(tokenString string) (*middleware.SessionClaims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(token *jwt.Token) (any, error) {
			return t.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("session token missing subject")
	}
	return &middleware.SessionClaims{
		AccountID:     claims.Subject,
		WalletAddress: claims.WalletAddress,
		Email:         claims.Email,
	}, nil
}
