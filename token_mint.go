package signup

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultSessionCookieName is the cookie the signup controller sets when a
// session token config is provided.
const DefaultSessionCookieName = "session_token"

// DefaultSessionTokenTTL bounds the post-signup session.
const DefaultSessionTokenTTL = 24 * time.Hour

// SessionTokenConfig controls how the post-signup session token is issued.
type SessionTokenConfig struct {
	// SigningKey is the HMAC key used to sign tokens.
	SigningKey string
	// Issuer identifies this deployment in the iss claim.
	Issuer string
	// Audience sets the aud claim if provided.
	Audience []string
	// CookieName overrides DefaultSessionCookieName.
	CookieName string
	// TTL overrides DefaultSessionTokenTTL. Zero uses the default.
	TTL time.Duration
}

// SessionClaims are the claims minted for a freshly created account.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// MintSessionToken issues a signed session token for user, so that a
// successful account creation also establishes a session, matching the
// identity provider behavior the form users expect.
func MintSessionToken(cfg SessionTokenConfig, user *User) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, goerrors.New("user is required", goerrors.CategoryBadInput)
	}

	if cfg.SigningKey == "" {
		return "", time.Time{}, goerrors.New("signing key is required", goerrors.CategoryBadInput)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultSessionTokenTTL
	}
	if ttl < 0 {
		return "", time.Time{}, goerrors.New("token TTL must be non-negative", goerrors.CategoryBadInput)
	}

	issuedAt := time.Now()
	expiresAt := issuedAt.Add(ttl)

	var aud jwt.ClaimStrings
	if len(cfg.Audience) > 0 {
		aud = make(jwt.ClaimStrings, len(cfg.Audience))
		copy(aud, cfg.Audience)
	}

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    cfg.Issuer,
			Subject:   user.UID,
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: user.Email,
		Name:  user.DisplayName,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SigningKey))
	if err != nil {
		return "", time.Time{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	return token, expiresAt, nil
}
