package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/crm-service/internal/domain"
)

// Verification failures. Callers branch on these with errors.Is.
var (
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrMalformed        = errors.New("token malformed")
)

// Claims describes JWT payload.
type Claims struct {
	IdentityID string `json:"id"`
	jwt.RegisteredClaims
}

// KeySet is a signing secret and the lifetime of tokens signed with it.
type KeySet struct {
	Secret []byte
	TTL    time.Duration
}

// TokenIssuer signs and verifies HS256 tokens. Access and refresh tokens use separate key sets.
type TokenIssuer struct {
	access  KeySet
	refresh KeySet
	now     func() time.Time
}

// NewTokenIssuer builds an issuer using the wall clock.
func NewTokenIssuer(access, refresh KeySet) *TokenIssuer {
	return &TokenIssuer{access: access, refresh: refresh, now: time.Now}
}

// WithClock replaces the clock used for issuing and verifying.
func (ti *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	cp := *ti
	cp.now = now
	return &cp
}

// RefreshTTL is the lifetime of refresh tokens, also used as the session entry TTL.
func (ti *TokenIssuer) RefreshTTL() time.Duration {
	return ti.refresh.TTL
}

// Issue builds and signs a token carrying subjectID.
func (ti *TokenIssuer) Issue(subjectID string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	issuedAt := ti.now()
	expiresAt := issuedAt.Add(ttl)
	claims := &Claims{
		IdentityID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify validates tokenStr against secret and returns its claims.
func (ti *TokenIssuer) Verify(tokenStr string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ti.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, ErrMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.IdentityID == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}

// IssuePair issues an access and a refresh token for subjectID.
func (ti *TokenIssuer) IssuePair(subjectID string) (domain.TokenPair, error) {
	access, accessExp, err := ti.IssueAccess(subjectID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, refreshExp, err := ti.Issue(subjectID, ti.refresh.Secret, ti.refresh.TTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// IssueAccess issues an access token only.
func (ti *TokenIssuer) IssueAccess(subjectID string) (string, time.Time, error) {
	return ti.Issue(subjectID, ti.access.Secret, ti.access.TTL)
}

// VerifyAccess verifies a token with the access secret.
func (ti *TokenIssuer) VerifyAccess(tokenStr string) (*Claims, error) {
	return ti.Verify(tokenStr, ti.access.Secret)
}

// VerifyRefresh verifies a token with the refresh secret.
func (ti *TokenIssuer) VerifyRefresh(tokenStr string) (*Claims, error) {
	return ti.Verify(tokenStr, ti.refresh.Secret)
}
