package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/link-shortener/internal/domain"
)

// Verification failures, distinguished for internal logging. Externally they
// all collapse to an unauthenticated response.
var (
	ErrTokenMalformed   = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
)

// Claims describes the signed token payload.
type Claims struct {
	SubjectID string      `json:"sub"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session is a pair of independently signed tokens.
type Session struct {
	RefreshToken     string
	RefreshExpiresAt time.Time
	AccessToken      string
	AccessExpiresAt  time.Time
}

// TokenManager issues and verifies JWT tokens with a process-wide symmetric
// key. The key is set once at construction and read-only afterwards, so a
// single instance is safe for concurrent use.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Issue builds and signs a token for the subject with the given lifetime.
// Every token carries a fresh jti.
func (tm *TokenManager) Issue(subjectID string, role domain.Role, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		SubjectID: subjectID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// IssueSession composes two Issue calls with the standard lifetimes. Both
// tokens are independently verifiable; no linkage exists between the pair.
func (tm *TokenManager) IssueSession(subjectID string, role domain.Role) (*Session, error) {
	refresh, refreshExp, err := tm.Issue(subjectID, role, tm.refreshTTL)
	if err != nil {
		return nil, err
	}
	access, accessExp, err := tm.Issue(subjectID, role, tm.accessTTL)
	if err != nil {
		return nil, err
	}
	return &Session{
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
	}, nil
}

// IssueAccess signs a fresh access token, used by the refresh exchange.
func (tm *TokenManager) IssueAccess(subjectID string, role domain.Role) (string, time.Time, error) {
	return tm.Issue(subjectID, role, tm.accessTTL)
}

// AccessTTL returns the access token lifetime.
func (tm *TokenManager) AccessTTL() time.Duration { return tm.accessTTL }

// RefreshTTL returns the refresh token lifetime.
func (tm *TokenManager) RefreshTTL() time.Duration { return tm.refreshTTL }

// Verify checks the signature and expiry of a token and recovers its claims.
// Verification is fully stateless: any unexpired token signed with the
// process key is accepted.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrSignatureInvalid
		}
		return tm.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, ErrSignatureInvalid
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
