package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/link-shortener/internal/domain"
	apperrors "github.com/spec-kit/link-shortener/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// Identity is the verified caller attached to the request scope.
type Identity struct {
	SubjectID string
	Role      domain.Role
}

// AuthMiddleware turns session cookies into an attached identity.
type AuthMiddleware struct {
	tokens *TokenManager
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, logger: logger}
}

// Handle enforces authentication for protected routes. Only the access token
// is accepted as a session proof; the refresh token can solely be exchanged
// for a new access token at the refresh endpoint. A request whose cookies
// are present but fail verification is rejected the same way as one with no
// cookies at all.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	access := AccessFromRequest(c)
	refresh := RefreshFromRequest(c)

	if access == "" && refresh == "" {
		return apperrors.NewUnauthorized("authentication required")
	}

	if access != "" {
		claims, err := m.tokens.Verify(access)
		if err == nil {
			c.Locals(identityKey, &Identity{SubjectID: claims.SubjectID, Role: claims.Role})
			return c.Next()
		}
		m.logger.Debug("access token rejected", zap.Error(err))
	}

	// The exact failure kind stays in the logs; the client only learns
	// that it is unauthenticated.
	return apperrors.NewUnauthorized("authentication required")
}

// IdentityFromContext retrieves the verified caller, if any.
func IdentityFromContext(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok
}
