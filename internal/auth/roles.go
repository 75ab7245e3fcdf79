package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/link-shortener/internal/domain"
	apperrors "github.com/spec-kit/link-shortener/pkg/util/errorutil"
)

// RoleAllowed reports whether the identity may perform an action restricted
// to the given roles. A missing identity never passes a non-empty role set.
// The check is pure: no I/O, no clock.
func RoleAllowed(identity *Identity, allowed ...domain.Role) bool {
	if len(allowed) == 0 {
		return identity != nil
	}
	if identity == nil {
		return false
	}
	for _, role := range allowed {
		if identity.Role == role {
			return true
		}
	}
	return false
}

// RequireRole guards privileged mutations. The response never reveals which
// role would have been required.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		if !RoleAllowed(identity, allowed...) {
			return apperrors.NewForbidden("forbidden")
		}
		return c.Next()
	}
}
