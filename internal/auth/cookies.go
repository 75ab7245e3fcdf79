package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Cookie names carrying the token pair.
const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// SetSessionCookies writes both session tokens as hardened cookies. Tokens
// never reach script-accessible storage: HttpOnly, Secure, SameSite=Strict,
// scoped to the whole site, with max-age matching each token's lifetime.
func SetSessionCookies(c *fiber.Ctx, session *Session) {
	c.Cookie(sessionCookie(RefreshCookieName, session.RefreshToken, session.RefreshExpiresAt))
	c.Cookie(sessionCookie(AccessCookieName, session.AccessToken, session.AccessExpiresAt))
}

// SetAccessCookie writes a fresh access token cookie after a refresh exchange.
func SetAccessCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(sessionCookie(AccessCookieName, token, expiresAt))
}

func sessionCookie(name, value string, expiresAt time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}

// AccessFromRequest extracts the access token cookie. Absence is reported as
// an empty string; absence policy belongs to the middleware.
func AccessFromRequest(c *fiber.Ctx) string {
	return c.Cookies(AccessCookieName)
}

// RefreshFromRequest extracts the refresh token cookie.
func RefreshFromRequest(c *fiber.Ctx) string {
	return c.Cookies(RefreshCookieName)
}
