package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

const claimsContextKey = "auth_claims"

// Middleware verifies the bearer token and stores the claims on the
// request context.
func Middleware(tokens *TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return errorutil.NewUnauthorized("missing authorization header")
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return errorutil.NewUnauthorized("malformed authorization header")
		}
		claims, err := tokens.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			return errorutil.NewUnauthorized("invalid or expired token")
		}
		c.Locals(claimsContextKey, claims)
		return c.Next()
	}
}

// ClaimsFrom extracts verified claims from the request, nil when the
// request did not pass the middleware.
func ClaimsFrom(c *fiber.Ctx) *Claims {
	claims, _ := c.Locals(claimsContextKey).(*Claims)
	return claims
}

// RequireRole gates a route to the given staff roles.
func RequireRole(roles ...domain.StaffRole) fiber.Handler {
	allowed := make(map[domain.StaffRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		claims := ClaimsFrom(c)
		if claims == nil {
			return errorutil.NewUnauthorized("authentication required")
		}
		if _, ok := allowed[claims.Role]; !ok {
			return errorutil.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
