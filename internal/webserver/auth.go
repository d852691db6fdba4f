package webserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/randcc/cashcarry/internal/domain"
)

// userContextKey is where guards stash the resolved account for handlers.
const userContextKey = "auth_user"

// ResolveUser resolves the caller from the request token. ok is false for a
// missing token, an unknown token, or a token whose user no longer exists.
func ResolveUser(c echo.Context) (*domain.User, bool) {
	token := c.Request().Header.Get(TokenHeader)
	if token == "" {
		return nil, false
	}
	return server.resolver.UserFromToken(token)
}

// CurrentUser returns the account a guard attached to the request context.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userContextKey).(*domain.User)
	return user
}

// RequireRole gates a route on the caller's role. Missing token, garbage
// token and wrong role all collapse to the same 403; the guard gives an
// unauthenticated probe nothing to distinguish.
func RequireRole(message string, roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := ResolveUser(c)
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"message": message})
			}
			if _, ok := allowed[user.Role]; !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"message": message})
			}
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// AdminOnly guards routes reserved for admins.
func AdminOnly() echo.MiddlewareFunc {
	return RequireRole("Admin only", domain.RoleAdmin)
}

// AdminOrRep guards routes open to back-office staff.
func AdminOrRep() echo.MiddlewareFunc {
	return RequireRole("Admin or rep only", domain.RoleAdmin, domain.RoleRep)
}

// RequireAuth gates a route on any valid token, role aside. Unlike the role
// guards this reports 401, not 403.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := ResolveUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authenticated"})
			}
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}
