package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repairshop-service/pkg/jwtutil"
	"repairshop-service/pkg/logger"
	"repairshop-service/prometheus"
)

// AuthMiddleware validates the JWT token and extracts the organization
// context. The organization id is derived fresh from the token on every
// request, never carried over between requests.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store user info in context for later use
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)

		// Every data access is scoped by organization; a token without one
		// cannot touch tenant data at all.
		if claims.OrganizationID == nil {
			log.Warn("JWT token does not contain organization_id")
			prometheus.TenantContextMissingCounter.Inc()
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization_id is required in the token"})
		}

		c.Set("organization_id", *claims.OrganizationID)
		c.Set("user_role", claims.Role)
		log.Debug("Request authenticated with organization context",
			zap.Uint("organization_id", *claims.OrganizationID),
			zap.String("role", claims.Role))

		return next(c)
	}
}

// OrgIDFromContext retrieves the organization ID from the context.
// Returns 0, false if it is not set.
func OrgIDFromContext(c echo.Context) (uint, bool) {
	orgID, ok := c.Get("organization_id").(uint)
	return orgID, ok
}

// RoleFromContext retrieves the caller's role from the context
func RoleFromContext(c echo.Context) string {
	role, _ := c.Get("user_role").(string)
	return role
}
