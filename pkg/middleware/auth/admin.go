package middleware

import (
	"net/http"
	"strings"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/labstack/echo/v4"
)

const accessCookie = "accessToken"

type AdminGuard struct {
	JWTSecret []byte
}

func NewAdminGuard(secret []byte) *AdminGuard {
	return &AdminGuard{JWTSecret: secret}
}

// RequireAdmin lets a request through only with an admin access token,
// taken from the Authorization header or the accessToken cookie. A guard
// without a secret lets everything through.
func (m *AdminGuard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if len(m.JWTSecret) == 0 {
			return next(c)
		}
		l := logging.FromContext(c.Request().Context()).With("middleware", "require.admin")

		raw := bearerToken(c)
		if raw == "" {
			l.Warn("admin_auth_error", "status", 401, "reason", "missing token")
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			l.Warn("admin_auth_error", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		if claims.Role != tokens.RoleAdmin {
			l.Warn("admin_auth_error", "status", 403, "subject", claims.Subject)
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if v, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	if ck, err := c.Cookie(accessCookie); err == nil {
		return ck.Value
	}
	return ""
}
