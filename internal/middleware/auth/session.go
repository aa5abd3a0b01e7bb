package authmw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/logging"
	"github.com/Skotchmaster/shop_backend/internal/tokens"
)

const identityKey = "auth_user"

// Session authenticates requests from the access cookie and silently renews
// it from the refresh cookie once it has expired.
type Session struct {
	Tokens *tokens.Issuer
	Secure bool
}

func NewSession(issuer *tokens.Issuer, secure bool) *Session {
	return &Session{Tokens: issuer, Secure: secure}
}

func (m *Session) Require(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "session")

		if ck, err := c.Cookie(tokens.AccessCookie); err == nil && ck.Value != "" {
			if claims, err := m.Tokens.ParseAccess(ck.Value); err == nil {
				setIdentity(c, claims.Identity())
				return next(c)
			}
		}

		ck, err := c.Cookie(tokens.RefreshCookie)
		if err != nil || ck.Value == "" {
			m.clear(c)
			l.Warn("session_rejected", "status", 401, "reason", "no valid token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Access denied. No valid token provided."})
		}

		claims, err := m.Tokens.ParseRefresh(ck.Value)
		if err != nil {
			m.clear(c)
			l.Warn("session_rejected", "status", 401, "reason", "invalid refresh token", "error", err)
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Session expired. Please log in again."})
		}

		id := claims.Identity()
		access, exp, err := m.Tokens.IssueAccess(id)
		if err != nil {
			l.Error("session_renew_failed", "status", 500, "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}
		c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, access, exp, m.Tokens.AccessTTL, m.Secure))
		l.Info("session_renewed", "user_id", id.ID)

		setIdentity(c, id)
		return next(c)
	}
}

func (m *Session) clear(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, m.Secure))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, m.Secure))
}

func setIdentity(c echo.Context, id tokens.Identity) {
	c.Set(identityKey, id)
	req := c.Request()
	l := logging.FromContext(req.Context()).With("user_id", id.ID)
	c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
}

// IdentityFrom returns the identity attached by Require.
func IdentityFrom(c echo.Context) (tokens.Identity, bool) {
	id, ok := c.Get(identityKey).(tokens.Identity)
	return id, ok
}
