package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/logging"
	authmw "github.com/Skotchmaster/shop_backend/internal/middleware/auth"
	"github.com/Skotchmaster/shop_backend/internal/service"
	"github.com/Skotchmaster/shop_backend/internal/tokens"
	"github.com/Skotchmaster/shop_backend/internal/transport"
	"github.com/Skotchmaster/shop_backend/internal/validation"
)

type AccountHTTP struct {
	Svc          *service.AccountService
	SecureCookie bool
}

func (h *AccountHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_failed", "status", 400, "reason", "invalid body", "error", err)
		return message(c, http.StatusBadRequest, "Invalid request body")
	}

	user, err := h.Svc.Signup(ctx, req)
	if err != nil {
		var verr *validation.Errors
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			l.Warn("signup_failed", "status", 400, "reason", "missing fields")
			return message(c, http.StatusBadRequest, "All fields must be entered!")
		case errors.Is(err, service.ErrDuplicateEmail):
			l.Warn("signup_failed", "status", 400, "reason", "email already exists")
			return message(c, http.StatusBadRequest, "Email already exists")
		case errors.As(err, &verr):
			l.Warn("signup_failed", "status", 400, "reason", "validation", "error", err)
			return validationFailed(c, verr)
		default:
			l.Error("signup_failed", "status", 500, "error", err)
			return message(c, http.StatusInternalServerError, "Internal server error")
		}
	}

	l.Info("signup_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *AccountHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return message(c, http.StatusBadRequest, "Invalid request body")
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		var verr *validation.Errors
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			l.Warn("login_failed", "status", 400, "reason", "missing fields")
			return message(c, http.StatusBadRequest, "All fields must be entered!")
		case errors.As(err, &verr):
			l.Warn("login_failed", "status", 400, "reason", "validation", "error", err)
			return validationFailed(c, verr)
		case errors.Is(err, service.ErrEmailNotFound):
			l.Warn("login_failed", "status", 404, "reason", "email not registered")
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Email not registered"})
		case errors.Is(err, service.ErrInvalidPassword):
			l.Warn("login_failed", "status", 401, "reason", "invalid password")
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Invalid password!"})
		default:
			l.Error("login_failed", "status", 500, "error", err)
			return message(c, http.StatusInternalServerError, "Internal server error")
		}
	}

	issuer := h.Svc.Tokens
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.Tokens.AccessToken, res.Tokens.AccessExp, issuer.AccessTTL, h.SecureCookie))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, res.Tokens.RefreshToken, res.Tokens.RefreshExp, issuer.RefreshTTL, h.SecureCookie))

	l.Info("login_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "user logged in successfully",
		"user":    res.User,
	})
}

func (h *AccountHTTP) Logout(c echo.Context) error {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, h.SecureCookie))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, h.SecureCookie))
	logging.FromContext(c.Request().Context()).Info("logout_success")
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out successfully"})
}

func (h *AccountHTTP) Validate(c echo.Context) error {
	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return message(c, http.StatusUnauthorized, "Access denied. No valid token provided.")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"message":  "Authorized",
		"authUser": id,
	})
}
