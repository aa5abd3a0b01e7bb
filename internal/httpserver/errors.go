package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/logging"
	"github.com/Skotchmaster/shop_backend/internal/validation"
)

// ErrorHandler is the fallback for anything a handler did not answer itself.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	l := logging.FromContext(c.Request().Context())

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch {
		case he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed:
			err = c.JSON(http.StatusNotFound, echo.Map{"error": "Route not found"})
		case he.Code < http.StatusInternalServerError:
			err = c.JSON(he.Code, echo.Map{"message": he.Message})
		default:
			l.Error("unhandled_error", "status", he.Code, "error", he)
			err = c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
		}
	} else {
		l.Error("unhandled_error", "status", 500, "error", err)
		err = c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	if err != nil {
		l.Error("error_response_failed", "error", err)
	}
}

func validationFailed(c echo.Context, verr *validation.Errors) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"message": "Validation errors",
		"errors":  verr.Messages,
	})
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}
