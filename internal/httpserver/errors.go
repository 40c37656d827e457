package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/labstack/echo/v4"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidDiscountCode):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDiscountAlreadyUsed),
		errors.Is(err, service.ErrCartAlreadyCheckedOut):
		return http.StatusConflict
	case errors.Is(err, service.ErrProductUnavailable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err under event and turns it into the matching HTTP error.
// Storage failures are logged in full but never leak to the client.
func fail(l *slog.Logger, event string, err error) error {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
		return echo.NewHTTPError(status, "internal server error")
	}
	l.Warn(event, "status", status, "error", err)
	return echo.NewHTTPError(status, err.Error())
}

// ErrorHandler renders every error as {"detail": "..."}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	detail := "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		detail = fmt.Sprint(he.Message)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, transport.ErrorResponse{Detail: detail})
}
