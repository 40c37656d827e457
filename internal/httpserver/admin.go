package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/labstack/echo/v4"
)

type AdminHTTP struct {
	Stats  *service.StatsService
	Ledger *service.DiscountLedger
}

func (h *AdminHTTP) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.stats")

	stats, err := h.Stats.Stats(ctx)
	if err != nil {
		return fail(l, "admin_stats_error", err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHTTP) GenerateDiscount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.generate_discount")

	dc, err := h.Ledger.MintCode(ctx)
	if err != nil {
		return fail(l, "generate_discount_error", err)
	}

	l.Info("discount_generated", "code", dc.Code)
	return c.JSON(http.StatusOK, transport.GenerateDiscountResponse{
		Message:    "Discount code generated",
		Code:       dc.Code,
		Percentage: dc.Percentage,
	})
}
