package httpserver

import (
	"net/http"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type Deps struct {
	CatalogHandler  *CatalogHTTP
	CartHandler     *CartHTTP
	CheckoutHandler *CheckoutHTTP
	AdminHandler    *AdminHTTP
	AdminSecret     []byte
	DB              *gorm.DB
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	api := e.Group("/api")

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	cart := api.Group("/cart")
	cart.POST("/add", d.CartHandler.AddToCart)
	cart.GET("/:cartId", d.CartHandler.GetCart)
	cart.PUT("/:cartId/item/:productId", d.CartHandler.UpdateItem)
	cart.DELETE("/:cartId/item/:productId", d.CartHandler.RemoveItem)

	api.POST("/checkout", d.CheckoutHandler.Checkout)

	guard := middleware.NewAdminGuard(d.AdminSecret)
	admin := api.Group("/admin", guard.RequireAdmin)
	admin.GET("/stats", d.AdminHandler.GetStats)
	admin.POST("/generate-discount", d.AdminHandler.GenerateDiscount)
}

// ready reports whether the database answers.
func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	sqlDB, err := d.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.NoContent(http.StatusOK)
}
