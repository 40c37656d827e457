package httpserver

import (
	"net/http"
	"strconv"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/labstack/echo/v4"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	cart, err := h.Svc.GetCart(ctx, c.Param("cartId"))
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	view, err := h.Svc.View(ctx, cart)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return err
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	cart, err := h.Svc.AddItem(ctx, req.CartID, req.ProductID, qty)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}
	view, err := h.Svc.View(ctx, cart)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("item added to cart", "cart_id", cart.ID, "product_id", req.ProductID)
	return c.JSON(http.StatusOK, transport.AddToCartResponse{CartID: cart.ID, Cart: view})
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	qty, err := strconv.Atoi(c.QueryParam("quantity"))
	if err != nil {
		l.Warn("update_cart_item_error", "status", 400, "reason", "quantity is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be an integer")
	}

	cart, err := h.Svc.SetItemQuantity(ctx, c.Param("cartId"), c.Param("productId"), qty)
	if err != nil {
		return fail(l, "update_cart_item_error", err)
	}
	view, err := h.Svc.View(ctx, cart)
	if err != nil {
		return fail(l, "update_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, transport.CartResponse{Message: "Cart updated", Cart: view})
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	cart, err := h.Svc.RemoveItem(ctx, c.Param("cartId"), c.Param("productId"))
	if err != nil {
		return fail(l, "remove_cart_item_error", err)
	}
	view, err := h.Svc.View(ctx, cart)
	if err != nil {
		return fail(l, "remove_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, transport.CartResponse{Message: "Item removed", Cart: view})
}
