package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type cartResponse struct {
	domain.Cart
	// Stale is set when the store could not be read and the last known view is returned.
	Stale bool `json:"stale,omitempty"`
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type checkoutResponse struct {
	Cart    domain.Cart `json:"cart"`
	Message string      `json:"message"`
}

func (h *handlers) manager(c *gin.Context) (*cart.Manager, bool) {
	mgr, err := h.deps.Carts.For(c.Request.Context(), identityFrom(c))
	if mgr == nil {
		writeError(c, h.logger, err)
		return nil, false
	}
	return mgr, true
}

func (h *handlers) writeCart(c *gin.Context, mgr *cart.Manager) {
	c.JSON(http.StatusOK, cartResponse{Cart: mgr.Cart()})
}

func (h *handlers) getCart(c *gin.Context) {
	mgr, ok := h.manager(c)
	if !ok {
		return
	}
	if err := mgr.Refresh(c.Request.Context()); err != nil {
		if errors.Is(err, domain.ErrStoreRead) {
			c.JSON(http.StatusOK, cartResponse{Cart: mgr.Cart(), Stale: true})
			return
		}
		writeError(c, h.logger, err)
		return
	}
	h.writeCart(c, mgr)
}

// addCartItem refuses products that are out of stock or already at their
// stock ceiling in the cart. The ceiling is checked under the user's lock.
func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, domain.NewValidationError("productId", "is required"))
		return
	}
	ctx := c.Request.Context()
	product, err := h.deps.Catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if !product.InStock() {
		writeConflict(c, "out_of_stock", "product is out of stock")
		return
	}
	mgr, ok := h.manager(c)
	if !ok {
		return
	}
	if err := mgr.AddItemUpTo(ctx, product.ID, product.Stock); err != nil {
		if errors.Is(err, cart.ErrStockLimit) {
			writeConflict(c, "stock_limit", "no more units of this product are available")
			return
		}
		writeError(c, h.logger, err)
		return
	}
	h.writeCart(c, mgr)
}

func (h *handlers) setCartItemQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, domain.NewValidationError("quantity", "is required"))
		return
	}
	mgr, ok := h.manager(c)
	if !ok {
		return
	}
	lineID := c.Param("id")
	quantity := *req.Quantity
	for _, line := range mgr.Items() {
		if line.ID == lineID {
			quantity = clampQuantity(quantity, line.Quantity, line.Product.Stock)
			break
		}
	}
	if err := mgr.SetQuantity(c.Request.Context(), lineID, quantity); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.writeCart(c, mgr)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	mgr, ok := h.manager(c)
	if !ok {
		return
	}
	if err := mgr.RemoveItem(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.writeCart(c, mgr)
}

func (h *handlers) clearCart(c *gin.Context) {
	mgr, ok := h.manager(c)
	if !ok {
		return
	}
	if err := mgr.Clear(c.Request.Context()); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.writeCart(c, mgr)
}

func (h *handlers) checkout(c *gin.Context) {
	mgr, ok := h.manager(c)
	if !ok {
		return
	}
	view, err := mgr.Checkout(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, checkoutResponse{Cart: view, Message: "checkout is not available yet"})
}

// clampQuantity stops a quantity from growing past the snapshot stock.
// Decreases are always allowed, even when the line is above stock.
func clampQuantity(requested, current, stock int) int {
	if requested <= current || requested <= stock {
		return requested
	}
	if current > stock {
		return current
	}
	return stock
}
