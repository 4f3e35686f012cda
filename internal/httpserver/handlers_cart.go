package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

func (h *handlers) addProductToCart(c *gin.Context) {
	productID, err := pathID(c, "productId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	qty, err := strconv.Atoi(c.Param("quantity"))
	if err != nil {
		writeError(c, h.logger, fmt.Errorf("quantity %q: %w", c.Param("quantity"), domain.ErrInvalidInput))
		return
	}
	cart, err := h.deps.CartSvc.AddProductToCart(c.Request.Context(), currentUser(c), productID, qty)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, h.cartView(*cart))
}

func (h *handlers) getUserCart(c *gin.Context) {
	cart, err := h.deps.CartSvc.GetCart(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView(*cart))
}

func (h *handlers) listCarts(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	res, err := h.deps.CartSvc.ListCarts(c.Request.Context(), page)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	for i := range res.Content {
		res.Content[i] = h.cartView(res.Content[i])
	}
	c.JSON(http.StatusOK, res)
}

// updateCartQuantity treats "delete" in any letter case as a one unit
// decrement and any other operation as a one unit increment.
func (h *handlers) updateCartQuantity(c *gin.Context) {
	productID, err := pathID(c, "productId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	delta := 1
	if strings.EqualFold(c.Param("operation"), "delete") {
		delta = -1
	}
	cart, err := h.deps.CartSvc.UpdateProductQuantityInCart(c.Request.Context(), currentUser(c), productID, delta)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView(*cart))
}

func (h *handlers) deleteProductFromCart(c *gin.Context) {
	cartID, err := pathID(c, "cartId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	user := currentUser(c)
	if !user.IsStaff() {
		own, err := h.deps.CartSvc.GetCart(c.Request.Context(), user)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		if own.ID != cartID {
			writeError(c, h.logger, fmt.Errorf("cart %d: %w", cartID, domain.ErrNotFound))
			return
		}
	}

	if err := h.deps.CartSvc.DeleteProductFromCart(c.Request.Context(), cartID, productID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{Message: fmt.Sprintf("Product %d removed from the cart", productID), Status: true})
}

func (h *handlers) bulkUpsertCart(c *gin.Context) {
	var items []domain.ItemQuantity
	if err := c.ShouldBindJSON(&items); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}
	res, err := h.deps.CartSvc.CreateOrUpdateCartWithItems(c.Request.Context(), currentUser(c), items)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *handlers) cartView(cart domain.Cart) domain.Cart {
	items := make([]domain.CartItem, len(cart.Items))
	for i, it := range cart.Items {
		it.Image = h.deps.ProductSvc.ImageURL(it.Image)
		items[i] = it
	}
	cart.Items = items
	return cart
}
