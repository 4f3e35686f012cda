package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	ordersvc "storefront/internal/service/order"
)

type orderRequest struct {
	AddressID         int64  `json:"addressId" binding:"required"`
	PGName            string `json:"pgName"`
	PGPaymentID       string `json:"pgPaymentId"`
	PGStatus          string `json:"pgStatus"`
	PGResponseMessage string `json:"pgResponseMessage"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type addressRequest struct {
	Street       string `json:"street" binding:"required"`
	BuildingName string `json:"buildingName"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state"`
	Country      string `json:"country" binding:"required"`
	Pincode      string `json:"pincode"`
}

func (h *handlers) placeOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}
	o, err := h.deps.OrderSvc.PlaceOrder(c.Request.Context(), currentUser(c), c.Param("paymentMethod"), ordersvc.PaymentInput{
		AddressID:         req.AddressID,
		PGName:            req.PGName,
		PGPaymentID:       req.PGPaymentID,
		PGStatus:          req.PGStatus,
		PGResponseMessage: req.PGResponseMessage,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *handlers) listOrders(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	res, err := h.deps.OrderSvc.ListOrders(c.Request.Context(), page)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) listUserOrders(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	res, err := h.deps.OrderSvc.ListUserOrders(c.Request.Context(), currentUser(c), page)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	id, err := pathID(c, "orderId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}
	o, err := h.deps.OrderSvc.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) analytics(c *gin.Context) {
	a, err := h.deps.OrderSvc.Analytics(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (r addressRequest) address() domain.Address {
	return domain.Address{
		Street:       r.Street,
		BuildingName: r.BuildingName,
		City:         r.City,
		State:        r.State,
		Country:      r.Country,
		Pincode:      r.Pincode,
	}
}

func (h *handlers) createAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}
	a, err := h.deps.AddressSvc.Create(c.Request.Context(), currentUser(c), req.address())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *handlers) listAddresses(c *gin.Context) {
	list, err := h.deps.AddressSvc.List(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handlers) listAllAddresses(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	res, err := h.deps.AddressSvc.ListAll(c.Request.Context(), page)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) getAddress(c *gin.Context) {
	id, err := pathID(c, "addressId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	a, err := h.deps.AddressSvc.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handlers) updateAddress(c *gin.Context) {
	id, err := pathID(c, "addressId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}
	a, err := h.deps.AddressSvc.Update(c.Request.Context(), currentUser(c), id, req.address())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handlers) deleteAddress(c *gin.Context) {
	id, err := pathID(c, "addressId")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if _, err := h.deps.AddressSvc.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{Message: fmt.Sprintf("Address deleted successfully with addressId: %d", id), Status: true})
}
