package controllers

import (
	"errors"
	"fmt"
	"io"

	"github.com/Injajul/Foodify2/entity"
	"github.com/Injajul/Foodify2/pkg/resp"
	"github.com/Injajul/Foodify2/services"
	"github.com/Injajul/Foodify2/utils"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	Svc      *services.CartService
	Checkout *services.CheckoutService
}

func NewCartController(s *services.CartService, co *services.CheckoutService) *CartController {
	return &CartController{Svc: s, Checkout: co}
}

type quantityIn struct {
	Quantity int `json:"quantity"`
}

// below 1 is allowed: add treats it as 1, update as a removal
func quantityInRange(q int) bool { return q <= entity.MaxItemQuantity }

// GET /cart
func (h *CartController) Get(c *gin.Context) {
	cart, err := h.Svc.GetCart(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, cart)
}

// POST /cart/:restaurantId/:productId   body (optional): {"quantity": n}
func (h *CartController) Add(c *gin.Context) {
	restID, ok1 := utils.ParamUint(c, "restaurantId")
	productID, ok2 := utils.ParamUint(c, "productId")
	if !ok1 || !ok2 {
		resp.BadRequest(c, "invalid restaurant or product id")
		return
	}
	in := quantityIn{Quantity: 1}
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		resp.BadRequest(c, err.Error())
		return
	}
	if !quantityInRange(in.Quantity) {
		resp.BadRequest(c, fmt.Sprintf("quantity cannot exceed %d", entity.MaxItemQuantity))
		return
	}

	cart, err := h.Svc.AddItem(c.Request.Context(), utils.CurrentUserID(c), restID, productID, in.Quantity)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, cart)
}

// PATCH /cart/:restaurantId/items/:productId   body: {"quantity": n}
func (h *CartController) UpdateQuantity(c *gin.Context) {
	restID, ok1 := utils.ParamUint(c, "restaurantId")
	productID, ok2 := utils.ParamUint(c, "productId")
	if !ok1 || !ok2 {
		resp.BadRequest(c, "invalid restaurant or product id")
		return
	}
	var in struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadRequest(c, "quantity is required")
		return
	}
	if !quantityInRange(*in.Quantity) {
		resp.BadRequest(c, fmt.Sprintf("quantity cannot exceed %d", entity.MaxItemQuantity))
		return
	}

	cart, err := h.Svc.SetQuantity(c.Request.Context(), utils.CurrentUserID(c), restID, productID, *in.Quantity)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, cart)
}

// DELETE /cart/:restaurantId/:productId
func (h *CartController) RemoveItem(c *gin.Context) {
	restID, ok1 := utils.ParamUint(c, "restaurantId")
	productID, ok2 := utils.ParamUint(c, "productId")
	if !ok1 || !ok2 {
		resp.BadRequest(c, "invalid restaurant or product id")
		return
	}

	cart, err := h.Svc.RemoveItem(c.Request.Context(), utils.CurrentUserID(c), restID, productID)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, cart)
}

// POST /cart/checkout   body: {"address": {...}}
func (h *CartController) CheckoutCart(c *gin.Context) {
	var req services.CheckoutReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		resp.BadRequest(c, err.Error())
		return
	}

	out, err := h.Checkout.Checkout(c.Request.Context(), utils.CurrentUserID(c), req.Address)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, out)
}
