package controllers

import (
	"github.com/Injajul/Foodify2/pkg/resp"
	"github.com/Injajul/Foodify2/services"
	"github.com/Injajul/Foodify2/utils"

	"github.com/gin-gonic/gin"
)

type OrderController struct{ Svc *services.OrderService }

func NewOrderController(s *services.OrderService) *OrderController {
	return &OrderController{Svc: s}
}

// GET /orders/user
func (h *OrderController) ListMine(c *gin.Context) {
	orders, err := h.Svc.ListUserOrders(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, orders)
}

// PATCH /orders/:id/cancel
func (h *OrderController) Cancel(c *gin.Context) {
	orderID, ok := utils.ParamUint(c, "id")
	if !ok {
		resp.BadRequest(c, "invalid order id")
		return
	}
	order, err := h.Svc.CancelOrder(c.Request.Context(), orderID, utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}
