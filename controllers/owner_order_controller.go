package controllers

import (
	"github.com/Injajul/Foodify2/pkg/resp"
	"github.com/Injajul/Foodify2/services"
	"github.com/Injajul/Foodify2/utils"

	"github.com/gin-gonic/gin"
)

// OwnerOrderController serves restaurant owners.
type OwnerOrderController struct{ Svc *services.OrderService }

func NewOwnerOrderController(s *services.OrderService) *OwnerOrderController {
	return &OwnerOrderController{Svc: s}
}

type statusIn struct {
	Status string `json:"status" binding:"required"`
}

// GET /orders/seller
func (h *OwnerOrderController) List(c *gin.Context) {
	orders, err := h.Svc.ListSellerOrders(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, orders)
}

// PATCH /orders/:id/restaurant/:restaurantId/status   body: {"status": "..."}
func (h *OwnerOrderController) UpdateStatus(c *gin.Context) {
	orderID, ok1 := utils.ParamUint(c, "id")
	restID, ok2 := utils.ParamUint(c, "restaurantId")
	if !ok1 || !ok2 {
		resp.BadRequest(c, "invalid order or restaurant id")
		return
	}
	var in statusIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadRequest(c, "status is required")
		return
	}

	order, err := h.Svc.SetGroupStatus(c.Request.Context(), orderID, restID, in.Status, utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}
