package controllers

import (
	"github.com/Injajul/Foodify2/pkg/resp"
	"github.com/Injajul/Foodify2/services"
	"github.com/Injajul/Foodify2/utils"

	"github.com/gin-gonic/gin"
)

type ReviewController struct{ Svc *services.ReviewService }

func NewReviewController(s *services.ReviewService) *ReviewController {
	return &ReviewController{Svc: s}
}

// POST /reviews/:productId   body: {"rating": 1..5, "comment": "..."}
func (h *ReviewController) Upsert(c *gin.Context) {
	productID, ok := utils.ParamUint(c, "productId")
	if !ok {
		resp.BadRequest(c, "invalid product id")
		return
	}
	var in services.ReviewIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadRequest(c, "rating is required")
		return
	}

	rv, err := h.Svc.Upsert(c.Request.Context(), utils.CurrentUserID(c), productID, in.Rating, in.Comment)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rv)
}

// GET /reviews/:productId
func (h *ReviewController) List(c *gin.Context) {
	productID, ok := utils.ParamUint(c, "productId")
	if !ok {
		resp.BadRequest(c, "invalid product id")
		return
	}
	rows, err := h.Svc.ListForProduct(c.Request.Context(), productID)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rows)
}
