package controllers

import (
	"github.com/Injajul/Foodify2/pkg/resp"
	"github.com/Injajul/Foodify2/services"
	"github.com/Injajul/Foodify2/utils"

	"github.com/gin-gonic/gin"
)

type MenuController struct {
	Service *services.MenuService
}

func NewMenuController(s *services.MenuService) *MenuController {
	return &MenuController{Service: s}
}

// GET /restaurants/:restaurantId/menu   (public)
func (ctl *MenuController) Get(c *gin.Context) {
	restID, ok := utils.ParamUint(c, "restaurantId")
	if !ok {
		resp.BadRequest(c, "invalid restaurant id")
		return
	}
	menu, err := ctl.Service.Menu(c.Request.Context(), restID)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, menu)
}
