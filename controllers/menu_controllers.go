package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

type MenuController struct {
	Menu *services.MenuService
}

func NewMenuController(menu *services.MenuService) *MenuController {
	return &MenuController{Menu: menu}
}

// GetMenu lists the menu, optionally filtered with ?category=.
func (mc *MenuController) GetMenu(c *gin.Context) {
	items, err := mc.Menu.ListMenu(c.Request.Context(), c.Query("category"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, items)
}

func (mc *MenuController) GetCategories(c *gin.Context) {
	categories, err := mc.Menu.ListCategories(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, categories)
}

func (mc *MenuController) GetMenuItem(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	item, err := mc.Menu.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, item)
}
