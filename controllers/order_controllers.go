package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/middlewares"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	if req.SessionID != nil && strings.TrimSpace(*req.SessionID) == "" {
		req.SessionID = nil
	}

	order, err := oc.Orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, order)
}

// GetAllOrders lists orders for staff, optionally filtered with ?status=.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	identity, _ := middlewares.IdentityFrom(c)
	filter := domain.OrderFilter{Role: identity.Role, UserID: identity.UserID}

	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseOrderStatus(raw)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		filter.Status = &status
	}

	orders, err := oc.Orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, orders)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	order, err := oc.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req updateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	order, err := oc.Orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, order)
}

func (oc *OrderController) CancelOrder(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := oc.Orders.CancelOrder(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{
		"success": true,
		"message": "Order cancelled",
	})
}
