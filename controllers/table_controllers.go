package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

type TableController struct {
	Tables *services.TableService
	Orders *services.OrderService
}

func NewTableController(tables *services.TableService, orders *services.OrderService) *TableController {
	return &TableController{Tables: tables, Orders: orders}
}

func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Tables.ListTables(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, tables)
}

func (tc *TableController) GetTable(c *gin.Context) {
	n, err := tableNumberParam(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	table, err := tc.Tables.GetTable(c.Request.Context(), n)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, table)
}

func (tc *TableController) GetTableOrders(c *gin.Context) {
	n, err := tableNumberParam(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	orders, err := tc.Orders.GetOrdersForTable(c.Request.Context(), n)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, orders)
}

type unpaidTotalResponse struct {
	TableNumber int             `json:"tableNumber"`
	UnpaidTotal decimal.Decimal `json:"unpaidTotal"`
}

func (tc *TableController) GetUnpaidTotal(c *gin.Context) {
	n, err := tableNumberParam(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	total, err := tc.Orders.GetUnpaidTotal(c.Request.Context(), n)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, unpaidTotalResponse{TableNumber: n, UnpaidTotal: total})
}

// MarkPaid settles every unpaid order at the table.
func (tc *TableController) MarkPaid(c *gin.Context) {
	n, err := tableNumberParam(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := tc.Orders.MarkTablePaid(c.Request.Context(), n)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, result)
}

type callWaiterRequest struct {
	CustomerName string `json:"customerName"`
}

func (tc *TableController) CallWaiter(c *gin.Context) {
	n, err := tableNumberParam(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	// The body is optional.
	var req callWaiterRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, domain.ValidationError("Invalid request body: %s", err))
		return
	}

	if _, err := tc.Tables.CallWaiter(c.Request.Context(), n, req.CustomerName); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{
		"success": true,
		"message": "Waiter has been notified",
	})
}
