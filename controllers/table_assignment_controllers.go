package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/middlewares"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

type TableAssignmentController struct {
	Assignments *services.AssignmentService
}

func NewTableAssignmentController(assignments *services.AssignmentService) *TableAssignmentController {
	return &TableAssignmentController{Assignments: assignments}
}

func (ac *TableAssignmentController) GetAssignments(c *gin.Context) {
	assignments, err := ac.Assignments.ListAssignments(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, assignments)
}

// GetMyTables lists the tables assigned to the calling waiter.
func (ac *TableAssignmentController) GetMyTables(c *gin.Context) {
	identity, ok := middlewares.IdentityFrom(c)
	if !ok {
		utils.RespondError(c, domain.AuthenticationError("Access token required"))
		return
	}

	tables, err := ac.Assignments.GetTablesForWaiter(c.Request.Context(), identity.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, tables)
}

func (ac *TableAssignmentController) GetWaiters(c *gin.Context) {
	waiters, err := ac.Assignments.ListWaiters(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, waiters)
}

type assignRequest struct {
	WaiterID uint `json:"waiterId"`
}

func (ac *TableAssignmentController) Assign(c *gin.Context) {
	tableID, err := uintParam(c, "tableId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req assignRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	if req.WaiterID == 0 {
		utils.RespondError(c, domain.ValidationError("waiterId is required"))
		return
	}

	assignment, err := ac.Assignments.Assign(c.Request.Context(), tableID, req.WaiterID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, assignment)
}

func (ac *TableAssignmentController) Unassign(c *gin.Context) {
	tableID, err := uintParam(c, "tableId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	assignment, err := ac.Assignments.Unassign(c.Request.Context(), tableID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, assignment)
}
