package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-ordering/middlewares"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

type SessionController struct {
	Sessions *services.SessionService
}

func NewSessionController(sessions *services.SessionService) *SessionController {
	return &SessionController{Sessions: sessions}
}

type createSessionRequest struct {
	TableNumber  int     `json:"tableNumber"`
	DeviceID     string  `json:"deviceId"`
	CustomerID   *uint   `json:"customerId"`
	CustomerName *string `json:"customerName"`
}

type createSessionResponse struct {
	SessionID   string    `json:"sessionId"`
	TableNumber int       `json:"tableNumber"`
	DeviceID    string    `json:"deviceId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (sc *SessionController) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	in := services.CreateSessionInput{
		TableNumber:  req.TableNumber,
		DeviceID:     req.DeviceID,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
	}
	if identity, ok := middlewares.IdentityFrom(c); ok {
		in.Caller = &identity
	}

	session, err := sc.Sessions.CreateSession(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, createSessionResponse{
		SessionID:   session.ID,
		TableNumber: session.TableNumber,
		DeviceID:    session.DeviceID,
		CreatedAt:   session.CreatedAt,
	})
}

func (sc *SessionController) GetSession(c *gin.Context) {
	detail, err := sc.Sessions.GetSessionWithOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, detail)
}

func (sc *SessionController) GetSessionOrders(c *gin.Context) {
	orders, err := sc.Sessions.GetOrdersForSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, orders)
}

func (sc *SessionController) GetTableSessions(c *gin.Context) {
	n, err := tableNumberParam(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	sessions, err := sc.Sessions.ListActiveForTable(c.Request.Context(), n)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, sessions)
}

func (sc *SessionController) Heartbeat(c *gin.Context) {
	at, err := sc.Sessions.Heartbeat(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{
		"success":      true,
		"lastActivity": at,
	})
}

func (sc *SessionController) EndSession(c *gin.Context) {
	if err := sc.Sessions.EndSession(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{
		"success": true,
		"message": "Session ended",
	})
}

// Cleanup runs the inactivity rule immediately instead of waiting for the sweeper.
func (sc *SessionController) Cleanup(c *gin.Context) {
	n, err := sc.Sessions.CleanupInactive(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{
		"success":     true,
		"deactivated": n,
	})
}
