package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/middlewares"
	"github.com/yeremiapane/table-ordering/realtime"
	"github.com/yeremiapane/table-ordering/utils"
)

type RealtimeController struct {
	Hub *realtime.Hub
	Log logrus.FieldLogger
}

func NewRealtimeController(hub *realtime.Hub, log logrus.FieldLogger) *RealtimeController {
	return &RealtimeController{Hub: hub, Log: log}
}

// Connect upgrades to a websocket. Callers without a token join as customers.
func (rc *RealtimeController) Connect(c *gin.Context) {
	role := domain.RoleCustomer
	var userID uint
	if identity, ok := middlewares.IdentityFrom(c); ok {
		role = identity.Role
		userID = identity.UserID
	}

	if err := rc.Hub.ServeWS(c.Writer, c.Request, role, userID); err != nil {
		// The upgrader has already written the HTTP error.
		rc.Log.WithError(err).Debug("websocket upgrade failed")
	}
}

type statsResponse struct {
	Total  int                 `json:"total"`
	ByRole map[domain.Role]int `json:"byRole"`
}

func (rc *RealtimeController) Stats(c *gin.Context) {
	byRole := rc.Hub.Stats()
	total := 0
	for _, n := range byRole {
		total += n
	}
	utils.RespondJSON(c, http.StatusOK, statsResponse{Total: total, ByRole: byRole})
}
