package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/utils"
)

type HealthController struct {
	DB  *gorm.DB
	Env string
}

func NewHealthController(db *gorm.DB, env string) *HealthController {
	return &HealthController{DB: db, Env: env}
}

// Health reports ok while the database answers a ping.
func (hc *HealthController) Health(c *gin.Context) {
	sqlDB, err := hc.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		utils.RespondError(c, domain.StoreUnavailableError(err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, gin.H{
		"status":      "ok",
		"timestamp":   time.Now().UTC(),
		"environment": hc.Env,
	})
}
