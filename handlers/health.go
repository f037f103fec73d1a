package handlers

import (
	"net/http"

	"estatepro/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last health check of the state store and gateway.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	state := "ok"
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "services": status.Services, "checkedAt": status.CheckedAt})
}
