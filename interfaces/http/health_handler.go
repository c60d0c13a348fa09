package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type IHealthHandler interface {
	Healthz(c *gin.Context)
}

type HealthHandler struct {
	historyEnabled bool
}

func NewHealthHandler(historyEnabled bool) IHealthHandler {
	return &HealthHandler{historyEnabled: historyEnabled}
}

// Healthz returns OK for health checks
func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "history": h.historyEnabled})
}
