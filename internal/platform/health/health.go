package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves liveness and readiness probes.
type Handler struct {
	db          *gorm.DB
	serviceName string
}

// NewHandler creates a health Handler for the service.
func NewHandler(db *gorm.DB, serviceName string) *Handler {
	return &Handler{db: db, serviceName: serviceName}
}

// RegisterRoutes registers /health/live and /health/ready.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health/live", h.Live)
	r.GET("/health/ready", h.Ready)
}

// Live reports process liveness.
func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": h.serviceName})
}

// Ready reports readiness, including a database ping.
func (h *Handler) Ready(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "service": h.serviceName})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": h.serviceName})
}
