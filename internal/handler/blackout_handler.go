package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coachbook/service-scheduling/internal/application"
	"github.com/coachbook/service-scheduling/internal/platform/auth"
	"github.com/coachbook/service-scheduling/internal/platform/middleware"
	"github.com/coachbook/service-scheduling/internal/platform/response"
)

// BlackoutHandler handles HTTP requests for coach blackout intervals.
type BlackoutHandler struct {
	service *application.BlackoutService
}

// NewBlackoutHandler creates a new BlackoutHandler.
func NewBlackoutHandler(service *application.BlackoutService) *BlackoutHandler {
	return &BlackoutHandler{service: service}
}

// RegisterRoutes registers the blackout routes. All routes require the coach
// role: blackouts are coach-owned.
func (h *BlackoutHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	blackouts := r.Group("/api/v1/blackouts")
	blackouts.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleCoach))
	{
		blackouts.POST("", h.AddBlackout)
		blackouts.GET("", h.ListBlackouts)
		blackouts.DELETE("/:id", h.RemoveBlackout)
	}
}

// AddBlackout handles POST /api/v1/blackouts.
func (h *BlackoutHandler) AddBlackout(c *gin.Context) {
	coachID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.AddBlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AddBlackout(c.Request.Context(), coachID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBlackouts handles GET /api/v1/blackouts.
func (h *BlackoutHandler) ListBlackouts(c *gin.Context) {
	coachID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	result, err := h.service.GetCoachBlackouts(c.Request.Context(), coachID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// RemoveBlackout handles DELETE /api/v1/blackouts/:id.
func (h *BlackoutHandler) RemoveBlackout(c *gin.Context) {
	blackoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid blackout ID")
		return
	}

	coachID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.RemoveBlackout(c.Request.Context(), coachID, blackoutID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": blackoutID})
}
