package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coachbook/service-scheduling/internal/application"
	"github.com/coachbook/service-scheduling/internal/platform/auth"
	"github.com/coachbook/service-scheduling/internal/platform/middleware"
	"github.com/coachbook/service-scheduling/internal/platform/response"
)

// AvailabilityHandler handles HTTP requests for free/busy slot queries.
type AvailabilityHandler struct {
	service *application.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(service *application.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// RegisterRoutes registers the availability routes on the given router group.
func (h *AvailabilityHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	availability := r.Group("/api/v1/availability")
	availability.Use(middleware.AuthMiddleware(jwtManager))
	{
		availability.GET("", h.GetAvailableSlots)
	}
}

// GetAvailableSlots handles GET /api/v1/availability.
//
// Query parameters: coach_ids (comma-separated, required), day (YYYY-MM-DD,
// required), granularity (minutes, optional). With several coaches the
// returned slots are the intersection of each coach's free set.
func (h *AvailabilityHandler) GetAvailableSlots(c *gin.Context) {
	coachIDs, err := parseCoachIDs(c.Query("coach_ids"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	day, err := time.Parse("2006-01-02", c.Query("day"))
	if err != nil {
		response.BadRequest(c, "day must be in YYYY-MM-DD format")
		return
	}

	granularity := 0
	if raw := c.Query("granularity"); raw != "" {
		granularity, err = strconv.Atoi(raw)
		if err != nil || granularity <= 0 {
			response.BadRequest(c, "granularity must be a positive number of minutes")
			return
		}
	}

	slots, err := h.service.GetAvailableSlots(c.Request.Context(), coachIDs, day, granularity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, slots)
}

func parseCoachIDs(raw string) ([]uuid.UUID, error) {
	if raw == "" {
		return nil, errMissingCoachIDs
	}

	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, errInvalidCoachID
		}
		ids = append(ids, id)
	}
	return ids, nil
}

var (
	errMissingCoachIDs = &paramError{"coach_ids is required"}
	errInvalidCoachID  = &paramError{"coach_ids must be a comma-separated list of UUIDs"}
)

type paramError struct{ msg string }

func (e *paramError) Error() string { return e.msg }
