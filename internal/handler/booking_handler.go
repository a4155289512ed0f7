package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coachbook/service-scheduling/internal/application"
	"github.com/coachbook/service-scheduling/internal/platform/auth"
	"github.com/coachbook/service-scheduling/internal/platform/middleware"
	"github.com/coachbook/service-scheduling/internal/platform/response"
)

// BookingHandler handles HTTP requests for booking lifecycle operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(auth.RoleClient), h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/accept", middleware.RequireRole(auth.RoleCoach), h.CoachAccept)
		bookings.POST("/:id/reject", middleware.RequireRole(auth.RoleCoach), h.CoachReject)
		bookings.POST("/:id/confirm", middleware.RequireRole(auth.RoleClient), h.ClientConfirm)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	clientID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// The authenticated caller is always one of the booking's clients.
	if !containsID(req.ClientIDs, clientID) {
		req.ClientIDs = append(req.ClientIDs, clientID)
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Coaches see bookings naming
// them as coach; clients see theirs.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	switch role {
	case auth.RoleCoach:
		result, err := h.service.GetCoachBookings(c.Request.Context(), userID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)

	default:
		result, err := h.service.GetClientBookings(c.Request.Context(), userID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
	}
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CoachAccept handles POST /api/v1/bookings/:id/accept.
func (h *BookingHandler) CoachAccept(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	coachID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.CoachAccept(c.Request.Context(), bookingID, coachID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CoachReject handles POST /api/v1/bookings/:id/reject.
func (h *BookingHandler) CoachReject(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	coachID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.service.CoachReject(c.Request.Context(), bookingID, coachID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ClientConfirm handles POST /api/v1/bookings/:id/confirm.
func (h *BookingHandler) ClientConfirm(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	clientID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.ClientConfirm(c.Request.Context(), bookingID, clientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
