package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coachbook/service-scheduling/internal/platform/domain"
)

// envelope is the standard JSON body for all responses.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type paginatedEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, paginatedEnvelope{
		Success: true,
		Data:    items,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// BadRequest writes a 400 response with a validation error body.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Error:   &errorBody{Code: string(domain.CodeValidation), Message: message},
	})
}

// Error maps a domain error to the appropriate HTTP status. Non-domain errors
// become opaque 500s so internal details never leak to callers.
func Error(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	status := statusFor(code)

	message := err.Error()
	if code == "" {
		code = "INTERNAL_ERROR"
		message = "internal server error"
	}

	c.JSON(status, envelope{
		Success: false,
		Error:   &errorBody{Code: string(code), Message: message},
	})
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation, domain.CodeInvalidTimeRange:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict, domain.CodeSlotUnavailable,
		domain.CodeBookingTerminal, domain.CodeInvalidState,
		domain.CodeNotReadyForConfirmation:
		return http.StatusConflict
	case domain.CodeForbidden, domain.CodeUnknownParticipant:
		return http.StatusForbidden
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeTimeout:
		return http.StatusRequestTimeout
	case domain.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
