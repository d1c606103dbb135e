package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trailhead/service-bookings/internal/platform/domain"
)

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CursorPage is the data payload of a cursor-paginated list.
type CursorPage struct {
	Items      interface{} `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

// Success writes a 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 with a cursor page.
func Paginated(c *gin.Context, items interface{}, nextCursor string, hasMore bool) {
	Success(c, CursorPage{Items: items, NextCursor: nextCursor, HasMore: hasMore})
}

// NoContent writes a 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 validation error.
func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
		Error: &ErrorBody{Code: domain.CodeValidation, Message: msg},
	})
}

// Unauthorized writes a 401.
func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{
		Error: &ErrorBody{Code: domain.CodeNotAuthenticated, Message: msg},
	})
}

// Forbidden writes a 403.
func Forbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, Envelope{
		Error: &ErrorBody{Code: "FORBIDDEN", Message: msg},
	})
}

// Error maps err to a status code and writes it. Errors that are not
// AppErrors are reported as a generic 500 so internals never leak.
func Error(c *gin.Context, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{
			Error: &ErrorBody{Code: "INTERNAL_ERROR", Message: "internal server error"},
		})
		return
	}
	c.AbortWithStatusJSON(StatusFor(appErr.Code), Envelope{
		Error: &ErrorBody{Code: appErr.Code, Message: appErr.Message},
	})
}

// StatusFor returns the HTTP status for an error code.
func StatusFor(code string) int {
	switch code {
	case domain.CodeNotAuthenticated:
		return http.StatusUnauthorized
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
