package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/trailhead/service-bookings/internal/platform/auth"
	"github.com/trailhead/service-bookings/internal/platform/domain"
	"github.com/trailhead/service-bookings/internal/platform/middleware"
	"github.com/trailhead/service-bookings/internal/platform/response"
	"github.com/trailhead/service-bookings/internal/presentation"
)

// AdminSessionHandler handles admin requests for open screen sessions.
type AdminSessionHandler struct {
	sessions *presentation.SessionStore
}

// NewAdminSessionHandler creates a new AdminSessionHandler.
func NewAdminSessionHandler(sessions *presentation.SessionStore) *AdminSessionHandler {
	return &AdminSessionHandler{sessions: sessions}
}

// RegisterRoutes registers admin session routes.
func (h *AdminSessionHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/stats/sessions", h.SessionStats)
		admin.POST("/sessions/:userId/stale", h.MarkStale)
		admin.DELETE("/sessions/:userId", h.Forget)
	}
}

// SessionStats handles GET /api/v1/admin/stats/sessions.
func (h *AdminSessionHandler) SessionStats(c *gin.Context) {
	response.Success(c, gin.H{"open_sessions": h.sessions.Len()})
}

// MarkStale handles POST /api/v1/admin/sessions/:userId/stale.
func (h *AdminSessionHandler) MarkStale(c *gin.Context) {
	userID := c.Param("userId")
	if !h.sessions.MarkStale(userID) {
		response.Error(c, domain.NewNotFoundError("session", userID))
		return
	}
	response.NoContent(c)
}

// Forget handles DELETE /api/v1/admin/sessions/:userId.
func (h *AdminSessionHandler) Forget(c *gin.Context) {
	h.sessions.Forget(c.Param("userId"))
	response.NoContent(c)
}
