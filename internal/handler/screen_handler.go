package handler

import (
	"github.com/gin-gonic/gin"

	bookingDomain "github.com/trailhead/service-bookings/internal/domain/booking"
	"github.com/trailhead/service-bookings/internal/platform/auth"
	"github.com/trailhead/service-bookings/internal/platform/middleware"
	"github.com/trailhead/service-bookings/internal/platform/response"
	"github.com/trailhead/service-bookings/internal/presentation"
)

// ScreenHandler drives the caller's bookings screen session.
type ScreenHandler struct {
	sessions *presentation.SessionStore
}

// NewScreenHandler creates a new ScreenHandler.
func NewScreenHandler(sessions *presentation.SessionStore) *ScreenHandler {
	return &ScreenHandler{sessions: sessions}
}

// RegisterRoutes registers the screen routes on the given router group.
func (h *ScreenHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	screen := r.Group("/api/v1/bookings/screen")
	screen.Use(middleware.AuthMiddleware(jwtManager))
	{
		screen.GET("", h.Show)
		screen.POST("/load", h.Load)
		screen.POST("/refresh", h.Refresh)
		screen.POST("/load-more/:feed", h.LoadMore)
		screen.DELETE("/errors/:feed", h.DismissError)
		screen.DELETE("", h.Close)
	}
}

// Show handles GET /api/v1/bookings/screen.
func (h *ScreenHandler) Show(c *gin.Context) {
	vm, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, presentation.Render(vm.Snapshot()))
}

// Load handles POST /api/v1/bookings/screen/load. A failed load is part of
// the screen state, so the rendered screen is returned either way.
func (h *ScreenHandler) Load(c *gin.Context) {
	vm, ok := h.session(c)
	if !ok {
		return
	}
	_ = vm.Load(c.Request.Context())
	response.Success(c, presentation.Render(vm.Snapshot()))
}

// Refresh handles POST /api/v1/bookings/screen/refresh.
func (h *ScreenHandler) Refresh(c *gin.Context) {
	vm, ok := h.session(c)
	if !ok {
		return
	}
	_ = vm.Refresh(c.Request.Context())
	response.Success(c, presentation.Render(vm.Snapshot()))
}

// LoadMore handles POST /api/v1/bookings/screen/load-more/:feed. A skipped
// request is not an error; the unchanged screen is returned.
func (h *ScreenHandler) LoadMore(c *gin.Context) {
	feed, ok := parseFeed(c)
	if !ok {
		return
	}
	vm, ok := h.session(c)
	if !ok {
		return
	}

	// failures show up as the section error
	_ = vm.LoadMore(c.Request.Context(), feed)
	response.Success(c, presentation.Render(vm.Snapshot()))
}

// DismissError handles DELETE /api/v1/bookings/screen/errors/:feed.
func (h *ScreenHandler) DismissError(c *gin.Context) {
	feed, ok := parseFeed(c)
	if !ok {
		return
	}
	vm, ok := h.session(c)
	if !ok {
		return
	}
	vm.DismissError(feed)
	response.Success(c, presentation.Render(vm.Snapshot()))
}

// Close handles DELETE /api/v1/bookings/screen.
func (h *ScreenHandler) Close(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	h.sessions.Forget(userID)
	response.NoContent(c)
}

func (h *ScreenHandler) session(c *gin.Context) (*presentation.BookingsViewModel, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return nil, false
	}
	return h.sessions.Get(userID), true
}

func parseFeed(c *gin.Context) (bookingDomain.FeedType, bool) {
	feed, err := bookingDomain.ParseFeedType(c.Param("feed"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return "", false
	}
	return feed, true
}
