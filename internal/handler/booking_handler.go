package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/trailhead/service-bookings/internal/application"
	"github.com/trailhead/service-bookings/internal/docstore"
	bookingDomain "github.com/trailhead/service-bookings/internal/domain/booking"
	"github.com/trailhead/service-bookings/internal/platform/auth"
	"github.com/trailhead/service-bookings/internal/platform/middleware"
	"github.com/trailhead/service-bookings/internal/platform/response"
)

// MaxPageSize bounds the limit query parameter.
const MaxPageSize = 50

// BookingHandler serves the read-only booking feeds.
type BookingHandler struct {
	upcoming *application.GetUpcomingBookingsUseCase
	past     *application.GetPastBookingsUseCase
	all      *application.GetAllBookingsUseCase
	history  *application.GetBookingHistoryUseCase
	pageSize int
}

// NewBookingHandler creates a new BookingHandler. pageSize is the limit used
// when a request does not pass one.
func NewBookingHandler(
	upcoming *application.GetUpcomingBookingsUseCase,
	past *application.GetPastBookingsUseCase,
	all *application.GetAllBookingsUseCase,
	history *application.GetBookingHistoryUseCase,
	pageSize int,
) *BookingHandler {
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = bookingDomain.DefaultPageSize
	}
	return &BookingHandler{
		upcoming: upcoming,
		past:     past,
		all:      all,
		history:  history,
		pageSize: pageSize,
	}
}

// RegisterRoutes registers all booking feed routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	bookings := r.Group("/api/v1/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	{
		bookings.GET("/upcoming", h.ListUpcoming)
		bookings.GET("/past", h.ListPast)
		bookings.GET("/overview", h.Overview)
		bookings.GET("/history", h.History)
	}
}

// ListUpcoming handles GET /api/v1/bookings/upcoming.
func (h *BookingHandler) ListUpcoming(c *gin.Context) {
	limit, cursor, ok := h.parsePageRequest(c)
	if !ok {
		return
	}

	page, err := h.upcoming.Execute(c.Request.Context(), limit, cursor)
	if err != nil {
		response.Error(c, err)
		return
	}

	dto := application.ToPageDTO(page)
	response.Paginated(c, dto.Bookings, dto.NextCursor, dto.HasMore)
}

// ListPast handles GET /api/v1/bookings/past.
func (h *BookingHandler) ListPast(c *gin.Context) {
	limit, cursor, ok := h.parsePageRequest(c)
	if !ok {
		return
	}

	page, err := h.past.Execute(c.Request.Context(), limit, cursor)
	if err != nil {
		response.Error(c, err)
		return
	}

	dto := application.ToPageDTO(page)
	response.Paginated(c, dto.Bookings, dto.NextCursor, dto.HasMore)
}

// OverviewResponse is the first page of both feeds. A feed that could not be
// loaded is missing and has an entry in Errors.
type OverviewResponse struct {
	Upcoming *application.PageDTO `json:"upcoming"`
	Past     *application.PageDTO `json:"past"`
	Errors   map[string]string    `json:"errors,omitempty"`
}

// Overview handles GET /api/v1/bookings/overview.
func (h *BookingHandler) Overview(c *gin.Context) {
	all, err := h.all.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := OverviewResponse{}
	for _, feed := range bookingDomain.Feeds {
		if ferr := all.Err(feed); ferr != nil {
			if resp.Errors == nil {
				resp.Errors = make(map[string]string)
			}
			resp.Errors[feed.String()] = fmt.Sprintf("%s bookings are unavailable", feed)
			continue
		}
		dto := application.ToPageDTO(all.Page(feed))
		if feed == bookingDomain.FeedPast {
			resp.Past = &dto
		} else {
			resp.Upcoming = &dto
		}
	}

	response.Success(c, resp)
}

// History handles GET /api/v1/bookings/history.
func (h *BookingHandler) History(c *gin.Context) {
	bookings, err := h.history.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, application.ToBookingDTOs(bookings))
}

// parsePageRequest reads limit and cursor. It writes a 400 and returns false
// when either is malformed.
func (h *BookingHandler) parsePageRequest(c *gin.Context) (int, *docstore.Cursor, bool) {
	limit := h.pageSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPageSize {
			response.BadRequest(c, fmt.Sprintf("limit must be between 1 and %d", MaxPageSize))
			return 0, nil, false
		}
		limit = n
	}

	cursor, err := docstore.DecodeCursor(c.Query("cursor"))
	if err != nil {
		response.BadRequest(c, "invalid cursor")
		return 0, nil, false
	}

	return limit, cursor, true
}
