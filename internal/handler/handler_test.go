package handler

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trailhead/service-bookings/internal/application"
	"github.com/trailhead/service-bookings/internal/docstore"
	"github.com/trailhead/service-bookings/internal/identity"
	"github.com/trailhead/service-bookings/internal/platform/auth"
	"github.com/trailhead/service-bookings/internal/presentation"
	"github.com/trailhead/service-bookings/internal/repository"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type testServer struct {
	router   *gin.Engine
	jwt      *auth.JWTManager
	store    *docstore.MemoryStore
	sessions *presentation.SessionStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := docstore.NewMemoryStore()
	repo := repository.NewDocumentBookingRepository(store, identity.NewContextProvider(), zap.NewNop()).
		WithClock(func() time.Time { return fixedNow })

	getUpcoming := application.NewGetUpcomingBookingsUseCase(repo)
	getPast := application.NewGetPastBookingsUseCase(repo)
	getAll := application.NewGetAllBookingsUseCase(repo, zap.NewNop())
	getHistory := application.NewGetBookingHistoryUseCase(repo)

	sessions := presentation.NewSessionStore(func() *presentation.BookingsViewModel {
		return presentation.NewBookingsViewModel(getAll, getUpcoming, getPast, 5, zap.NewNop())
	})

	jwtManager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	router := gin.New()
	NewBookingHandler(getUpcoming, getPast, getAll, getHistory, 5).RegisterRoutes(&router.RouterGroup, jwtManager)
	NewScreenHandler(sessions).RegisterRoutes(&router.RouterGroup, jwtManager)
	NewAdminSessionHandler(sessions).RegisterRoutes(&router.RouterGroup, jwtManager)

	return &testServer{router: router, jwt: jwtManager, store: store, sessions: sessions}
}

// seed stores n upcoming and m past bookings for userID.
func (s *testServer) seed(userID string, upcoming, past int) {
	var docs []docstore.Document
	for i := 0; i < upcoming; i++ {
		docs = append(docs, docstore.Document{
			ID: fmt.Sprintf("%s-up-%02d", userID, i),
			Fields: docstore.Fields{
				"userId":    userID,
				"tourName":  fmt.Sprintf("Upcoming %d", i),
				"endDate":   fixedNow.Add(time.Duration(i+1) * 24 * time.Hour),
				"createdAt": fixedNow.Add(-time.Duration(i) * time.Hour),
			},
		})
	}
	for i := 0; i < past; i++ {
		docs = append(docs, docstore.Document{
			ID: fmt.Sprintf("%s-past-%02d", userID, i),
			Fields: docstore.Fields{
				"userId":    userID,
				"tourName":  fmt.Sprintf("Past %d", i),
				"endDate":   fixedNow.Add(-time.Duration(i+1) * 24 * time.Hour),
				"createdAt": fixedNow.Add(-time.Duration(100+i) * time.Hour),
			},
		})
	}
	s.store.Put(repository.BookingsCollection, docs...)
}

func (s *testServer) do(t *testing.T, method, path, userID, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		token, err := s.jwt.GenerateAccessToken(userID, userID+"@example.com", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

type cursorPage struct {
	Items      []application.BookingDTO `json:"items"`
	NextCursor string                   `json:"next_cursor"`
	HasMore    bool                     `json:"has_more"`
}
