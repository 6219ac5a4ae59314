package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/internal/activity"
	"github.com/ecocampus-app/ecocampus-backend/internal/auth"
	"github.com/ecocampus-app/ecocampus-backend/internal/challenges"
	"github.com/ecocampus-app/ecocampus-backend/internal/checkins"
	"github.com/ecocampus-app/ecocampus-backend/internal/events"
	"github.com/ecocampus-app/ecocampus-backend/internal/feedback"
	"github.com/ecocampus-app/ecocampus-backend/internal/leaderboard"
	"github.com/ecocampus-app/ecocampus-backend/internal/ledger"
	"github.com/ecocampus-app/ecocampus-backend/internal/plastic"
	"github.com/ecocampus-app/ecocampus-backend/internal/quizzes"
	"github.com/ecocampus-app/ecocampus-backend/internal/storefront"
	"github.com/ecocampus-app/ecocampus-backend/internal/users"
	pkgAuth "github.com/ecocampus-app/ecocampus-backend/pkg/auth"
	"github.com/ecocampus-app/ecocampus-backend/pkg/auth/session"
	"github.com/ecocampus-app/ecocampus-backend/pkg/config"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	"github.com/ecocampus-app/ecocampus-backend/pkg/logger"
	"github.com/ecocampus-app/ecocampus-backend/pkg/pagination"
	"github.com/ecocampus-app/ecocampus-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) { return true, nil }

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) Refresh(context.Context, auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return &auth.RefreshResponse{}, nil
}

func (stubAuthService) Logout(context.Context, string) error { return nil }

type stubRegisterService struct{}

func (stubRegisterService) Register(context.Context, auth.RegisterRequest) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

type stubUsersService struct{}

func (stubUsersService) Me(context.Context, uuid.UUID) (*users.MeView, error) {
	return &users.MeView{}, nil
}

func (stubUsersService) ProfileQR(context.Context, uuid.UUID) (*users.QRView, error) {
	return &users.QRView{}, nil
}

func (stubUsersService) UpdateAvatar(context.Context, uuid.UUID, string, io.Reader) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

type stubCheckinsService struct{}

func (stubCheckinsService) CheckIn(context.Context, uuid.UUID) (*checkins.CheckInResult, error) {
	return &checkins.CheckInResult{}, nil
}

func (stubCheckinsService) CheckedInToday(context.Context, uuid.UUID) (bool, error) {
	return false, nil
}

func (stubCheckinsService) Streak(context.Context, uuid.UUID) (*models.UserStreak, error) {
	return &models.UserStreak{}, nil
}

type stubChallengesService struct{}

func (stubChallengesService) List(context.Context, uuid.UUID) ([]challenges.ChallengeView, error) {
	return nil, nil
}

func (stubChallengesService) Submit(context.Context, challenges.SubmitInput) (*challenges.SubmitResult, error) {
	return &challenges.SubmitResult{}, nil
}

func (stubChallengesService) Review(context.Context, challenges.ReviewInput) (*models.ChallengeSubmission, error) {
	return &models.ChallengeSubmission{}, nil
}

type stubQuizzesService struct{}

func (stubQuizzesService) Today(context.Context, uuid.UUID) (*quizzes.TodayView, error) {
	return &quizzes.TodayView{}, nil
}

func (stubQuizzesService) Submit(context.Context, quizzes.SubmitInput) (*quizzes.SubmitResult, error) {
	return &quizzes.SubmitResult{}, nil
}

type stubEventsService struct{}

func (stubEventsService) List(context.Context, uuid.UUID) ([]events.EventView, error) {
	return nil, nil
}

func (stubEventsService) RSVP(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (stubEventsService) CancelRSVP(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (stubEventsService) MarkAttended(context.Context, events.MarkAttendedInput) (*events.AttendResult, error) {
	return &events.AttendResult{}, nil
}

type stubPlasticService struct{}

func (stubPlasticService) Catalog(context.Context) []plastic.CatalogItem { return nil }

func (stubPlasticService) Log(context.Context, plastic.LogInput) (*plastic.LogResult, error) {
	return &plastic.LogResult{}, nil
}

func (stubPlasticService) History(context.Context, uuid.UUID, ledger.ListQuery) (*ledger.EntriesPage, error) {
	return &ledger.EntriesPage{}, nil
}

type stubStorefrontService struct{}

func (stubStorefrontService) ListProducts(context.Context) ([]models.Product, error) {
	return nil, nil
}

func (stubStorefrontService) Redeem(context.Context, storefront.RedeemInput) (*storefront.RedeemResult, error) {
	return &storefront.RedeemResult{}, nil
}

func (stubStorefrontService) ListOrders(context.Context, uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

type stubLeaderboardService struct{}

func (stubLeaderboardService) Students(context.Context) ([]leaderboard.StudentRow, error) {
	return nil, nil
}

func (stubLeaderboardService) Departments(context.Context) ([]leaderboard.DepartmentRow, error) {
	return nil, nil
}

type stubLedgerService struct{}

func (stubLedgerService) Award(context.Context, *gorm.DB, ledger.AwardInput) (*models.LedgerEntry, error) {
	return &models.LedgerEntry{}, nil
}

func (stubLedgerService) Spend(context.Context, *gorm.DB, ledger.SpendInput) (*models.LedgerEntry, error) {
	return &models.LedgerEntry{}, nil
}

func (stubLedgerService) ListEntries(context.Context, uuid.UUID, ledger.ListQuery) (*ledger.EntriesPage, error) {
	return &ledger.EntriesPage{}, nil
}

type stubActivityService struct{}

func (stubActivityService) Feed(context.Context, uuid.UUID, pagination.Params) (*activity.FeedPage, error) {
	return &activity.FeedPage{}, nil
}

type stubFeedbackService struct{}

func (stubFeedbackService) Submit(context.Context, feedback.SubmitInput) (*models.UserFeedback, error) {
	return &models.UserFeedback{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(RouterParams{
		Config:      cfg,
		Logger:      logg,
		DB:          stubPinger{},
		Redis:       (*redis.Client)(nil),
		Sessions:    stubSessionChecker{},
		Auth:        stubAuthService{},
		Register:    stubRegisterService{},
		Users:       stubUsersService{},
		Checkins:    stubCheckinsService{},
		Challenges:  stubChallengesService{},
		Quizzes:     stubQuizzesService{},
		Events:      stubEventsService{},
		Plastic:     stubPlasticService{},
		Storefront:  stubStorefrontService{},
		Leaderboard: stubLeaderboardService{},
		Ledger:      stubLedgerService{},
		Activity:    stubActivityService{},
		Feedback:    stubFeedbackService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:    uuid.New(),
		StudentID: "ECO2024001",
		Role:      role,
		JTI:       session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStudent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	student := httptest.NewRequest(http.MethodGet, "/api/admin/v1/ping", nil)
	student.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStudent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, student)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/ping", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestStudentRoutesReachable(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := buildToken(t, cfg, enums.UserRoleStudent)

	paths := []string{
		"/api/v1/me",
		"/api/v1/me/qr",
		"/api/v1/me/activity",
		"/api/v1/me/points",
		"/api/v1/checkins/status",
		"/api/v1/challenges",
		"/api/v1/quizzes/today",
		"/api/v1/events",
		"/api/v1/plastic/catalog",
		"/api/v1/plastic/logs",
		"/api/v1/store/products",
		"/api/v1/store/orders",
		"/api/v1/leaderboard/students",
		"/api/v1/leaderboard/departments",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestAssistantUnconfiguredReturnsDependencyError(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/chat", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStudent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for unconfigured assistant got %d", resp.Code)
	}
}

func TestAdminAttendanceRejectsStudent(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/events/"+uuid.NewString()+"/attendance", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStudent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student attendance scan got %d", resp.Code)
	}
}
