package users

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/internal/impact"
	"github.com/ecocampus-app/ecocampus-backend/internal/streaks"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/storage/cloudinary"
)

type fakeUserStore struct {
	user      *models.User
	avatarURL string
}

func (f *fakeUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.user
	return &copied, nil
}

func (f *fakeUserStore) UpdateProfileImage(ctx context.Context, id uuid.UUID, url string) error {
	f.avatarURL = url
	if f.user != nil {
		f.user.ProfileImgURL = &url
	}
	return nil
}

func TestLevelFor(t *testing.T) {
	cases := []struct {
		lifetime int
		level    int
		into     int
		toNext   int
	}{
		{0, 1, 0, 1000},
		{999, 1, 999, 1},
		{1000, 2, 0, 1000},
		{2450, 3, 450, 550},
	}
	for _, tc := range cases {
		got := levelFor(tc.lifetime)
		if got.Level != tc.level || got.PointsIntoLevel != tc.into || got.PointsToNext != tc.toNext {
			t.Fatalf("levelFor(%d) = %+v", tc.lifetime, got)
		}
	}
}

type stubStreakRepo struct {
	streak models.UserStreak
}

func (s stubStreakRepo) WithTx(tx *gorm.DB) streaks.Repository { return s }

func (s stubStreakRepo) Get(ctx context.Context, userID uuid.UUID) (*models.UserStreak, error) {
	copied := s.streak
	copied.UserID = userID
	return &copied, nil
}

func (s stubStreakRepo) Upsert(ctx context.Context, streak *models.UserStreak) error { return nil }

func (s stubStreakRepo) ListStale(ctx context.Context, cutoffDate string, limit int) ([]models.UserStreak, error) {
	return nil, nil
}

func (s stubStreakRepo) Reset(ctx context.Context, userID uuid.UUID) error { return nil }

type stubImpactRepo struct {
	impact models.UserImpact
}

func (s stubImpactRepo) WithTx(tx *gorm.DB) impact.Repository { return s }

func (s stubImpactRepo) Get(ctx context.Context, userID uuid.UUID) (*models.UserImpact, error) {
	copied := s.impact
	copied.UserID = userID
	return &copied, nil
}

func (s stubImpactRepo) EnsureRow(ctx context.Context, userID uuid.UUID) error { return nil }

func (s stubImpactRepo) AddPlastic(ctx context.Context, userID uuid.UUID, weightKg, co2Kg decimal.Decimal) error {
	return nil
}

func (s stubImpactRepo) IncrementEventsAttended(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type stubChecker struct {
	checkedIn bool
}

func (s stubChecker) CheckedInToday(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.checkedIn, nil
}

type stubUploader struct {
	url string
}

func (s stubUploader) UploadImage(ctx context.Context, filename string, file io.Reader, folder string) (*cloudinary.UploadResult, error) {
	return &cloudinary.UploadResult{SecureURL: s.url, PublicID: "avatars/x"}, nil
}

func TestMeAggregatesProfile(t *testing.T) {
	userID := uuid.New()
	date := "2026-03-14"
	store := &fakeUserStore{user: &models.User{
		ID:             userID,
		StudentID:      "ECO2024001",
		FullName:       "Asha Verma",
		Role:           enums.UserRoleStudent,
		LifetimePoints: 2450,
		CurrentPoints:  320,
		TickType:       enums.TickTypeGreen,
	}}

	svc, err := NewService(ServiceParams{
		Users:    store,
		Streaks:  stubStreakRepo{streak: models.UserStreak{UserID: userID, CurrentStreak: 6, LastCheckinDate: &date}},
		Impact: stubImpactRepo{impact: models.UserImpact{
			UserID:         userID,
			TotalPlasticKg: decimal.RequireFromString("1.250"),
			CO2SavedKg:     decimal.RequireFromString("1.875"),
			EventsAttended: 3,
		}},
		Checkins: stubChecker{checkedIn: true},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	me, err := svc.Me(context.Background(), userID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.User.StudentID != "ECO2024001" {
		t.Fatalf("unexpected user %+v", me.User)
	}
	if me.Level.Level != 3 || me.Level.PointsToNext != 550 {
		t.Fatalf("unexpected level %+v", me.Level)
	}
	if me.Streak.CurrentStreak != 6 || me.Streak.LastCheckinDate == nil {
		t.Fatalf("unexpected streak %+v", me.Streak)
	}
	if me.Impact.TotalPlasticKg != "1.25" || me.Impact.EventsAttended != 3 {
		t.Fatalf("unexpected impact %+v", me.Impact)
	}
	if !me.CheckedInToday {
		t.Fatal("expected checked-in flag set")
	}
}

func TestMeUnknownUser(t *testing.T) {
	svc, _ := NewService(ServiceParams{
		Users:    &fakeUserStore{},
		Streaks:  stubStreakRepo{},
		Impact:   stubImpactRepo{},
		Checkins: stubChecker{},
	})

	_, err := svc.Me(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProfileQRPayload(t *testing.T) {
	userID := uuid.New()
	svc, _ := NewService(ServiceParams{
		Users:    &fakeUserStore{user: &models.User{ID: userID}},
		Streaks:  stubStreakRepo{},
		Impact:   stubImpactRepo{},
		Checkins: stubChecker{},
	})

	view, err := svc.ProfileQR(context.Background(), userID)
	if err != nil {
		t.Fatalf("profile qr: %v", err)
	}
	want := "ECOCAMPUS-USER-" + userID.String()
	if view.Payload != want {
		t.Fatalf("unexpected payload %q", view.Payload)
	}
	if !strings.Contains(view.ImageURL, "data=") {
		t.Fatalf("render url missing payload: %q", view.ImageURL)
	}
}

func TestUpdateAvatarStoresSecureURL(t *testing.T) {
	userID := uuid.New()
	store := &fakeUserStore{user: &models.User{ID: userID}}
	svc, _ := NewService(ServiceParams{
		Users:    store,
		Streaks:  stubStreakRepo{},
		Impact:   stubImpactRepo{},
		Checkins: stubChecker{},
		Uploader: stubUploader{url: "https://res.cloudinary.com/demo/avatar.jpg"},
	})

	dto, err := svc.UpdateAvatar(context.Background(), userID, "avatar.jpg", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("update avatar: %v", err)
	}
	if store.avatarURL != "https://res.cloudinary.com/demo/avatar.jpg" {
		t.Fatalf("avatar url not stored: %q", store.avatarURL)
	}
	if dto.ProfileImgURL == nil || *dto.ProfileImgURL != store.avatarURL {
		t.Fatalf("dto missing avatar url: %+v", dto)
	}
}

func TestUpdateAvatarWithoutUploader(t *testing.T) {
	svc, _ := NewService(ServiceParams{
		Users:    &fakeUserStore{},
		Streaks:  stubStreakRepo{},
		Impact:   stubImpactRepo{},
		Checkins: stubChecker{},
	})

	_, err := svc.UpdateAvatar(context.Background(), uuid.New(), "a.jpg", strings.NewReader("img"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
