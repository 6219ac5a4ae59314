package users

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/ecocampus-app/ecocampus-backend/internal/impact"
	"github.com/ecocampus-app/ecocampus-backend/internal/streaks"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/qr"
	"github.com/ecocampus-app/ecocampus-backend/pkg/storage/cloudinary"
)

// pointsPerLevel is the lifetime-point width of each profile level.
const pointsPerLevel = 1000

const avatarFolder = "avatars"

// LevelView describes progress through the lifetime-points levels.
type LevelView struct {
	Level           int `json:"level"`
	PointsIntoLevel int `json:"points_into_level"`
	PointsToNext    int `json:"points_to_next"`
}

// ImpactView is the physical-impact summary on the profile.
type ImpactView struct {
	TotalPlasticKg string `json:"total_plastic_kg"`
	CO2SavedKg     string `json:"co2_saved_kg"`
	EventsAttended int    `json:"events_attended"`
}

// StreakView is the consecutive check-in summary on the profile.
type StreakView struct {
	CurrentStreak   int     `json:"current_streak"`
	LastCheckinDate *string `json:"last_checkin_date,omitempty"`
}

// MeView is the aggregated profile returned by GET /me.
type MeView struct {
	User           *UserDTO   `json:"user"`
	Level          LevelView  `json:"level"`
	Streak         StreakView `json:"streak"`
	Impact         ImpactView `json:"impact"`
	CheckedInToday bool       `json:"checked_in_today"`
}

// QRView is the profile QR returned by GET /me/qr.
type QRView struct {
	Payload  string `json:"payload"`
	ImageURL string `json:"image_url"`
}

type avatarUploader interface {
	UploadImage(ctx context.Context, filename string, file io.Reader, folder string) (*cloudinary.UploadResult, error)
}

type checkinChecker interface {
	CheckedInToday(ctx context.Context, userID uuid.UUID) (bool, error)
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfileImage(ctx context.Context, id uuid.UUID, url string) error
}

// Service assembles profile views and manages the avatar.
type Service interface {
	Me(ctx context.Context, userID uuid.UUID) (*MeView, error)
	ProfileQR(ctx context.Context, userID uuid.UUID) (*QRView, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, filename string, file io.Reader) (*UserDTO, error)
}

// ServiceParams packages the profile service dependencies.
type ServiceParams struct {
	Users    userStore
	Streaks  streaks.Repository
	Impact   impact.Repository
	Checkins checkinChecker
	Uploader avatarUploader
	QRSize   int
}

type service struct {
	users    userStore
	streaks  streaks.Repository
	impact   impact.Repository
	checkins checkinChecker
	uploader avatarUploader
	qrSize   int
}

// NewService wires the profile service.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repository required")
	}
	if params.Streaks == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "streaks repository required")
	}
	if params.Impact == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "impact repository required")
	}
	if params.Checkins == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkin checker required")
	}
	return &service{
		users:    params.Users,
		streaks:  params.Streaks,
		impact:   params.Impact,
		checkins: params.Checkins,
		uploader: params.Uploader,
		qrSize:   params.QRSize,
	}, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*MeView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	streak, err := s.streaks.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load streak")
	}
	userImpact, err := s.impact.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load impact")
	}
	checkedIn, err := s.checkins.CheckedInToday(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load check-in state")
	}

	return &MeView{
		User:  FromModel(user),
		Level: levelFor(user.LifetimePoints),
		Streak: StreakView{
			CurrentStreak:   streak.CurrentStreak,
			LastCheckinDate: streak.LastCheckinDate,
		},
		Impact: ImpactView{
			TotalPlasticKg: userImpact.TotalPlasticKg.String(),
			CO2SavedKg:     userImpact.CO2SavedKg.String(),
			EventsAttended: userImpact.EventsAttended,
		},
		CheckedInToday: checkedIn,
	}, nil
}

func (s *service) ProfileQR(ctx context.Context, userID uuid.UUID) (*QRView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	payload := qr.ProfilePayload(userID)
	return &QRView{
		Payload:  payload,
		ImageURL: qr.RenderURL(payload, s.qrSize),
	}, nil
}

func (s *service) UpdateAvatar(ctx context.Context, userID uuid.UUID, filename string, file io.Reader) (*UserDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if file == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "avatar file is required")
	}
	if s.uploader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "image uploads are not configured")
	}

	uploaded, err := s.uploader.UploadImage(ctx, filename, file, avatarFolder)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload avatar")
	}
	if err := s.users.UpdateProfileImage(ctx, userID, uploaded.SecureURL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store avatar url")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload user")
	}
	return FromModel(user), nil
}

func levelFor(lifetimePoints int) LevelView {
	if lifetimePoints < 0 {
		lifetimePoints = 0
	}
	into := lifetimePoints % pointsPerLevel
	return LevelView{
		Level:           lifetimePoints/pointsPerLevel + 1,
		PointsIntoLevel: into,
		PointsToNext:    pointsPerLevel - into,
	}
}
