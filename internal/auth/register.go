package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/internal/impact"
	"github.com/ecocampus-app/ecocampus-backend/internal/streaks"
	"github.com/ecocampus-app/ecocampus-backend/internal/users"
	"github.com/ecocampus-app/ecocampus-backend/pkg/config"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox/payloads"
	"github.com/ecocampus-app/ecocampus-backend/pkg/security"
)

// RegisterRequest contains the payload required to onboard a student.
type RegisterRequest struct {
	StudentID  string  `json:"student_id" validate:"required"`
	FullName   string  `json:"full_name" validate:"required"`
	Password   string  `json:"password" validate:"required,min=8"`
	Department *string `json:"department,omitempty"`
	Mobile     *string `json:"mobile,omitempty"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
}

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	Outbox         *outbox.Service
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	outbox      *outbox.Service
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox service required")
	}
	return &registerService{
		db:          params.DB,
		outbox:      params.Outbox,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	studentID := strings.ToUpper(strings.TrimSpace(req.StudentID))
	if studentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "student id is required")
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		streakRepo := streaks.NewRepository(tx)
		impactRepo := impact.NewRepository(tx)

		if _, err := userRepo.FindByStudentID(ctx, studentID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "student id already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check student id")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			StudentID:    studentID,
			FullName:     fullName,
			Department:   req.Department,
			Mobile:       req.Mobile,
			Email:        req.Email,
			PasswordHash: passwordHash,
			Role:         enums.UserRoleStudent,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if err := streakRepo.Upsert(ctx, &models.UserStreak{UserID: user.ID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "provision streak row")
		}
		if err := impactRepo.EnsureRow(ctx, user.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "provision impact row")
		}

		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserRegistered,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Actor:         &outbox.ActorRef{UserID: user.ID, Role: string(user.Role)},
			Data: payloads.UserRegisteredEvent{
				UserID:     user.ID,
				StudentID:  user.StudentID,
				FullName:   user.FullName,
				Department: user.Department,
			},
			Version: 1,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit registration event")
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return users.FromModel(created), nil
}
