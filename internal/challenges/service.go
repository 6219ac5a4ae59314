package challenges

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/internal/ledger"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox/payloads"
	"github.com/ecocampus-app/ecocampus-backend/pkg/storage/cloudinary"
)

const uniqueSubmissionConstraint = "uq_challenge_submissions_challenge_user"

const proofFolder = "challenge-proofs"

// Service manages photo challenges: listing with per-user completion state,
// accepting proof submissions, and admin moderation.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]ChallengeView, error)
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
	Review(ctx context.Context, input ReviewInput) (*models.ChallengeSubmission, error)
}

// ChallengeView is a challenge plus the caller's submission state.
type ChallengeView struct {
	Challenge models.Challenge        `json:"challenge"`
	Completed bool                    `json:"completed"`
	Status    *enums.SubmissionStatus `json:"status,omitempty"`
}

// SubmitInput carries a proof photo for one challenge.
type SubmitInput struct {
	UserID      uuid.UUID
	ChallengeID uuid.UUID
	Filename    string
	Photo       io.Reader
}

// SubmitResult reports the stored submission and the points granted.
type SubmitResult struct {
	Submission    *models.ChallengeSubmission `json:"submission"`
	PointsAwarded int                         `json:"points_awarded"`
}

// ReviewInput is an admin moderation decision.
type ReviewInput struct {
	SubmissionID int64
	ReviewerID   uuid.UUID
	Status       enums.SubmissionStatus
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type photoUploader interface {
	UploadImage(ctx context.Context, filename string, file io.Reader, folder string) (*cloudinary.UploadResult, error)
}

type service struct {
	db       txRunner
	repo     Repository
	ledger   ledger.Service
	outbox   outboxEmitter
	uploader photoUploader
}

// ServiceParams bundles the dependencies for the challenges service.
type ServiceParams struct {
	DB       txRunner
	Repo     Repository
	Ledger   ledger.Service
	Outbox   outboxEmitter
	Uploader photoUploader
}

// NewService wires a challenges service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("challenges repository is required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	if params.Uploader == nil {
		return nil, fmt.Errorf("photo uploader is required")
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		ledger:   params.Ledger,
		outbox:   params.Outbox,
		uploader: params.Uploader,
	}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ChallengeView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list challenges")
	}
	submissions, err := s.repo.ListSubmissionsByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list submissions")
	}

	byChallenge := make(map[uuid.UUID]models.ChallengeSubmission, len(submissions))
	for _, submission := range submissions {
		byChallenge[submission.ChallengeID] = submission
	}

	views := make([]ChallengeView, 0, len(active))
	for _, challenge := range active {
		view := ChallengeView{Challenge: challenge}
		if submission, ok := byChallenge[challenge.ID]; ok {
			view.Completed = true
			status := submission.Status
			view.Status = &status
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ChallengeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "challenge id is required")
	}
	if input.Photo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof photo is required")
	}

	challenge, err := s.repo.FindByID(ctx, input.ChallengeID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "challenge not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load challenge")
	}
	if !challenge.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "challenge is no longer active")
	}

	// Upload before the transaction so a slow CDN never holds row locks.
	uploaded, err := s.uploader.UploadImage(ctx, input.Filename, input.Photo, proofFolder)
	if err != nil {
		return nil, err
	}

	var result *SubmitResult
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		submission := &models.ChallengeSubmission{
			ChallengeID:   challenge.ID,
			UserID:        input.UserID,
			SubmissionURL: &uploaded.SecureURL,
			Status:        enums.SubmissionStatusPending,
		}
		if err := repo.CreateSubmission(ctx, submission); err != nil {
			if db.IsUniqueViolation(err, uniqueSubmissionConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "challenge already submitted")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert submission")
		}

		if _, err := s.ledger.Award(ctx, tx, ledger.AwardInput{
			UserID:      input.UserID,
			Source:      enums.LedgerSourceChallenge,
			SourceID:    &challenge.ID,
			Points:      challenge.PointsReward,
			Description: fmt.Sprintf("Challenge: %s", challenge.Title),
		}); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventChallengeSubmitted,
			AggregateType: enums.AggregateChallengeSubmission,
			AggregateID:   challenge.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: string(enums.UserRoleStudent)},
			Data: payloads.ChallengeSubmittedEvent{
				UserID:         input.UserID,
				ChallengeID:    challenge.ID,
				ChallengeTitle: challenge.Title,
				SubmissionURL:  submission.SubmissionURL,
				PointsAwarded:  challenge.PointsReward,
			},
			Version: 1,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit submission event")
		}

		result = &SubmitResult{
			Submission:    submission,
			PointsAwarded: challenge.PointsReward,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Review flips a submission's moderation status. Points granted at
// submission time are never clawed back.
func (s *service) Review(ctx context.Context, input ReviewInput) (*models.ChallengeSubmission, error) {
	if input.SubmissionID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submission id is required")
	}
	if input.ReviewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewer id is required")
	}
	if input.Status != enums.SubmissionStatusApproved && input.Status != enums.SubmissionStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be approved or rejected")
	}

	submission, err := s.repo.FindSubmission(ctx, input.SubmissionID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load submission")
	}
	if submission.Status != enums.SubmissionStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "submission already reviewed")
	}

	now := time.Now().UTC()
	submission.Status = input.Status
	submission.ReviewedBy = &input.ReviewerID
	submission.ReviewedAt = &now
	if err := s.repo.UpdateSubmissionStatus(ctx, submission); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update submission")
	}
	return submission, nil
}
