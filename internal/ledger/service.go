package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/pagination"
)

const insufficientPointsMessage = "insufficient points"

// Service records point movements. Every movement writes exactly one signed
// ledger row and the matching balance update inside the caller's transaction.
type Service interface {
	Award(ctx context.Context, tx *gorm.DB, input AwardInput) (*models.LedgerEntry, error)
	Spend(ctx context.Context, tx *gorm.DB, input SpendInput) (*models.LedgerEntry, error)
	ListEntries(ctx context.Context, userID uuid.UUID, query ListQuery) (*EntriesPage, error)
}

type service struct {
	repo Repository
}

// AwardInput describes a positive point grant.
type AwardInput struct {
	UserID      uuid.UUID
	Source      enums.LedgerSource
	SourceID    *uuid.UUID
	Points      int
	Description string
}

// SpendInput describes a storefront debit.
type SpendInput struct {
	UserID      uuid.UUID
	OrderID     uuid.UUID
	Points      int
	Description string
}

// ListQuery filters and paginates a user's ledger feed.
type ListQuery struct {
	Source *enums.LedgerSource
	Limit  int
	Cursor string
}

// EntriesPage is one page of ledger history.
type EntriesPage struct {
	Entries    []models.LedgerEntry
	NextCursor string
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Award(ctx context.Context, tx *gorm.DB, input AwardInput) (*models.LedgerEntry, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Points <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "award points must be positive")
	}
	if !input.Source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger source %q", input.Source))
	}

	repo := s.repo.WithTx(tx)
	updated, err := repo.AddUserPoints(ctx, input.UserID, input.Points)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update balances")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	entry := &models.LedgerEntry{
		UserID:      input.UserID,
		Source:      input.Source,
		SourceID:    input.SourceID,
		PointsDelta: input.Points,
		Description: input.Description,
	}
	if err := repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert ledger entry")
	}
	return entry, nil
}

func (s *service) Spend(ctx context.Context, tx *gorm.DB, input SpendInput) (*models.LedgerEntry, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.Points <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "spend points must be positive")
	}

	repo := s.repo.WithTx(tx)
	updated, err := repo.AddUserPoints(ctx, input.UserID, -input.Points)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debit balance")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, insufficientPointsMessage)
	}

	orderID := input.OrderID
	entry := &models.LedgerEntry{
		UserID:      input.UserID,
		Source:      enums.LedgerSourceStorePurchase,
		SourceID:    &orderID,
		PointsDelta: -input.Points,
		Description: input.Description,
	}
	if err := repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert ledger entry")
	}
	return entry, nil
}

func (s *service) ListEntries(ctx context.Context, userID uuid.UUID, query ListQuery) (*EntriesPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if query.Source != nil && !query.Source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger source %q", *query.Source))
	}

	cursor, err := pagination.ParseCursor(query.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(query.Limit)
	entries, err := s.repo.ListByUser(ctx, userID, query.Source, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list ledger entries")
	}

	page := &EntriesPage{Entries: entries}
	if len(entries) > limit {
		page.Entries = entries[:limit]
		last := page.Entries[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}
