package plastic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/internal/impact"
	"github.com/ecocampus-app/ecocampus-backend/internal/ledger"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox/payloads"
)

const maxQuantityPerLog = 100

// Service records recycled plastic: one impact increment and one ledger
// entry per log, both scaled by quantity.
type Service interface {
	Catalog(ctx context.Context) []CatalogItem
	Log(ctx context.Context, input LogInput) (*LogResult, error)
	History(ctx context.Context, userID uuid.UUID, query ledger.ListQuery) (*ledger.EntriesPage, error)
}

// LogInput is one recycling log request.
type LogInput struct {
	UserID   uuid.UUID
	Item     string
	Quantity int
}

// LogResult reports the recorded impact and points.
type LogResult struct {
	Item          string          `json:"item"`
	Quantity      int             `json:"quantity"`
	WeightKg      decimal.Decimal `json:"weight_kg"`
	CO2SavedKg    decimal.Decimal `json:"co2_saved_kg"`
	PointsAwarded int             `json:"points_awarded"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	db     txRunner
	impact impact.Repository
	ledger ledger.Service
	outbox outboxEmitter
}

// ServiceParams bundles the dependencies for the plastic service.
type ServiceParams struct {
	DB         txRunner
	ImpactRepo impact.Repository
	Ledger     ledger.Service
	Outbox     outboxEmitter
}

// NewService wires a plastic recycling service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.ImpactRepo == nil {
		return nil, fmt.Errorf("impact repository is required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &service{
		db:     params.DB,
		impact: params.ImpactRepo,
		ledger: params.Ledger,
		outbox: params.Outbox,
	}, nil
}

func (s *service) Catalog(ctx context.Context) []CatalogItem {
	return Catalog()
}

func (s *service) Log(ctx context.Context, input LogInput) (*LogResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.Quantity > maxQuantityPerLog {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity exceeds %d per log", maxQuantityPerLog))
	}
	item, ok := findCatalogItem(input.Item)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown item %q", input.Item))
	}

	quantity := decimal.NewFromInt(int64(input.Quantity))
	weight := item.WeightKg.Mul(quantity)
	co2 := weight.Mul(co2FactorPerKg)
	points := item.Points * input.Quantity
	description := fmt.Sprintf("Recycled %dx %s", input.Quantity, item.Name)

	var result *LogResult
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		impactRepo := s.impact.WithTx(tx)

		if err := impactRepo.EnsureRow(ctx, input.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ensure impact row")
		}
		if err := impactRepo.AddPlastic(ctx, input.UserID, weight, co2); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment impact")
		}

		if _, err := s.ledger.Award(ctx, tx, ledger.AwardInput{
			UserID:      input.UserID,
			Source:      enums.LedgerSourcePlastic,
			Points:      points,
			Description: description,
		}); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPlasticLogged,
			AggregateType: enums.AggregateLedgerEntry,
			AggregateID:   input.UserID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: string(enums.UserRoleStudent)},
			Data: payloads.PlasticLoggedEvent{
				UserID:        input.UserID,
				Item:          item.ID,
				Quantity:      input.Quantity,
				WeightKg:      weight,
				PointsAwarded: points,
			},
			Version: 1,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit plastic event")
		}

		result = &LogResult{
			Item:          item.ID,
			Quantity:      input.Quantity,
			WeightKg:      weight,
			CO2SavedKg:    co2,
			PointsAwarded: points,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, query ledger.ListQuery) (*ledger.EntriesPage, error) {
	source := enums.LedgerSourcePlastic
	query.Source = &source
	return s.ledger.ListEntries(ctx, userID, query)
}
