package storefront

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/internal/ledger"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox/payloads"
	"github.com/ecocampus-app/ecocampus-backend/pkg/qr"
)

// Service manages the points storefront: browsing redeemable products and
// converting current points into confirmed orders.
type Service interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	Redeem(ctx context.Context, input RedeemInput) (*RedeemResult, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
}

// RedeemInput identifies the product a student wants to redeem.
type RedeemInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
}

// RedeemResult is the confirmed order plus the counter QR code.
type RedeemResult struct {
	Order       *models.Order `json:"order"`
	PointsSpent int           `json:"points_spent"`
	QRPayload   string        `json:"qr_payload"`
	QRURL       string        `json:"qr_url"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	db     txRunner
	repo   Repository
	ledger ledger.Service
	outbox outboxEmitter
}

// ServiceParams bundles the dependencies for the storefront service.
type ServiceParams struct {
	DB     txRunner
	Repo   Repository
	Ledger ledger.Service
	Outbox outboxEmitter
}

// NewService wires a storefront service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("storefront repository is required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		ledger: params.Ledger,
		outbox: params.Outbox,
	}, nil
}

func (s *service) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.ListActiveProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return products, nil
}

// Redeem re-checks the balance inside the transaction: the debit and the
// order land together or not at all.
func (s *service) Redeem(ctx context.Context, input RedeemInput) (*RedeemResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.repo.FindProduct(ctx, input.ProductID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is no longer available")
	}
	if product.EcopointsCost <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not redeemable")
	}

	price := product.DiscountedPrice
	if price == nil {
		price = product.OriginalPrice
	}

	var result *RedeemResult
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order := &models.Order{
			UserID:      input.UserID,
			StoreID:     product.StoreID,
			Status:      enums.OrderStatusConfirmed,
			TotalPoints: product.EcopointsCost,
			TotalPrice:  price,
			Items: []models.OrderItem{
				{
					ProductID:  product.ID,
					Quantity:   1,
					PriceEach:  price,
					PointsEach: product.EcopointsCost,
				},
			},
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert order")
		}

		if _, err := s.ledger.Spend(ctx, tx, ledger.SpendInput{
			UserID:      input.UserID,
			OrderID:     order.ID,
			Points:      product.EcopointsCost,
			Description: fmt.Sprintf("Redeemed: %s", product.Name),
		}); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPointsRedeemed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: string(enums.UserRoleStudent)},
			Data: payloads.PointsRedeemedEvent{
				UserID:      input.UserID,
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				PointsSpent: product.EcopointsCost,
			},
			Version: 1,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit redemption event")
		}

		payload := qr.RedemptionPayload(input.UserID, product.ID)
		result = &RedeemResult{
			Order:       order,
			PointsSpent: product.EcopointsCost,
			QRPayload:   payload,
			QRURL:       qr.RenderURL(payload, 0),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	orders, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return orders, nil
}
