package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a storefront item redeemable for points.
type Product struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID         uuid.UUID        `gorm:"column:store_id;type:uuid;not null;index"`
	Name            string           `gorm:"column:name;not null"`
	Description     *string          `gorm:"column:description"`
	OriginalPrice   *decimal.Decimal `gorm:"column:original_price;type:numeric(10,2)"`
	DiscountedPrice *decimal.Decimal `gorm:"column:discounted_price;type:numeric(10,2)"`
	EcopointsCost   int              `gorm:"column:ecopoints_cost;not null;default:0"`
	IsActive        bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`

	Store  *Store         `gorm:"foreignKey:StoreID"`
	Images []ProductImage `gorm:"foreignKey:ProductID"`
}
