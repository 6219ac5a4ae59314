package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one product line on a redemption order.
type OrderItem struct {
	ID         int64            `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID    uuid.UUID        `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID  uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	Quantity   int              `gorm:"column:quantity;not null;default:1"`
	PriceEach  *decimal.Decimal `gorm:"column:price_each;type:numeric(10,2)"`
	PointsEach int              `gorm:"column:points_each;not null"`
}
