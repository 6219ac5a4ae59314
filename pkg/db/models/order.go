package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
)

// Order is a points redemption. TotalPoints is the debit captured at
// purchase time; it never changes if the product is later repriced.
type Order struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	StoreID     uuid.UUID         `gorm:"column:store_id;type:uuid;not null"`
	Status      enums.OrderStatus `gorm:"column:status;type:order_status_enum;not null;default:confirmed"`
	TotalPoints int               `gorm:"column:total_points;not null"`
	TotalPrice  *decimal.Decimal  `gorm:"column:total_price;type:numeric(10,2)"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}
