package models

import "github.com/google/uuid"

// ProductImage is one gallery image for a product.
type ProductImage struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	ImageURL  string    `gorm:"column:image_url;not null"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
}
