package models

import (
	"time"

	"tienda/internal/pricing"
)

// Receipt (boleta) is created exactly once per successful checkout and never mutated.
type Receipt struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	UserID         uint          `json:"user_id" gorm:"not null;index"`
	User           *User         `json:"user,omitempty"`
	PurchaseDate   time.Time     `json:"purchase_date" gorm:"not null;index"`
	Total          float64       `json:"total" gorm:"type:decimal(14,2);not null"`
	ShippingStreet string        `json:"shipping_street" gorm:"size:255;not null"`
	ShippingUnit   *string       `json:"shipping_unit" gorm:"size:100"`
	ShippingRegion string        `json:"shipping_region" gorm:"size:100;not null"`
	ShippingComune string        `json:"shipping_comune" gorm:"size:100;not null"`
	Lines          []ReceiptLine `json:"lines" gorm:"foreignKey:ReceiptID"`
}

// ReceiptLine snapshots the product fields at purchase time.
type ReceiptLine struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	ReceiptID   uint    `json:"receipt_id" gorm:"not null;index"`
	ProductID   uint    `json:"product_id" gorm:"not null;index"`
	ProductName string  `json:"product_name" gorm:"size:200;not null"`
	UnitPrice   float64 `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	Quantity    int     `json:"quantity" gorm:"not null"`
	ImageURL    string  `json:"image_url" gorm:"size:500"`
}

// LineTotal returns unit price times quantity.
func (l ReceiptLine) LineTotal() float64 {
	return pricing.LineTotal(l.UnitPrice, l.Quantity)
}

// All lists every model for migrations.
func All() []interface{} {
	return []interface{}{
		&Role{}, &User{}, &Address{}, &Category{}, &Product{}, &ProductImage{}, &Receipt{}, &ReceiptLine{},
	}
}
