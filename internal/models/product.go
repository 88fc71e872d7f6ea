package models

// Category groups products in the catalog.
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:100;not null"`
}

// Product represents a product in the store.
type Product struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	Name               string    `json:"name" gorm:"size:200;not null"`
	Description        *string   `json:"description"`
	Price              float64   `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock              int       `json:"stock" gorm:"not null"`
	ImageURL           string    `json:"image_url" gorm:"size:500"`
	CategoryID         *uint     `json:"category_id" gorm:"index"`
	Category           *Category `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	OnSale             bool      `json:"on_sale" gorm:"not null"`
	DiscountPercentage *float64  `json:"discount_percentage" gorm:"type:decimal(5,4)"`

	// Computed on read, never stored.
	DiscountedPrice *float64 `json:"discounted_price" gorm:"-"`
	Images          []string `json:"images,omitempty" gorm:"-"`

	Gallery []ProductImage `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// ProductImage is one entry of a product's ordered gallery.
type ProductImage struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProductID uint   `json:"product_id" gorm:"not null;index"`
	ImageURL  string `json:"image_url" gorm:"size:500;not null"`
	Order     int    `json:"order" gorm:"column:sort_order;not null"`
}
