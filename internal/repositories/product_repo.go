package repositories

import (
	"context"

	"tienda/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByCategory(ctx context.Context, categoryID uint) ([]models.Product, error)
	GetOnSale(ctx context.Context) ([]models.Product, error)
	GetLowStock(ctx context.Context, threshold int) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	// GetWithImages loads the product and its gallery ordered by position.
	GetWithImages(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update overwrites the stored row. When replaceGallery is set the stored
	// gallery is replaced by product.Gallery.
	Update(ctx context.Context, product *models.Product, replaceGallery bool) error
	Delete(ctx context.Context, id uint) error
	// DecrementStock subtracts quantity only while stock >= quantity and reports
	// whether a row was changed.
	DecrementStock(ctx context.Context, id uint, quantity int) (bool, error)
}
