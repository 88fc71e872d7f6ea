package services

import (
	"context"

	"tienda/internal/models"
	"tienda/internal/pricing"
	"tienda/internal/repositories"
)

// DefaultLowStockThreshold is used when no threshold is configured.
const DefaultLowStockThreshold = 5

// CatalogService serves the read side of the catalog.
type CatalogService struct {
	products          repositories.ProductRepository
	categories        repositories.CategoryRepository
	lowStockThreshold int
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(products repositories.ProductRepository, categories repositories.CategoryRepository, lowStockThreshold int) *CatalogService {
	if lowStockThreshold < 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &CatalogService{
		products:          products,
		categories:        categories,
		lowStockThreshold: lowStockThreshold,
	}
}

// WithDiscount fills the derived discounted price.
func WithDiscount(p *models.Product) {
	p.DiscountedPrice = pricing.DiscountedPrice(p.Price, p.DiscountPercentage)
}

func withDiscounts(products []models.Product) []models.Product {
	if products == nil {
		return []models.Product{}
	}
	for i := range products {
		WithDiscount(&products[i])
	}
	return products
}

// ListProducts returns every product.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return withDiscounts(products), nil
}

// ListByCategory returns the products of a category; unknown categories yield an empty list.
func (s *CatalogService) ListByCategory(ctx context.Context, categoryID uint) ([]models.Product, error) {
	products, err := s.products.GetByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return withDiscounts(products), nil
}

// ListOnSale returns products with a positive discount.
func (s *CatalogService) ListOnSale(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.GetOnSale(ctx)
	if err != nil {
		return nil, err
	}
	return withDiscounts(products), nil
}

// ProductDetails returns one product with its gallery URLs in display order.
func (s *CatalogService) ProductDetails(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.products.GetWithImages(ctx, id)
	if err != nil {
		return nil, err
	}
	WithDiscount(product)
	product.Images = galleryURLs(product.Gallery)
	return product, nil
}

// LowStock returns products at or below the restock threshold, lowest first.
func (s *CatalogService) LowStock(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.GetLowStock(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	return withDiscounts(products), nil
}

// LowStockThreshold returns the configured restock threshold.
func (s *CatalogService) LowStockThreshold() int {
	return s.lowStockThreshold
}

// ListCategories returns categories ordered by id.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}
