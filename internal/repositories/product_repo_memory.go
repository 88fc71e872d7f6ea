package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tienda/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

func (r *MemoryProductRepository) filter(keep func(models.Product) bool) []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if keep(p) {
			p.Gallery = nil
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (r *MemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.filter(func(models.Product) bool { return true }), nil
}

func (r *MemoryProductRepository) GetByCategory(ctx context.Context, categoryID uint) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool {
		return p.CategoryID != nil && *p.CategoryID == categoryID
	}), nil
}

func (r *MemoryProductRepository) GetOnSale(ctx context.Context) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool {
		return p.DiscountPercentage != nil && *p.DiscountPercentage > 0
	}), nil
}

func (r *MemoryProductRepository) GetLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	list := r.filter(func(p models.Product) bool { return p.Stock <= threshold })
	sort.SliceStable(list, func(i, j int) bool { return list[i].Stock < list[j].Stock })
	return list, nil
}

func (r *MemoryProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	product.Gallery = nil
	return &product, nil
}

func (r *MemoryProductRepository) GetWithImages(ctx context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	product.Gallery = append([]models.ProductImage(nil), product.Gallery...)
	sort.SliceStable(product.Gallery, func(i, j int) bool { return product.Gallery[i].Order < product.Gallery[j].Order })
	return &product, nil
}

func (r *MemoryProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		product.ID = r.nextID
	}
	if product.ID >= r.nextID {
		r.nextID = product.ID + 1
	}
	for i := range product.Gallery {
		product.Gallery[i].ProductID = product.ID
	}
	stored := *product
	stored.Gallery = append([]models.ProductImage(nil), product.Gallery...)
	r.products[product.ID] = stored
	return nil
}

func (r *MemoryProductRepository) Update(ctx context.Context, product *models.Product, replaceGallery bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("update product %d: %w", product.ID, ErrNotFound)
	}
	stored := *product
	stored.Gallery = current.Gallery
	if replaceGallery {
		stored.Gallery = append([]models.ProductImage(nil), product.Gallery...)
	}
	r.products[product.ID] = stored
	return nil
}

func (r *MemoryProductRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("delete product %d: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

func (r *MemoryProductRepository) DecrementStock(ctx context.Context, id uint, quantity int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	r.products[id] = p
	return true, nil
}

func (r *MemoryProductRepository) snapshot() map[uint]models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cp := make(map[uint]models.Product, len(r.products))
	for id, p := range r.products {
		cp[id] = p
	}
	return cp
}

func (r *MemoryProductRepository) restore(products map[uint]models.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = products
}
