package repositories

import (
	"context"

	"tienda/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products ordered by id.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		return nil, translate(err, "list products")
	}
	return products, nil
}

// GetByCategory retrieves the products of one category.
func (r *GORMProductRepository) GetByCategory(ctx context.Context, categoryID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, translate(err, "list products of category %d", categoryID)
	}
	return products, nil
}

// GetOnSale retrieves products carrying a positive discount.
func (r *GORMProductRepository) GetOnSale(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("discount_percentage IS NOT NULL AND discount_percentage > 0").
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, translate(err, "list products on sale")
	}
	return products, nil
}

// GetLowStock retrieves products with stock at or below threshold, lowest stock first.
func (r *GORMProductRepository) GetLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("stock <= ?", threshold).
		Order("stock ASC, id ASC").
		Find(&products).Error
	if err != nil {
		return nil, translate(err, "list low stock products")
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(err, "product %d", id)
	}
	return &product, nil
}

// GetWithImages retrieves a product with its gallery.
func (r *GORMProductRepository) GetWithImages(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Gallery", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&product, id).Error
	if err != nil {
		return nil, translate(err, "product %d", id)
	}
	return &product, nil
}

// Create inserts the product together with its gallery.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Omit("Category").Create(product).Error; err != nil {
		return translate(err, "create product")
	}
	return nil
}

// Update writes every column of the product, NULLs included.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product, replaceGallery bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
			"name":                product.Name,
			"description":         product.Description,
			"price":               product.Price,
			"stock":               product.Stock,
			"image_url":           product.ImageURL,
			"category_id":         product.CategoryID,
			"on_sale":             product.OnSale,
			"discount_percentage": product.DiscountPercentage,
		})
		if res.Error != nil {
			return translate(res.Error, "update product %d", product.ID)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "update product %d", product.ID)
		}
		if !replaceGallery {
			return nil
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return translate(err, "clear gallery of product %d", product.ID)
		}
		for i := range product.Gallery {
			product.Gallery[i].ID = 0
			product.Gallery[i].ProductID = product.ID
			if err := tx.Create(&product.Gallery[i]).Error; err != nil {
				return translate(err, "store gallery of product %d", product.ID)
			}
		}
		return nil
	})
}

// Delete removes a product and its gallery.
func (r *GORMProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return translate(err, "delete gallery of product %d", id)
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return translate(res.Error, "delete product %d", id)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "delete product %d", id)
		}
		return nil
	})
}

// DecrementStock runs the guarded update
// UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?.
func (r *GORMProductRepository) DecrementStock(ctx context.Context, id uint, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return false, translate(res.Error, "decrement stock of product %d", id)
	}
	return res.RowsAffected == 1, nil
}
