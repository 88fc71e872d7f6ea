package services

import (
	"context"
	"errors"
	"strings"

	"tienda/internal/models"
	"tienda/internal/pricing"
	"tienda/internal/repositories"

	"github.com/rs/zerolog/log"
)

// ProductInput describes a new product.
type ProductInput struct {
	Name               string
	Description        *string
	Price              float64
	Stock              int
	ImageURL           string
	CategoryID         *uint
	DiscountPercentage *float64
	Images             []string
}

// ProductPatch is a partial product update. Nil fields are left untouched.
// DiscountSet distinguishes "discount_percentage absent" from "explicitly null";
// when DiscountSet is true a nil or zero DiscountPercentage clears the discount.
type ProductPatch struct {
	Name               *string
	Description        *string
	Price              *float64
	Stock              *int
	ImageURL           *string
	CategoryID         *uint
	DiscountSet        bool
	DiscountPercentage *float64
	Images             *[]string
}

// ProductService handles the admin side of the catalog.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, categories repositories.CategoryRepository) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
	}
}

// GetProduct retrieves a single product with its gallery.
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetWithImages(ctx, id)
	if err != nil {
		return nil, err
	}
	WithDiscount(product)
	product.Images = galleryURLs(product.Gallery)
	return product, nil
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		CategoryID:  in.CategoryID,
		Gallery:     gallery(in.Images),
	}
	setDiscount(product, in.DiscountPercentage)

	if err := s.validate(ctx, product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	log.Info().Uint("product_id", product.ID).Str("name", product.Name).Msg("product created")

	WithDiscount(product)
	product.Images = galleryURLs(product.Gallery)
	return product, nil
}

// UpdateProduct applies a partial update.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	product, err := s.repo.GetWithImages(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		product.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		product.Description = patch.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Stock != nil {
		product.Stock = *patch.Stock
	}
	if patch.ImageURL != nil {
		product.ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
	if patch.CategoryID != nil {
		product.CategoryID = patch.CategoryID
	}
	if patch.DiscountSet {
		setDiscount(product, patch.DiscountPercentage)
	}
	replaceGallery := patch.Images != nil
	if replaceGallery {
		product.Gallery = gallery(*patch.Images)
	}

	if err := s.validate(ctx, product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product, replaceGallery); err != nil {
		return nil, err
	}
	log.Info().Uint("product_id", product.ID).Msg("product updated")

	WithDiscount(product)
	product.Images = galleryURLs(product.Gallery)
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Uint("product_id", id).Msg("product deleted")
	return nil
}

func (s *ProductService) validate(ctx context.Context, p *models.Product) error {
	if p.Name == "" {
		return invalid("name is required")
	}
	if p.Price <= 0 {
		return invalid("price must be greater than 0")
	}
	if p.Stock < 0 {
		return invalid("stock must not be negative")
	}
	if p.DiscountPercentage != nil && !pricing.ValidDiscount(*p.DiscountPercentage) {
		return invalid("discount_percentage must be between 0 and 1")
	}
	if p.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *p.CategoryID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return invalid("category %d does not exist", *p.CategoryID)
			}
			return err
		}
	}
	return nil
}

// setDiscount stores a discount; nil or zero clears it. on_sale always follows the discount.
func setDiscount(p *models.Product, discount *float64) {
	if discount == nil || *discount == 0 {
		p.DiscountPercentage = nil
		p.OnSale = false
		return
	}
	d := *discount
	p.DiscountPercentage = &d
	p.OnSale = d > 0
}

func gallery(urls []string) []models.ProductImage {
	images := make([]models.ProductImage, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		images = append(images, models.ProductImage{ImageURL: u, Order: len(images) + 1})
	}
	return images
}

func galleryURLs(images []models.ProductImage) []string {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.ImageURL)
	}
	return urls
}
