package handlers

import (
	"encoding/json"

	"tienda/internal/middleware"
	"tienda/internal/models"
	"tienda/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler serves the public catalog and the product administration routes.
type ProductHandler struct {
	catalog  *services.CatalogService
	products *services.ProductService
	cache    *middleware.Cache
	guards   Guards
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler. cache may be nil.
func NewProductHandler(catalog *services.CatalogService, products *services.ProductService, cache *middleware.Cache, guards Guards) *ProductHandler {
	if cache == nil {
		cache = middleware.NewCache(nil, 0)
	}
	return &ProductHandler{
		catalog:  catalog,
		products: products,
		cache:    cache,
		guards:   guards,
		validate: validator.New(),
	}
}

// RegisterRoutes registers product routes. Literal segments go before :id.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	r := router.Group("/products")
	cached := h.cache.Handler()

	r.Get("/", cached, h.HandleList)
	r.Get("/on-sale", cached, h.HandleOnSale)
	r.Get("/category/:id", cached, h.HandleByCategory)
	r.Get("/low-stock", append(h.guards.admin(), h.HandleLowStock)...)
	r.Get("/:id/details", cached, h.HandleDetails)
	r.Get("/:id", append(h.guards.admin(), h.HandleGet)...)

	write := h.cache.InvalidateOnWrite()
	r.Post("/", h.guards.with(write, h.HandleCreate)...)
	r.Put("/:id", h.guards.with(write, h.HandleUpdate)...)
	r.Delete("/:id", h.guards.with(write, h.HandleDelete)...)
}

func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	products, err := h.catalog.ListProducts(c.UserContext())
	if err != nil {
		return respondError(c, err, "Error retrieving products")
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleOnSale(c *fiber.Ctx) error {
	products, err := h.catalog.ListOnSale(c.UserContext())
	if err != nil {
		return respondError(c, err, "Error retrieving products on sale")
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleByCategory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid category ID")
	}
	products, err := h.catalog.ListByCategory(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Error retrieving products by category")
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleLowStock(c *fiber.Ctx) error {
	products, err := h.catalog.LowStock(c.UserContext())
	if err != nil {
		return respondError(c, err, "Error retrieving low stock products")
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleDetails(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	product, err := h.catalog.ProductDetails(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Error retrieving product details")
	}
	return c.JSON(productDetails{Product: *product, Images: product.Images})
}

// productDetails always carries images, even when the gallery is empty.
type productDetails struct {
	models.Product
	Images []string `json:"images"`
}

func (h *ProductHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	product, err := h.products.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Error retrieving product")
	}
	return c.JSON(product)
}

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	Name               string   `json:"name" validate:"required"`
	Description        *string  `json:"description"`
	Price              float64  `json:"price" validate:"required,gt=0"`
	Stock              *int     `json:"stock" validate:"required,gte=0"`
	ImageURL           string   `json:"image_url"`
	CategoryID         *uint    `json:"category_id"`
	DiscountPercentage *float64 `json:"discount_percentage" validate:"omitempty,gte=0,lte=1"`
	Images             []string `json:"images"`
}

func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateProductRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	product, err := h.products.CreateProduct(c.UserContext(), services.ProductInput{
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		Stock:              *req.Stock,
		ImageURL:           req.ImageURL,
		CategoryID:         req.CategoryID,
		DiscountPercentage: req.DiscountPercentage,
		Images:             req.Images,
	})
	if err != nil {
		return respondError(c, err, "Error creating product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// NullableFloat tells an absent JSON field apart from an explicit null.
type NullableFloat struct {
	Set   bool
	Value *float64
}

func (n *NullableFloat) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// UpdateProductRequest is the body of PUT /products/{id}. Every field is optional.
type UpdateProductRequest struct {
	Name               *string       `json:"name" validate:"omitempty,min=1"`
	Description        *string       `json:"description"`
	Price              *float64      `json:"price" validate:"omitempty,gt=0"`
	Stock              *int          `json:"stock" validate:"omitempty,gte=0"`
	ImageURL           *string       `json:"image_url"`
	CategoryID         *uint         `json:"category_id"`
	DiscountPercentage NullableFloat `json:"discount_percentage"`
	Images             *[]string     `json:"images"`
}

func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	var req UpdateProductRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	product, err := h.products.UpdateProduct(c.UserContext(), id, services.ProductPatch{
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		Stock:              req.Stock,
		ImageURL:           req.ImageURL,
		CategoryID:         req.CategoryID,
		DiscountSet:        req.DiscountPercentage.Set,
		DiscountPercentage: req.DiscountPercentage.Value,
		Images:             req.Images,
	})
	if err != nil {
		return respondError(c, err, "Error updating product")
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	if err := h.products.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, err, "Error deleting product")
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}
