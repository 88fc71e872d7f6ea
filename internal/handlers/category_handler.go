package handlers

import (
	"tienda/internal/middleware"
	"tienda/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	catalog    *services.CatalogService
	categories *services.CategoryService
	cache      *middleware.Cache
	guards     Guards
	validate   *validator.Validate
}

// NewCategoryHandler creates a new CategoryHandler. cache may be nil.
func NewCategoryHandler(catalog *services.CatalogService, categories *services.CategoryService, cache *middleware.Cache, guards Guards) *CategoryHandler {
	if cache == nil {
		cache = middleware.NewCache(nil, 0)
	}
	return &CategoryHandler{
		catalog:    catalog,
		categories: categories,
		cache:      cache,
		guards:     guards,
		validate:   validator.New(),
	}
}

func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	r := router.Group("/categorias")
	r.Get("/", h.HandleList)

	write := h.cache.InvalidateOnWrite()
	r.Post("/", h.guards.with(write, h.HandleCreate)...)
	r.Put("/:id", h.guards.with(write, h.HandleRename)...)
	r.Delete("/:id", h.guards.with(write, h.HandleDelete)...)
}

// CategoryRequest is the body of category create and rename.
type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *CategoryHandler) HandleList(c *fiber.Ctx) error {
	categories, err := h.catalog.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err, "Error retrieving categories")
	}
	return c.JSON(categories)
}

func (h *CategoryHandler) HandleCreate(c *fiber.Ctx) error {
	var req CategoryRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	category, err := h.categories.Create(c.UserContext(), req.Name)
	if err != nil {
		return respondError(c, err, "Error creating category")
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CategoryHandler) HandleRename(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid category ID")
	}
	var req CategoryRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	category, err := h.categories.Rename(c.UserContext(), id, req.Name)
	if err != nil {
		return respondError(c, err, "Error updating category")
	}
	return c.JSON(category)
}

func (h *CategoryHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid category ID")
	}
	if err := h.categories.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err, "Error deleting category")
	}
	return c.JSON(fiber.Map{"message": "Category deleted successfully"})
}
