package handlers

import (
	"tienda/internal/middleware"
	"tienda/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler serves user administration and purchase history.
type UserHandler struct {
	users    *services.UserService
	guards   Guards
	validate *validator.Validate
}

func NewUserHandler(users *services.UserService, guards Guards) *UserHandler {
	return &UserHandler{users: users, guards: guards, validate: validator.New()}
}

func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	r := router.Group("/users")
	r.Get("/", h.guards.with(h.HandleList)...)
	r.Post("/", h.guards.with(h.HandleCreate)...)
	r.Get("/:id/boletas", h.guards.Auth, h.HandleReceipts)
	r.Get("/:id", h.guards.with(h.HandleGet)...)
	r.Put("/:id", h.guards.with(h.HandleUpdate)...)
}

func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return respondError(c, err, "Error retrieving users")
	}
	return c.JSON(users)
}

func (h *UserHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Error retrieving user")
	}
	return c.JSON(user)
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	RegisterRequest
	RoleID uint `json:"role_id"`
}

func (h *UserHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateUserRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	user, err := h.users.Create(c.UserContext(), services.UserInput{
		Registration: services.Registration{
			Name:     req.Name,
			Surname:  req.Surname,
			Email:    req.Email,
			Password: req.Password,
			Street:   req.Street,
			Unit:     req.Unit,
			Region:   req.Region,
			Comune:   req.Comune,
		},
		RoleID: req.RoleID,
	})
	if err != nil {
		return respondError(c, err, "Error creating user")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// AddressRequest is the default address part of a user update.
type AddressRequest struct {
	Street string  `json:"street" validate:"required"`
	Unit   *string `json:"unit"`
	Region string  `json:"region" validate:"required"`
	Comune string  `json:"comune" validate:"required"`
}

// UpdateUserRequest is the body of PUT /users/{id}. Every field is optional.
type UpdateUserRequest struct {
	Name     *string         `json:"name"`
	Surname  *string         `json:"surname"`
	Email    *string         `json:"email" validate:"omitempty,email"`
	Password *string         `json:"password" validate:"omitempty,min=6"`
	RoleID   *uint           `json:"role_id"`
	Address  *AddressRequest `json:"address"`
}

func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}
	var req UpdateUserRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	patch := services.UserPatch{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Password: req.Password,
		RoleID:   req.RoleID,
	}
	if a := req.Address; a != nil {
		patch.Address = &services.AddressInput{Street: a.Street, Unit: a.Unit, Region: a.Region, Comune: a.Comune}
	}
	user, err := h.users.Update(c.UserContext(), id, patch)
	if err != nil {
		return respondError(c, err, "Error updating user")
	}
	return c.JSON(user)
}

// HandleReceipts lists a user's receipts. Clients may only read their own.
func (h *UserHandler) HandleReceipts(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}
	claims, _ := middleware.ClaimsFrom(c)
	if !claims.IsAdmin() && claims.UserID != id {
		return respondError(c, services.ErrForbidden, "")
	}
	receipts, err := h.users.Receipts(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Error retrieving receipts")
	}
	return c.JSON(receipts)
}
