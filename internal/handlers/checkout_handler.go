package handlers

import (
	"tienda/internal/middleware"
	"tienda/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles purchase requests.
type CheckoutHandler struct {
	checkoutService *services.CheckoutService
	cache           *middleware.Cache
	guards          Guards
	validate        *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler. cache may be nil.
func NewCheckoutHandler(checkoutService *services.CheckoutService, cache *middleware.Cache, guards Guards) *CheckoutHandler {
	if cache == nil {
		cache = middleware.NewCache(nil, 0)
	}
	return &CheckoutHandler{
		checkoutService: checkoutService,
		cache:           cache,
		guards:          guards,
		validate:        validator.New(),
	}
}

// RegisterRoutes mounts the purchase route. A committed purchase changes stock,
// so it clears cached catalog responses.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout/purchase", h.guards.Auth, h.cache.InvalidateOnWrite(), h.HandlePurchase)
}

// CartItemRequest is one cart line. nombre, precio and imagen are display values
// and are re-read from the catalog.
type CartItemRequest struct {
	ID       uint    `json:"id" validate:"required"`
	Nombre   string  `json:"nombre"`
	Precio   float64 `json:"precio"`
	Quantity int     `json:"quantity" validate:"required,gte=1"`
	Imagen   string  `json:"imagen"`
}

// ShippingAddressRequest is the delivery address of a purchase.
type ShippingAddressRequest struct {
	Calle  string  `json:"calle" validate:"required"`
	Depto  *string `json:"depto"`
	Region string  `json:"region" validate:"required"`
	Comuna string  `json:"comuna" validate:"required"`
}

// PurchaseRequest is the body of POST /checkout/purchase.
type PurchaseRequest struct {
	UserID          uint                    `json:"userId" validate:"required"`
	CartItems       []CartItemRequest       `json:"cartItems" validate:"required,min=1,dive"`
	ShippingAddress *ShippingAddressRequest `json:"shippingAddress" validate:"required"`
}

// HandlePurchase commits a cart as a receipt.
func (h *CheckoutHandler) HandlePurchase(c *fiber.Ctx) error {
	var req PurchaseRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	claims, _ := middleware.ClaimsFrom(c)
	if !claims.IsAdmin() && claims.UserID != req.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "cannot purchase on behalf of another user",
		})
	}

	items := make([]services.CartLine, 0, len(req.CartItems))
	for _, it := range req.CartItems {
		items = append(items, services.CartLine{
			ProductID: it.ID,
			Quantity:  it.Quantity,
			Name:      it.Nombre,
			UnitPrice: it.Precio,
			ImageURL:  it.Imagen,
		})
	}
	addr := req.ShippingAddress
	result, err := h.checkoutService.Purchase(c.UserContext(), services.CheckoutRequest{
		UserID: req.UserID,
		Items:  items,
		Shipping: services.ShippingAddress{
			Street: addr.Calle,
			Unit:   addr.Depto,
			Region: addr.Region,
			Comune: addr.Comuna,
		},
	})
	if err != nil {
		return respondError(c, err, "purchase could not complete")
	}

	return c.JSON(fiber.Map{
		"message":  "Purchase completed successfully",
		"boletaId": result.ReceiptID,
		"total":    result.Total,
	})
}
