package handlers

import (
	"fmt"

	"tienda/internal/middleware"
	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReceiptHandler serves committed receipts (boletas).
type ReceiptHandler struct {
	receipts *services.ReceiptService
	guards   Guards
}

func NewReceiptHandler(receipts *services.ReceiptService, guards Guards) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts, guards: guards}
}

func (h *ReceiptHandler) RegisterRoutes(router fiber.Router) {
	r := router.Group("/boletas")
	r.Get("/", h.guards.with(h.HandleList)...)
	r.Get("/:id/pdf", h.guards.Auth, h.HandlePDF)
	r.Get("/:id", h.guards.with(h.HandleGet)...)
}

func (h *ReceiptHandler) HandleList(c *fiber.Ctx) error {
	receipts, err := h.receipts.List(c.UserContext())
	if err != nil {
		return respondError(c, err, "Error retrieving receipts")
	}
	return c.JSON(receipts)
}

func (h *ReceiptHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid receipt ID")
	}
	receipt, err := h.receipts.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Error retrieving receipt")
	}
	return c.JSON(receipt)
}

func (h *ReceiptHandler) HandlePDF(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid receipt ID")
	}
	claims, _ := middleware.ClaimsFrom(c)
	doc, err := h.receipts.Document(c.UserContext(), id, claims)
	if err != nil {
		return respondError(c, err, "Error rendering receipt")
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="boleta-%d.pdf"`, id))
	return c.Send(doc)
}
