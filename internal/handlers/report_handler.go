package handlers

import (
	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler serves the sales reports.
type ReportHandler struct {
	reports *services.ReportService
	guards  Guards
}

func NewReportHandler(reports *services.ReportService, guards Guards) *ReportHandler {
	return &ReportHandler{reports: reports, guards: guards}
}

func (h *ReportHandler) RegisterRoutes(router fiber.Router) {
	r := router.Group("/reportes", h.guards.admin()...)
	r.Get("/sales", h.HandleSales)
	r.Get("/top-products", h.HandleTopProducts)
}

// HandleSales answers {num_boletas, total_vendido} for the optional from/to range.
func (h *ReportHandler) HandleSales(c *fiber.Ctx) error {
	summary, err := h.reports.Sales(c.UserContext(), c.Query("from"), c.Query("to"))
	if err != nil {
		return respondError(c, err, "Error generating sales report")
	}
	return c.JSON(summary)
}

func (h *ReportHandler) HandleTopProducts(c *fiber.Ctx) error {
	rows, err := h.reports.TopProducts(c.UserContext(), c.Query("from"), c.Query("to"))
	if err != nil {
		return respondError(c, err, "Error generating top products report")
	}
	return c.JSON(rows)
}
