// Package events reacts to messages consumed from the broker.
package events

import (
	"tienda/pkg/rabbitmq"

	"github.com/rs/zerolog/log"
)

// LowStockAlert names a product whose stock fell to the restock threshold.
type LowStockAlert struct {
	ProductID uint
	Name      string
	Remaining int
}

// ReceiptHandler logs committed receipts and flags products that need restocking.
type ReceiptHandler struct {
	threshold int
	onLow     func(LowStockAlert)
}

// NewReceiptHandler creates a handler. onLow may be nil.
func NewReceiptHandler(threshold int, onLow func(LowStockAlert)) *ReceiptHandler {
	return &ReceiptHandler{threshold: threshold, onLow: onLow}
}

// Handle processes one receipt event.
func (h *ReceiptHandler) Handle(event rabbitmq.ReceiptEvent) error {
	// other event types share the queue but carry nothing to act on
	if event.Type != rabbitmq.EventReceiptCreated {
		log.Debug().Str("type", event.Type).Msg("ignoring receipt event")
		return nil
	}
	log.Info().
		Str("event_id", event.EventID).
		Uint("receipt_id", event.ReceiptID).
		Uint("user_id", event.UserID).
		Float64("total", event.Total).
		Int("lines", len(event.Lines)).
		Msg("receipt created")

	for _, line := range event.Lines {
		if line.RemainingStock > h.threshold {
			continue
		}
		log.Warn().
			Uint("product_id", line.ProductID).
			Str("name", line.Name).
			Int("remaining_stock", line.RemainingStock).
			Int("threshold", h.threshold).
			Msg("product at or below low stock threshold")
		if h.onLow != nil {
			h.onLow(LowStockAlert{ProductID: line.ProductID, Name: line.Name, Remaining: line.RemainingStock})
		}
	}
	return nil
}
