package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tienda/internal/metrics"
	"tienda/internal/models"
	"tienda/internal/pricing"
	"tienda/internal/repositories"
	"tienda/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CartLine is one cart entry as submitted by the client. Name, UnitPrice and
// ImageURL are display values only; the stored snapshot comes from the catalog.
type CartLine struct {
	ProductID uint
	Quantity  int
	Name      string
	UnitPrice float64
	ImageURL  string
}

// ShippingAddress is the destination of an order.
type ShippingAddress struct {
	Street string
	Unit   *string
	Region string
	Comune string
}

// CheckoutRequest is a purchase attempt.
type CheckoutRequest struct {
	UserID   uint
	Items    []CartLine
	Shipping ShippingAddress
}

// CheckoutResult identifies the committed receipt.
type CheckoutResult struct {
	ReceiptID uint    `json:"boletaId"`
	Total     float64 `json:"total"`
}

// ReceiptPublisher announces committed receipts.
type ReceiptPublisher interface {
	PublishReceiptCreated(ctx context.Context, event rabbitmq.ReceiptEvent) error
}

// CheckoutService turns a cart into a receipt, decrementing stock atomically.
type CheckoutService struct {
	products  repositories.ProductRepository
	tx        repositories.CheckoutTx
	publisher ReceiptPublisher
	now       func() time.Time
}

// NewCheckoutService creates a new CheckoutService. publisher may be nil.
func NewCheckoutService(products repositories.ProductRepository, tx repositories.CheckoutTx, publisher ReceiptPublisher) *CheckoutService {
	return &CheckoutService{
		products:  products,
		tx:        tx,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type pricedLine struct {
	line      models.ReceiptLine
	remaining int
}

// Purchase validates the request, checks stock, and commits the receipt with its
// lines and stock decrements in one transaction.
func (s *CheckoutService) Purchase(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	result, units, err := s.purchase(ctx, req)
	metrics.RecordCheckout(checkoutOutcome(err), units)
	return result, err
}

func (s *CheckoutService) purchase(ctx context.Context, req CheckoutRequest) (*CheckoutResult, int, error) {
	if err := validateCheckout(req); err != nil {
		return nil, 0, err
	}

	// Pre-check against current stock; nothing is written if any line fails.
	priced := make([]pricedLine, 0, len(req.Items))
	for _, item := range mergeLines(req.Items) {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, 0, fmt.Errorf("product %d not found: %w", item.ProductID, ErrNotFound)
			}
			return nil, 0, err
		}
		if product.Stock < item.Quantity {
			return nil, 0, &StockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   item.Quantity,
			}
		}
		priced = append(priced, pricedLine{
			line: models.ReceiptLine{
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   pricing.UnitPrice(product.Price, product.DiscountPercentage),
				Quantity:    item.Quantity,
				ImageURL:    product.ImageURL,
			},
		})
	}

	totals := make([]pricing.Line, 0, len(priced))
	units := 0
	for _, p := range priced {
		totals = append(totals, pricing.Line{Unit: p.line.UnitPrice, Quantity: p.line.Quantity})
		units += p.line.Quantity
	}

	receipt := &models.Receipt{
		UserID:         req.UserID,
		PurchaseDate:   s.now(),
		Total:          pricing.Total(totals),
		ShippingStreet: strings.TrimSpace(req.Shipping.Street),
		ShippingUnit:   trimmedOrNil(req.Shipping.Unit),
		ShippingRegion: strings.TrimSpace(req.Shipping.Region),
		ShippingComune: strings.TrimSpace(req.Shipping.Comune),
	}

	err := s.tx.Run(ctx, func(receipts repositories.ReceiptRepository, products repositories.ProductRepository) error {
		if err := receipts.Create(ctx, receipt); err != nil {
			return err
		}
		for i := range priced {
			line := &priced[i].line
			line.ReceiptID = receipt.ID
			if err := receipts.CreateLine(ctx, line); err != nil {
				return err
			}
			ok, err := products.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("product %d: %w", line.ProductID, ErrStockRace)
			}
			// read back inside the transaction; other checkouts may have sold units since the pre-check
			current, err := products.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			priced[i].remaining = current.Stock
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Uint("user_id", req.UserID).Msg("checkout rolled back")
		return nil, 0, err
	}

	log.Info().
		Uint("receipt_id", receipt.ID).
		Uint("user_id", req.UserID).
		Float64("total", receipt.Total).
		Int("units", units).
		Msg("checkout committed")

	s.publish(ctx, receipt, priced)
	return &CheckoutResult{ReceiptID: receipt.ID, Total: receipt.Total}, units, nil
}

// publish is best effort: the receipt is already committed.
func (s *CheckoutService) publish(ctx context.Context, receipt *models.Receipt, priced []pricedLine) {
	if s.publisher == nil {
		return
	}
	event := rabbitmq.ReceiptEvent{
		EventID:    uuid.NewString(),
		Type:       rabbitmq.EventReceiptCreated,
		ReceiptID:  receipt.ID,
		UserID:     receipt.UserID,
		Total:      receipt.Total,
		OccurredAt: receipt.PurchaseDate,
	}
	for _, p := range priced {
		event.Lines = append(event.Lines, rabbitmq.ReceiptLineEvent{
			ProductID:      p.line.ProductID,
			Name:           p.line.ProductName,
			Quantity:       p.line.Quantity,
			UnitPrice:      p.line.UnitPrice,
			RemainingStock: p.remaining,
		})
	}
	if err := s.publisher.PublishReceiptCreated(ctx, event); err != nil {
		log.Warn().Err(err).Uint("receipt_id", receipt.ID).Msg("failed to publish receipt event")
	}
}

func validateCheckout(req CheckoutRequest) error {
	if req.UserID == 0 {
		return invalid("missing data: userId is required")
	}
	if len(req.Items) == 0 {
		return invalid("missing data: the cart is empty")
	}
	for _, item := range req.Items {
		if item.ProductID == 0 {
			return invalid("cart item without product id")
		}
		if item.Quantity < 1 {
			return invalid("quantity for product %d must be at least 1", item.ProductID)
		}
	}
	sh := req.Shipping
	if strings.TrimSpace(sh.Street) == "" || strings.TrimSpace(sh.Region) == "" || strings.TrimSpace(sh.Comune) == "" {
		return invalid("missing data: street, region and comune are required")
	}
	return nil
}

// mergeLines sums quantities of repeated product ids, keeping first-seen order.
func mergeLines(items []CartLine) []CartLine {
	index := make(map[uint]int, len(items))
	merged := make([]CartLine, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

func checkoutOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrInsufficientStock):
		return metrics.OutcomeNoStock
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrStockRace):
		return metrics.OutcomeRace
	default:
		return metrics.OutcomeError
	}
}
