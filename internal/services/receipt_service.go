package services

import (
	"context"

	"tienda/internal/models"
	"tienda/internal/repositories"
)

// ReceiptRenderer turns a receipt into a printable document.
type ReceiptRenderer interface {
	Render(receipt *models.Receipt) ([]byte, error)
}

// ReceiptService reads committed receipts.
type ReceiptService struct {
	repo     repositories.ReceiptRepository
	renderer ReceiptRenderer
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(repo repositories.ReceiptRepository, renderer ReceiptRenderer) *ReceiptService {
	return &ReceiptService{repo: repo, renderer: renderer}
}

func (s *ReceiptService) List(ctx context.Context) ([]models.Receipt, error) {
	receipts, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if receipts == nil {
		receipts = []models.Receipt{}
	}
	return receipts, nil
}

func (s *ReceiptService) Get(ctx context.Context, id uint) (*models.Receipt, error) {
	return s.repo.GetByID(ctx, id)
}

// Viewable returns the receipt when the caller owns it or is an administrator.
func (s *ReceiptService) Viewable(ctx context.Context, id uint, caller Claims) (*models.Receipt, error) {
	receipt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && receipt.UserID != caller.UserID {
		return nil, ErrForbidden
	}
	return receipt, nil
}

// Document renders the receipt for the caller.
func (s *ReceiptService) Document(ctx context.Context, id uint, caller Claims) ([]byte, error) {
	receipt, err := s.Viewable(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(receipt)
}
