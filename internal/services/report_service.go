package services

import (
	"context"
	"strings"
	"time"

	"tienda/internal/models"
	"tienda/internal/repositories"
)

// TopProductsLimit caps the best sellers report.
const TopProductsLimit = 20

const dateLayout = "2006-01-02"

// ReportService aggregates sales.
type ReportService struct {
	repo repositories.ReportRepository
}

// NewReportService creates a new ReportService.
func NewReportService(repo repositories.ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

// ParseRange turns optional YYYY-MM-DD bounds into a half-open UTC range
// covering both calendar days inclusively.
func ParseRange(from, to string) (repositories.DateRange, error) {
	var rng repositories.DateRange
	if from = strings.TrimSpace(from); from != "" {
		t, err := time.ParseInLocation(dateLayout, from, time.UTC)
		if err != nil {
			return rng, invalid("from must be a date formatted as YYYY-MM-DD")
		}
		rng.From = &t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, err := time.ParseInLocation(dateLayout, to, time.UTC)
		if err != nil {
			return rng, invalid("to must be a date formatted as YYYY-MM-DD")
		}
		until := t.AddDate(0, 0, 1)
		rng.Until = &until
	}
	if rng.From != nil && rng.Until != nil && !rng.From.Before(*rng.Until) {
		return rng, invalid("from must not be after to")
	}
	return rng, nil
}

// Sales counts receipts and sums totals between from and to.
func (s *ReportService) Sales(ctx context.Context, from, to string) (models.SalesSummary, error) {
	rng, err := ParseRange(from, to)
	if err != nil {
		return models.SalesSummary{}, err
	}
	return s.repo.SalesSummary(ctx, rng)
}

// TopProducts ranks products by revenue between from and to.
func (s *ReportService) TopProducts(ctx context.Context, from, to string) ([]models.TopProduct, error) {
	rng, err := ParseRange(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.TopProducts(ctx, rng, TopProductsLimit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.TopProduct{}
	}
	return rows, nil
}
