package repositories

import (
	"context"
	"time"

	"tienda/internal/models"

	"gorm.io/gorm"
)

// ReceiptRepository defines the interface for receipt data access.
type ReceiptRepository interface {
	// Create inserts the receipt header only; lines go through CreateLine.
	Create(ctx context.Context, receipt *models.Receipt) error
	CreateLine(ctx context.Context, line *models.ReceiptLine) error
	GetAll(ctx context.Context) ([]models.Receipt, error)
	GetByID(ctx context.Context, id uint) (*models.Receipt, error)
	GetByUser(ctx context.Context, userID uint) ([]models.Receipt, error)
}

// DateRange bounds a report. From is inclusive, Until exclusive; nil means unbounded.
type DateRange struct {
	From  *time.Time
	Until *time.Time
}

// ReportRepository aggregates committed receipts.
type ReportRepository interface {
	SalesSummary(ctx context.Context, rng DateRange) (models.SalesSummary, error)
	TopProducts(ctx context.Context, rng DateRange, limit int) ([]models.TopProduct, error)
}

// GORMReceiptRepository is a GORM implementation of ReceiptRepository.
type GORMReceiptRepository struct {
	db *gorm.DB
}

// NewGORMReceiptRepository creates a new instance of GORMReceiptRepository.
func NewGORMReceiptRepository(db *gorm.DB) *GORMReceiptRepository {
	return &GORMReceiptRepository{db: db}
}

func (r *GORMReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	if err := r.db.WithContext(ctx).Omit("Lines", "User").Create(receipt).Error; err != nil {
		return translate(err, "create receipt for user %d", receipt.UserID)
	}
	return nil
}

func (r *GORMReceiptRepository) CreateLine(ctx context.Context, line *models.ReceiptLine) error {
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return translate(err, "create line for receipt %d", line.ReceiptID)
	}
	return nil
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// GetAll retrieves every receipt with its buyer, newest first.
func (r *GORMReceiptRepository) GetAll(ctx context.Context) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("purchase_date DESC, id DESC").
		Find(&receipts).Error
	if err != nil {
		return nil, translate(err, "list receipts")
	}
	return receipts, nil
}

// GetByID retrieves one receipt with its buyer and lines.
func (r *GORMReceiptRepository) GetByID(ctx context.Context, id uint) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Lines", orderedLines).
		First(&receipt, id).Error
	if err != nil {
		return nil, translate(err, "receipt %d", id)
	}
	return &receipt, nil
}

// GetByUser retrieves a user's receipts with lines, newest first.
func (r *GORMReceiptRepository) GetByUser(ctx context.Context, userID uint) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("user_id = ?", userID).
		Order("purchase_date DESC, id DESC").
		Find(&receipts).Error
	if err != nil {
		return nil, translate(err, "list receipts of user %d", userID)
	}
	return receipts, nil
}

// GORMReportRepository is a GORM implementation of ReportRepository.
type GORMReportRepository struct {
	db *gorm.DB
}

// NewGORMReportRepository creates a new instance of GORMReportRepository.
func NewGORMReportRepository(db *gorm.DB) *GORMReportRepository {
	return &GORMReportRepository{db: db}
}

func applyRange(q *gorm.DB, column string, rng DateRange) *gorm.DB {
	if rng.From != nil {
		q = q.Where(column+" >= ?", rng.From.UTC())
	}
	if rng.Until != nil {
		q = q.Where(column+" < ?", rng.Until.UTC())
	}
	return q
}

// SalesSummary counts receipts and sums their totals within rng.
func (r *GORMReportRepository) SalesSummary(ctx context.Context, rng DateRange) (models.SalesSummary, error) {
	var out models.SalesSummary
	q := applyRange(r.db.WithContext(ctx).Model(&models.Receipt{}), "purchase_date", rng)
	err := q.Select("COUNT(*) AS num_receipts, COALESCE(SUM(total), 0) AS total_sold").Scan(&out).Error
	if err != nil {
		return out, translate(err, "sales summary")
	}
	return out, nil
}

// TopProducts ranks products by revenue within rng.
func (r *GORMReportRepository) TopProducts(ctx context.Context, rng DateRange, limit int) ([]models.TopProduct, error) {
	out := []models.TopProduct{}
	q := r.db.WithContext(ctx).
		Table("receipt_lines AS rl").
		Joins("JOIN receipts AS r ON r.id = rl.receipt_id")
	q = applyRange(q, "r.purchase_date", rng)
	err := q.Select("rl.product_id AS product_id, rl.product_name AS product_name, " +
		"SUM(rl.quantity) AS units_sold, SUM(rl.quantity * rl.unit_price) AS total_sold").
		Group("rl.product_id, rl.product_name").
		Order("total_sold DESC, rl.product_id ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, translate(err, "top products")
	}
	return out, nil
}
