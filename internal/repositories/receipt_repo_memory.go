package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tienda/internal/models"
)

// MemoryReceiptRepository is an in-memory implementation of ReceiptRepository.
type MemoryReceiptRepository struct {
	receipts map[uint]models.Receipt
	nextID   uint
	nextLine uint
	mu       sync.RWMutex
}

// NewMemoryReceiptRepository creates a new instance of MemoryReceiptRepository.
func NewMemoryReceiptRepository() *MemoryReceiptRepository {
	return &MemoryReceiptRepository{
		receipts: make(map[uint]models.Receipt),
		nextID:   1,
		nextLine: 1,
	}
}

func (r *MemoryReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	receipt.ID = r.nextID
	r.nextID++
	stored := *receipt
	stored.Lines = nil
	r.receipts[receipt.ID] = stored
	return nil
}

func (r *MemoryReceiptRepository) CreateLine(ctx context.Context, line *models.ReceiptLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	receipt, ok := r.receipts[line.ReceiptID]
	if !ok {
		return fmt.Errorf("create line for receipt %d: %w", line.ReceiptID, ErrNotFound)
	}
	line.ID = r.nextLine
	r.nextLine++
	receipt.Lines = append(receipt.Lines, *line)
	r.receipts[receipt.ID] = receipt
	return nil
}

func (r *MemoryReceiptRepository) list(keep func(models.Receipt) bool) []models.Receipt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Receipt, 0, len(r.receipts))
	for _, rc := range r.receipts {
		if keep(rc) {
			rc.Lines = append([]models.ReceiptLine(nil), rc.Lines...)
			list = append(list, rc)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].PurchaseDate.Equal(list[j].PurchaseDate) {
			return list[i].PurchaseDate.After(list[j].PurchaseDate)
		}
		return list[i].ID > list[j].ID
	})
	return list
}

func (r *MemoryReceiptRepository) GetAll(ctx context.Context) ([]models.Receipt, error) {
	return r.list(func(models.Receipt) bool { return true }), nil
}

func (r *MemoryReceiptRepository) GetByID(ctx context.Context, id uint) (*models.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	receipt, ok := r.receipts[id]
	if !ok {
		return nil, fmt.Errorf("receipt %d: %w", id, ErrNotFound)
	}
	receipt.Lines = append([]models.ReceiptLine(nil), receipt.Lines...)
	return &receipt, nil
}

func (r *MemoryReceiptRepository) GetByUser(ctx context.Context, userID uint) ([]models.Receipt, error) {
	return r.list(func(rc models.Receipt) bool { return rc.UserID == userID }), nil
}

// Count returns the number of stored receipts and lines.
func (r *MemoryReceiptRepository) Count() (receipts, lines int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rc := range r.receipts {
		receipts++
		lines += len(rc.Lines)
	}
	return receipts, lines
}

type receiptState struct {
	receipts map[uint]models.Receipt
	nextID   uint
	nextLine uint
}

func (r *MemoryReceiptRepository) snapshot() receiptState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cp := make(map[uint]models.Receipt, len(r.receipts))
	for id, rc := range r.receipts {
		rc.Lines = append([]models.ReceiptLine(nil), rc.Lines...)
		cp[id] = rc
	}
	return receiptState{receipts: cp, nextID: r.nextID, nextLine: r.nextLine}
}

func (r *MemoryReceiptRepository) restore(s receiptState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts, r.nextID, r.nextLine = s.receipts, s.nextID, s.nextLine
}

// MemoryCheckoutTx runs checkouts against in-memory repositories, restoring both on error.
// Transactions are serialized.
type MemoryCheckoutTx struct {
	Products *MemoryProductRepository
	Receipts *MemoryReceiptRepository
	mu       sync.Mutex
}

// NewMemoryCheckoutTx creates a new MemoryCheckoutTx.
func NewMemoryCheckoutTx(products *MemoryProductRepository, receipts *MemoryReceiptRepository) *MemoryCheckoutTx {
	return &MemoryCheckoutTx{Products: products, Receipts: receipts}
}

func (t *MemoryCheckoutTx) Run(ctx context.Context, fn func(receipts ReceiptRepository, products ProductRepository) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	products := t.Products.snapshot()
	receipts := t.Receipts.snapshot()
	if err := fn(t.Receipts, t.Products); err != nil {
		t.Products.restore(products)
		t.Receipts.restore(receipts)
		return err
	}
	return nil
}
