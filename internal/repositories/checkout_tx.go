package repositories

import (
	"context"

	"gorm.io/gorm"
)

// CheckoutTx runs fn with repositories bound to one database transaction.
// A non-nil error from fn rolls everything back; nil commits.
type CheckoutTx interface {
	Run(ctx context.Context, fn func(receipts ReceiptRepository, products ProductRepository) error) error
}

// GORMCheckoutTx is the gorm-backed CheckoutTx.
type GORMCheckoutTx struct {
	db *gorm.DB
}

// NewGORMCheckoutTx creates a new GORMCheckoutTx.
func NewGORMCheckoutTx(db *gorm.DB) *GORMCheckoutTx {
	return &GORMCheckoutTx{db: db}
}

// Run opens a transaction, hands fn repositories bound to it, and commits or rolls back.
func (t *GORMCheckoutTx) Run(ctx context.Context, fn func(receipts ReceiptRepository, products ProductRepository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMReceiptRepository(tx), NewGORMProductRepository(tx))
	})
}
