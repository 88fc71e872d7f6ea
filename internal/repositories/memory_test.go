package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCheckoutTxRestoresOnError(t *testing.T) {
	ctx := context.Background()
	products := repositories.NewMemoryProductRepository()
	receipts := repositories.NewMemoryReceiptRepository()
	require.NoError(t, products.Create(ctx, &models.Product{Name: "Bear", Price: 10000, Stock: 3}))

	tx := repositories.NewMemoryCheckoutTx(products, receipts)
	err := tx.Run(ctx, func(rr repositories.ReceiptRepository, pr repositories.ProductRepository) error {
		r := &models.Receipt{UserID: 1, PurchaseDate: time.Now()}
		require.NoError(t, rr.Create(ctx, r))
		require.NoError(t, rr.CreateLine(ctx, &models.ReceiptLine{ReceiptID: r.ID, ProductID: 1, Quantity: 2}))
		ok, _ := pr.DecrementStock(ctx, 1, 2)
		assert.True(t, ok)
		return errors.New("abort")
	})
	require.Error(t, err)

	n, lines := receipts.Count()
	assert.Zero(t, n)
	assert.Zero(t, lines)
	p, err := products.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestMemoryProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryProductRepository()
	d := 0.2
	require.NoError(t, repo.Create(ctx, &models.Product{Name: "A", Stock: 9, DiscountPercentage: &d}))
	require.NoError(t, repo.Create(ctx, &models.Product{Name: "B", Stock: 1}))

	onSale, _ := repo.GetOnSale(ctx)
	require.Len(t, onSale, 1)
	assert.Equal(t, "A", onSale[0].Name)

	low, _ := repo.GetLowStock(ctx, 5)
	require.Len(t, low, 1)
	assert.Equal(t, "B", low[0].Name)

	ok, err := repo.DecrementStock(ctx, 2, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
