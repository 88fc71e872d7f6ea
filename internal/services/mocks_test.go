package services_test

import (
	"context"
	"os"
	"testing"

	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/pkg/rabbitmq"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User, address *models.Address) error {
	args := m.Called(ctx, user, address)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User, address *models.Address) error {
	args := m.Called(ctx, user, address)
	return args.Error(0)
}

func (m *MockUserRepository) GetRole(ctx context.Context, id uint) (*models.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPublisher records published receipt events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishReceiptCreated(ctx context.Context, event rabbitmq.ReceiptEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// racingProducts wraps a memory repository and makes the guarded decrement lose the race.
type racingProducts struct {
	*repositories.MemoryProductRepository
	loseOn uint
}

func (r *racingProducts) DecrementStock(ctx context.Context, id uint, quantity int) (bool, error) {
	if id == r.loseOn {
		return false, nil
	}
	return r.MemoryProductRepository.DecrementStock(ctx, id, quantity)
}

// racingTx runs the memory transaction but hands fn a substitute product repository.
type racingTx struct {
	inner    *repositories.MemoryCheckoutTx
	products repositories.ProductRepository
}

// concurrentBuyer sells extra units of a product just before the checkout's own
// decrement, as another checkout committing in between would.
type concurrentBuyer struct {
	*repositories.MemoryProductRepository
	productID uint
	units     int
}

func (r *concurrentBuyer) DecrementStock(ctx context.Context, id uint, quantity int) (bool, error) {
	if id == r.productID && r.units > 0 {
		if _, err := r.MemoryProductRepository.DecrementStock(ctx, id, r.units); err != nil {
			return false, err
		}
		r.units = 0
	}
	return r.MemoryProductRepository.DecrementStock(ctx, id, quantity)
}

func (t *racingTx) Run(ctx context.Context, fn func(repositories.ReceiptRepository, repositories.ProductRepository) error) error {
	return t.inner.Run(ctx, func(receipts repositories.ReceiptRepository, _ repositories.ProductRepository) error {
		return fn(receipts, t.products)
	})
}
