// Package cart holds the shopper's in-memory cart. Nothing is persisted; the
// cart lives as long as the Store value.
package cart

import (
	"errors"
	"sync"

	"tienda/internal/models"
	"tienda/internal/pricing"
)

// ErrNotInCart is returned when removing a product that has no cart line.
var ErrNotInCart = errors.New("product is not in the cart")

// Item is one cart line.
type Item struct {
	ID              uint     `json:"id"`
	Name            string   `json:"nombre"`
	Price           float64  `json:"precio"`
	DiscountedPrice *float64 `json:"discounted_price,omitempty"`
	ImageURL        string   `json:"imagen"`
	Quantity        int      `json:"quantity"`
}

// UnitPrice is the discounted price when present, the list price otherwise.
func (i Item) UnitPrice() float64 {
	if i.DiscountedPrice != nil {
		return *i.DiscountedPrice
	}
	return i.Price
}

func (i Item) LineTotal() float64 {
	return pricing.LineTotal(i.UnitPrice(), i.Quantity)
}

// Store is a cart keyed by product id. It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	items []Item
}

func New() *Store {
	return &Store{}
}

func (s *Store) index(id uint) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add puts one unit of p in the cart.
func (s *Store) Add(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(p.ID); i >= 0 {
		s.items[i].Quantity++
		return
	}
	s.items = append(s.items, Item{
		ID:              p.ID,
		Name:            p.Name,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		ImageURL:        p.ImageURL,
		Quantity:        1,
	})
}

// Remove takes one unit out; the line disappears when its quantity reaches zero.
func (s *Store) Remove(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return ErrNotInCart
	}
	if s.items[i].Quantity <= 1 {
		s.items = append(s.items[:i], s.items[i+1:]...)
		return nil
	}
	s.items[i].Quantity--
	return nil
}

// RemoveItem drops the whole line for id, whatever its quantity.
func (s *Store) RemoveItem(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

// Quantity returns the units of id in the cart.
func (s *Store) Quantity(id uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

// Count returns the total number of units.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Total is the sum of line totals.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]pricing.Line, 0, len(s.items))
	for _, it := range s.items {
		lines = append(lines, pricing.Line{Unit: it.UnitPrice(), Quantity: it.Quantity})
	}
	return pricing.Total(lines)
}
