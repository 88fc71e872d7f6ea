// Package cartview builds the cart page model shown before checkout.
package cartview

import (
	"tienda/internal/models"
	"tienda/internal/storefront/cart"
	"tienda/internal/storefront/session"
)

const (
	LoginPrompt    = "Log in to see your shipping address and complete the purchase"
	NoAddressError = "No address registered. You can enter one at checkout."
)

// Line is one displayed cart row.
type Line struct {
	ID        uint
	Name      string
	ImageURL  string
	Quantity  int
	UnitPrice float64
	LineTotal float64
}

// Page is everything the cart view renders.
type Page struct {
	Lines           []Line
	Total           float64
	Empty           bool
	Guest           bool
	Prompt          string
	Address         *models.Address
	AddressError    string
	CheckoutEnabled bool
}

// Build assembles the page for the cart contents and the current user (nil for guests).
func Build(c *cart.Store, user *session.User) Page {
	items := c.Items()
	page := Page{
		Lines: make([]Line, 0, len(items)),
		Total: c.Total(),
		Empty: len(items) == 0,
	}
	for _, it := range items {
		page.Lines = append(page.Lines, Line{
			ID:        it.ID,
			Name:      it.Name,
			ImageURL:  it.ImageURL,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice(),
			LineTotal: it.LineTotal(),
		})
	}

	if user == nil {
		page.Guest = true
		page.Prompt = LoginPrompt
		return page
	}
	// a missing address does not block checkout; it is entered on the form
	page.Address = user.DefaultAddress
	if page.Address == nil {
		page.AddressError = NoAddressError
	}
	page.CheckoutEnabled = !page.Empty
	return page
}
