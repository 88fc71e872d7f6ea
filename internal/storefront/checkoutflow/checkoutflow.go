// Package checkoutflow drives the shipping form through purchase submission.
package checkoutflow

import (
	"strings"
	"unicode/utf8"

	"tienda/internal/storefront/apiclient"
	"tienda/internal/storefront/cart"
	"tienda/internal/storefront/session"

	"github.com/rs/zerolog/log"
)

const (
	SuccessPath   = "/checkout/exito"
	RejectionPath = "/checkout/rechazado"

	minStreetLen = 5
)

// Form is the shipping address as typed by the shopper.
type Form struct {
	Street string
	Unit   string
	Region string
	Comune string
}

// DefaultForm prefills the form from the user's saved address.
func DefaultForm(u *session.User) Form {
	if u == nil || u.DefaultAddress == nil {
		return Form{}
	}
	a := u.DefaultAddress
	f := Form{Street: a.Street, Region: a.Region, Comune: a.Comune}
	if a.Unit != nil {
		f.Unit = *a.Unit
	}
	return f
}

// Validate returns per-field messages; an empty map means the form is complete.
func (f Form) Validate() map[string]string {
	errs := map[string]string{}
	if utf8.RuneCountInString(strings.TrimSpace(f.Street)) < minStreetLen {
		errs["street"] = "Street must be at least 5 characters"
	}
	if strings.TrimSpace(f.Region) == "" {
		errs["region"] = "Region is required"
	}
	if strings.TrimSpace(f.Comune) == "" {
		errs["comune"] = "Comune is required"
	}
	return errs
}

func (f Form) shipping() apiclient.Shipping {
	s := apiclient.Shipping{
		Calle:  strings.TrimSpace(f.Street),
		Region: strings.TrimSpace(f.Region),
		Comuna: strings.TrimSpace(f.Comune),
	}
	if unit := strings.TrimSpace(f.Unit); unit != "" {
		s.Depto = &unit
	}
	return s
}

// Kind classifies a submission.
type Kind int

const (
	// Invalid means nothing was sent; the form stays on screen.
	Invalid Kind = iota
	Rejected
	Success
)

func (k Kind) String() string {
	switch k {
	case Rejected:
		return "rejected"
	case Success:
		return "success"
	default:
		return "invalid"
	}
}

// Outcome is the result of Submit. Next is the route to navigate to, if any.
type Outcome struct {
	Kind      Kind
	Message   string
	Errors    map[string]string
	ReceiptID uint
	Total     float64
	Next      string
}

// Submitter sends a purchase; *apiclient.Client satisfies it.
type Submitter interface {
	Purchase(token string, req apiclient.PurchaseRequest) (*apiclient.PurchaseResult, error)
}

type Flow struct {
	cart    *cart.Store
	session *session.Store
	api     Submitter
}

func New(c *cart.Store, s *session.Store, api Submitter) *Flow {
	return &Flow{cart: c, session: s, api: api}
}

// Submit validates the form and, if complete, places the order.
// Only a successful purchase clears the cart.
func (f *Flow) Submit(form Form) Outcome {
	user := f.session.User()
	if user == nil {
		return Outcome{Kind: Invalid, Message: "Log in to complete the purchase"}
	}
	items := f.cart.Items()
	if len(items) == 0 {
		return Outcome{Kind: Invalid, Message: "Your cart is empty"}
	}
	if errs := form.Validate(); len(errs) > 0 {
		return Outcome{Kind: Invalid, Message: "Please complete the shipping address", Errors: errs}
	}

	res, err := f.api.Purchase(user.Token, apiclient.PurchaseRequest{
		UserID:          user.ID,
		CartItems:       items,
		ShippingAddress: form.shipping(),
	})
	if err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("purchase rejected")
		return Outcome{Kind: Rejected, Message: apiclient.Message(err), Next: RejectionPath}
	}

	f.cart.Clear()
	log.Info().Uint("user_id", user.ID).Uint("receipt_id", res.BoletaID).Msg("purchase completed")
	return Outcome{
		Kind:      Success,
		Message:   res.Message,
		ReceiptID: res.BoletaID,
		Total:     res.Total,
		Next:      SuccessPath,
	}
}
