// Package apiclient is the storefront's typed client for the store REST API.
package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tienda/internal/models"
	"tienda/internal/storefront/cart"
	"tienda/internal/storefront/session"

	"github.com/gofiber/fiber/v2"
)

// UnreachableMessage is shown when the request never got an answer.
const UnreachableMessage = "could not reach the server, please try again"

// TransportError means the request failed before the server answered.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return UnreachableMessage }
func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a response with a 4xx or 5xx status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Message returns the text to show a shopper for err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return UnreachableMessage
}

// Client talks to the API rooted at BaseURL (e.g. http://localhost:8080/api).
type Client struct {
	baseURL string
	timeout time.Duration
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// do sends the request built on a and decodes a 2xx JSON body into out.
func (c *Client) do(a *fiber.Agent, out interface{}) error {
	code, body, errs := a.Timeout(c.timeout).Bytes()
	if len(errs) > 0 {
		return &TransportError{Err: errors.Join(errs...)}
	}
	if code >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
			e.Error = http.StatusText(code)
		}
		return &APIError{Status: code, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Login exchanges credentials for a session record.
func (c *Client) Login(email, password string) (*session.User, error) {
	var u session.User
	a := fiber.Post(c.url("/auth/login")).JSON(map[string]string{"email": email, "password": password})
	if err := c.do(a, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Registration is the sign-up form.
type Registration struct {
	Name     string  `json:"name"`
	Surname  string  `json:"surname"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Street   string  `json:"street"`
	Unit     *string `json:"unit,omitempty"`
	Region   string  `json:"region"`
	Comune   string  `json:"comune"`
}

// Register opens an account and returns its id.
func (c *Client) Register(r Registration) (uint, error) {
	var resp struct {
		ID uint `json:"id"`
	}
	if err := c.do(fiber.Post(c.url("/auth/register")).JSON(r), &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Client) getJSON(path string, out interface{}) error {
	return c.do(fiber.Get(c.url(path)), out)
}

func (c *Client) Products() ([]models.Product, error) {
	var products []models.Product
	return products, c.getJSON("/products", &products)
}

func (c *Client) OnSale() ([]models.Product, error) {
	var products []models.Product
	return products, c.getJSON("/products/on-sale", &products)
}

func (c *Client) ByCategory(id uint) ([]models.Product, error) {
	var products []models.Product
	return products, c.getJSON(fmt.Sprintf("/products/category/%d", id), &products)
}

// ProductDetails returns a product with its gallery in Images.
func (c *Client) ProductDetails(id uint) (*models.Product, error) {
	var p models.Product
	if err := c.getJSON(fmt.Sprintf("/products/%d/details", id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Categories() ([]models.Category, error) {
	var categories []models.Category
	return categories, c.getJSON("/categorias", &categories)
}

// Shipping is the checkout address as the API names it.
type Shipping struct {
	Calle  string  `json:"calle"`
	Depto  *string `json:"depto,omitempty"`
	Region string  `json:"region"`
	Comuna string  `json:"comuna"`
}

// PurchaseRequest is the body of POST /checkout/purchase.
type PurchaseRequest struct {
	UserID          uint        `json:"userId"`
	CartItems       []cart.Item `json:"cartItems"`
	ShippingAddress Shipping    `json:"shippingAddress"`
}

// PurchaseResult identifies the committed receipt.
type PurchaseResult struct {
	Message  string  `json:"message"`
	BoletaID uint    `json:"boletaId"`
	Total    float64 `json:"total"`
}

// Purchase submits the cart with the caller's token.
func (c *Client) Purchase(token string, req PurchaseRequest) (*PurchaseResult, error) {
	var res PurchaseResult
	a := fiber.Post(c.url("/checkout/purchase")).
		Set(fiber.HeaderAuthorization, "Bearer "+token).
		JSON(req)
	if err := c.do(a, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
