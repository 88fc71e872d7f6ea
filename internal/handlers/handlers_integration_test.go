package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"tienda/internal/config"
	"tienda/internal/database"
	"tienda/internal/middleware"
	"tienda/internal/models"
	"tienda/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@tienda.test"
	adminPassword = "admin-secret"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT:       config.JWTConfig{Secret: "test_jwt_secret", TTL: time.Hour},
		Catalog:   config.CatalogConfig{LowStockThreshold: 5},
		RateLimit: config.RateLimitConfig{LoginPerMinute: 1000, LoginBurst: 1000},
		Admin:     config.AdminConfig{Email: adminEmail, Password: adminPassword},
	}
}

// setupApp sets up the full application over a private in-memory SQLite database.
func setupApp(t *testing.T, cfg *config.Config) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, database.SeedAdmin(context.Background(), db, cfg.Admin))
	seedProductsForTest(t, db)
	return server.New(server.Deps{Config: cfg, DB: db}), db
}

func fptr(f float64) *float64 { return &f }

// seedProductsForTest creates one category and three products.
func seedProductsForTest(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.Category{ID: 1, Name: "Peluches"}).Error)
	cat := uint(1)
	products := []models.Product{
		{ID: 1, Name: "Classic Bear", Price: 19990, Stock: 15, CategoryID: &cat, DiscountPercentage: fptr(0.25), OnSale: true},
		{ID: 2, Name: "Unicorn", Price: 15990, Stock: 2, CategoryID: &cat},
		{ID: 3, Name: "Panda", Price: 9990, Stock: 8},
	}
	for i := range products {
		require.NoError(t, db.Create(&products[i]).Error)
	}
}

func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode(t *testing.T, raw []byte, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out), string(raw))
}

func register(t *testing.T, app *fiber.App, email string) uint {
	t.Helper()
	status, raw := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "Ana", "surname": "Diaz", "email": email, "password": "secret1",
		"street": "Av. Italia 1234", "region": "RM", "comune": "Nunoa",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var resp struct {
		Message string `json:"message"`
		ID      uint   `json:"id"`
	}
	decode(t, raw, &resp)
	require.NotZero(t, resp.ID)
	return resp.ID
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, raw := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, status, string(raw))
	var resp map[string]interface{}
	decode(t, raw, &resp)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func purchaseBody(userID uint, items ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"userId":    userID,
		"cartItems": items,
		"shippingAddress": map[string]interface{}{
			"calle": "Av. Italia 1234", "depto": "3B", "region": "RM", "comuna": "Nunoa",
		},
	}
}

func item(id uint, qty int) map[string]interface{} {
	// precio is deliberately wrong; the server re-prices every line
	return map[string]interface{}{"id": id, "nombre": "x", "precio": 1, "quantity": qty, "imagen": ""}
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, _ := setupApp(t, testConfig())

	id := register(t, app, "ana@example.com")

	// Duplicate registration, case-insensitive
	status, raw := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "Ana", "surname": "Diaz", "email": "ANA@example.com", "password": "secret1",
		"street": "Av. Italia 1234", "region": "RM", "comune": "Nunoa",
	})
	assert.Equal(t, http.StatusConflict, status, string(raw))

	// Missing fields
	status, raw = doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, status)
	var verr struct {
		Error  string            `json:"error"`
		Errors map[string]string `json:"errors"`
	}
	decode(t, raw, &verr)
	assert.Contains(t, verr.Errors, "Password")
	assert.Contains(t, verr.Errors, "Street")

	// Login returns the session record
	status, raw = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	var session struct {
		ID             uint   `json:"id"`
		Email          string `json:"email"`
		Role           string `json:"role"`
		Token          string `json:"token"`
		DefaultAddress *struct {
			Street string `json:"street"`
			Comune string `json:"comune"`
		} `json:"default_address"`
	}
	decode(t, raw, &session)
	assert.Equal(t, id, session.ID)
	assert.Equal(t, models.RoleClient, session.Role)
	require.NotNil(t, session.DefaultAddress)
	assert.Equal(t, "Av. Italia 1234", session.DefaultAddress.Street)
	assert.NotEmpty(t, session.Token)

	// Wrong password
	status, raw = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	var errResp map[string]string
	decode(t, raw, &errResp)
	assert.NotEmpty(t, errResp["error"])
}

func TestLoginRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{LoginPerMinute: 1, LoginBurst: 2}
	app, _ := setupApp(t, cfg)

	creds := map[string]string{"email": "nobody@example.com", "password": "whatever"}
	var codes []int
	for i := 0; i < 3; i++ {
		status, _ := doJSON(t, app, http.MethodPost, "/api/auth/login", "", creds)
		codes = append(codes, status)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestCatalogEndpoints(t *testing.T) {
	app, _ := setupApp(t, testConfig())

	status, raw := doJSON(t, app, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, status)
	var products []models.Product
	decode(t, raw, &products)
	require.Len(t, products, 3)
	require.NotNil(t, products[0].DiscountedPrice)
	assert.Equal(t, 14993.0, *products[0].DiscountedPrice)

	status, raw = doJSON(t, app, http.MethodGet, "/api/products/on-sale", "", nil)
	require.Equal(t, http.StatusOK, status)
	decode(t, raw, &products)
	assert.Len(t, products, 1)

	status, raw = doJSON(t, app, http.MethodGet, "/api/products/category/1", "", nil)
	require.Equal(t, http.StatusOK, status)
	decode(t, raw, &products)
	assert.Len(t, products, 2)

	status, raw = doJSON(t, app, http.MethodGet, "/api/products/category/99", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(raw))

	status, raw = doJSON(t, app, http.MethodGet, "/api/products/3/details", "", nil)
	require.Equal(t, http.StatusOK, status)
	var details map[string]interface{}
	decode(t, raw, &details)
	assert.Equal(t, "Panda", details["name"])
	assert.Equal(t, []interface{}{}, details["images"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/products/42/details", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = doJSON(t, app, http.MethodGet, "/api/categorias", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"id":1,"name":"Peluches"}]`, string(raw))
}

func TestAdminGuards(t *testing.T) {
	app, _ := setupApp(t, testConfig())
	register(t, app, "ana@example.com")
	client := login(t, app, "ana@example.com", "secret1")
	admin := login(t, app, adminEmail, adminPassword)

	for _, path := range []string{"/api/products/low-stock", "/api/users", "/api/boletas", "/api/reportes/sales"} {
		status, _ := doJSON(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		status, _ = doJSON(t, app, http.MethodGet, path, client, nil)
		assert.Equal(t, http.StatusForbidden, status, path)
		status, _ = doJSON(t, app, http.MethodGet, path, admin, nil)
		assert.Equal(t, http.StatusOK, status, path)
	}

	status, raw := doJSON(t, app, http.MethodGet, "/api/products/low-stock", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var low []models.Product
	decode(t, raw, &low)
	require.Len(t, low, 1)
	assert.Equal(t, "Unicorn", low[0].Name)
}

func TestAdminProductLifecycle(t *testing.T) {
	app, _ := setupApp(t, testConfig())
	admin := login(t, app, adminEmail, adminPassword)

	status, raw := doJSON(t, app, http.MethodPost, "/api/products", admin, map[string]interface{}{
		"name": "Fox", "price": 10000, "stock": 4, "category_id": 1,
		"discount_percentage": 0.1, "images": []string{"fox1.jpg", "fox2.jpg"},
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var created models.Product
	decode(t, raw, &created)
	assert.True(t, created.OnSale)
	require.NotNil(t, created.DiscountedPrice)
	assert.Equal(t, 9000.0, *created.DiscountedPrice)

	path := "/api/products/" + jsonID(created.ID)

	// absent discount leaves it unchanged
	status, raw = doJSON(t, app, http.MethodPut, path, admin, map[string]interface{}{"price": 20000})
	require.Equal(t, http.StatusOK, status, string(raw))
	var updated models.Product
	decode(t, raw, &updated)
	require.NotNil(t, updated.DiscountPercentage)
	assert.Equal(t, 18000.0, *updated.DiscountedPrice)

	// explicit null clears it
	status, raw = doJSON(t, app, http.MethodPut, path, admin, map[string]interface{}{"discount_percentage": nil})
	require.Equal(t, http.StatusOK, status, string(raw))
	updated = models.Product{}
	decode(t, raw, &updated)
	assert.Nil(t, updated.DiscountPercentage)
	assert.False(t, updated.OnSale)

	status, _ = doJSON(t, app, http.MethodPut, path, admin, map[string]interface{}{"discount_percentage": 1.5})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = doJSON(t, app, http.MethodPut, path, admin, map[string]interface{}{"category_id": 99})
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw = doJSON(t, app, http.MethodGet, path+"/details", "", nil)
	require.Equal(t, http.StatusOK, status)
	var details struct {
		Images []string `json:"images"`
	}
	decode(t, raw, &details)
	assert.Equal(t, []string{"fox1.jpg", "fox2.jpg"}, details.Images)

	status, raw = doJSON(t, app, http.MethodDelete, path, admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "deleted successfully")

	status, _ = doJSON(t, app, http.MethodGet, path, admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = doJSON(t, app, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCategoryAdmin(t *testing.T) {
	app, _ := setupApp(t, testConfig())
	admin := login(t, app, adminEmail, adminPassword)

	status, raw := doJSON(t, app, http.MethodPost, "/api/categorias", admin, map[string]string{"name": "  Muñecas "})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var cat models.Category
	decode(t, raw, &cat)
	assert.Equal(t, "Muñecas", cat.Name)

	status, _ = doJSON(t, app, http.MethodPost, "/api/categorias", admin, map[string]string{"name": "Peluches"})
	assert.Equal(t, http.StatusConflict, status)
	status, _ = doJSON(t, app, http.MethodPost, "/api/categorias", admin, map[string]string{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = doJSON(t, app, http.MethodPut, "/api/categorias/77", admin, map[string]string{"name": "X"})
	assert.Equal(t, http.StatusNotFound, status)

	// deleting a category keeps its products, uncategorized
	status, _ = doJSON(t, app, http.MethodDelete, "/api/categorias/1", admin, nil)
	require.Equal(t, http.StatusOK, status)
	status, raw = doJSON(t, app, http.MethodGet, "/api/products/category/1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(raw))
	status, raw = doJSON(t, app, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, status)
	var products []models.Product
	decode(t, raw, &products)
	assert.Len(t, products, 3)
}

func TestCheckoutFlow(t *testing.T) {
	app, db := setupApp(t, testConfig())
	anaID := register(t, app, "ana@example.com")
	ana := login(t, app, "ana@example.com", "secret1")
	boID := register(t, app, "bo@example.com")
	admin := login(t, app, adminEmail, adminPassword)

	// Success: server-side prices, duplicates merged
	status, raw := doJSON(t, app, http.MethodPost, "/api/checkout/purchase", ana,
		purchaseBody(anaID, item(1, 1), item(2, 2), item(1, 1)))
	require.Equal(t, http.StatusOK, status, string(raw))
	var result struct {
		Message  string  `json:"message"`
		BoletaID uint    `json:"boletaId"`
		Total    float64 `json:"total"`
	}
	decode(t, raw, &result)
	assert.NotZero(t, result.BoletaID)
	assert.Equal(t, 2*14993.0+2*15990.0, result.Total)

	var bear, unicorn models.Product
	require.NoError(t, db.First(&bear, 1).Error)
	require.NoError(t, db.First(&unicorn, 2).Error)
	assert.Equal(t, 13, bear.Stock)
	assert.Equal(t, 0, unicorn.Stock)

	// Insufficient stock: 409 naming the product, nothing written
	status, raw = doJSON(t, app, http.MethodPost, "/api/checkout/purchase", ana,
		purchaseBody(anaID, item(3, 1), item(2, 1)))
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(raw), "Unicorn")
	var panda models.Product
	require.NoError(t, db.First(&panda, 3).Error)
	assert.Equal(t, 8, panda.Stock)

	// Validation
	status, _ = doJSON(t, app, http.MethodPost, "/api/checkout/purchase", ana, purchaseBody(anaID))
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = doJSON(t, app, http.MethodPost, "/api/checkout/purchase", ana, purchaseBody(anaID, item(3, 0)))
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = doJSON(t, app, http.MethodPost, "/api/checkout/purchase", ana, map[string]interface{}{
		"userId": anaID, "cartItems": []interface{}{item(3, 1)},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = doJSON(t, app, http.MethodPost, "/api/checkout/purchase", ana, purchaseBody(anaID, item(42, 1)))
	assert.Equal(t, http.StatusNotFound, status)

	// Cannot purchase for someone else; no token at all is 401
	status, _ = doJSON(t, app, http.MethodPost, "/api/checkout/purchase", ana, purchaseBody(boID, item(3, 1)))
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = doJSON(t, app, http.MethodPost, "/api/checkout/purchase", "", purchaseBody(anaID, item(3, 1)))
	assert.Equal(t, http.StatusUnauthorized, status)

	// History and documents
	path := "/api/users/" + jsonID(anaID) + "/boletas"
	status, raw = doJSON(t, app, http.MethodGet, path, ana, nil)
	require.Equal(t, http.StatusOK, status)
	var receipts []models.Receipt
	decode(t, raw, &receipts)
	require.Len(t, receipts, 1)
	require.Len(t, receipts[0].Lines, 2)
	assert.Equal(t, "Classic Bear", receipts[0].Lines[0].ProductName)
	assert.Equal(t, 14993.0, receipts[0].Lines[0].UnitPrice)
	assert.Equal(t, 2, receipts[0].Lines[0].Quantity)

	bo := login(t, app, "bo@example.com", "secret1")
	status, _ = doJSON(t, app, http.MethodGet, path, bo, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = doJSON(t, app, http.MethodGet, path, admin, nil)
	assert.Equal(t, http.StatusOK, status)

	pdfPath := "/api/boletas/" + jsonID(result.BoletaID) + "/pdf"
	req := httptest.NewRequest(http.MethodGet, pdfPath, nil)
	req.Header.Set("Authorization", "Bearer "+ana)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	resp.Body.Close()
	status, _ = doJSON(t, app, http.MethodGet, pdfPath, bo, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Reports
	status, raw = doJSON(t, app, http.MethodGet, "/api/reportes/sales", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var sales models.SalesSummary
	decode(t, raw, &sales)
	assert.Equal(t, int64(1), sales.NumReceipts)
	assert.Equal(t, result.Total, sales.TotalSold)

	status, raw = doJSON(t, app, http.MethodGet, "/api/reportes/top-products", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var top []models.TopProduct
	decode(t, raw, &top)
	require.Len(t, top, 2)
	assert.Equal(t, "Unicorn", top[0].ProductName)
	assert.Equal(t, int64(2), top[0].UnitsSold)

	status, _ = doJSON(t, app, http.MethodGet, "/api/reportes/sales?from=2025-13-01", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, raw = doJSON(t, app, http.MethodGet, "/api/reportes/sales?to=2000-01-01", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"num_boletas":0,"total_vendido":0}`, string(raw))
}

func TestUserAdmin(t *testing.T) {
	app, _ := setupApp(t, testConfig())
	admin := login(t, app, adminEmail, adminPassword)

	status, raw := doJSON(t, app, http.MethodPost, "/api/users", admin, map[string]interface{}{
		"name": "Carla", "surname": "Soto", "email": "carla@example.com", "password": "secret1",
		"street": "Calle 1", "region": "RM", "comune": "Providencia", "role_id": models.RoleAdministratorID,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var user models.User
	decode(t, raw, &user)
	assert.Equal(t, models.RoleAdministratorID, user.RoleID)

	path := "/api/users/" + jsonID(user.ID)
	status, raw = doJSON(t, app, http.MethodPut, path, admin, map[string]interface{}{
		"surname": "Soto Vera",
		"address": map[string]interface{}{"street": "Calle 2", "region": "RM", "comune": "Macul"},
	})
	require.Equal(t, http.StatusOK, status, string(raw))
	user = models.User{}
	decode(t, raw, &user)
	assert.Equal(t, "Soto Vera", user.Surname)
	require.Len(t, user.Addresses, 1)
	assert.Equal(t, "Calle 2", user.Addresses[0].Street)

	// new admin can log in and use admin routes
	token := login(t, app, "carla@example.com", "secret1")
	status, _ = doJSON(t, app, http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/users/999", admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealthAndMetrics(t *testing.T) {
	app, _ := setupApp(t, testConfig())

	status, raw := doJSON(t, app, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"status":"healthy"`)

	// many requests with different methods on the same route before scraping
	admin := login(t, app, adminEmail, adminPassword)
	for i := 0; i < 20; i++ {
		doJSON(t, app, http.MethodGet, "/api/products/1/details", "", nil)
		doJSON(t, app, http.MethodDelete, "/api/products/99", admin, nil)
		doJSON(t, app, http.MethodPut, "/api/products/98", admin, map[string]interface{}{"name": "x"})
		doJSON(t, app, http.MethodGet, "/api/products/1", admin, nil)
	}

	for i := 0; i < 2; i++ {
		status, raw = doJSON(t, app, http.MethodGet, "/api/metrics", "", nil)
		require.Equal(t, http.StatusOK, status, string(raw))
	}
	body := string(raw)
	assert.Contains(t, body, "tienda_http_requests_total")
	assert.Contains(t, body, `method="DELETE",route="/api/products/:id",status="404"`)
	assert.Contains(t, body, `method="GET",route="/api/products/:id",status="200"`)
}

// TestCheckoutClearsCatalogCache needs a Redis server at TEST_REDIS_ADDR.
func TestCheckoutClearsCatalogCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis at %s unreachable: %v", addr, err)
	}
	cache := middleware.NewCache(rdb, time.Minute)
	require.NoError(t, cache.Invalidate(ctx))
	t.Cleanup(func() { _ = cache.Invalidate(context.Background()) })

	cfg := testConfig()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	seedProductsForTest(t, db)
	app := server.New(server.Deps{Config: cfg, DB: db, Redis: rdb})

	details := func() (string, models.Product) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/products/2/details", nil), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var p models.Product
		decode(t, raw, &p)
		return resp.Header.Get("X-Cache"), p
	}

	hit, p := details()
	assert.Equal(t, "MISS", hit)
	assert.Equal(t, 2, p.Stock)
	hit, _ = details()
	assert.Equal(t, "HIT", hit)

	userID := register(t, app, "cache@example.com")
	token := login(t, app, "cache@example.com", "secret1")
	status, raw := doJSON(t, app, http.MethodPost, "/api/checkout/purchase", token, purchaseBody(userID, item(2, 1)))
	require.Equal(t, http.StatusOK, status, string(raw))

	hit, p = details()
	assert.Equal(t, "MISS", hit)
	assert.Equal(t, 1, p.Stock)
}

func jsonID(id uint) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
