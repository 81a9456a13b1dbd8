package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/store"
)

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	deps := NewDeps(st, cache.New(time.Minute), metrics.NewWith(prometheus.NewRegistry()), bcrypt.MinCost)

	app := fiber.New()
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", deps.AuthHandler.Register)
	auth.Post("/login", deps.AuthHandler.Login)
	auth.Post("/logout", deps.AuthHandler.Logout)
	auth.Get("/me", RequireUser(deps.Auth), deps.AuthHandler.Me)

	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Get)
	api.Get("/products/:id/availability", deps.ProductHandler.Availability)

	orders := api.Group("/orders", RequireUser(deps.Auth))
	orders.Post("/", deps.OrderHandler.Create)
	orders.Get("/", deps.OrderHandler.List)
	orders.Get("/:ref", deps.OrderHandler.Get)
	orders.Post("/:id/cancel", deps.OrderHandler.Cancel)

	admin := api.Group("/admin", RequireAdmin(deps.Auth))
	admin.Get("/orders", deps.OrderHandler.ListLatest)
	admin.Patch("/orders/:id/status", deps.OrderHandler.UpdateStatus)
	admin.Post("/products", deps.ProductHandler.Create)

	return app, st
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, sid string) (*http.Response, testEnvelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}

	resp, err := app.Test(req, 10_000)
	require.NoError(t, err)

	var env testEnvelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	return resp, env
}

func registerAndLogin(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, env := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/register",
		fiber.Map{"name": "Test User", "email": email, "password": "Passw0rd!"}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)

	resp, env = doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login",
		fiber.Map{"email": email, "password": "Passw0rd!"}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c.Value
		}
	}
	t.Fatal("login response did not set a session cookie")
	return ""
}

func loginAdmin(t *testing.T, app *fiber.App, st *store.Store) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Adm1n!Pass"), bcrypt.MinCost)
	require.NoError(t, err)
	u := domain.User{ID: uuid.NewString(), Email: "admin@example.test", Name: "Admin", Hash: string(hash), Role: "ADMIN"}
	require.NoError(t, st.Users.Insert(&u))

	resp, env := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login",
		fiber.Map{"email": u.Email, "password": "Adm1n!Pass"}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c.Value
		}
	}
	t.Fatal("admin login did not set a session cookie")
	return ""
}

func seedTestProduct(t *testing.T, st *store.Store, id string, price float64, stock int) {
	t.Helper()
	p := domain.Product{ID: id, Name: "product " + id, Price: decimal.NewFromFloat(price), Stock: stock, Active: true}
	require.NoError(t, st.Products.Insert(&p))
}

func TestRegisterLoginMe(t *testing.T) {
	app, _ := newTestApp(t)
	sid := registerAndLogin(t, app, "alice@example.test")

	resp, env := doJSON(t, app, fiber.MethodGet, "/api/v1/auth/me", nil, sid)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "alice@example.test", me.Email)

	resp, env = doJSON(t, app, fiber.MethodGet, "/api/v1/auth/me", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, "Login required", env.Message)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	app, _ := newTestApp(t)

	resp, env := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/register",
		fiber.Map{"name": "Weak", "email": "weak@example.test", "password": "password"}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	app, st := newTestApp(t)
	seedTestProduct(t, st, "p1", 39.95, 10)
	sid := registerAndLogin(t, app, "alice@example.test")

	resp, env := doJSON(t, app, fiber.MethodPost, "/api/v1/orders",
		fiber.Map{"items": []fiber.Map{{"productId": "p1", "quantity": 2}}}, sid)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
	assert.Equal(t, "Order created successfully", env.Message)

	var order struct {
		ID     string `json:"id"`
		Number string `json:"orderNumber"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Regexp(t, `^ORD-\d{14}-\d{4}$`, order.Number)
	assert.Equal(t, "PENDING", order.Status)

	// Fetch by number, then list.
	resp, env = doJSON(t, app, fiber.MethodGet, "/api/v1/orders/"+order.Number, nil, sid)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, env = doJSON(t, app, fiber.MethodGet, "/api/v1/orders", nil, sid)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list struct {
		TotalCount int `json:"totalCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.TotalCount)

	// Cancel restores stock; a second cancel is a state violation.
	resp, env = doJSON(t, app, fiber.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", nil, sid)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Order cancelled successfully and stock has been restored", env.Message)

	p, err := st.Products.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock)

	resp, env = doJSON(t, app, fiber.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", nil, sid)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Order is already cancelled", env.Message)
}

func TestOrderOwnershipOverHTTP(t *testing.T) {
	app, st := newTestApp(t)
	seedTestProduct(t, st, "p1", 39.95, 10)
	alice := registerAndLogin(t, app, "alice@example.test")
	bob := registerAndLogin(t, app, "bob@example.test")

	_, env := doJSON(t, app, fiber.MethodPost, "/api/v1/orders",
		fiber.Map{"items": []fiber.Map{{"productId": "p1", "quantity": 1}}}, alice)
	var order struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))

	resp, env := doJSON(t, app, fiber.MethodGet, "/api/v1/orders/"+order.ID, nil, bob)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "You are not authorized to view this order", env.Message)
}

func TestErrorEnvelopeMapping(t *testing.T) {
	app, st := newTestApp(t)
	seedTestProduct(t, st, "p1", 39.95, 2)
	sid := registerAndLogin(t, app, "alice@example.test")

	// not_found -> 404
	resp, env := doJSON(t, app, fiber.MethodGet, "/api/v1/products/ghost", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, "Product with ID ghost not found", env.Message)

	// validation -> 400
	resp, env = doJSON(t, app, fiber.MethodPost, "/api/v1/orders",
		fiber.Map{"items": []fiber.Map{{"productId": "p1", "quantity": 0}}}, sid)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// conflict -> 409
	resp, env = doJSON(t, app, fiber.MethodPost, "/api/v1/orders",
		fiber.Map{"items": []fiber.Map{{"productId": "p1", "quantity": 5}}}, sid)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Insufficient stock for product product p1. Available: 2, Requested: 5", env.Message)

	// empty cart -> 400
	resp, env = doJSON(t, app, fiber.MethodPost, "/api/v1/orders", fiber.Map{"items": []fiber.Map{}}, sid)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Order must contain at least one item", env.Message)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	app, st := newTestApp(t)
	user := registerAndLogin(t, app, "alice@example.test")

	resp, env := doJSON(t, app, fiber.MethodGet, "/api/v1/admin/orders", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, env = doJSON(t, app, fiber.MethodGet, "/api/v1/admin/orders", nil, user)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Access denied", env.Message)

	admin := loginAdmin(t, app, st)
	resp, env = doJSON(t, app, fiber.MethodGet, "/api/v1/admin/orders", nil, admin)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
}

func TestAdminStatusUpdateOverHTTP(t *testing.T) {
	app, st := newTestApp(t)
	seedTestProduct(t, st, "p1", 39.95, 10)
	user := registerAndLogin(t, app, "alice@example.test")
	admin := loginAdmin(t, app, st)

	_, env := doJSON(t, app, fiber.MethodPost, "/api/v1/orders",
		fiber.Map{"items": []fiber.Map{{"productId": "p1", "quantity": 1}}}, user)
	var order struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))

	resp, env := doJSON(t, app, fiber.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status",
		fiber.Map{"status": "SHIPPED"}, admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)
	assert.Equal(t, "Order status updated to SHIPPED", env.Message)

	var updated struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "SHIPPED", updated.Status)

	resp, env = doJSON(t, app, fiber.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status",
		fiber.Map{"status": "RETURNED"}, admin)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Admin status changes never restock.
	p, err := st.Products.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, 9, p.Stock)
}

func TestAdminCreateProductOverHTTP(t *testing.T) {
	app, st := newTestApp(t)
	admin := loginAdmin(t, app, st)

	resp, env := doJSON(t, app, fiber.MethodPost, "/api/v1/admin/products",
		fiber.Map{"name": "Kettle", "price": "39.95", "stockQuantity": 5}, admin)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)

	var p struct {
		ID    string `json:"id"`
		Price string `json:"price"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "39.95", p.Price)

	resp, env = doJSON(t, app, fiber.MethodPost, "/api/v1/admin/products",
		fiber.Map{"name": "kettle", "price": "10", "stockQuantity": 1}, admin)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAvailabilityEndpoint(t *testing.T) {
	app, st := newTestApp(t)
	seedTestProduct(t, st, "p1", 39.95, 2)

	resp, env := doJSON(t, app, fiber.MethodGet, "/api/v1/products/p1/availability?qty=2", nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	resp, env = doJSON(t, app, fiber.MethodGet, "/api/v1/products/p1/availability?qty=3", nil, "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)
}
