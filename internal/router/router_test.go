package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/models"
	"storefront-api/internal/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:   "router-secret",
		TokenTTL:    time.Hour,
		CookieName:  "session",
		BcryptCost:  bcrypt.MinCost,
		CORSOrigins: []string{"http://localhost:5173"},
		RateLimit:   1000,
		RateBurst:   1000,
		OrderPrefix: "ORD",
	}
}

func newTestRouter(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mockDB.Close()
	})

	store := db.NewStore(sqlx.NewDb(mockDB, "mysql"), zerolog.Nop())
	return SetupRouter(store, testConfig(), zerolog.Nop()), mock
}

func tokenFor(t *testing.T, identity models.Identity) string {
	t.Helper()
	cfg := testConfig()
	auth := services.NewAuthService(cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost, zerolog.Nop())
	token, _, err := auth.IssueToken(identity)
	require.NoError(t, err)
	return token
}

func serve(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := serve(h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGuestCheckoutReturnsCreatedReceipt(t *testing.T) {
	h, mock := newTestRouter(t)

	mock.ExpectQuery("FROM products WHERE id IN").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "image_url", "stock", "status"}).
			AddRow(1, "Teak Chair", "10.00", "", 5, "available").
			AddRow(2, "Spice Box", "5.00", "", 5, "available"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products SET stock").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products SET stock").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(77, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	rec := serve(h, http.MethodPost, "/api/orders", `{
		"items": [{"product_id": 1, "quantity": 2}, {"product_id": 2, "quantity": 1}],
		"contact": {"name": "Ann", "email": "ann@example.com"},
		"address": {"line1": "1 Main St", "city": "Lyon", "country": "FR"}
	}`, "")

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var receipt struct {
		ID          int    `json:"id"`
		OrderNumber string `json:"order_number"`
		TotalAmount string `json:"total_amount"`
		Status      string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	assert.Equal(t, 77, receipt.ID)
	assert.Regexp(t, `^ORD-\d+-[A-Z0-9]{8}$`, receipt.OrderNumber)
	assert.Equal(t, "25", receipt.TotalAmount)
	assert.Equal(t, "pending", receipt.Status)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	h, mock := newTestRouter(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("the-real-password"), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "phone", "is_admin", "created_at", "updated_at"}).
			AddRow(1, "ann@example.com", string(hash), "Ann", "", false, now, now))

	unknown := serve(h, http.MethodPost, "/api/auth/login", `{"email":"nobody@example.com","password":"whatever1"}`, "")
	wrong := serve(h, http.MethodPost, "/api/auth/login", `{"email":"ann@example.com","password":"wrong-password"}`, "")

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, unknown.Body.String())
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestLoginSetsHttpOnlySessionCookie(t *testing.T) {
	h, mock := newTestRouter(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("the-real-password"), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "phone", "is_admin", "created_at", "updated_at"}).
			AddRow(1, "ann@example.com", string(hash), "Ann", "", false, now, now))

	rec := serve(h, http.MethodPost, "/api/auth/login", `{"email":"Ann@Example.com","password":"the-real-password"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEmpty(t, cookies[0].Value)
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestAccessGates(t *testing.T) {
	h, _ := newTestRouter(t)
	customer := tokenFor(t, models.Identity{UserID: 1, Email: "ann@example.com"})

	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/api/cart", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/api/user/profile", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/api/admin/stats", "", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, http.MethodGet, "/api/admin/stats", "", customer).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/api/orders", "", "not-a-token").Code)
}

func TestAdminStats(t *testing.T) {
	h, mock := newTestRouter(t)
	admin := tokenFor(t, models.Identity{UserID: 9, Email: "admin@example.com", IsAdmin: true})

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"users", "products", "orders", "pending_orders", "revenue"}).
			AddRow(3, 12, 7, 2, "410.50"))

	rec := serve(h, http.MethodGet, "/api/admin/stats", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pending_orders":2`)
}

func TestCustomerCannotSetPaymentStatus(t *testing.T) {
	h, _ := newTestRouter(t)
	customer := tokenFor(t, models.Identity{UserID: 1, Email: "ann@example.com"})

	rec := serve(h, http.MethodPut, "/api/orders/5", `{"payment_status":"paid"}`, customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPublicProductListRejectsBadFilter(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := serve(h, http.MethodGet, "/api/products?featured=maybe", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"featured must be true or false"}`, rec.Body.String())
}
