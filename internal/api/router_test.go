package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/jafarshop/procurement/internal/api/handlers"
	"github.com/jafarshop/procurement/internal/config"
	"github.com/jafarshop/procurement/internal/domain"
	"github.com/jafarshop/procurement/internal/locale"
	"github.com/jafarshop/procurement/internal/notify"
	"github.com/jafarshop/procurement/internal/procurement"
	"github.com/jafarshop/procurement/internal/service"
	"github.com/jafarshop/procurement/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type upstream struct {
	rejectOrders atomic.Bool
	expired      atomic.Bool
	orders       atomic.Int32
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if u.expired.Load() && r.URL.Path != procurement.PathHealth {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid or expired token"}`))
		return
	}

	switch {
	case r.URL.Path == procurement.PathHealth:
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	case r.URL.Path == procurement.PathSuppliers:
		_, _ = w.Write([]byte(`{"data":[{"id":1,"name":"PT Sumber Makmur"}]}`))
	case r.URL.Path == procurement.PathItems && r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`{"data":[
			{"id":1,"name":"Kertas A4","stock":20,"price":"1000.00","supplierId":1},
			{"id":2,"name":"Tinta Printer","stock":5,"price":"2500.00","supplierId":1}
		]}`))
	case strings.HasPrefix(r.URL.Path, procurement.PathItems+"/") && r.Method == http.MethodDelete:
		_, _ = w.Write([]byte(`{"message":"Item deleted successfully"}`))
	case r.URL.Path == procurement.PathPurchasings:
		if u.rejectOrders.Load() {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Insufficient stock","message":"Reduce the quantity"}`))
			return
		}
		u.orders.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"purchasing":{"id":9,"supplierId":1,"userId":1,"grandTotal":"4500.00"},"details":[]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type fixture struct {
	router   *gin.Engine
	upstream *upstream
	sessions *session.Store
}

func newFixture(t *testing.T, loggedIn bool) *fixture {
	t.Helper()

	up := &upstream{}
	server := httptest.NewServer(up)
	t.Cleanup(server.Close)

	logger := zap.NewNop()
	printer := locale.NewPrinter(language.Indonesian)
	sessions := session.NewStore(session.NewFileKV(filepath.Join(t.TempDir(), "session.json")), logger)
	if loggedIn {
		require.NoError(t, sessions.SaveToken(t.Context(), "jwt"))
		require.NoError(t, sessions.SaveUser(t.Context(), domain.User{ID: 1, Username: "budi", Role: "staff"}))
	}

	client := procurement.NewClient(config.APIConfig{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
		Breaker: config.BreakerConfig{FailureRatio: 1, MinRequests: 100, OpenTimeout: time.Minute},
	}, sessions, logger)

	builder := service.NewCartBuilder(client, sessions, notify.NewRecorder(printer, false), printer, time.Millisecond, logger)
	t.Cleanup(builder.Close)

	router := NewRouter(&config.Config{Environment: "test"}, Services{
		Cart:      builder,
		Inventory: service.NewInventoryService(client, sessions, printer, logger),
		Sessions:  sessions,
		Health:    client.Health,
		Printer:   printer,
	}, logger)

	return &fixture{router: router, upstream: up, sessions: sessions}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "procurement_api_requests_total")
}

func TestRequireSession(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(http.MethodGet, "/v1/cart", "")

	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode[handlers.ErrorResponse](t, w)
	assert.Equal(t, "unauthorized", body.Kind)
	assert.Equal(t, "Sesi Anda telah berakhir", body.Message)
}

func TestMe(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(http.MethodGet, "/v1/me", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		User domain.User `json:"user"`
	}](t, w)
	assert.Equal(t, "budi", body.User.Username)
}

func TestPurchaseFlow(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(http.MethodPost, "/v1/cart/open", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[handlers.CartResponse](t, w).Cart.Suppliers, 1)

	w = f.do(http.MethodPut, "/v1/cart/supplier", `{"supplierId":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[handlers.CartResponse](t, w).Cart.Catalog, 2)

	w = f.do(http.MethodPost, "/v1/cart/lines", `{"itemId":1,"quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = f.do(http.MethodPost, "/v1/cart/lines", `{"itemId":2,"quantity":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	state := decode[handlers.CartResponse](t, w).Cart
	require.Len(t, state.Lines, 2)
	assert.True(t, decimal.NewFromInt(4500).Equal(state.GrandTotal), "grand total %s", state.GrandTotal)

	w = f.do(http.MethodPost, "/v1/cart/submit", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[handlers.SubmitResponse](t, w)
	assert.Equal(t, int64(9), resp.Order.ID)
	assert.Empty(t, resp.Cart.Lines)
	assert.Zero(t, resp.Cart.SupplierID)
	require.Len(t, resp.Notices, 1)
	assert.Equal(t, notify.LevelSuccess, resp.Notices[0].Level)
	assert.Contains(t, resp.Notices[0].Message, "Rp 4")
	assert.Equal(t, int32(1), f.upstream.orders.Load())
}

func TestAddLine_Validation(t *testing.T) {
	f := newFixture(t, true)
	f.do(http.MethodPut, "/v1/cart/supplier", `{"supplierId":1}`)

	t.Run("non-numeric json quantity", func(t *testing.T) {
		w := f.do(http.MethodPost, "/v1/cart/lines", `{"itemId":1,"quantity":"abc"}`)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decode[handlers.ErrorResponse](t, w)
		assert.Equal(t, "validation", body.Kind)
		assert.Equal(t, map[string]string{"quantity": "Quantity harus lebih dari 0"}, body.Fields)
	})

	t.Run("form input", func(t *testing.T) {
		form := url.Values{"itemId": {"1"}, "quantity": {"0"}}
		req := httptest.NewRequest(http.MethodPost, "/v1/cart/lines", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decode[handlers.ErrorResponse](t, w)
		assert.Contains(t, body.Fields, "quantity")
		assert.Empty(t, body.Notices)
	})

	t.Run("item outside catalog", func(t *testing.T) {
		w := f.do(http.MethodPost, "/v1/cart/lines", `{"itemId":77,"quantity":1}`)

		require.Equal(t, http.StatusNotFound, w.Code)
		body := decode[handlers.ErrorResponse](t, w)
		assert.Equal(t, "Item tidak ditemukan", body.Message)
		assert.Len(t, body.Notices, 1)
	})

	t.Run("bad line id", func(t *testing.T) {
		w := f.do(http.MethodDelete, "/v1/cart/lines/abc", "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestSubmit_EmptyCart(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(http.MethodPost, "/v1/cart/submit", "")

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[handlers.ErrorResponse](t, w)
	assert.Equal(t, "Supplier harus dipilih", body.Fields["supplier"])
	assert.Equal(t, "Keranjang tidak boleh kosong", body.Fields["cart"])
	assert.Zero(t, f.upstream.orders.Load())
}

func TestSubmit_RejectedKeepsCart(t *testing.T) {
	f := newFixture(t, true)
	f.do(http.MethodPut, "/v1/cart/supplier", `{"supplierId":1}`)
	f.do(http.MethodPost, "/v1/cart/lines", `{"itemId":1,"quantity":2}`)
	f.upstream.rejectOrders.Store(true)

	w := f.do(http.MethodPost, "/v1/cart/submit", "")

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[handlers.ErrorResponse](t, w)
	assert.Equal(t, "Insufficient stock", body.Message)
	assert.Equal(t, "Reduce the quantity", body.Detail)

	w = f.do(http.MethodGet, "/v1/cart", "")
	state := decode[handlers.CartResponse](t, w).Cart
	assert.Len(t, state.Lines, 1)
	assert.Equal(t, int64(1), state.SupplierID)
}

func TestSubmit_ExpiredSessionLogsOut(t *testing.T) {
	f := newFixture(t, true)
	f.do(http.MethodPut, "/v1/cart/supplier", `{"supplierId":1}`)
	f.do(http.MethodPost, "/v1/cart/lines", `{"itemId":1,"quantity":2}`)
	f.upstream.expired.Store(true)

	w := f.do(http.MethodPost, "/v1/cart/submit", "")

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, f.sessions.HasSession(t.Context()))

	w = f.do(http.MethodGet, "/v1/cart", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteItem_NeedsConfirmation(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(http.MethodDelete, "/v1/items/1?name=Kertas%20A4", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[handlers.DeleteResponse](t, w)
	assert.False(t, body.Deleted)
	require.Len(t, body.Notices, 1)
	assert.Equal(t, "Hapus Kertas A4?", body.Notices[0].Message)

	w = f.do(http.MethodDelete, "/v1/items/1?confirm=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[handlers.DeleteResponse](t, w).Deleted)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(http.MethodGet, "/v1/dashboard", "")

	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[domain.DashboardStats](t, w)
	assert.Equal(t, 2, stats.TotalItems)
	assert.Equal(t, 1, stats.LowStockItems)
	assert.True(t, decimal.NewFromInt(32500).Equal(stats.TotalStockValue))
}

func TestSaveSupplier_Validation(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(http.MethodPost, "/v1/suppliers", `{"name":"","email":"bukan-email"}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[handlers.ErrorResponse](t, w)
	assert.Equal(t, "Field ini wajib diisi", body.Fields["name"])
	assert.Equal(t, "Harus berupa alamat email yang valid", body.Fields["email"])
}

func TestUpstreamUnauthorizedLogsOut(t *testing.T) {
	paths := []string{
		"/v1/dashboard",
		"/v1/items",
		"/v1/items?supplierId=1",
		"/v1/items/search?q=kertas",
		"/v1/suppliers",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			f := newFixture(t, true)
			f.upstream.expired.Store(true)

			w := f.do(http.MethodGet, path, "")

			require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
			assert.False(t, f.sessions.HasSession(t.Context()))

			w = f.do(http.MethodGet, "/v1/me", "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestDeleteItem_UnauthorizedLogsOut(t *testing.T) {
	f := newFixture(t, true)
	f.upstream.expired.Store(true)

	w := f.do(http.MethodDelete, "/v1/items/1?confirm=true", "")

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, f.sessions.HasSession(t.Context()))
}

func TestCartNotices_StayWithTheirRequest(t *testing.T) {
	f := newFixture(t, true)
	f.do(http.MethodPut, "/v1/cart/supplier", `{"supplierId":1}`)

	w := f.do(http.MethodPost, "/v1/cart/lines", `{"itemId":77,"quantity":1}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Len(t, decode[handlers.ErrorResponse](t, w).Notices, 1)

	w = f.do(http.MethodGet, "/v1/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[handlers.CartResponse](t, w).Notices)

	f.do(http.MethodPost, "/v1/cart/lines", `{"itemId":1,"quantity":2}`)
	w = f.do(http.MethodPost, "/v1/cart/submit", "")
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[handlers.SubmitResponse](t, w)
	require.Len(t, resp.Notices, 1)
	assert.Equal(t, notify.LevelSuccess, resp.Notices[0].Level)
}
