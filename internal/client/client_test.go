package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"decor-store/internal/model"
	"decor-store/internal/shipping"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fakeAPI serves a tiny slice of the storefront API with a single account.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	table := shipping.MustLoad()
	mux := http.NewServeMux()

	loggedIn := func(r *http.Request) bool {
		c, err := r.Cookie("sid")
		return err == nil && c.Value == "token-1"
	}

	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") == "curtain" {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Message: "type must be one of: wallpaper, rug, wall_panel", Field: "type"})
			return
		}
		writeJSON(w, http.StatusOK, []model.Product{{ID: 1, Name: "Velvet Damask", Type: model.ProductType(r.URL.Query().Get("type")), Price: decimal.NewFromInt(450000)}})
	})
	mux.HandleFunc("GET /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "1" {
			writeJSON(w, http.StatusNotFound, model.ErrorResponse{Message: "Product not found", CorrelationID: "req-9"})
			return
		}
		writeJSON(w, http.StatusOK, model.ProductWithVariants{Product: model.Product{ID: 1}, Variants: []model.ProductVariant{{ID: 5, ProductID: 1}}})
	})
	mux.HandleFunc("POST /api/shipping/cost", func(w http.ResponseWriter, r *http.Request) {
		var req model.ShippingCostRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		opts := table.Quote(req.Origin, req.Destination, req.Weight, req.Courier)
		writeJSON(w, http.StatusOK, []model.CourierCosts{shipping.CourierCosts(req.Courier, opts)})
	})
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret123" {
			writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Message: "Invalid username or password"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "token-1", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, model.User{ID: "user-1", Username: req.Username})
	})
	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	})
	mux.HandleFunc("GET /api/auth/user", func(w http.ResponseWriter, r *http.Request) {
		if !loggedIn(r) {
			writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Message: "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, model.User{ID: "user-1", Username: "rina"})
	})
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		if !loggedIn(r) {
			writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Message: "Please log in to place an order"})
			return
		}
		var req model.OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusCreated, model.Order{ID: uuid.New(), UserID: "user-1", Status: model.OrderStatusPending, ShippingDetails: req.ShippingDetails})
	})
	mux.HandleFunc("GET /api/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, base := range []string{"", "localhost:5000", "://"} {
		_, err := New(base)
		assert.Error(t, err, base)
	}
}

func TestClient_Catalog(t *testing.T) {
	srv := fakeAPI(t)
	c, err := New(srv.URL + "/")
	require.NoError(t, err)
	ctx := context.Background()

	products, err := c.Products(ctx, model.ProductFilter{Type: "wallpaper"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, model.ProductTypeWallpaper, products[0].Type)
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(450000)))

	p, err := c.Product(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, p.Variants, 1)

	_, err = c.Product(ctx, 2)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Product not found", apiErr.UserMessage())
	assert.Equal(t, "req-9", apiErr.CorrelationID)
	assert.NotErrorIs(t, err, model.ErrUnauthorized)

	_, err = c.Products(ctx, model.ProductFilter{Type: "curtain"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "type", apiErr.Field)
}

func TestClient_Quote(t *testing.T) {
	c, err := New(fakeAPI(t).URL)
	require.NoError(t, err)

	opts, err := c.Quote(context.Background(), "152", "23", 1000, "jne")
	require.NoError(t, err)

	got := map[string]float64{}
	for _, o := range opts {
		got[o.Service] = o.Cost.Value
	}
	assert.Equal(t, map[string]float64{"REG": 15000, "YES": 22500}, got)

	opts, err = c.Quote(context.Background(), "152", "23", 1000, "dhl")
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestClient_SessionPersistsAcrossClients(t *testing.T) {
	srv := fakeAPI(t)
	cookieFile := filepath.Join(t.TempDir(), "cookies.json")
	ctx := context.Background()

	first, err := New(srv.URL, WithCookieFile(cookieFile))
	require.NoError(t, err)

	_, err = first.CurrentUser(ctx)
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	_, err = first.Login(ctx, &model.LoginRequest{Username: "rina", Password: "wrong"})
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	user, err := first.Login(ctx, &model.LoginRequest{Username: "rina", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	second, err := New(srv.URL, WithCookieFile(cookieFile))
	require.NoError(t, err)
	me, err := second.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rina", me.Username)

	require.NoError(t, second.Logout(ctx))
	third, err := New(srv.URL, WithCookieFile(cookieFile))
	require.NoError(t, err)
	_, err = third.CurrentUser(ctx)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestClient_CreateOrder(t *testing.T) {
	srv := fakeAPI(t)
	ctx := context.Background()
	c, err := New(srv.URL, WithCookieFile(filepath.Join(t.TempDir(), "cookies.json")))
	require.NoError(t, err)

	req := &model.OrderRequest{
		Items:           []model.OrderItemRequest{{ProductID: 1, Quantity: 2}},
		ShippingDetails: model.ShippingDetails{Courier: "jne", Service: "REG", ShippingCost: 15000},
	}

	_, err = c.CreateOrder(ctx, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnauthorized), "a 401 unwraps to the unauthorized sentinel")

	_, err = c.Login(ctx, &model.LoginRequest{Username: "rina", Password: "secret123"})
	require.NoError(t, err)

	order, err := c.CreateOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "REG", order.ShippingDetails.Service)
}

func TestClient_NonJSONError(t *testing.T) {
	c, err := New(fakeAPI(t).URL)
	require.NoError(t, err)

	err = c.do(context.Background(), http.MethodGet, "/api/boom", nil, nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestFileJar_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := NewFileJar(path)
	assert.Error(t, err)
}
