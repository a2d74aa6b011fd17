package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qkart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeShop(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"_id":"BW0jAAeDJmlZCF8i","name":"UNIFACTOR Mens Running Shoes","category":"Fashion","cost":50,"rating":5,"image":""},
			{"_id":"KCRwjF7lN97HnEaY","name":"YONEX Smash Badminton Racquet","category":"Sports","cost":100,"rating":5,"image":""}
		]`))
	})
	mux.HandleFunc("/products/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("value") == "Sports" {
			_, _ = w.Write([]byte(`[{"_id":"KCRwjF7lN97HnEaY","name":"YONEX Smash Badminton Racquet","category":"Sports","cost":100,"rating":5,"image":""}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer cli-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Protected route, Oauth2 Bearer token not found"}`))
			return
		}
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`[{"productId":"BW0jAAeDJmlZCF8i","qty":1},{"productId":"KCRwjF7lN97HnEaY","qty":2}]`))
			return
		}
		_, _ = w.Write([]byte(`[{"productId":"KCRwjF7lN97HnEaY","qty":2}]`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	srv := newFakeShop(t)
	t.Setenv("STOREFRONT_SHOP_BASE_URL", srv.URL)
	t.Setenv("STOREFRONT_TOKEN", "")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestProductsCmd(t *testing.T) {
	stdout, _, err := execute(t, "products")

	require.NoError(t, err)
	assert.Contains(t, stdout, "UNIFACTOR Mens Running Shoes")
	assert.Contains(t, stdout, "YONEX Smash Badminton Racquet")
}

func TestSearchCmd(t *testing.T) {
	t.Run("prints matches", func(t *testing.T) {
		stdout, _, err := execute(t, "search", "Sports")

		require.NoError(t, err)
		assert.Contains(t, stdout, "YONEX")
		assert.NotContains(t, stdout, "UNIFACTOR")
	})

	t.Run("no matches", func(t *testing.T) {
		stdout, stderr, err := execute(t, "search", "nothing")

		require.NoError(t, err)
		assert.Contains(t, stdout, "No products found")
		assert.Empty(t, stderr)
	})

	t.Run("requires a query", func(t *testing.T) {
		_, _, err := execute(t, "search")
		assert.Error(t, err)
	})
}

func TestCartCmd(t *testing.T) {
	t.Run("shows the reconciled cart", func(t *testing.T) {
		stdout, _, err := execute(t, "cart", "--token", "cli-token")

		require.NoError(t, err)
		assert.Contains(t, stdout, "YONEX Smash Badminton Racquet")
		assert.Contains(t, stdout, "200")
	})

	t.Run("requires a token", func(t *testing.T) {
		_, _, err := execute(t, "cart")
		assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
	})

	t.Run("bad token prints the generic notification", func(t *testing.T) {
		_, stderr, err := execute(t, "cart", "--token", "wrong")

		require.NoError(t, err)
		assert.Contains(t, stderr, "[error] Could not fetch cart details")
	})
}

func TestAddCmd(t *testing.T) {
	t.Run("adds a product", func(t *testing.T) {
		stdout, _, err := execute(t, "add", "BW0jAAeDJmlZCF8i", "--token", "cli-token")

		require.NoError(t, err)
		assert.Contains(t, stdout, "UNIFACTOR Mens Running Shoes")
		assert.Contains(t, stdout, "250")
	})

	t.Run("refuses a duplicate", func(t *testing.T) {
		_, stderr, err := execute(t, "add", "KCRwjF7lN97HnEaY", "--token", "cli-token")

		assert.ErrorIs(t, err, domain.ErrAlreadyInCart)
		assert.Contains(t, stderr, "[warning] Item already in cart")
	})

	t.Run("qty sets the quantity even when present", func(t *testing.T) {
		_, _, err := execute(t, "add", "KCRwjF7lN97HnEaY", "--qty", "2", "--token", "cli-token")
		assert.NoError(t, err)
	})

	t.Run("anonymous add warns", func(t *testing.T) {
		_, stderr, err := execute(t, "add", "BW0jAAeDJmlZCF8i")

		assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
		assert.Contains(t, stderr, "[warning] Please log in to add item to the cart")
	})
}

func TestCheckoutCmd(t *testing.T) {
	stdout, _, err := execute(t, "checkout", "--token", "cli-token", "--json")

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"items":[{"productId":"KCRwjF7lN97HnEaY","qty":2,"name":"YONEX Smash Badminton Racquet","category":"Sports","cost":100,"rating":5,"matched":true}],
		"productCount":1,
		"subtotal":200,
		"shippingCharges":0,
		"total":200
	}`, stdout)
}
