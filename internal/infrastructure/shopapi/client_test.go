package shopapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qkart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient("https://shop.example.com/api/v1/", Options{})

	assert.NotNil(t, client)
	assert.Equal(t, "https://shop.example.com/api/v1", client.baseURL)
	assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.rateLimiter)
	assert.NotNil(t, client.logger)
	assert.False(t, client.debug)
}

func TestSetDebug(t *testing.T) {
	client := NewClient("https://shop.example.com", Options{})

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestListProducts_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"name":"iPhone XR","category":"Phones","cost":100,"rating":4,"image":"https://i.imgur.com/lulqWzW.jpg","_id":"v4sLtEcMpzabRyfx"},
			{"name":"Basketball","category":"Sports","cost":100,"rating":5,"image":"https://i.imgur.com/lulqWzW.jpg","_id":"upLK9JbQ4rMhTwt4"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	products, err := client.ListProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, domain.Product{
		ID:       "v4sLtEcMpzabRyfx",
		Name:     "iPhone XR",
		Category: "Phones",
		Cost:     100,
		Rating:   4,
		ImageURL: "https://i.imgur.com/lulqWzW.jpg",
	}, products[0])
}

func TestListProducts_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"message":"Something went wrong. Check the backend console for more details"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	products, err := client.ListProducts(context.Background())

	assert.Nil(t, products)
	assert.ErrorIs(t, err, domain.ErrServerReported)

	var serverErr *domain.ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, http.StatusInternalServerError, serverErr.Status)
	assert.Equal(t, "Something went wrong. Check the backend console for more details", serverErr.Message)
}

func TestListProducts_ServerErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	_, err := client.ListProducts(context.Background())

	var serverErr *domain.ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, "Bad Gateway", serverErr.Message)
}

func TestListProducts_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	products, err := client.ListProducts(context.Background())

	assert.Nil(t, products)
	assert.ErrorIs(t, err, domain.ErrConnectivity)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestListProducts_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewClient(baseURL, Options{Timeout: time.Second})
	_, err := client.ListProducts(context.Background())

	assert.ErrorIs(t, err, domain.ErrConnectivity)
	assert.NotErrorIs(t, err, domain.ErrServerReported)
}

func TestListProducts_NullBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	products, err := client.ListProducts(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestSearchProducts_EncodesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/search", r.URL.Path)
		assert.Equal(t, "running shoes & socks", r.URL.Query().Get("value"))

		json.NewEncoder(w).Encode([]domain.Product{{ID: "A", Name: "Running Shoes", Cost: 50}})
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	products, err := client.SearchProducts(context.Background(), "running shoes & socks")

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "A", products[0].ID)
}

func TestSearchProducts_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	products, err := client.SearchProducts(context.Background(), "nothing-matches")

	assert.Nil(t, products)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, err, domain.ErrServerReported)
}

func TestGetCart_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cart", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		w.Write([]byte(`[{"productId":"KCRwjF7lN97HnEaY","qty":3},{"productId":"BW0jAAeDJmlZCF8i","qty":1}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	entries, err := client.GetCart(context.Background(), "secret-token")

	require.NoError(t, err)
	assert.Equal(t, []domain.CartEntry{
		{ProductID: "KCRwjF7lN97HnEaY", Quantity: 3},
		{ProductID: "BW0jAAeDJmlZCF8i", Quantity: 1},
	}, entries)
}

func TestGetCart_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Protected route, Oauth2 Bearer token not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	_, err := client.GetCart(context.Background(), "")

	var serverErr *domain.ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, http.StatusUnauthorized, serverErr.Status)
	assert.Equal(t, "Protected route, Oauth2 Bearer token not found", serverErr.Message)
}

func TestUpdateCart_PostsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cart", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var update domain.CartUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&update))
		assert.Equal(t, domain.CartUpdate{ProductID: "A", Quantity: 2}, update)

		json.NewEncoder(w).Encode([]domain.CartEntry{{ProductID: "A", Quantity: 2}})
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	entries, err := client.UpdateCart(context.Background(), "secret-token", domain.CartUpdate{ProductID: "A", Quantity: 2})

	require.NoError(t, err)
	assert.Equal(t, []domain.CartEntry{{ProductID: "A", Quantity: 2}}, entries)
}

func TestUpdateCart_InvalidProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"Product doesn't exist"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	_, err := client.UpdateCart(context.Background(), "secret-token", domain.CartUpdate{ProductID: "nope", Quantity: 1})

	var serverErr *domain.ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, "Product doesn't exist", serverErr.Message)
}

func TestRequest_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	products, err := client.ListProducts(ctx)

	assert.Nil(t, products)
	assert.ErrorIs(t, err, domain.ErrConnectivity)
}

func TestRequest_CreationError(t *testing.T) {
	client := NewClient("://invalid-url", Options{})

	products, err := client.ListProducts(context.Background())

	assert.Nil(t, products)
	assert.Error(t, err)
}

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"message field", `{"success":false,"message":"Out of stock"}`, 400, "Out of stock"},
		{"empty message falls back", `{"success":false,"message":""}`, 400, "Bad Request"},
		{"no message field", `{"error":"x"}`, 500, "Internal Server Error"},
		{"not json", `oops`, 503, "Service Unavailable"},
		{"empty body", ``, 404, "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractMessage([]byte(tt.body), tt.status))
		})
	}
}

func TestReadLimitedBody(t *testing.T) {
	t.Run("reads within limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("short content"))
		}))
		defer server.Close()

		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := readLimitedBody(resp.Body, 1000)
		require.NoError(t, err)
		assert.Equal(t, "short content", string(body))
	})

	t.Run("truncates beyond limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for i := 0; i < 100; i++ {
				w.Write([]byte("0123456789"))
			}
		}))
		defer server.Close()

		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := readLimitedBody(resp.Body, 100)
		require.NoError(t, err)
		assert.Len(t, body, 100)
	})
}
