package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	return &Client{
		keyID:      "rzp_test_key",
		keySecret:  "rzp_test_secret",
		baseURL:    serverURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	tests := []struct {
		name      string
		keyID     string
		keySecret string
		wantErr   bool
	}{
		{name: "both present", keyID: "id", keySecret: "secret"},
		{name: "missing key id", keyID: "", keySecret: "secret", wantErr: true},
		{name: "missing secret", keyID: "id", keySecret: "", wantErr: true},
		{name: "both missing", keyID: "", keySecret: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.keyID, tt.keySecret)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.keyID, c.KeyID())
			assert.Equal(t, tt.keySecret, c.KeySecret())
		})
	}
}

func TestClient_CreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)

		var body struct {
			Amount   int64             `json:"amount"`
			Currency string            `json:"currency"`
			Receipt  string            `json:"receipt"`
			Notes    map[string]string `json:"notes"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(25599), body.Amount)
		assert.Equal(t, "INR", body.Currency)
		assert.Equal(t, "receipt_test", body.Receipt)
		assert.Equal(t, "42", body.Notes["userId"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_xyz",
			"amount":   body.Amount,
			"currency": body.Currency,
			"receipt":  body.Receipt,
			"status":   "created",
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	order, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		Amount:   25599,
		Currency: "INR",
		Receipt:  "receipt_test",
		Notes:    map[string]string{"userId": "42", "itemCount": "2"},
	})
	require.NoError(t, err)

	assert.Equal(t, "order_xyz", order.ID)
	assert.Equal(t, int64(25599), order.Amount)
	assert.Equal(t, "created", order.Status)
}

func TestClient_CreateOrder_GatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"code":        "BAD_REQUEST_ERROR",
				"description": "Authentication failed",
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Amount: 100, Currency: "INR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Authentication failed")
	assert.Contains(t, err.Error(), "BAD_REQUEST_ERROR")
}

func TestClient_CreateOrder_OpaqueFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Amount: 100, Currency: "INR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestNewReceipt(t *testing.T) {
	a := NewReceipt()
	b := NewReceipt()

	assert.True(t, strings.HasPrefix(a, "receipt_"))
	assert.NotEqual(t, a, b)
}
