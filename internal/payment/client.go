package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

// Gateway is the slice of the payment processor the order flow needs: creating
// a gateway-side order before the client drives the checkout UI.
type Gateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (GatewayOrder, error)
}

// CreateOrderRequest describes a gateway order. Amount is in the smallest
// currency unit (paise for INR).
type CreateOrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// GatewayOrder is the gateway's view of a created order.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client talks to the Razorpay Orders API over HTTPS with basic auth.
// It is constructed once at startup; missing credentials fail there, not on the
// first checkout.
type Client struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a gateway client from explicit credentials.
func NewClient(keyID, keySecret string) (*Client, error) {
	if keyID == "" || keySecret == "" {
		return nil, errors.New("razorpay credentials are not configured")
	}
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// KeyID returns the public key id, which the client page needs to open checkout.
func (c *Client) KeyID() string {
	return c.keyID
}

// KeySecret returns the shared secret used for signature verification.
func (c *Client) KeySecret() string {
	return c.keySecret
}

// NewReceipt generates a receipt token for a gateway order.
func NewReceipt() string {
	return "receipt_" + shortuuid.New()
}

type gatewayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder creates an order on the gateway side. Failures (network, bad
// credentials, gateway rejection) are returned to the caller; there is no retry.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (GatewayOrder, error) {
	payload := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    req.Notes,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return GatewayOrder{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewBuffer(body))
	if err != nil {
		return GatewayOrder{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return GatewayOrder{}, fmt.Errorf("razorpay order create: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return GatewayOrder{}, err
	}

	if resp.StatusCode != http.StatusOK {
		var gwErr gatewayError
		if err := json.Unmarshal(respBody, &gwErr); err == nil && gwErr.Error.Description != "" {
			return GatewayOrder{}, fmt.Errorf("razorpay order create: %s (%s)",
				gwErr.Error.Description, gwErr.Error.Code)
		}
		return GatewayOrder{}, fmt.Errorf("razorpay order create: unexpected status %d", resp.StatusCode)
	}

	var order GatewayOrder
	if err := json.Unmarshal(respBody, &order); err != nil {
		return GatewayOrder{}, fmt.Errorf("razorpay order create: decode response: %w", err)
	}
	return order, nil
}
