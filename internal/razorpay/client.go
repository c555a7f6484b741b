package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client talks to the Razorpay Orders API over plain HTTP with basic auth.
// The base URL and HTTP client are injectable so tests can point it at a
// stub server.
type Client struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(keyID, keySecret, baseURL string, logger *zap.Logger) *Client {
	return &Client{
		keyID:      keyID,
		keySecret:  keySecret,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// OrderRequest is the order-creation payload. Amount is in paise.
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the gateway's order object as returned on creation.
type Order struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes"`
}

// CreateOrder registers a payment intent with the gateway. Nothing is written
// locally; an abandoned order simply never produces a webhook.
func (c *Client) CreateOrder(ctx context.Context, orderReq OrderRequest) (*Order, error) {
	if c.keyID == "" || c.keySecret == "" {
		return nil, fmt.Errorf("razorpay credentials not configured")
	}

	reqBody, err := json.Marshal(orderReq)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	var resp *http.Response
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewBuffer(reqBody))
		if err != nil {
			return nil, fmt.Errorf("build order request: %w", err)
		}
		req.SetBasicAuth(c.keyID, c.keySecret)
		req.Header.Set("Content-Type", "application/json")

		resp, err = c.httpClient.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			break
		}
		if err != nil {
			c.logger.Warn("Order request failed", zap.Int("attempt", attempt), zap.Error(err))
			if attempt == 3 {
				return nil, fmt.Errorf("order creation failed: %w", err)
			}
		} else {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			c.logger.Warn("Order request rejected",
				zap.Int("attempt", attempt),
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", body))
			if attempt == 3 {
				return nil, fmt.Errorf("order creation failed: status %d: %s", resp.StatusCode, body)
			}
		}
		select {
		case <-time.After(time.Duration(attempt) * time.Second):
		case <-ctx.Done():
			return nil, fmt.Errorf("order creation aborted: %w", ctx.Err())
		}
	}
	defer resp.Body.Close()

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("order response missing id")
	}

	c.logger.Info("Gateway order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", order.Amount),
		zap.String("receipt", order.Receipt))
	return &order, nil
}
