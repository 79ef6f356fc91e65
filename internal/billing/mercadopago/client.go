// Package mercadopago is a REST client for the MercadoPago subscriptions (preapproval) API.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://api.mercadopago.com"

// ErrNotFound is returned when the API answers 404.
var ErrNotFound = errors.New("mercadopago: resource not found")

// Client calls the MercadoPago API with one access token. Each call is a single attempt.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      *zap.Logger
	newKey      func() string
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, accessToken string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		logger:      logger,
		newKey:      func() string { return uuid.NewString() },
	}
}

// CreatePlan creates a subscription plan.
func (c *Client) CreatePlan(ctx context.Context, req PlanRequest) (*Plan, error) {
	var plan Plan
	if err := c.do(ctx, http.MethodPost, "/preapproval_plan", req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreatePreapproval creates a subscription. The returned InitPoint is where the payer
// authorizes it.
func (c *Client) CreatePreapproval(ctx context.Context, req PreapprovalRequest) (*Preapproval, error) {
	var p Preapproval
	if err := c.do(ctx, http.MethodPost, "/preapproval", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPreapproval fetches the current state of a subscription.
func (c *Client) GetPreapproval(ctx context.Context, id string) (*Preapproval, error) {
	var p Preapproval
	if err := c.do(ctx, http.MethodGet, "/preapproval/"+id, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CancelPreapproval cancels a subscription. Cancellation is final.
func (c *Client) CancelPreapproval(ctx context.Context, id string) (*Preapproval, error) {
	return c.setStatus(ctx, id, StatusCancelled)
}

// PausePreapproval pauses charging.
func (c *Client) PausePreapproval(ctx context.Context, id string) (*Preapproval, error) {
	return c.setStatus(ctx, id, StatusPaused)
}

// ResumePreapproval re-authorizes a paused subscription.
func (c *Client) ResumePreapproval(ctx context.Context, id string) (*Preapproval, error) {
	return c.setStatus(ctx, id, StatusAuthorized)
}

func (c *Client) setStatus(ctx context.Context, id, status string) (*Preapproval, error) {
	var p Preapproval
	if err := c.do(ctx, http.MethodPut, "/preapproval/"+id, statusUpdate{Status: status}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("mercadopago: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("mercadopago: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set("X-Idempotency-Key", c.newKey())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("MercadoPago request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("mercadopago: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("mercadopago: read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		c.logger.Error("MercadoPago API error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("mercadopago: decode %s %s response: %w", method, path, err)
	}
	return nil
}
