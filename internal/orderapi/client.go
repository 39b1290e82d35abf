// Package orderapi is the HTTP client for the remote order service. The
// service is a black box: this client only shapes requests and decodes
// responses, all session logic lives elsewhere.
package orderapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/copiiworld/cajita-go/internal/models"
)

const defaultTimeout = 60 * time.Second

// Client talks to the order service REST API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a client for the order service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
}

// GetOrder fetches the order summary shown in the editor header.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	url := fmt.Sprintf("%s/api/orders/%s/", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, serviceError("get order", resp)
	}

	var order models.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

// SubmitImages posts the assembled multipart payload to the image
// submission endpoint.
func (c *Client) SubmitImages(ctx context.Context, orderID, contentType string, body io.Reader) error {
	url := fmt.Sprintf("%s/api/orders/%s/submit_images/", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("submit images: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return serviceError("submit images", resp)
	}
	return nil
}

// SendOrder finalizes the order and returns the deposit information.
func (c *Client) SendOrder(ctx context.Context, orderID string) (*models.SendResult, error) {
	url := fmt.Sprintf("%s/api/orders/%s/send_order/", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader("{}"))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serviceError("send order", resp)
	}

	var result models.SendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode send result: %w", err)
	}
	return &result, nil
}

// serviceError extracts the service's {"error": "..."} body when present.
func serviceError(op string, resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("%s: %s (status %d)", op, body.Error, resp.StatusCode)
	}
	return fmt.Errorf("%s: request failed with status %d", op, resp.StatusCode)
}
