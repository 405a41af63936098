// Package payment adapts an external settlement endpoint to the
// ports.Transferor primitive. The endpoint receives one POST per transfer and
// reports success or failure synchronously via the HTTP status; the treasury
// never retries a transfer on its own.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/commonfund/treasury-api/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Client posts transfers to a settlement endpoint.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a Client for the given endpoint URL. A default timeout is
// applied when none is provided.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

type transferRequest struct {
	Beneficiary string `json:"beneficiary"`
	Amount      int64  `json:"amount"`
}

// Transfer moves amount to the beneficiary. A non-2xx response is a failure;
// the response body is surfaced in the error for the payout log.
func (c *Client) Transfer(ctx context.Context, to domain.Identity, amount int64) error {
	body, err := json.Marshal(transferRequest{Beneficiary: string(to), Amount: amount})
	if err != nil {
		return fmt.Errorf("transfer: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("transfer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("transfer: settlement endpoint returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}
