package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const requestTimeout = 20 * time.Second

// Client talks to the external extraction service that turns a raw bank
// notification into structured transaction fields.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Result is the structured payload the extraction service returns.
// TransactionDate is a string because the service may answer with either a
// bare date or a full timestamp.
type Result struct {
	Amount          string `json:"amount"`
	Type            string `json:"type"`
	Merchant        string `json:"merchant"`
	BankName        string `json:"bankName"`
	TransactionDate string `json:"transactionDate"`
}

// Date parses the extracted transaction date, falling back to fallback when
// the service returned nothing usable.
func (r *Result) Date(fallback time.Time) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, r.TransactionDate); err == nil {
			return t
		}
	}
	return fallback
}

// Extract posts raw notification text and returns the structured result.
// Retries are the caller's concern; a failed call here is a failed call.
func (c *Client) Extract(ctx context.Context, text string) (*Result, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshal extraction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call extraction service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("extraction service returned %d: %s", resp.StatusCode, body)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}

	return &result, nil
}
