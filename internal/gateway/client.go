// Package gateway wraps the outbound REST interface of the external
// books backend. The backend owns posting, ledger updates, authoritative
// numbering and persistence; this client only delivers finished drafts.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/draftdesk/draftdesk/internal/documents"
)

// ErrRejected indicates the backend refused the submission. The backend
// message, when present, is carried verbatim in the wrapping error.
var ErrRejected = errors.New("gateway: backend rejected submission")

// Client talks to the books backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ping checks if the remote backend is available.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gateway: backend returned status %d", resp.StatusCode)
	}
	return nil
}

// Get fetches a backend resource and decodes the envelope data into dest.
func (c *Client) Get(ctx context.Context, path string, dest any) error {
	url := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: get %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("gateway: decode %s: %w", url, err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		return fmt.Errorf("gateway: get %s: status %d: %s", url, resp.StatusCode, env.Message)
	}
	return json.Unmarshal(env.Data, dest)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// SubmitResult carries what the backend reported for an accepted document.
type SubmitResult struct {
	Message      string
	ServerNumber *string
}

// SubmitVoucher posts a ledger voucher under the accounts module.
func (c *Client) SubmitVoucher(ctx context.Context, docType documents.DocumentType, payload VoucherPayload, token string) (SubmitResult, error) {
	return c.submit(ctx, "accounts", docType, payload, token)
}

// SubmitOrder posts an item document under the inventory module.
func (c *Client) SubmitOrder(ctx context.Context, docType documents.DocumentType, payload OrderPayload, token string) (SubmitResult, error) {
	return c.submit(ctx, "inventory", docType, payload, token)
}

func (c *Client) submit(ctx context.Context, module string, docType documents.DocumentType, payload any, token string) (SubmitResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("gateway: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, module, typeSlug(docType))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return SubmitResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Idempotency-Key", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("gateway: post %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 500 {
			return SubmitResult{}, fmt.Errorf("gateway: backend returned status %d", resp.StatusCode)
		}
		return SubmitResult{}, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	if resp.StatusCode >= 500 {
		return SubmitResult{}, fmt.Errorf("gateway: backend returned status %d: %s", resp.StatusCode, env.Message)
	}
	if resp.StatusCode >= 400 || !env.Success {
		message := env.Message
		if message == "" {
			message = "the document could not be saved"
		}
		return SubmitResult{}, fmt.Errorf("%w: %s", ErrRejected, message)
	}

	result := SubmitResult{Message: env.Message}
	if len(env.Data) > 0 {
		var data struct {
			DocumentNumber string `json:"document_number"`
		}
		if err := json.Unmarshal(env.Data, &data); err == nil && data.DocumentNumber != "" {
			result.ServerNumber = &data.DocumentNumber
		}
	}
	return result, nil
}

// typeSlug maps a document type to its URL segment, e.g. PURCHASE_ORDER
// becomes purchase-order.
func typeSlug(t documents.DocumentType) string {
	return strings.ReplaceAll(strings.ToLower(string(t)), "_", "-")
}
