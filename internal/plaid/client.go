package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"centsible/internal/config"
	"centsible/internal/dto"
)

// Aggregator is the surface of the bank-data provider the services depend
// on. The production implementation talks to the Plaid-compatible REST API;
// tests substitute fakes.
type Aggregator interface {
	CreateLinkToken(ctx context.Context, userID string, products []string) (*dto.LinkTokenResponse, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*dto.ExchangeTokenResponse, error)
	GetAccounts(ctx context.Context, accessToken string) (*dto.AccountsResponse, error)
	SyncTransactions(ctx context.Context, accessToken, cursor string) (*dto.SyncPage, error)
}

// APIError is a provider-reported failure carrying the provider's error
// envelope alongside the HTTP status.
type APIError struct {
	StatusCode int
	Envelope   dto.AggregatorError
}

func (e *APIError) Error() string {
	if e.Envelope.ErrorCode != "" {
		return fmt.Sprintf("aggregator error %s (%s): %s", e.Envelope.ErrorCode, e.Envelope.ErrorType, e.Envelope.ErrorMessage)
	}
	return fmt.Sprintf("aggregator returned status %d", e.StatusCode)
}

// Client is the REST client for the bank-data aggregator. Credentials are
// injected into every request body per the provider's auth convention.
type Client struct {
	httpClient *http.Client
	clientID   string
	secret     string
	clientName string
	baseURL    string // overridable for tests
}

// NewClient creates an aggregator client from configuration.
func NewClient(cfg *config.AggregatorConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		clientID:   cfg.ClientID,
		secret:     cfg.Secret,
		clientName: cfg.ClientName,
		baseURL:    cfg.BaseURL(),
	}
}

// CreateLinkToken opens a link session for the given user. The returned
// token is handed to the provider's frontend widget.
func (c *Client) CreateLinkToken(ctx context.Context, userID string, products []string) (*dto.LinkTokenResponse, error) {
	if len(products) == 0 {
		products = []string{"auth", "transactions"}
	}

	body := map[string]interface{}{
		"client_name":   c.clientName,
		"language":      "en",
		"country_codes": []string{"US"},
		"products":      products,
		"user": map[string]string{
			"client_user_id": userID,
		},
	}

	var out dto.LinkTokenResponse
	if err := c.post(ctx, "/link/token/create", body, &out); err != nil {
		return nil, fmt.Errorf("failed to create link token: %w", err)
	}
	return &out, nil
}

// ExchangePublicToken trades the widget's public token for a permanent
// access token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*dto.ExchangeTokenResponse, error) {
	body := map[string]interface{}{
		"public_token": publicToken,
	}

	var out dto.ExchangeTokenResponse
	if err := c.post(ctx, "/item/public_token/exchange", body, &out); err != nil {
		return nil, fmt.Errorf("failed to exchange public token: %w", err)
	}
	return &out, nil
}

// GetAccounts lists the accounts reachable through an access token.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) (*dto.AccountsResponse, error) {
	body := map[string]interface{}{
		"access_token": accessToken,
	}

	var out dto.AccountsResponse
	if err := c.post(ctx, "/accounts/get", body, &out); err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	return &out, nil
}

// SyncTransactions fetches one page of the transaction stream. An empty
// cursor starts from the beginning of the item's history.
func (c *Client) SyncTransactions(ctx context.Context, accessToken, cursor string) (*dto.SyncPage, error) {
	body := map[string]interface{}{
		"access_token": accessToken,
	}
	if cursor != "" {
		body["cursor"] = cursor
	}

	var out dto.SyncPage
	if err := c.post(ctx, "/transactions/sync", body, &out); err != nil {
		return nil, fmt.Errorf("failed to sync transactions: %w", err)
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]interface{}, out interface{}) error {
	body["client_id"] = c.clientID
	body["secret"] = c.secret

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// Decode errors are ignored; the status code alone is enough
		data, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(data, &apiErr.Envelope)
		return apiErr
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
