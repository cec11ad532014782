package plaid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"centsible/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	c := NewClient(&config.AggregatorConfig{
		ClientID:   "test-client-id",
		Secret:     "test-secret",
		ClientName: "Centsible Test",
		Timeout:    5 * time.Second,
	})
	c.baseURL = serverURL
	return c
}

func TestCreateLinkToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/link/token/create", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-client-id", body["client_id"])
		assert.Equal(t, "test-secret", body["secret"])

		user, ok := body["user"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "user-1", user["client_user_id"])

		_ = json.NewEncoder(w).Encode(map[string]string{
			"link_token": "link-sandbox-token",
			"expiration": "2026-01-01T00:00:00Z",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.CreateLinkToken(context.Background(), "user-1", nil)

	require.NoError(t, err)
	assert.Equal(t, "link-sandbox-token", resp.LinkToken)
}

func TestExchangePublicToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/item/public_token/exchange", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "public-sandbox-token", body["public_token"])

		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "access-sandbox-token",
			"item_id":      "item-1",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.ExchangePublicToken(context.Background(), "public-sandbox-token")

	require.NoError(t, err)
	assert.Equal(t, "access-sandbox-token", resp.AccessToken)
	assert.Equal(t, "item-1", resp.ItemID)
}

func TestGetAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/get", r.URL.Path)

		_, _ = w.Write([]byte(`{
			"accounts": [
				{
					"account_id": "acc-1",
					"name": "Checking",
					"type": "depository",
					"balances": {"available": 100.50, "current": 110.25}
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.GetAccounts(context.Background(), "access-token")

	require.NoError(t, err)
	require.Len(t, resp.Accounts, 1)
	assert.Equal(t, "acc-1", resp.Accounts[0].AccountID)
	assert.Equal(t, "Checking", resp.Accounts[0].Name)
	// Amounts survive as their exact textual form
	assert.Equal(t, "110.25", resp.Accounts[0].Balances.Current.String())
}

func TestSyncTransactions_CursorOmittedWhenEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		_, hasCursor := body["cursor"]
		assert.False(t, hasCursor)

		_, _ = w.Write([]byte(`{
			"added": [
				{"transaction_id": "txn-1", "account_id": "acc-1", "amount": 12.34, "name": "COFFEE", "date": "2026-08-01"}
			],
			"modified": [],
			"removed": [],
			"next_cursor": "cursor-1",
			"has_more": false
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	page, err := client.SyncTransactions(context.Background(), "access-token", "")

	require.NoError(t, err)
	require.Len(t, page.Added, 1)
	assert.Equal(t, "12.34", page.Added[0].Amount.String())
	assert.Equal(t, "cursor-1", page.NextCursor)
	assert.False(t, page.HasMore)
}

func TestSyncTransactions_CursorForwarded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cursor-42", body["cursor"])

		_, _ = w.Write([]byte(`{"added": [], "modified": [], "removed": [], "next_cursor": "cursor-43", "has_more": true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	page, err := client.SyncTransactions(context.Background(), "access-token", "cursor-42")

	require.NoError(t, err)
	assert.Equal(t, "cursor-43", page.NextCursor)
	assert.True(t, page.HasMore)
}

func TestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{
			"error_type": "INVALID_INPUT",
			"error_code": "INVALID_ACCESS_TOKEN",
			"error_message": "could not find matching access token"
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SyncTransactions(context.Background(), "bad-token", "")

	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "INVALID_ACCESS_TOKEN", apiErr.Envelope.ErrorCode)
	assert.Contains(t, apiErr.Error(), "INVALID_ACCESS_TOKEN")
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.GetAccounts(ctx, "access-token")
	require.Error(t, err)
}
