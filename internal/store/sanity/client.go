// Package sanity talks to the hosted content store over its HTTP query and
// mutation APIs.
package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aTrapDeer/portfolio-site/internal/groq"
	"github.com/aTrapDeer/portfolio-site/internal/store"
)

// DefaultAPIVersion is the dated API version the site was built against.
const DefaultAPIVersion = "2024-01-01"

// Config describes one client. Delivery clients set UseCDN and no token;
// the write client sets Token and leaves UseCDN off.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
	// BaseURL replaces https://{project}.api[cdn].sanity.io, mainly in tests.
	BaseURL string
}

// Client is a Sanity HTTP API client
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New creates a new Sanity API client
func New(cfg Config) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sanity api: %d %s", e.StatusCode, e.Description)
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

type errorResponse struct {
	Error struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error"`
	Message string `json:"message"`
}

type mutateRequest struct {
	Mutations []map[string]any `json:"mutations"`
}

type mutateResponse struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string `json:"id"`
		Operation string `json:"operation"`
	} `json:"results"`
}

func (c *Client) endpoint(kind string, cdn bool) (string, error) {
	if c.cfg.ProjectID == "" || c.cfg.Dataset == "" {
		return "", store.ErrNotConfigured
	}
	base := c.cfg.BaseURL
	if base == "" {
		host := "api.sanity.io"
		if cdn {
			host = "apicdn.sanity.io"
		}
		base = fmt.Sprintf("https://%s.%s", c.cfg.ProjectID, host)
	}
	return fmt.Sprintf("%s/v%s/data/%s/%s", base, c.cfg.APIVersion, kind, url.PathEscape(c.cfg.Dataset)), nil
}

// Fetch runs a GROQ query. Params are sent as JSON-encoded $name values.
func (c *Client) Fetch(ctx context.Context, q groq.Query, params groq.Params, _ ...store.FetchOption) (json.RawMessage, error) {
	endpoint, err := c.endpoint("query", c.cfg.UseCDN && c.cfg.Token == "")
	if err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("query", q.String())
	for name, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal param %s: %w", name, err)
		}
		values.Set("$"+name, string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var resp queryResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Type, err)
	}
	if len(resp.Result) == 0 {
		return json.RawMessage("null"), nil
	}
	return resp.Result, nil
}

// Create stores doc with a create mutation and returns the new id.
func (c *Client) Create(ctx context.Context, doc any) (string, error) {
	ids, err := c.mutate(ctx, []map[string]any{{"create": doc}})
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("create document: no id returned")
	}
	return ids[0], nil
}

// Transaction starts a mutation batch.
func (c *Client) Transaction() store.Transaction {
	return &transaction{client: c}
}

type transaction struct {
	client    *Client
	mutations []map[string]any
}

func (t *transaction) Delete(id string) store.Transaction {
	t.mutations = append(t.mutations, map[string]any{"delete": map[string]string{"id": id}})
	return t
}

func (t *transaction) Commit(ctx context.Context) (int, error) {
	if len(t.mutations) == 0 {
		return 0, nil
	}
	ids, err := t.client.mutate(ctx, t.mutations)
	if err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return len(ids), nil
}

func (c *Client) mutate(ctx context.Context, mutations []map[string]any) ([]string, error) {
	endpoint, err := c.endpoint("mutate", false)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(mutateRequest{Mutations: mutations})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint+"?returnIds=true&visibility=sync", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp mutateResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (c *Client) do(req *http.Request, result any) error {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Description: resp.Status}
		var er errorResponse
		if json.Unmarshal(body, &er) == nil {
			switch {
			case er.Error.Description != "":
				apiErr.Description = er.Error.Description
			case er.Message != "":
				apiErr.Description = er.Message
			}
		}
		return apiErr
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
