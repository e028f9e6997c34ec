package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"expertcof/internal/shared/auth"
	"expertcof/internal/shared/metrics"
)

// Client talks to the hosted PostgREST endpoint. Requests carry the project
// API key plus the caller's access token so row-level policies apply.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// APIError is a non-2xx PostgREST response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("postgrest %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("postgrest %d", e.Status)
}

// New builds a client for the project at supabaseURL.
func New(supabaseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(supabaseURL, "/") + "/rest/v1",
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// Select runs GET /<table>?<query> and decodes the JSON array into out.
func (c *Client) Select(ctx context.Context, table string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, table, query, nil, "", out)
}

// Update runs PATCH /<table>?<filter> and decodes the updated rows into out.
func (c *Client) Update(ctx context.Context, table string, filter url.Values, body any, out any) error {
	return c.do(ctx, http.MethodPatch, table, filter, body, "return=representation", out)
}

// Insert runs POST /<table> and decodes the inserted rows into out.
func (c *Client) Insert(ctx context.Context, table string, body any, out any) error {
	return c.do(ctx, http.MethodPost, table, nil, body, "return=representation", out)
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body any, prefer string, out any) error {
	endpoint := c.baseURL + "/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	bearer := auth.AccessTokenFromContext(ctx)
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRemoteCall("postgrest", "error", time.Since(start))
		return fmt.Errorf("postgrest %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRemoteCall("postgrest", strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", table, err)
	}
	return nil
}

// Eq builds an equality filter value.
func Eq(value string) string {
	return "eq." + quote(value)
}

// In builds a membership filter value.
func In(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, quote(v))
	}
	return "in.(" + strings.Join(quoted, ",") + ")"
}

// quote wraps values containing PostgREST reserved characters in double quotes.
func quote(v string) string {
	if strings.ContainsAny(v, ",.:()\" ") {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}
