package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"expertcof/internal/shared/auth"
	"expertcof/internal/shared/metrics"
	"expertcof/internal/shared/telemetry"
)

// Operation names one checkout endpoint.
type Operation string

const (
	OpCheckout Operation = "create-checkout-session"
	OpVerify   Operation = "verify-checkout-session"
	OpCancel   Operation = "cancel-subscription"
	OpPortal   Operation = "create-portal-session"
)

var fallbackMessages = map[Operation]string{
	OpCheckout: "Erro ao criar sessão de pagamento",
	OpVerify:   "Erro ao verificar pagamento",
	OpCancel:   "Erro ao cancelar assinatura",
	OpPortal:   "Erro ao acessar portal de assinatura",
}

var (
	ErrMissingUser = errors.New("user id is required")
	ErrMissingURL  = errors.New("checkout endpoint returned no url")
)

// RemoteError is a non-2xx answer from a checkout endpoint.
type RemoteError struct {
	Op     Operation
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s returned %d: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s returned %d", e.Op, e.Status)
}

// UserMessage returns the server detail when present, else the localized
// fallback for op.
func UserMessage(op Operation, err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Detail != "" {
		return remote.Detail
	}
	return fallbackMessages[op]
}

// Verification is the outcome of a finished checkout.
type Verification struct {
	Status string `json:"status"`
	Plan   string `json:"plan,omitempty"`
}

// Confirmed reports whether the payment went through.
func (v Verification) Confirmed() bool {
	return v.Status == "success"
}

// Client calls the subscription endpoints of the API. The payment gateway
// itself sits behind those endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the API at baseURL.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// CreateCheckoutSession returns the hosted checkout url for priceID.
func (c *Client) CreateCheckoutSession(ctx context.Context, userID, priceID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrMissingUser
	}
	var out struct {
		URL string `json:"url"`
	}
	body := map[string]string{"user_id": userID, "price_id": priceID}
	if err := c.post(ctx, OpCheckout, body, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", ErrMissingURL
	}
	return out.URL, nil
}

// VerifyCheckoutSession asks whether sessionID completed for userID.
func (c *Client) VerifyCheckoutSession(ctx context.Context, sessionID, userID string) (Verification, error) {
	if strings.TrimSpace(userID) == "" {
		return Verification{}, ErrMissingUser
	}
	var out Verification
	body := map[string]string{"session_id": sessionID, "user_id": userID}
	if err := c.post(ctx, OpVerify, body, &out); err != nil {
		return Verification{}, err
	}
	return out, nil
}

// CancelSubscription ends userID's paid plan.
func (c *Client) CancelSubscription(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	return c.post(ctx, OpCancel, map[string]string{"user_id": userID}, nil)
}

// CreatePortalSession returns the self-service billing portal url.
func (c *Client) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrMissingUser
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := c.post(ctx, OpPortal, map[string]string{"user_id": userID}, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", ErrMissingURL
	}
	return out.URL, nil
}

func (c *Client) post(ctx context.Context, op Operation, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/"+string(op), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := auth.AccessTokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRemoteCall("billing", "error", time.Since(start))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRemoteCall("billing", strconv.Itoa(resp.StatusCode), time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remote := &RemoteError{Op: op, Status: resp.StatusCode, Detail: detail(data)}
		telemetry.Warn("billing.request_rejected", map[string]any{
			"operation": string(op),
			"status":    resp.StatusCode,
			"detail":    remote.Detail,
		})
		return remote
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func detail(data []byte) string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if s, ok := body.Detail.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
