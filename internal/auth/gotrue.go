package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"expertcof/internal/shared/metrics"
	"expertcof/internal/shared/telemetry"
)

// Token extras set by SignIn and Refresh.
const (
	extraUserID = "user_id"
	extraEmail  = "email"
	extraName   = "name"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidRole        = errors.New("unknown role")
	ErrNoSession          = errors.New("no session")
)

// APIError is an error answer from the auth service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("auth %d", e.Status)
}

// UserMessage returns the auth service's message when it sent one, else
// fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrPasswordMismatch) || errors.Is(err, ErrPasswordTooShort) {
		return passwordMessage(err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Role is the persona chosen at sign-up.
type Role string

const (
	RoleFranchisee Role = "franchisee"
	RoleConsultant Role = "consultant"
	RoleLawyer     Role = "lawyer"
)

// ParseRole defaults an empty role to franchisee.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RoleFranchisee:
		return RoleFranchisee, nil
	case RoleConsultant:
		return RoleConsultant, nil
	case RoleLawyer:
		return RoleLawyer, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
}

// SignUpRequest is a new account.
type SignUpRequest struct {
	Email    string
	Password string
	Name     string
	Role     Role
}

// User is the account part of an auth response.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"user_metadata"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Client talks to the hosted auth service (GoTrue).
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	now     func() time.Time
}

// New builds a client for the project at supabaseURL.
func New(supabaseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(supabaseURL, "/") + "/auth/v1",
		apiKey:  apiKey,
		http:    httpClient,
		now:     time.Now,
	}
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*oauth2.Token, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	var out tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", body, &out); err != nil {
		return nil, err
	}
	return c.token(out)
}

// Refresh trades a refresh token for a new session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrNoSession
	}
	var out tokenResponse
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", body, &out); err != nil {
		return nil, err
	}
	return c.token(out)
}

// SignUp creates an account. The profile row is created by the backend.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return User{}, ErrMissingCredentials
	}
	if req.Role == "" {
		req.Role = RoleFranchisee
	}
	body := map[string]any{
		"email":    req.Email,
		"password": req.Password,
		"data":     map[string]string{"name": strings.TrimSpace(req.Name), "role": string(req.Role)},
	}
	// Depending on email confirmation settings the answer is either a
	// session or the bare user.
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/signup", "", body, &raw); err != nil {
		return User{}, err
	}
	var session tokenResponse
	if err := json.Unmarshal(raw, &session); err == nil && session.User.ID != "" {
		return session.User, nil
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return User{}, fmt.Errorf("decode signup: %w", err)
	}
	return user, nil
}

// ResetPassword sends the recovery email. redirectTo is where the link lands.
func (c *Client) ResetPassword(ctx context.Context, email, redirectTo string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrMissingCredentials
	}
	path := "/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	return c.do(ctx, http.MethodPost, path, "", map[string]string{"email": email}, nil)
}

// UpdatePassword sets a new password for the session's user.
func (c *Client) UpdatePassword(ctx context.Context, token *oauth2.Token, password string) error {
	if token == nil || token.AccessToken == "" {
		return ErrNoSession
	}
	return c.do(ctx, http.MethodPut, "/user", token.AccessToken, map[string]string{"password": password}, nil)
}

func (c *Client) token(out tokenResponse) (*oauth2.Token, error) {
	if out.AccessToken == "" {
		return nil, errors.New("auth response without access token")
	}
	tok := &oauth2.Token{
		AccessToken:  out.AccessToken,
		TokenType:    out.TokenType,
		RefreshToken: out.RefreshToken,
	}
	switch {
	case out.ExpiresAt > 0:
		tok.Expiry = time.Unix(out.ExpiresAt, 0)
	case out.ExpiresIn > 0:
		tok.Expiry = c.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return tok.WithExtra(map[string]any{
		extraUserID: out.User.ID,
		extraEmail:  out.User.Email,
		extraName:   out.User.UserMetadata.Name,
	}), nil
}

// UserID returns the account id carried by a token from SignIn or Refresh.
func UserID(tok *oauth2.Token) string {
	return extraString(tok, extraUserID)
}

// Email returns the account email carried by a token from SignIn or Refresh.
func Email(tok *oauth2.Token) string {
	return extraString(tok, extraEmail)
}

func extraString(tok *oauth2.Token, key string) string {
	if tok == nil {
		return ""
	}
	s, _ := tok.Extra(key).(string)
	return s
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRemoteCall("gotrue", "error", time.Since(start))
		return fmt.Errorf("auth %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRemoteCall("gotrue", strconv.Itoa(resp.StatusCode), time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp.StatusCode, data)
		telemetry.Warn("auth.request_rejected", map[string]any{
			"path":   strings.SplitN(path, "?", 2)[0],
			"status": resp.StatusCode,
			"code":   apiErr.Code,
		})
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

// decodeAPIError accepts the OAuth style and the newer msg style bodies.
func decodeAPIError(status int, data []byte) *APIError {
	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error_code"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	_ = json.Unmarshal(data, &body)
	apiErr := &APIError{Status: status, Code: body.ErrorCode}
	if apiErr.Code == "" {
		apiErr.Code = body.Error
	}
	for _, m := range []string{body.ErrorDescription, body.Msg, body.Message} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}
	return apiErr
}
