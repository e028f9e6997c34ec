package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func fakeGoTrue(t *testing.T, refreshes *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "anon" {
			t.Errorf("missing apikey header")
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		switch {
		case r.URL.Path == "/auth/v1/token" && r.URL.Query().Get("grant_type") == "password":
			if body["password"] != "secret1" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"bearer","expires_in":3600,"refresh_token":"rt-1","user":{"id":"user-1","email":"ana@example.com","user_metadata":{"name":"Ana"}}}`))
		case r.URL.Path == "/auth/v1/token" && r.URL.Query().Get("grant_type") == "refresh_token":
			atomic.AddInt32(refreshes, 1)
			if body["refresh_token"] != "rt-1" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"code":400,"error_code":"refresh_token_not_found","msg":"Invalid Refresh Token"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"at-2","token_type":"bearer","expires_in":3600,"refresh_token":"rt-2","user":{"id":"user-1"}}`))
		case r.URL.Path == "/auth/v1/signup":
			data, _ := body["data"].(map[string]any)
			if data["role"] != "lawyer" || data["name"] != "Ana" {
				t.Errorf("unexpected signup metadata %+v", data)
			}
			_, _ = w.Write([]byte(`{"id":"user-9","email":"ana@example.com"}`))
		case r.URL.Path == "/auth/v1/recover":
			if r.URL.Query().Get("redirect_to") != "https://app.example/update-password" {
				t.Errorf("unexpected redirect %q", r.URL.Query().Get("redirect_to"))
			}
			_, _ = w.Write([]byte(`{}`))
		case r.URL.Path == "/auth/v1/user" && r.Method == http.MethodPut:
			if r.Header.Get("Authorization") != "Bearer at-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"id":"user-1"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.String())
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSignInReturnsToken(t *testing.T) {
	var refreshes int32
	srv := fakeGoTrue(t, &refreshes)
	c := New(srv.URL, "anon", srv.Client())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	tok, err := c.SignIn(context.Background(), "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if tok.AccessToken != "at-1" || tok.RefreshToken != "rt-1" {
		t.Fatalf("unexpected token %+v", tok)
	}
	if !tok.Expiry.Equal(fixed.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", tok.Expiry)
	}
	if UserID(tok) != "user-1" || Email(tok) != "ana@example.com" {
		t.Fatalf("unexpected identity %q %q", UserID(tok), Email(tok))
	}
}

func TestSignInRejected(t *testing.T) {
	var refreshes int32
	srv := fakeGoTrue(t, &refreshes)
	c := New(srv.URL, "anon", srv.Client())

	_, err := c.SignIn(context.Background(), "ana@example.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "invalid_grant" {
		t.Fatalf("expected invalid_grant, got %v", err)
	}
	if msg := UserMessage(err, "fallback"); msg != "Invalid login credentials" {
		t.Fatalf("unexpected message %q", msg)
	}
	if _, err := c.SignIn(context.Background(), " ", "x"); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestTokenSourceRefreshesExpiredToken(t *testing.T) {
	var refreshes int32
	srv := fakeGoTrue(t, &refreshes)
	c := New(srv.URL, "anon", srv.Client())

	expired := &oauth2.Token{AccessToken: "at-1", RefreshToken: "rt-1", Expiry: time.Now().Add(-time.Minute)}
	ts := c.TokenSource(context.Background(), expired)

	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok.AccessToken != "at-2" {
		t.Fatalf("expected refreshed token, got %q", tok.AccessToken)
	}
	if _, err := ts.Token(); err != nil {
		t.Fatalf("second token: %v", err)
	}
	if got := atomic.LoadInt32(&refreshes); got != 1 {
		t.Fatalf("expected one refresh, got %d", got)
	}
}

func TestTokenSourceWithoutRefreshToken(t *testing.T) {
	c := New("http://127.0.0.1:1", "anon", nil)
	ts := c.TokenSource(context.Background(), &oauth2.Token{AccessToken: "x", Expiry: time.Now().Add(-time.Minute)})
	if _, err := ts.Token(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestSignUpRecoverAndUpdatePassword(t *testing.T) {
	var refreshes int32
	srv := fakeGoTrue(t, &refreshes)
	c := New(srv.URL, "anon", srv.Client())
	ctx := context.Background()

	user, err := c.SignUp(ctx, SignUpRequest{Email: "ana@example.com", Password: "secret1", Name: " Ana ", Role: RoleLawyer})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if user.ID != "user-9" {
		t.Fatalf("unexpected user %+v", user)
	}
	if err := c.ResetPassword(ctx, "ana@example.com", "https://app.example/update-password"); err != nil {
		t.Fatalf("recover: %v", err)
	}
	if err := c.UpdatePassword(ctx, &oauth2.Token{AccessToken: "at-1"}, "newpass"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if err := c.UpdatePassword(ctx, nil, "newpass"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole(""); err != nil || r != RoleFranchisee {
		t.Fatalf("expected default franchisee, got %q %v", r, err)
	}
	if r, err := ParseRole("Consultant"); err != nil || r != RoleConsultant {
		t.Fatalf("expected consultant, got %q %v", r, err)
	}
	if _, err := ParseRole("admin"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestValidatePasswordChange(t *testing.T) {
	cases := []struct {
		pw, confirm string
		want        error
		msg         string
	}{
		{"abcdef", "abcdeg", ErrPasswordMismatch, "As senhas não coincidem."},
		{"abc", "abc", ErrPasswordTooShort, "A senha deve ter pelo menos 6 caracteres."},
		{"abc", "abd", ErrPasswordMismatch, "As senhas não coincidem."},
		{"çãõéíú", "çãõéíú", nil, ""},
	}
	for _, tc := range cases {
		err := ValidatePasswordChange(tc.pw, tc.confirm)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%q/%q: expected %v, got %v", tc.pw, tc.confirm, tc.want, err)
		}
		if got := UserMessage(err, ""); got != tc.msg {
			t.Fatalf("%q: expected message %q, got %q", tc.pw, tc.msg, got)
		}
	}
}
