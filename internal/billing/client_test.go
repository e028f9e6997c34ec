package billing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"expertcof/internal/shared/auth"
)

func TestCreateCheckoutSessionPostsUserAndPrice(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/create-checkout-session" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("expected forwarded token, got %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"url":"https://checkout.example/s/1"}`))
	}))
	defer srv.Close()

	ctx := auth.WithAccessToken(context.Background(), "tok")
	url, err := New(srv.URL, srv.Client()).CreateCheckoutSession(ctx, "user-1", "price_1")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if url != "https://checkout.example/s/1" {
		t.Fatalf("unexpected url %q", url)
	}
	if got["user_id"] != "user-1" || got["price_id"] != "price_1" {
		t.Fatalf("unexpected body %+v", got)
	}
}

func TestVerifyCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["session_id"] != "cs_1" {
			t.Errorf("unexpected body %+v", body)
		}
		_, _ = w.Write([]byte(`{"status":"success","plan":"premium"}`))
	}))
	defer srv.Close()

	v, err := New(srv.URL, srv.Client()).VerifyCheckoutSession(context.Background(), "cs_1", "user-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !v.Confirmed() || v.Plan != "premium" {
		t.Fatalf("unexpected verification %+v", v)
	}
}

func TestRemoteErrorMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/cancel-subscription":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"Nenhuma assinatura ativa"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`oops`))
		}
	}))
	defer srv.Close()
	c := New(srv.URL, srv.Client())

	err := c.CancelSubscription(context.Background(), "user-1")
	var remote *RemoteError
	if !errors.As(err, &remote) || remote.Status != http.StatusBadRequest {
		t.Fatalf("expected remote error, got %v", err)
	}
	if msg := UserMessage(OpCancel, err); msg != "Nenhuma assinatura ativa" {
		t.Fatalf("unexpected message %q", msg)
	}

	_, err = c.CreatePortalSession(context.Background(), "user-1")
	if msg := UserMessage(OpPortal, err); msg != "Erro ao acessar portal de assinatura" {
		t.Fatalf("unexpected fallback %q", msg)
	}
}

func TestMissingURLAndUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	c := New(srv.URL, srv.Client())

	if _, err := c.CreatePortalSession(context.Background(), "user-1"); !errors.Is(err, ErrMissingURL) {
		t.Fatalf("expected ErrMissingURL, got %v", err)
	}
	if err := c.CancelSubscription(context.Background(), " "); !errors.Is(err, ErrMissingUser) {
		t.Fatalf("expected ErrMissingUser, got %v", err)
	}
}
