package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"expertcof/internal/shared/auth"
)

func TestSelectSendsKeysAndDecodes(t *testing.T) {
	var gotPath, gotQuery, gotKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "a1"}})
	}))
	defer srv.Close()

	client := New(srv.URL, "anon-key", srv.Client())
	ctx := auth.WithAccessToken(context.Background(), "user-token")
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", In([]string{"a1", "a2"}))

	var rows []map[string]string
	if err := client.Select(ctx, "analyses", q, &rows); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if gotPath != "/rest/v1/analyses" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	parsed, _ := url.ParseQuery(gotQuery)
	if parsed.Get("id") != "in.(a1,a2)" {
		t.Fatalf("unexpected id filter %q", parsed.Get("id"))
	}
	if gotKey != "anon-key" || gotAuth != "Bearer user-token" {
		t.Fatalf("unexpected auth headers apikey=%q authorization=%q", gotKey, gotAuth)
	}
	if len(rows) != 1 || rows[0]["id"] != "a1" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestSelectFallsBackToAPIKeyBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	client := New(srv.URL, "anon-key", srv.Client())
	var rows []map[string]any
	if err := client.Select(context.Background(), "users", nil, &rows); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if gotAuth != "Bearer anon-key" {
		t.Fatalf("unexpected authorization %q", gotAuth)
	}
}

func TestUpdateReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if r.Header.Get("Prefer") != "return=representation" {
			t.Errorf("expected Prefer header")
		}
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code":"42501","message":"permission denied"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "anon-key", srv.Client())
	filter := url.Values{}
	filter.Set("id", Eq("user-1"))
	err := client.Update(context.Background(), "users", filter, map[string]string{"plan": "premium"}, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Code != "42501" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestQuoteReservedCharacters(t *testing.T) {
	if got := Eq("a,b"); got != `eq."a,b"` {
		t.Fatalf("unexpected quoting %q", got)
	}
	if got := Eq("plain"); got != "eq.plain" {
		t.Fatalf("unexpected value %q", got)
	}
}
