package postal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
)

func viaCEP(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		switch r.URL.Path {
		case "/ws/01001000/json/":
			_, _ = w.Write([]byte(`{"cep":"01001-000","logradouro":"Praça da Sé","bairro":"Sé","localidade":"São Paulo","uf":"SP"}`))
		case "/ws/99999999/json/":
			_, _ = w.Write([]byte(`{"erro":true}`))
		case "/ws/88888888/json/":
			_, _ = w.Write([]byte(`{"erro":"true"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLookupFound(t *testing.T) {
	var calls int32
	srv := viaCEP(t, &calls)

	got, err := New(srv.URL, srv.Client()).Lookup(context.Background(), "01001-000")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	want := Address{PostalCode: "01001-000", Street: "Praça da Sé", District: "Sé", City: "São Paulo", State: "SP"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("address mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupNotFound(t *testing.T) {
	var calls int32
	srv := viaCEP(t, &calls)
	c := New(srv.URL, srv.Client())

	for _, code := range []string{"99999-999", "88888888"} {
		_, err := c.Lookup(context.Background(), code)
		if !errors.Is(err, ErrPostalCodeNotFound) {
			t.Fatalf("%s: expected not found, got %v", code, err)
		}
		if UserMessage(err) != "CEP não encontrado." {
			t.Fatalf("unexpected message %q", UserMessage(err))
		}
	}
}

func TestLookupRejectsInvalidWithoutCall(t *testing.T) {
	var calls int32
	srv := viaCEP(t, &calls)
	c := New(srv.URL, srv.Client())

	for _, code := range []string{"", "1234567", "123456789", "abc"} {
		if _, err := c.Lookup(context.Background(), code); !errors.Is(err, ErrInvalidPostalCode) {
			t.Fatalf("%q: expected invalid, got %v", code, err)
		}
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no network calls, got %d", calls)
	}
}

func TestHandlerStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var calls int32
	srv := viaCEP(t, &calls)

	r := gin.New()
	NewHandler(New(srv.URL, srv.Client())).RegisterRoutes(r.Group("/api/v1"))

	cases := map[string]int{
		"01001000": http.StatusOK,
		"99999999": http.StatusNotFound,
		"123":      http.StatusBadRequest,
		"12345678": http.StatusBadGateway,
	}
	for code, want := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/postal/"+code, nil))
		if w.Code != want {
			t.Fatalf("%s: expected %d, got %d", code, want, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/postal/01001000", nil))
	var addr Address
	if err := json.Unmarshal(w.Body.Bytes(), &addr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if addr.City != "São Paulo" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}
