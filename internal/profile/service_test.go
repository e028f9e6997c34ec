package profile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"expertcof/internal/auth"
	"expertcof/internal/billing"
	"expertcof/internal/users"
)

type stubPasswords struct {
	calls int
	token string
	err   error
}

func (s *stubPasswords) UpdatePassword(ctx context.Context, token *oauth2.Token, password string) error {
	s.calls++
	s.token = token.AccessToken
	return s.err
}

type stubBilling struct {
	price     string
	cancelled string
	err       error
}

func (s *stubBilling) CreateCheckoutSession(ctx context.Context, userID, priceID string) (string, error) {
	s.price = priceID
	return "https://pay.example/session", s.err
}

func (s *stubBilling) CancelSubscription(ctx context.Context, userID string) error {
	if s.err != nil {
		return s.err
	}
	s.cancelled = userID
	return nil
}

func (s *stubBilling) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	return "https://pay.example/portal", s.err
}

func newService(t *testing.T) (*Service, *users.MemoryRepo, *stubPasswords, *stubBilling) {
	t.Helper()
	repo := users.NewMemoryRepo()
	if err := repo.Upsert(context.Background(), "user-1", "ana@example.com", "Ana"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.UpdatePlan(context.Background(), "user-1", users.PlanPremium); err != nil {
		t.Fatalf("UpdatePlan: %v", err)
	}
	pw := &stubPasswords{}
	bill := &stubBilling{}
	svc := &Service{
		Users:      users.NewService(repo),
		Passwords:  pw,
		Billing:    bill,
		PriceID:    "price_123",
		LocalPlans: true,
	}
	return svc, repo, pw, bill
}

func TestChangePasswordValidatesBeforeCallingAuth(t *testing.T) {
	svc, _, pw, _ := newService(t)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, "tok", "abc", "abd"); !errors.Is(err, auth.ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if err := svc.ChangePassword(ctx, "tok", "abc", "abc"); !errors.Is(err, auth.ErrPasswordTooShort) {
		t.Fatalf("expected too short, got %v", err)
	}
	if pw.calls != 0 {
		t.Fatalf("auth called for invalid input")
	}
	if got := PasswordError(auth.ErrPasswordMismatch); got != "As senhas não coincidem." {
		t.Fatalf("unexpected message %q", got)
	}

	if err := svc.ChangePassword(ctx, "", "secret1", "secret1"); !errors.Is(err, auth.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if err := svc.ChangePassword(ctx, "tok", "secret1", "secret1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if pw.calls != 1 || pw.token != "tok" {
		t.Fatalf("unexpected auth call %+v", pw)
	}
}

func TestCancelResetsPlan(t *testing.T) {
	svc, repo, _, bill := newService(t)
	plan, err := svc.Cancel(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if plan != users.PlanFree || bill.cancelled != "user-1" {
		t.Fatalf("unexpected cancel outcome plan=%s cancelled=%q", plan, bill.cancelled)
	}
	p, err := repo.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Plan != users.PlanFree {
		t.Fatalf("expected stored plan free, got %s", p.Plan)
	}
}

func TestCancelFailureKeepsPlan(t *testing.T) {
	svc, repo, _, bill := newService(t)
	bill.err = &billing.RemoteError{Op: billing.OpCancel, Status: 500}
	if _, err := svc.Cancel(context.Background(), "user-1"); err == nil {
		t.Fatalf("expected error")
	}
	p, _ := repo.Get(context.Background(), "user-1")
	if p.Plan != users.PlanPremium {
		t.Fatalf("plan changed after failed cancel: %s", p.Plan)
	}
	if got := SubscriptionError(billing.OpCancel, bill.err); got != "Erro ao cancelar assinatura" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCheckoutUsesConfiguredPrice(t *testing.T) {
	svc, _, _, bill := newService(t)
	url, err := svc.Checkout(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if url == "" || bill.price != "price_123" {
		t.Fatalf("unexpected checkout url=%q price=%q", url, bill.price)
	}

	svc.PriceID = ""
	if _, err := svc.Checkout(context.Background(), "user-1"); !errors.Is(err, ErrMissingPrice) {
		t.Fatalf("expected ErrMissingPrice, got %v", err)
	}
}

func withUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", id)
		c.Set("userEmail", "ana@example.com")
		c.Set("accessToken", "tok")
		c.Next()
	}
}

func TestProfileHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _, _, _ := newService(t)
	router := gin.New()
	router.Use(withUser("user-1"))
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		want   string
	}{
		{"update masks cpf", http.MethodPut, "/api/v1/profile", `{"name":" Ana ","cpf":"12345678901","phone":"11987654321"}`, http.StatusOK, `"cpf":"123.456.789-01"`},
		{"update message", http.MethodPut, "/api/v1/profile", `{"name":"Ana"}`, http.StatusOK, UpdatedMessage},
		{"load", http.MethodGet, "/api/v1/profile", ``, http.StatusOK, `"planLabel":"Profissional"`},
		{"password mismatch", http.MethodPut, "/api/v1/profile/password", `{"password":"secret1","confirmPassword":"secret2"}`, http.StatusBadRequest, "As senhas não coincidem."},
		{"password ok", http.MethodPut, "/api/v1/profile/password", `{"password":"secret1","confirmPassword":"secret1"}`, http.StatusOK, PasswordMessage},
		{"checkout", http.MethodPost, "/api/v1/subscription/checkout", ``, http.StatusOK, `"url":"https://pay.example/session"`},
		{"cancel", http.MethodPost, "/api/v1/subscription/cancel", ``, http.StatusOK, CancelledMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, resp.Code, resp.Body.String())
			}
			if !strings.Contains(resp.Body.String(), tt.want) {
				t.Fatalf("expected %q in %s", tt.want, resp.Body.String())
			}
		})
	}
}

func TestProfileHandlerRequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _, _, _ := newService(t)
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscription/portal", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
