package preferences

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func themeRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(false).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestPutThemeSetsCookie(t *testing.T) {
	r := themeRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/preferences/theme", strings.NewReader(`{"theme":"dark"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "theme=dark") {
		t.Fatalf("expected theme cookie, got %q", w.Header().Get("Set-Cookie"))
	}
}

func TestPutThemeToggleUsesCookie(t *testing.T) {
	r := themeRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/preferences/theme", strings.NewReader(`{"toggle":true}`))
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	r.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), `"light"`) {
		t.Fatalf("expected light after toggle, got %s", w.Body.String())
	}
}

func TestGetThemeDefaultsAndRejectsInvalid(t *testing.T) {
	r := themeRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/preferences/theme", nil))
	if !strings.Contains(w.Body.String(), `"light"`) {
		t.Fatalf("expected light default, got %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/preferences/theme", strings.NewReader(`{"theme":"blue"}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
