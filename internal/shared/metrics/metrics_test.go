package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	before := testutil.ToFloat64(uploadsTotal.WithLabelValues("success"))
	IncUpload("success")
	if got := testutil.ToFloat64(uploadsTotal.WithLabelValues("success")); got != before+1 {
		t.Fatalf("expected upload counter %v, got %v", before+1, got)
	}
	IncExport("xlsx", "success")
	ObserveUploadDurationMs(1200)
	ObserveRemoteCall("analyzer", "200", 300*time.Millisecond)

	r := gin.New()
	r.GET("/metrics", Handler())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, name := range []string{"cof_uploads_total", "cof_exports_total", "cof_upload_duration_ms", "cof_remote_call_duration_seconds"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}

func TestRegisterDBExposesPoolStats(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	RegisterDB(db, "records")
	RegisterDB(db, "records")
	RegisterDB(nil, "ignored")

	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == "go_sql_open_connections" {
			return
		}
	}
	t.Fatalf("expected go_sql_open_connections to be registered")
}
