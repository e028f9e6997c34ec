package compare

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"expertcof/internal/analyses"
	"expertcof/internal/analysis"
)

type countingRepo struct {
	*analyses.MemoryRepo
	calls int
	err   error
}

func (r *countingRepo) GetByIDs(ctx context.Context, ids []string) ([]analyses.Record, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.MemoryRepo.GetByIDs(ctx, ids)
}

func seed(t *testing.T) *countingRepo {
	t.Helper()
	repo := &countingRepo{MemoryRepo: analyses.NewMemoryRepo()}
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []analyses.Record{
		{
			ID: "a", FranchiseName: "Alpha", CreatedAt: base,
			RiskAnalysis: []byte(`{
				"score": 85,
				"financials": {"initial_investment": "R$ 100.000"},
				"risks": [
					{"severity": "high", "title": "Multa"},
					{"severity": "medium", "title": "M1"},
					{"severity": "medium", "title": "M2"},
					{"severity": "medium", "title": "M3"},
					{"severity": "medium", "title": "M4"},
					{"severity": "medium", "title": "M5"}
				],
				"missingClauses": ["Cláusula de sucessão familiar", "Foro"]
			}`),
		},
		{ID: "b", FranchiseName: "Beta", CreatedAt: base.Add(time.Hour), RiskAnalysis: []byte(`{"score": 40}`)},
		{ID: "c", FranchiseName: "Gamma", CreatedAt: base.Add(2 * time.Hour), RiskAnalysis: []byte(`null`)},
	}
	for _, rec := range records {
		if _, err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	return repo
}

func TestAssembleFollowsSelectionOrder(t *testing.T) {
	repo := seed(t)
	got, err := NewAssembler(repo).Assemble(context.Background(), []string{"b", "a", "b"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got.Empty || len(got.Columns) != 2 {
		t.Fatalf("expected two columns, got %+v", got)
	}
	if got.Columns[0].ID != "b" || got.Columns[1].ID != "a" || got.Columns[1].Position != 2 {
		t.Fatalf("unexpected column order %+v", got.Columns)
	}
	if repo.calls != 1 {
		t.Fatalf("expected one batch fetch, got %d", repo.calls)
	}
}

func TestAssembleColumnContents(t *testing.T) {
	got, err := NewAssembler(seed(t)).Assemble(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	alpha, beta := got.Columns[0], got.Columns[1]

	if alpha.Score != "85/100" || alpha.Band != analysis.BandGood {
		t.Fatalf("unexpected alpha score %q %s", alpha.Score, alpha.Band)
	}
	if alpha.Financials[0].Value != "R$ 100.000" || alpha.Financials[1].Value != analysis.Placeholder {
		t.Fatalf("unexpected financials %+v", alpha.Financials)
	}
	if alpha.Financials[3].Label != "Fundo Propaganda" {
		t.Fatalf("expected compact labels, got %q", alpha.Financials[3].Label)
	}
	if diff := cmp.Diff([]string{"Multa"}, alpha.HighRisks); diff != "" {
		t.Fatalf("high risks mismatch (-want +got):\n%s", diff)
	}
	if alpha.MediumLabel != "5 Identificados" || len(alpha.MediumPreview) != 3 || alpha.MediumMore != "+ 2 outros" {
		t.Fatalf("unexpected medium risks %+v", alpha)
	}
	if diff := cmp.Diff([]string{"Cláusula de sucessão...", "Foro"}, alpha.Clauses); diff != "" {
		t.Fatalf("clauses mismatch (-want +got):\n%s", diff)
	}

	if beta.Band != analysis.BandPoor || beta.HighRisksText() != NoHighRisks || beta.ClausesText() != ClausesComplete {
		t.Fatalf("unexpected beta column %+v", beta)
	}
	if beta.MediumMore != "" {
		t.Fatalf("expected no remainder, got %q", beta.MediumMore)
	}
}

func TestAssembleMalformedPayloadUsesPlaceholder(t *testing.T) {
	got, err := NewAssembler(seed(t)).Assemble(context.Background(), []string{"c", "b"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got.Columns[0].Score != analysis.Placeholder || got.Columns[0].Band != "" {
		t.Fatalf("expected placeholder score, got %+v", got.Columns[0])
	}
}

func TestAssembleNeedsTwoIDs(t *testing.T) {
	repo := seed(t)
	for _, ids := range [][]string{nil, {"a"}, {"a", "a"}} {
		got, err := NewAssembler(repo).Assemble(context.Background(), ids)
		if err != nil {
			t.Fatalf("Assemble: %v", err)
		}
		if !got.Empty || got.Message != EmptyMessage {
			t.Fatalf("expected empty state for %v, got %+v", ids, got)
		}
	}
	if repo.calls != 0 {
		t.Fatalf("expected no fetch, got %d", repo.calls)
	}
}

func TestAssembleReportsMissing(t *testing.T) {
	got, err := NewAssembler(seed(t)).Assemble(context.Background(), []string{"a", "zz"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(got.Columns) != 1 || len(got.Missing) != 1 || got.Missing[0] != "zz" {
		t.Fatalf("unexpected comparison %+v", got)
	}

	got, err = NewAssembler(seed(t)).Assemble(context.Background(), []string{"x", "y"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !got.Empty {
		t.Fatalf("expected empty state when nothing was found")
	}
}

func TestAssembleLoadError(t *testing.T) {
	repo := seed(t)
	repo.err = analyses.ErrLoadFailed
	if _, err := NewAssembler(repo).Assemble(context.Background(), []string{"a", "b"}); !errors.Is(err, analyses.ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed, got %v", err)
	}
}

func TestCompareHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(NewAssembler(seed(t))).RegisterRoutes(router.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/compare?ids=a,b", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"franchiseName":"Alpha"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestAssembleForSkipsOtherOwners(t *testing.T) {
	repo := seed(t)
	ctx := context.Background()
	if _, err := repo.Create(ctx, analyses.Record{ID: "mine", UserID: "u1", RiskAnalysis: []byte(`{"score":70}`)}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, analyses.Record{ID: "theirs", UserID: "u2", RiskAnalysis: []byte(`{"score":90}`)}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := NewAssembler(repo).AssembleFor(ctx, "u1", []string{"mine", "theirs", "a"})
	if err != nil {
		t.Fatalf("AssembleFor: %v", err)
	}
	if len(got.Columns) != 2 || got.Columns[0].ID != "mine" || got.Columns[1].ID != "a" {
		t.Fatalf("unexpected columns %+v", got.Columns)
	}
	if diff := cmp.Diff([]string{"theirs"}, got.Missing); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleThreeColumnsInGivenOrder(t *testing.T) {
	repo := seed(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"o1", "o2", "o3"} {
		rec := analyses.Record{ID: id, UserID: "u1", FranchiseName: "Owned " + id, CreatedAt: base.Add(time.Duration(i) * time.Hour), RiskAnalysis: []byte(`{"score":60}`)}
		if _, err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := NewAssembler(repo).AssembleFor(ctx, "u1", []string{"o3", "o1", "o2"})
	if err != nil {
		t.Fatalf("AssembleFor: %v", err)
	}
	if got.Empty || len(got.Missing) != 0 {
		t.Fatalf("unexpected comparison %+v", got)
	}
	var order []string
	var positions []int
	for _, col := range got.Columns {
		order = append(order, col.ID)
		positions = append(positions, col.Position)
	}
	if diff := cmp.Diff([]string{"o3", "o1", "o2"}, order); diff != "" {
		t.Fatalf("column order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, positions); diff != "" {
		t.Fatalf("positions mismatch (-want +got):\n%s", diff)
	}
	if repo.calls != 1 {
		t.Fatalf("expected one batch fetch, got %d", repo.calls)
	}
}

func TestAssembleReportsIDsPastTheCap(t *testing.T) {
	repo := seed(t)
	if _, err := repo.Create(context.Background(), analyses.Record{ID: "d", FranchiseName: "Delta", RiskAnalysis: []byte(`{"score":50}`)}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := NewAssembler(repo).Assemble(context.Background(), []string{"c", "a", "b", "a", "d", "", "d"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(got.Columns) != MaxSelection {
		t.Fatalf("expected %d columns, got %d", MaxSelection, len(got.Columns))
	}
	if got.Columns[0].ID != "c" || got.Columns[2].ID != "b" {
		t.Fatalf("unexpected column order %+v", got.Columns)
	}
	if diff := cmp.Diff([]string{"d"}, got.Missing); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
}
