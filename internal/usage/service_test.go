package usage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"expertcof/internal/analyses"
	"expertcof/internal/users"
)

func record(t *testing.T, repo *analyses.MemoryRepo, userID string, score any) {
	t.Helper()
	payload, _ := json.Marshal(map[string]any{"score": score})
	if _, err := repo.Create(context.Background(), analyses.Record{
		UserID:       userID,
		RiskAnalysis: payload,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestSummarizeFreePlan(t *testing.T) {
	recs := []analyses.Record{
		{RiskAnalysis: json.RawMessage(`{"score":80}`)},
		{RiskAnalysis: json.RawMessage(`{"score":65}`)},
	}
	got := Summarize(users.PlanFree, recs)
	want := Summary{
		Plan:          users.PlanFree,
		PlanLabel:     "Gratuito",
		PlanNote:      "Plano Gratuito",
		TotalAnalyses: 2,
		AverageScore:  73,
		Limit:         3,
		Remaining:     1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if got.LimitReached() {
		t.Fatalf("expected remaining analyses")
	}
}

func TestSummarizeMissingScoreCountsAsZero(t *testing.T) {
	recs := []analyses.Record{
		{RiskAnalysis: json.RawMessage(`{"score":90}`)},
		{RiskAnalysis: nil},
		{RiskAnalysis: json.RawMessage(`{"score":91}`)},
		{RiskAnalysis: json.RawMessage(`{}`)},
	}
	got := Summarize(users.PlanFree, recs)
	if got.AverageScore != 45 {
		t.Fatalf("expected 45, got %d", got.AverageScore)
	}
	if got.Remaining != 0 || !got.LimitReached() {
		t.Fatalf("expected limit reached, got %+v", got)
	}
}

func TestSummarizePremiumIsUnlimited(t *testing.T) {
	got := Summarize(users.PlanPremium, nil)
	if !got.Unlimited || got.Limit != 0 || got.LimitReached() {
		t.Fatalf("unexpected premium summary %+v", got)
	}
	if got.PlanLabel != "Profissional" || got.PlanNote != "Análises ilimitadas" {
		t.Fatalf("unexpected labels %+v", got)
	}
	if got.AverageScore != 0 {
		t.Fatalf("expected 0 average without records, got %d", got.AverageScore)
	}
}

func TestServiceGetDefaultsToFreeWithoutProfile(t *testing.T) {
	ar := analyses.NewMemoryRepo()
	record(t, ar, "user-1", 70)
	record(t, ar, "user-2", 10)

	svc := NewService(ar, users.NewMemoryRepo())
	got, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Plan != users.PlanFree || got.TotalAnalyses != 1 || got.AverageScore != 70 {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestServiceGetUsesStoredPlan(t *testing.T) {
	ctx := context.Background()
	ur := users.NewMemoryRepo()
	if err := ur.Upsert(ctx, "user-1", "a@b.com", "Ana"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := ur.UpdatePlan(ctx, "user-1", users.PlanPremium); err != nil {
		t.Fatalf("plan: %v", err)
	}

	got, err := NewService(analyses.NewMemoryRepo(), ur).Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Unlimited {
		t.Fatalf("expected unlimited plan, got %+v", got)
	}
}

func TestServiceGetWrapsLoadFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(analyses.NewMemoryRepo(), users.NewMemoryRepo()).Get(ctx, "user-1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
