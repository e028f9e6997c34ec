package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepoOrdering(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, owner := range []string{"u1", "u2", "u1"} {
		if _, err := repo.Create(ctx, Record{ID: string(rune('a' + i)), UserID: owner, CreatedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	mine, err := repo.ListForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != "c" || mine[1].ID != "a" {
		t.Fatalf("unexpected order %+v", mine)
	}

	recent, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "c" {
		t.Fatalf("unexpected recent %+v", recent)
	}

	got, err := repo.GetByIDs(ctx, []string{"b", "zz", "b"})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one record, got %d", len(got))
	}
	if _, err := repo.GetByID(ctx, "zz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepoHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemoryRepo().ListForUser(ctx, "u1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRecordResultFillsGaps(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := Record{
		ID:            "a1",
		FranchiseName: "Column Name",
		TaxID:         "11.111.111/0001-11",
		RiskAnalysis:  []byte(`{"score": 55, "risks": [{"severity": "HIGH", "title": "t"}]}`),
		CreatedAt:     created,
	}
	res := rec.Result()
	if res.ID != "a1" || res.FranchiseName != "Column Name" || res.TaxID != "11.111.111/0001-11" {
		t.Fatalf("unexpected identity %+v", res)
	}
	if res.UploadDate != "2026-03-01T10:00:00Z" {
		t.Fatalf("unexpected upload date %q", res.UploadDate)
	}
	if len(res.Risks) != 1 || res.Risks[0].Severity != "high" {
		t.Fatalf("unexpected risks %+v", res.Risks)
	}
	if !rec.PayloadValid() {
		t.Fatalf("expected payload to be valid")
	}
}

func TestServiceResultChecksOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	rec, err := repo.Create(ctx, Record{UserID: "user-1", RiskAnalysis: json.RawMessage(`{"score":64}`)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	svc := NewService(repo)

	res, err := svc.Result(ctx, "user-1", rec.ID)
	if err != nil || res.Score != 64 || res.ID != rec.ID {
		t.Fatalf("unexpected result %+v %v", res, err)
	}
	if _, err := svc.Result(ctx, "user-2", rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
	if _, err := svc.Result(ctx, "user-1", " "); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank id, got %v", err)
	}
}
