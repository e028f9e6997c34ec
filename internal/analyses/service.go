package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"expertcof/internal/analysis"
	"expertcof/internal/shared/telemetry"
)

// Service resolves stored records into normalized results.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Record returns the stored record for id. Hosted stores filter by row
// policy; the owner check covers self-hosted ones.
func (s *Service) Record(ctx context.Context, userID, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrNotFound
	}
	rec, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			telemetry.Error("analyses.load_failed", map[string]any{
				"analysis_id": id,
				"error":       err,
			})
		}
		return Record{}, fmt.Errorf("load analysis %s: %w", id, err)
	}
	if rec.UserID != "" && userID != "" && rec.UserID != userID {
		return Record{}, fmt.Errorf("load analysis %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

// Result returns the normalized analysis for id.
func (s *Service) Result(ctx context.Context, userID, id string) (analysis.Result, error) {
	rec, err := s.Record(ctx, userID, id)
	if err != nil {
		return analysis.Result{}, err
	}
	return rec.Result(), nil
}
