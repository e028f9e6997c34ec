package usage

import (
	"context"
	"errors"
	"fmt"
	"math"

	"expertcof/internal/analyses"
	"expertcof/internal/users"
)

// Summarize builds a Summary from the caller's plan and records.
func Summarize(plan users.Plan, records []analyses.Record) Summary {
	s := Summary{
		Plan:          plan,
		PlanLabel:     plan.Label(),
		TotalAnalyses: len(records),
	}
	if len(records) > 0 {
		sum := 0
		for _, rec := range records {
			sum += rec.Result().Score
		}
		s.AverageScore = int(math.Round(float64(sum) / float64(len(records))))
	}

	if plan == users.PlanPremium {
		s.Unlimited = true
		s.PlanNote = noteUnlimited
		return s
	}
	s.PlanNote = noteFree
	s.Limit = FreeLimit
	s.Remaining = max(FreeLimit-len(records), 0)
	return s
}

// Service loads what Summarize needs.
type Service struct {
	Analyses analyses.Repo
	Users    users.Repo
}

// NewService constructs a Service.
func NewService(analysisRepo analyses.Repo, userRepo users.Repo) *Service {
	return &Service{Analyses: analysisRepo, Users: userRepo}
}

// Get returns the caller's summary. A missing profile row counts as the
// free plan.
func (s *Service) Get(ctx context.Context, userID string) (Summary, error) {
	plan := users.PlanFree
	p, err := s.Users.Get(ctx, userID)
	switch {
	case err == nil:
		plan = p.Plan
	case errors.Is(err, users.ErrNotFound):
	default:
		return Summary{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	records, err := s.Analyses.ListForUser(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return Summarize(plan, records), nil
}
