package users

import (
	"context"
	"errors"
	"strings"
)

var ErrMissingUser = errors.New("user id is required")

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Identity is what the access token says about the caller.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// Profile loads the caller's row. Self-hosted stores get the row created on
// first sight; the token's email fills a blank column.
func (s *Service) Profile(ctx context.Context, who Identity) (Profile, error) {
	if strings.TrimSpace(who.ID) == "" {
		return Profile{}, ErrMissingUser
	}
	p, err := s.Repo.Get(ctx, who.ID)
	if errors.Is(err, ErrNotFound) {
		up, ok := s.Repo.(Upserter)
		if !ok {
			return Profile{}, err
		}
		if err := up.Upsert(ctx, who.ID, who.Email, who.Name); err != nil {
			return Profile{}, err
		}
		p, err = s.Repo.Get(ctx, who.ID)
	}
	if err != nil {
		return Profile{}, err
	}
	if p.Email == "" {
		p.Email = who.Email
	}
	return p, nil
}

// UpdateProfile masks CPF and phone before saving.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, ErrMissingUser
	}
	return s.Repo.UpdateProfile(ctx, userID, update.Masked())
}

// SetPlan records the caller's plan.
func (s *Service) SetPlan(ctx context.Context, userID string, plan Plan) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	return s.Repo.UpdatePlan(ctx, userID, plan)
}
