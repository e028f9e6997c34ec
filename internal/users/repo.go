package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrLoadFailed = errors.New("failed to load profile")
	ErrSaveFailed = errors.New("failed to save profile")
)

// Repo reads and writes user rows. Each write is a single statement, so a
// returned error means nothing was applied.
type Repo interface {
	Get(ctx context.Context, userID string) (Profile, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (Profile, error)
	UpdatePlan(ctx context.Context, userID string, plan Plan) error
}

// Upserter creates the row for a signed-in identity. The hosted backend
// creates rows itself; self-hosted stores implement this instead.
type Upserter interface {
	Upsert(ctx context.Context, id, email, name string) error
}
