package users

import (
	"context"
	"sync"
)

// MemoryRepo keeps profiles in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]Profile
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]Profile)}
}

// Upsert creates the row if missing and refreshes email and an empty name.
func (r *MemoryRepo) Upsert(ctx context.Context, id, email, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.users[id]
	if !ok {
		p = Profile{ID: id, Plan: PlanFree}
	}
	p.Email = email
	if p.Name == "" {
		p.Name = name
	}
	r.users[id] = p
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.users[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.users[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	p = update.Apply(p)
	r.users[userID] = p
	return p, nil
}

func (r *MemoryRepo) UpdatePlan(ctx context.Context, userID string, plan Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	p.Plan = plan
	r.users[userID] = p
	return nil
}

var (
	_ Repo     = (*MemoryRepo)(nil)
	_ Upserter = (*MemoryRepo)(nil)
)
