package analyses

import "context"

// Repo reads analysis records. Listings are newest first.
type Repo interface {
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	ListForUser(ctx context.Context, userID string) ([]Record, error)
	GetByIDs(ctx context.Context, ids []string) ([]Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
}

// Recorder stores a record. Only self-hosted stores implement it; with the
// hosted backend the upload endpoint persists results itself.
type Recorder interface {
	Create(ctx context.Context, rec Record) (Record, error)
}
