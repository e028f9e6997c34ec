package analyses

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"expertcof/internal/shared/storage/rest"
)

const (
	table       = "analyses"
	restColumns = "id,user_id,franchise_name,file_path,status,risk_analysis,extracted_data,created_at"
)

// RESTRepo reads records through the hosted PostgREST endpoint with the
// caller's token, so row-level policies decide visibility.
type RESTRepo struct {
	Client *rest.Client
}

type restRow struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	FranchiseName *string         `json:"franchise_name"`
	FilePath      *string         `json:"file_path"`
	Status        *string         `json:"status"`
	RiskAnalysis  json.RawMessage `json:"risk_analysis"`
	ExtractedData json.RawMessage `json:"extracted_data"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (row restRow) record() Record {
	rec := Record{
		ID:           row.ID,
		UserID:       row.UserID,
		TaxID:        taxIDFrom(row.ExtractedData),
		RiskAnalysis: row.RiskAnalysis,
		CreatedAt:    row.CreatedAt,
		Status:       StatusCompleted,
	}
	if row.FranchiseName != nil {
		rec.FranchiseName = *row.FranchiseName
	}
	if row.FilePath != nil {
		rec.FilePath = *row.FilePath
	}
	if row.Status != nil {
		rec.Status = *row.Status
	}
	return rec
}

// ListRecent returns up to limit records, newest first.
func (r *RESTRepo) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	q := url.Values{}
	q.Set("order", "created_at.desc")
	q.Set("limit", strconv.Itoa(limit))
	return r.selectRows(ctx, q)
}

// ListForUser returns every record owned by userID, newest first.
func (r *RESTRepo) ListForUser(ctx context.Context, userID string) ([]Record, error) {
	q := url.Values{}
	q.Set("user_id", rest.Eq(userID))
	q.Set("order", "created_at.desc")
	return r.selectRows(ctx, q)
}

// GetByIDs returns records whose id is in ids in one request.
func (r *RESTRepo) GetByIDs(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return []Record{}, nil
	}
	q := url.Values{}
	q.Set("id", rest.In(ids))
	return r.selectRows(ctx, q)
}

// GetByID returns one record.
func (r *RESTRepo) GetByID(ctx context.Context, id string) (Record, error) {
	q := url.Values{}
	q.Set("id", rest.Eq(id))
	q.Set("limit", "1")
	recs, err := r.selectRows(ctx, q)
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, ErrNotFound
	}
	return recs[0], nil
}

func (r *RESTRepo) selectRows(ctx context.Context, q url.Values) ([]Record, error) {
	q.Set("select", restColumns)
	var rows []restRow
	if err := r.Client.Select(ctx, table, q, &rows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out, nil
}

var _ Repo = (*RESTRepo)(nil)
