package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `
SELECT id, user_id, franchise_name, file_path, status, risk_analysis, extracted_data->>'cnpj', created_at
FROM analyses`

// Create inserts a record.
func (r *PGRepo) Create(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = StatusCompleted
	}
	var extracted any
	if rec.TaxID != "" {
		payload, err := json.Marshal(map[string]string{"cnpj": rec.TaxID})
		if err != nil {
			return Record{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
		}
		extracted = string(payload)
	}
	var risk any
	if len(rec.RiskAnalysis) > 0 {
		risk = string(rec.RiskAnalysis)
	}

	const query = `
INSERT INTO analyses (id, user_id, franchise_name, file_path, status, risk_analysis, extracted_data, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		nullString(rec.FranchiseName),
		nullString(rec.FilePath),
		rec.Status,
		risk,
		extracted,
		rec.CreatedAt,
	)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return rec, nil
}

// ListRecent returns up to limit records, newest first.
func (r *PGRepo) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.query(ctx, selectColumns+`
ORDER BY created_at DESC
LIMIT $1`, limit)
}

// ListForUser returns every record owned by userID, newest first.
func (r *PGRepo) ListForUser(ctx context.Context, userID string) ([]Record, error) {
	return r.query(ctx, selectColumns+`
WHERE user_id = $1
ORDER BY created_at DESC`, userID)
}

// GetByIDs returns records whose id is in ids. Ids that are not UUIDs cannot
// match and are dropped before querying.
func (r *PGRepo) GetByIDs(ctx context.Context, ids []string) ([]Record, error) {
	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		args = append(args, id)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}
	if len(args) == 0 {
		return []Record{}, nil
	}
	return r.query(ctx, selectColumns+`
WHERE id IN (`+strings.Join(placeholders, ", ")+`)`, args...)
}

// GetByID returns one record.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, ErrNotFound
	}
	recs, err := r.query(ctx, selectColumns+`
WHERE id = $1
LIMIT 1`, id)
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, ErrNotFound
	}
	return recs[0], nil
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return out, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec           Record
		franchiseName sql.NullString
		filePath      sql.NullString
		riskAnalysis  sql.NullString
		taxID         sql.NullString
	)
	if err := rows.Scan(
		&rec.ID,
		&rec.UserID,
		&franchiseName,
		&filePath,
		&rec.Status,
		&riskAnalysis,
		&taxID,
		&rec.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	rec.FranchiseName = franchiseName.String
	rec.FilePath = filePath.String
	rec.TaxID = taxID.String
	if riskAnalysis.Valid {
		rec.RiskAnalysis = json.RawMessage(riskAnalysis.String)
	}
	return rec, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

var (
	_ Repo     = (*PGRepo)(nil)
	_ Recorder = (*PGRepo)(nil)
)
