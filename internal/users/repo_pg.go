package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

const profileColumns = `id, email, name, plan, cpf, phone, zip_code, address, number, complement, district, city, state`

func (r *PGRepo) Upsert(ctx context.Context, id, email, name string) error {
	const query = `
INSERT INTO users (id, email, name, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  name = COALESCE(users.name, EXCLUDED.name),
  updated_at = now()`
	if _, err := r.DB.ExecContext(ctx, query, id, email, nullableString(name)); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}

func (r *PGRepo) Get(ctx context.Context, userID string) (Profile, error) {
	query := `
SELECT ` + profileColumns + `
FROM users
WHERE id = $1
LIMIT 1`
	p, err := scanProfile(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return p, nil
}

func (r *PGRepo) UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) (Profile, error) {
	query := `
UPDATE users SET
  name = $2, cpf = $3, phone = $4, zip_code = $5, address = $6,
  number = $7, complement = $8, district = $9, city = $10, state = $11,
  updated_at = now()
WHERE id = $1
RETURNING ` + profileColumns
	p, err := scanProfile(r.DB.QueryRowContext(ctx, query,
		userID,
		nullableString(u.Name),
		nullableString(u.TaxID),
		nullableString(u.Phone),
		nullableString(u.ZipCode),
		nullableString(u.Address),
		nullableString(u.Number),
		nullableString(u.Complement),
		nullableString(u.District),
		nullableString(u.City),
		nullableString(u.State),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return p, nil
}

func (r *PGRepo) UpdatePlan(ctx context.Context, userID string, plan Plan) error {
	const query = `UPDATE users SET plan = $2, updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID, string(plan))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProfile(row *sql.Row) (Profile, error) {
	var (
		p                                    Profile
		name, plan, cpf, phone, zip, address sql.NullString
		number, complement, district         sql.NullString
		city, state                          sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Email, &name, &plan, &cpf, &phone, &zip, &address, &number, &complement, &district, &city, &state); err != nil {
		return Profile{}, err
	}
	p.Name = name.String
	p.Plan = ParsePlan(plan.String)
	p.TaxID = cpf.String
	p.Phone = phone.String
	p.ZipCode = zip.String
	p.Address = address.String
	p.Number = number.String
	p.Complement = complement.String
	p.District = district.String
	p.City = city.String
	p.State = state.String
	return p, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var (
	_ Repo     = (*PGRepo)(nil)
	_ Upserter = (*PGRepo)(nil)
)
