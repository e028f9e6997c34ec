package users

import (
	"context"
	"fmt"
	"net/url"

	"expertcof/internal/shared/storage/rest"
)

const table = "users"

// RESTRepo reads and writes the users table through PostgREST.
type RESTRepo struct {
	Client *rest.Client
}

type restRow struct {
	ID         string  `json:"id"`
	Email      *string `json:"email"`
	Name       *string `json:"name"`
	Plan       *string `json:"plan"`
	CPF        *string `json:"cpf"`
	Phone      *string `json:"phone"`
	ZipCode    *string `json:"zip_code"`
	Address    *string `json:"address"`
	Number     *string `json:"number"`
	Complement *string `json:"complement"`
	District   *string `json:"district"`
	City       *string `json:"city"`
	State      *string `json:"state"`
}

func (row restRow) profile() Profile {
	return Profile{
		ID:         row.ID,
		Email:      deref(row.Email),
		Name:       deref(row.Name),
		Plan:       ParsePlan(deref(row.Plan)),
		TaxID:      deref(row.CPF),
		Phone:      deref(row.Phone),
		ZipCode:    deref(row.ZipCode),
		Address:    deref(row.Address),
		Number:     deref(row.Number),
		Complement: deref(row.Complement),
		District:   deref(row.District),
		City:       deref(row.City),
		State:      deref(row.State),
	}
}

type restUpdate struct {
	Name       string `json:"name"`
	CPF        string `json:"cpf"`
	Phone      string `json:"phone"`
	ZipCode    string `json:"zip_code"`
	Address    string `json:"address"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
}

func byID(userID string) url.Values {
	q := url.Values{}
	q.Set("id", rest.Eq(userID))
	return q
}

func (r *RESTRepo) Get(ctx context.Context, userID string) (Profile, error) {
	q := byID(userID)
	q.Set("select", "*")
	q.Set("limit", "1")
	var rows []restRow
	if err := r.Client.Select(ctx, table, q, &rows); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	if len(rows) == 0 {
		return Profile{}, ErrNotFound
	}
	return rows[0].profile(), nil
}

func (r *RESTRepo) UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) (Profile, error) {
	body := restUpdate{
		Name:       u.Name,
		CPF:        u.TaxID,
		Phone:      u.Phone,
		ZipCode:    u.ZipCode,
		Address:    u.Address,
		Number:     u.Number,
		Complement: u.Complement,
		District:   u.District,
		City:       u.City,
		State:      u.State,
	}
	var rows []restRow
	if err := r.Client.Update(ctx, table, byID(userID), body, &rows); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if len(rows) == 0 {
		return Profile{}, ErrNotFound
	}
	return rows[0].profile(), nil
}

func (r *RESTRepo) UpdatePlan(ctx context.Context, userID string, plan Plan) error {
	var rows []restRow
	if err := r.Client.Update(ctx, table, byID(userID), map[string]string{"plan": string(plan)}, &rows); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ Repo = (*RESTRepo)(nil)
