package users

import "strings"

// Plan is the subscription tier stored on the user row.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// ParsePlan maps a stored value to a Plan; anything but premium is free.
func ParsePlan(raw string) Plan {
	if strings.EqualFold(strings.TrimSpace(raw), string(PlanPremium)) {
		return PlanPremium
	}
	return PlanFree
}

// Label is the pt-BR plan name shown on the profile screen.
func (p Plan) Label() string {
	if p == PlanPremium {
		return "Profissional"
	}
	return "Gratuito"
}

// Profile is the editable user row.
type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Plan       Plan   `json:"plan"`
	TaxID      string `json:"cpf"`
	Phone      string `json:"phone"`
	ZipCode    string `json:"zipCode"`
	Address    string `json:"address"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
}

// ProfileUpdate carries the fields a user may change. Plan and email are
// not part of it.
type ProfileUpdate struct {
	Name       string `json:"name"`
	TaxID      string `json:"cpf"`
	Phone      string `json:"phone"`
	ZipCode    string `json:"zipCode"`
	Address    string `json:"address"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
}

// Apply copies the update onto p.
func (u ProfileUpdate) Apply(p Profile) Profile {
	p.Name = u.Name
	p.TaxID = u.TaxID
	p.Phone = u.Phone
	p.ZipCode = u.ZipCode
	p.Address = u.Address
	p.Number = u.Number
	p.Complement = u.Complement
	p.District = u.District
	p.City = u.City
	p.State = u.State
	return p
}

// Masked returns the update with CPF and phone formatted for storage.
func (u ProfileUpdate) Masked() ProfileUpdate {
	u.Name = strings.TrimSpace(u.Name)
	u.TaxID = MaskCPF(u.TaxID)
	u.Phone = MaskPhone(u.Phone)
	return u
}
