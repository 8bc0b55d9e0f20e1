package models

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

type Customer struct {
	Record
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Gender  Gender `json:"gender"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// CreateCustomerRequest represents the request body for creating a customer
type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Gender  Gender `json:"gender"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (r *CreateCustomerRequest) Fields() map[string]any {
	return map[string]any{
		"name":    r.Name,
		"phone":   r.Phone,
		"email":   r.Email,
		"gender":  string(r.Gender),
		"address": r.Address,
		"notes":   r.Notes,
	}
}

// UpdateCustomerRequest carries only the fields being changed.
type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Gender  *Gender `json:"gender,omitempty"`
	Address *string `json:"address,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

func (r *UpdateCustomerRequest) Fields() map[string]any {
	m := map[string]any{}
	setIf(m, "name", r.Name)
	setIf(m, "phone", r.Phone)
	setIf(m, "email", r.Email)
	if r.Gender != nil {
		m["gender"] = string(*r.Gender)
	}
	setIf(m, "address", r.Address)
	setIf(m, "notes", r.Notes)
	return m
}
