package models

// UserProfile holds per-user defaults and business details shown on receipts.
type UserProfile struct {
	Record
	Name            string `json:"name"`
	Email           string `json:"email"`
	DefaultUnit     Unit   `json:"defaultUnit"`
	DefaultCurrency string `json:"defaultCurrency"`
	BusinessName    string `json:"businessName,omitempty"`
	BusinessPhone   string `json:"businessPhone,omitempty"`
	BusinessAddress string `json:"businessAddress,omitempty"`
}

type UpdateProfileRequest struct {
	Name            *string `json:"name,omitempty"`
	DefaultUnit     *Unit   `json:"defaultUnit,omitempty"`
	DefaultCurrency *string `json:"defaultCurrency,omitempty"`
	BusinessName    *string `json:"businessName,omitempty"`
	BusinessPhone   *string `json:"businessPhone,omitempty"`
	BusinessAddress *string `json:"businessAddress,omitempty"`
}

func (r *UpdateProfileRequest) Fields() map[string]any {
	m := map[string]any{}
	setIf(m, "name", r.Name)
	if r.DefaultUnit != nil {
		m["defaultUnit"] = string(*r.DefaultUnit)
	}
	setIf(m, "defaultCurrency", r.DefaultCurrency)
	setIf(m, "businessName", r.BusinessName)
	setIf(m, "businessPhone", r.BusinessPhone)
	setIf(m, "businessAddress", r.BusinessAddress)
	return m
}
