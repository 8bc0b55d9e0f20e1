package models

// Unit is the length unit measurements are recorded in.
type Unit string

const (
	UnitInches      Unit = "in"
	UnitCentimeters Unit = "cm"
)

func (u Unit) Valid() bool {
	return u == UnitInches || u == UnitCentimeters
}

// Standard measurement fields per gender. Users extend these with
// CustomMeasurement entries.
var (
	MaleFields = []string{
		"neck", "chest", "waist", "hip", "shoulder", "sleeveLength",
		"armhole", "bicep", "wrist", "shirtLength", "trouserLength",
		"inseam", "thigh", "knee", "ankle",
	}
	FemaleFields = []string{
		"bust", "underBust", "waist", "hip", "shoulder", "sleeveLength",
		"armhole", "bicep", "wrist", "blouseLength", "gownLength",
		"skirtLength", "thigh", "knee", "ankle", "shoulderToBust",
		"shoulderToWaist",
	}
)

// FieldsFor returns the standard field set for a gender.
func FieldsFor(g Gender) []string {
	if g == GenderFemale {
		return FemaleFields
	}
	return MaleFields
}

type Measurement struct {
	Record
	CustomerID  string             `json:"customerId"`
	GarmentType string             `json:"garmentType"`
	Gender      Gender             `json:"gender"`
	Unit        Unit               `json:"unit"`
	Values      map[string]float64 `json:"values"`
	Notes       string             `json:"notes,omitempty"`
}

type CreateMeasurementRequest struct {
	CustomerID  string             `json:"customerId"`
	GarmentType string             `json:"garmentType"`
	Gender      Gender             `json:"gender"`
	Unit        Unit               `json:"unit"`
	Values      map[string]float64 `json:"values"`
	Notes       string             `json:"notes"`
}

func (r *CreateMeasurementRequest) Fields() map[string]any {
	return map[string]any{
		"customerId":  r.CustomerID,
		"garmentType": r.GarmentType,
		"gender":      string(r.Gender),
		"unit":        string(r.Unit),
		"values":      valuesMap(r.Values),
		"notes":       r.Notes,
	}
}

type UpdateMeasurementRequest struct {
	GarmentType *string            `json:"garmentType,omitempty"`
	Unit        *Unit              `json:"unit,omitempty"`
	Values      map[string]float64 `json:"values,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
}

func (r *UpdateMeasurementRequest) Fields() map[string]any {
	m := map[string]any{}
	setIf(m, "garmentType", r.GarmentType)
	if r.Unit != nil {
		m["unit"] = string(*r.Unit)
	}
	if r.Values != nil {
		m["values"] = valuesMap(r.Values)
	}
	setIf(m, "notes", r.Notes)
	return m
}

func valuesMap(v map[string]float64) map[string]any {
	out := make(map[string]any, len(v))
	for k, n := range v {
		out[k] = n
	}
	return out
}
