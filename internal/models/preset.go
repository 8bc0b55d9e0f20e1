package models

// MeasurementPreset is a named template of measurement fields for a garment.
type MeasurementPreset struct {
	Record
	Name        string   `json:"name"`
	Gender      Gender   `json:"gender"`
	GarmentType string   `json:"garmentType"`
	Fields      []string `json:"fields"`
}

type SavePresetRequest struct {
	Name        string   `json:"name"`
	Gender      Gender   `json:"gender"`
	GarmentType string   `json:"garmentType"`
	Fields      []string `json:"fields"`
}

func (r *SavePresetRequest) FieldsMap() map[string]any {
	fields := make([]any, len(r.Fields))
	for i, f := range r.Fields {
		fields[i] = f
	}
	return map[string]any{
		"name":        r.Name,
		"gender":      string(r.Gender),
		"garmentType": r.GarmentType,
		"fields":      fields,
	}
}

// CustomMeasurement adds a user-defined field to a gender's field set.
type CustomMeasurement struct {
	Record
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
	Unit   Unit   `json:"unit,omitempty"`
}

type CreateCustomMeasurementRequest struct {
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
	Unit   Unit   `json:"unit"`
}

func (r *CreateCustomMeasurementRequest) Fields() map[string]any {
	return map[string]any{
		"name":   r.Name,
		"gender": string(r.Gender),
		"unit":   string(r.Unit),
	}
}
