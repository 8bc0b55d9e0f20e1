package models

import (
	"encoding/json"
	"time"
)

// Collection names in the document store.
const (
	CustomersCollection          = "customers"
	MeasurementsCollection       = "measurements"
	OrdersCollection             = "orders"
	PaymentsCollection           = "payments"
	ProfilesCollection           = "profiles"
	PresetsCollection            = "measurementPresets"
	CustomMeasurementsCollection = "customMeasurements"
)

// Collections lists every user-owned collection.
var Collections = []string{
	CustomersCollection,
	MeasurementsCollection,
	OrdersCollection,
	PaymentsCollection,
	ProfilesCollection,
	PresetsCollection,
	CustomMeasurementsCollection,
}

// Record holds the fields every stored document carries. ID and the
// timestamps are assigned by the store, never by the caller.
type Record struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Decode converts a flattened document ({id, ...fields}) into a typed record.
func Decode[T any](fields map[string]any) (T, error) {
	var out T
	raw, err := json.Marshal(fields)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}

// DecodeAll decodes a list of flattened documents, stopping at the first error.
func DecodeAll[T any](docs []map[string]any) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := Decode[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// setIf copies a non-nil optional value into a patch map.
func setIf[T any](m map[string]any, key string, v *T) {
	if v != nil {
		m[key] = *v
	}
}
