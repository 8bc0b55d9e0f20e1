package models

import "time"

// OrderStatus is the workflow state of an order.
type OrderStatus string

const (
	StatusNew             OrderStatus = "New"
	StatusInProgress      OrderStatus = "In Progress"
	StatusReadyForFitting OrderStatus = "Ready for Fitting"
	StatusCompleted       OrderStatus = "Completed"
)

// OrderStatuses is the fixed enumeration, in workflow order.
var OrderStatuses = []OrderStatus{StatusNew, StatusInProgress, StatusReadyForFitting, StatusCompleted}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Order struct {
	Record
	CustomerID     string      `json:"customerId"`
	MeasurementID  string      `json:"measurementId"`
	Style          string      `json:"style"`
	MaterialCost   float64     `json:"materialCost"`
	TotalCost      *float64    `json:"totalCost,omitempty"`
	InitialPayment float64     `json:"initialPayment"`
	Status         OrderStatus `json:"status"`
	Collected      bool        `json:"collected"`
	ArrivalDate    time.Time   `json:"arrivalDate"`
	FittingDate    *time.Time  `json:"fittingDate,omitempty"`
	CollectionDate *time.Time  `json:"collectionDate,omitempty"`
	Notes          string      `json:"notes,omitempty"`
}

type CreateOrderRequest struct {
	CustomerID     string      `json:"customerId"`
	MeasurementID  string      `json:"measurementId"`
	Style          string      `json:"style"`
	MaterialCost   float64     `json:"materialCost"`
	TotalCost      *float64    `json:"totalCost,omitempty"`
	InitialPayment float64     `json:"initialPayment"`
	Status         OrderStatus `json:"status"`
	ArrivalDate    time.Time   `json:"arrivalDate"`
	FittingDate    *time.Time  `json:"fittingDate,omitempty"`
	CollectionDate *time.Time  `json:"collectionDate,omitempty"`
	Notes          string      `json:"notes"`
}

func (r *CreateOrderRequest) Fields() map[string]any {
	m := map[string]any{
		"customerId":     r.CustomerID,
		"measurementId":  r.MeasurementID,
		"style":          r.Style,
		"materialCost":   r.MaterialCost,
		"initialPayment": r.InitialPayment,
		"status":         string(r.Status),
		"collected":      false,
		"arrivalDate":    r.ArrivalDate,
		"notes":          r.Notes,
	}
	setIf(m, "totalCost", r.TotalCost)
	setIf(m, "fittingDate", r.FittingDate)
	setIf(m, "collectionDate", r.CollectionDate)
	return m
}

type UpdateOrderRequest struct {
	MeasurementID  *string      `json:"measurementId,omitempty"`
	Style          *string      `json:"style,omitempty"`
	MaterialCost   *float64     `json:"materialCost,omitempty"`
	TotalCost      *float64     `json:"totalCost,omitempty"`
	InitialPayment *float64     `json:"initialPayment,omitempty"`
	Status         *OrderStatus `json:"status,omitempty"`
	Collected      *bool        `json:"collected,omitempty"`
	ArrivalDate    *time.Time   `json:"arrivalDate,omitempty"`
	FittingDate    *time.Time   `json:"fittingDate,omitempty"`
	CollectionDate *time.Time   `json:"collectionDate,omitempty"`
	Notes          *string      `json:"notes,omitempty"`
}

func (r *UpdateOrderRequest) Fields() map[string]any {
	m := map[string]any{}
	setIf(m, "measurementId", r.MeasurementID)
	setIf(m, "style", r.Style)
	setIf(m, "materialCost", r.MaterialCost)
	setIf(m, "totalCost", r.TotalCost)
	setIf(m, "initialPayment", r.InitialPayment)
	if r.Status != nil {
		m["status"] = string(*r.Status)
	}
	setIf(m, "collected", r.Collected)
	setIf(m, "arrivalDate", r.ArrivalDate)
	setIf(m, "fittingDate", r.FittingDate)
	setIf(m, "collectionDate", r.CollectionDate)
	setIf(m, "notes", r.Notes)
	return m
}
