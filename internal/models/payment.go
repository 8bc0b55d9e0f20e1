package models

import "time"

type Payment struct {
	Record
	OrderID string    `json:"orderId"`
	Amount  float64   `json:"amount"`
	Date    time.Time `json:"date"`
	Note    string    `json:"note,omitempty"`
	// Deposit marks the record written alongside an order for its initial
	// payment. Its amount is already counted through Order.InitialPayment.
	Deposit bool `json:"deposit,omitempty"`
}

type CreatePaymentRequest struct {
	OrderID string    `json:"orderId"`
	Amount  float64   `json:"amount"`
	Date    time.Time `json:"date"`
	Note    string    `json:"note"`
}

func (r *CreatePaymentRequest) Fields() map[string]any {
	return map[string]any{
		"orderId": r.OrderID,
		"amount":  r.Amount,
		"date":    r.Date,
		"note":    r.Note,
	}
}

type UpdatePaymentRequest struct {
	Amount *float64   `json:"amount,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
	Note   *string    `json:"note,omitempty"`
}

func (r *UpdatePaymentRequest) Fields() map[string]any {
	m := map[string]any{}
	setIf(m, "amount", r.Amount)
	setIf(m, "date", r.Date)
	setIf(m, "note", r.Note)
	return m
}
