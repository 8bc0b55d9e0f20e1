package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"

	"tailor-backend/internal/docstore"
	"tailor-backend/internal/format"
	"tailor-backend/internal/summary"
	"tailor-backend/internal/timeutil"
)

// ReceiptData is everything printed on an order receipt.
type ReceiptData struct {
	Business     string
	BusinessInfo string
	Currency     string
	CustomerName string
	Phone        string
	Detail       *OrderDetail
}

type ReceiptService struct {
	Orders    *OrderService
	Customers *CustomerService
	Profiles  *ProfileService
	Format    *format.Formatter
}

func NewReceiptService(orders *OrderService, customers *CustomerService, profiles *ProfileService, f *format.Formatter) *ReceiptService {
	return &ReceiptService{Orders: orders, Customers: customers, Profiles: profiles, Format: f}
}

// GetReceiptData gathers an order, its payments, the customer and the
// business details from the user's profile.
func (s *ReceiptService) GetReceiptData(ctx context.Context, userID, orderID string) (*ReceiptData, error) {
	detail, err := s.Orders.GetOrderDetail(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	data := &ReceiptData{Detail: detail, CustomerName: summary.UnknownName}

	customer, err := s.Customers.GetCustomer(ctx, userID, detail.Order.CustomerID)
	switch {
	case err == nil:
		data.CustomerName, data.Phone = customer.Name, customer.Phone
	case !docstore.IsNotFound(err):
		return nil, err
	}

	profile, err := s.Profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		data.Business = profile.BusinessName
		data.BusinessInfo = joinNonEmpty(" | ", profile.BusinessPhone, profile.BusinessAddress)
		data.Currency = profile.DefaultCurrency
	}
	if data.Business == "" {
		data.Business = "Order Receipt"
	}
	return data, nil
}

func (s *ReceiptService) money(data *ReceiptData, d decimal.Decimal) string {
	return s.Format.MoneyISO(d, data.Currency)
}

// GenerateReceiptPDF renders a single-page A4 receipt.
func (s *ReceiptService) GenerateReceiptPDF(data *ReceiptData) ([]byte, error) {
	order := data.Detail.Order
	balance := data.Detail.Balance

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, tr(data.Business), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	if data.BusinessInfo != "" {
		pdf.CellFormat(190, 6, tr(data.BusinessInfo), "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", s.Format.DateTime(timeutil.Now())), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Customer and order
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Order", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, tr(fmt.Sprintf("Customer: %s", data.CustomerName)), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr(fmt.Sprintf("Phone: %s", data.Phone)), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr(fmt.Sprintf("Style: %s", truncate(order.Style, 40))), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Status: %s", order.Status), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Arrived: %s", s.Format.Date(order.ArrivalDate)), "LB", 0, "L", false, 0, "")
	fitting := "-"
	if order.FittingDate != nil {
		fitting = s.Format.Date(*order.FittingDate)
	}
	pdf.CellFormat(95, 7, fmt.Sprintf("Fitting: %s", fitting), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Financial summary
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Financial Summary", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 8, "Cost: "+s.money(data, balance.Cost), "1", 0, "C", false, 0, "")
	pdf.CellFormat(95, 8, "Paid: "+s.money(data, balance.Paid), "1", 1, "C", false, 0, "")

	if balance.Outstanding.IsPositive() {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	balanceText := "Balance Due: " + s.money(data, balance.Outstanding)
	if !balance.Outstanding.IsPositive() {
		balanceText = "FULLY PAID"
	}
	pdf.CellFormat(190, 10, balanceText, "1", 1, "C", true, 0, "")

	if order.InitialPayment > 0 || len(data.Detail.Payments) > 0 {
		pdf.Ln(5)
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(190, 8, "Payment History", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(50, 7, "Date", "1", 0, "C", true, 0, "")
		pdf.CellFormat(60, 7, "Amount", "1", 0, "C", true, 0, "")
		pdf.CellFormat(80, 7, "Note", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		hasDeposit := false
		for _, p := range data.Detail.Payments {
			hasDeposit = hasDeposit || p.Deposit
			pdf.CellFormat(50, 6, s.Format.Date(p.Date), "1", 0, "C", false, 0, "")
			pdf.CellFormat(60, 6, s.money(data, decimal.NewFromFloat(p.Amount)), "1", 0, "R", false, 0, "")
			pdf.CellFormat(80, 6, tr(truncate(p.Note, 35)), "1", 1, "L", false, 0, "")
		}
		if order.InitialPayment > 0 && !hasDeposit {
			pdf.CellFormat(50, 6, s.Format.Date(order.ArrivalDate), "1", 0, "C", false, 0, "")
			pdf.CellFormat(60, 6, s.money(data, decimal.NewFromFloat(order.InitialPayment)), "1", 0, "R", false, 0, "")
			pdf.CellFormat(80, 6, "Deposit", "1", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
