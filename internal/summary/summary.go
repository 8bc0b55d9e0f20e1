// Package summary holds the derived figures shown on dashboard and detail
// pages. Every function is pure: inputs are read, never modified.
package summary

import (
	"time"

	"github.com/shopspring/decimal"

	"tailor-backend/internal/models"
)

// RecentWindow is how far back a record counts as "recent".
const RecentWindow = 30 * 24 * time.Hour

// UnknownName is shown for a customer id with no matching customer.
const UnknownName = "Unknown"

// OrderCost is the amount billed for an order: the total cost when set,
// otherwise the material cost.
func OrderCost(o models.Order) decimal.Decimal {
	if o.TotalCost != nil {
		return decimal.NewFromFloat(*o.TotalCost)
	}
	return decimal.NewFromFloat(o.MaterialCost)
}

// PaidFor sums the order's initial payment and its recorded payments. Deposit
// payments are skipped because InitialPayment already accounts for them.
func PaidFor(o models.Order, payments []models.Payment) decimal.Decimal {
	paid := decimal.NewFromFloat(o.InitialPayment)
	for _, p := range payments {
		if p.OrderID == o.ID && !p.Deposit {
			paid = paid.Add(decimal.NewFromFloat(p.Amount))
		}
	}
	return paid
}

// Outstanding is cost minus paid, floored at zero. Overpayment is never
// reported as a negative balance.
func Outstanding(o models.Order, payments []models.Payment) decimal.Decimal {
	return floor(OrderCost(o).Sub(PaidFor(o, payments)))
}

// Balance is the money position of one order.
type Balance struct {
	Cost        decimal.Decimal `json:"cost"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

func OrderBalance(o models.Order, payments []models.Payment) Balance {
	cost := OrderCost(o)
	paid := PaidFor(o, payments)
	return Balance{Cost: cost, Paid: paid, Outstanding: floor(cost.Sub(paid))}
}

// TotalOutstanding sums per-order outstanding amounts. Each order is floored
// before summing, so one overpaid order never offsets another's debt.
func TotalOutstanding(orders []models.Order, payments []models.Payment) decimal.Decimal {
	byOrder := groupPayments(payments)
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(Outstanding(o, byOrder[o.ID]))
	}
	return total
}

// TotalCollected sums what has been paid across orders.
func TotalCollected(orders []models.Order, payments []models.Payment) decimal.Decimal {
	byOrder := groupPayments(payments)
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(PaidFor(o, byOrder[o.ID]))
	}
	return total
}

// StatusCounts counts orders per status. Every status of the fixed
// enumeration is present; statuses outside it are not counted.
func StatusCounts(orders []models.Order) map[models.OrderStatus]int {
	counts := make(map[models.OrderStatus]int, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		counts[s] = 0
	}
	for _, o := range orders {
		if _, ok := counts[o.Status]; ok {
			counts[o.Status]++
		}
	}
	return counts
}

// IsRecent reports whether t falls within window before now. A nil
// timestamp is never recent.
func IsRecent(t *time.Time, now time.Time, window time.Duration) bool {
	if t == nil {
		return false
	}
	return !t.Before(now.Add(-window))
}

// CountRecent counts the timestamps within window before now.
func CountRecent(times []*time.Time, now time.Time, window time.Duration) int {
	n := 0
	for _, t := range times {
		if IsRecent(t, now, window) {
			n++
		}
	}
	return n
}

// NameLookup maps customer ids to display names.
type NameLookup map[string]string

func Names(customers []models.Customer) NameLookup {
	l := make(NameLookup, len(customers))
	for _, c := range customers {
		l[c.ID] = c.Name
	}
	return l
}

// Resolve returns the customer's name, or UnknownName for a dangling id.
func (l NameLookup) Resolve(id string) string {
	if name, ok := l[id]; ok {
		return name
	}
	return UnknownName
}

func groupPayments(payments []models.Payment) map[string][]models.Payment {
	byOrder := make(map[string][]models.Payment)
	for _, p := range payments {
		byOrder[p.OrderID] = append(byOrder[p.OrderID], p)
	}
	return byOrder
}

func floor(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
