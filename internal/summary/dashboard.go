package summary

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tailor-backend/internal/models"
)

const (
	// FittingHorizon bounds the upcoming fittings list.
	FittingHorizon = 7 * 24 * time.Hour
	// LatestOrdersLimit caps the recent orders list.
	LatestOrdersLimit = 5
)

type Dashboard struct {
	TotalCustomers   int                        `json:"totalCustomers"`
	TotalOrders      int                        `json:"totalOrders"`
	TotalPayments    int                        `json:"totalPayments"`
	RecentCustomers  int                        `json:"recentCustomers"`
	RecentOrders     int                        `json:"recentOrders"`
	ActiveOrders     int                        `json:"activeOrders"`
	TotalOutstanding decimal.Decimal            `json:"totalOutstanding"`
	TotalCollected   decimal.Decimal            `json:"totalCollected"`
	StatusCounts     map[models.OrderStatus]int `json:"statusCounts"`
	UpcomingFittings []Fitting                  `json:"upcomingFittings"`
	LatestOrders     []OrderLine                `json:"latestOrders"`
	GeneratedAt      time.Time                  `json:"generatedAt"`
}

type Fitting struct {
	OrderID      string    `json:"orderId"`
	CustomerID   string    `json:"customerId"`
	CustomerName string    `json:"customerName"`
	Style        string    `json:"style"`
	FittingDate  time.Time `json:"fittingDate"`
}

type OrderLine struct {
	OrderID      string             `json:"orderId"`
	CustomerName string             `json:"customerName"`
	Style        string             `json:"style"`
	Status       models.OrderStatus `json:"status"`
	Balance
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// BuildDashboard folds the three record sets into the dashboard cards.
func BuildDashboard(customers []models.Customer, orders []models.Order, payments []models.Payment, now time.Time) Dashboard {
	names := Names(customers)
	byOrder := groupPayments(payments)

	customerTimes := make([]*time.Time, len(customers))
	for i, c := range customers {
		customerTimes[i] = c.CreatedAt
	}
	orderTimes := make([]*time.Time, len(orders))
	active := 0
	for i, o := range orders {
		orderTimes[i] = o.CreatedAt
		if o.Status.Valid() && o.Status != models.StatusCompleted {
			active++
		}
	}

	return Dashboard{
		TotalCustomers:   len(customers),
		TotalOrders:      len(orders),
		TotalPayments:    len(payments),
		RecentCustomers:  CountRecent(customerTimes, now, RecentWindow),
		RecentOrders:     CountRecent(orderTimes, now, RecentWindow),
		ActiveOrders:     active,
		TotalOutstanding: TotalOutstanding(orders, payments),
		TotalCollected:   TotalCollected(orders, payments),
		StatusCounts:     StatusCounts(orders),
		UpcomingFittings: upcomingFittings(orders, names, now),
		LatestOrders:     latestOrders(orders, byOrder, names),
		GeneratedAt:      now,
	}
}

func upcomingFittings(orders []models.Order, names NameLookup, now time.Time) []Fitting {
	horizon := now.Add(FittingHorizon)
	out := []Fitting{}
	for _, o := range orders {
		if o.FittingDate == nil || o.Collected {
			continue
		}
		if o.FittingDate.Before(now) || o.FittingDate.After(horizon) {
			continue
		}
		out = append(out, Fitting{
			OrderID:      o.ID,
			CustomerID:   o.CustomerID,
			CustomerName: names.Resolve(o.CustomerID),
			Style:        o.Style,
			FittingDate:  *o.FittingDate,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FittingDate.Before(out[j].FittingDate) })
	return out
}

func latestOrders(orders []models.Order, byOrder map[string][]models.Payment, names NameLookup) []OrderLine {
	sorted := make([]models.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].CreatedAt, sorted[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
	if len(sorted) > LatestOrdersLimit {
		sorted = sorted[:LatestOrdersLimit]
	}

	out := make([]OrderLine, 0, len(sorted))
	for _, o := range sorted {
		out = append(out, OrderLine{
			OrderID:      o.ID,
			CustomerName: names.Resolve(o.CustomerID),
			Style:        o.Style,
			Status:       o.Status,
			Balance:      OrderBalance(o, byOrder[o.ID]),
			CreatedAt:    o.CreatedAt,
		})
	}
	return out
}

// CustomerBalance is one customer's money position across all their orders.
type CustomerBalance struct {
	CustomerID  string          `json:"customerId"`
	Name        string          `json:"name"`
	Orders      int             `json:"orders"`
	Billed      decimal.Decimal `json:"billed"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// CustomerBalances groups orders by customer, largest outstanding first.
// Orders whose customer is missing are grouped under UnknownName.
func CustomerBalances(customers []models.Customer, orders []models.Order, payments []models.Payment) []CustomerBalance {
	names := Names(customers)
	byOrder := groupPayments(payments)

	index := map[string]int{}
	var out []CustomerBalance
	for _, c := range customers {
		index[c.ID] = len(out)
		out = append(out, CustomerBalance{CustomerID: c.ID, Name: c.Name})
	}

	for _, o := range orders {
		i, ok := index[o.CustomerID]
		if !ok {
			i = len(out)
			index[o.CustomerID] = i
			out = append(out, CustomerBalance{CustomerID: o.CustomerID, Name: names.Resolve(o.CustomerID)})
		}
		b := OrderBalance(o, byOrder[o.ID])
		out[i].Orders++
		out[i].Billed = out[i].Billed.Add(b.Cost)
		out[i].Paid = out[i].Paid.Add(b.Paid)
		out[i].Outstanding = out[i].Outstanding.Add(b.Outstanding)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Outstanding.Cmp(out[j].Outstanding); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	if out == nil {
		out = []CustomerBalance{}
	}
	return out
}
