package services

import (
	"context"
	"fmt"

	"tailor-backend/internal/models"
	"tailor-backend/internal/query"
	"tailor-backend/internal/repositories"
	"tailor-backend/internal/summary"
)

type OrderService struct {
	Orders       *repositories.Collection[models.Order]
	Payments     *repositories.Collection[models.Payment]
	Customers    *repositories.Collection[models.Customer]
	Measurements *repositories.Collection[models.Measurement]
	Cache        Invalidator
}

func NewOrderService(repos *Repos, cache Invalidator) *OrderService {
	return &OrderService{
		Orders:       repos.Orders,
		Payments:     repos.Payments,
		Customers:    repos.Customers,
		Measurements: repos.Measurements,
		Cache:        orNop(cache),
	}
}

// OrderDetail is an order with its payments and money position.
type OrderDetail struct {
	Order    models.Order     `json:"order"`
	Payments []models.Payment `json:"payments"`
	Balance  summary.Balance  `json:"balance"`
}

func validateMoney(name string, v *float64) error {
	if v != nil && *v < 0 {
		return invalid("%s cannot be negative", name)
	}
	return nil
}

// CreateOrder writes the order and, when an initial payment is given, a
// deposit payment for it. The two writes are independent: if the deposit
// fails the order remains and a *StepError says so.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req *models.CreateOrderRequest) (*models.Order, error) {
	if blank(req.CustomerID) || blank(req.Style) {
		return nil, invalid("customer and style are required")
	}
	for name, v := range map[string]*float64{
		"material cost":   &req.MaterialCost,
		"total cost":      req.TotalCost,
		"initial payment": &req.InitialPayment,
	} {
		if err := validateMoney(name, v); err != nil {
			return nil, err
		}
	}
	if req.Status == "" {
		req.Status = models.StatusNew
	}
	if !req.Status.Valid() {
		return nil, invalid("unknown status %q", req.Status)
	}
	if req.ArrivalDate.IsZero() {
		req.ArrivalDate = now()
	}
	if _, err := s.Customers.GetOwned(ctx, userID, req.CustomerID); err != nil {
		return nil, err
	}
	if err := s.checkMeasurement(ctx, userID, req.MeasurementID, req.CustomerID); err != nil {
		return nil, err
	}

	var orderID string
	steps := []step{{
		name: "insert order",
		run: func(ctx context.Context) error {
			id, err := s.Orders.Create(ctx, userID, req.Fields())
			orderID = id
			return err
		},
	}}
	if req.InitialPayment > 0 {
		steps = append(steps, step{
			name: "insert deposit payment",
			run: func(ctx context.Context) error {
				_, err := s.Payments.Create(ctx, userID, map[string]any{
					"orderId": orderID,
					"amount":  req.InitialPayment,
					"date":    req.ArrivalDate,
					"note":    "Deposit",
					"deposit": true,
				})
				return err
			},
		})
	}

	err := runSteps(ctx, "create order", steps)
	if orderID != "" {
		s.Cache.InvalidateUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return s.Orders.Get(ctx, orderID)
}

func (s *OrderService) GetOrder(ctx context.Context, userID, id string) (*models.Order, error) {
	return s.Orders.GetOwned(ctx, userID, id)
}

// GetOrderDetail loads an order together with its payments and balance.
func (s *OrderService) GetOrderDetail(ctx context.Context, userID, id string) (*OrderDetail, error) {
	order, err := s.Orders.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentsFor(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{
		Order:    *order,
		Payments: payments,
		Balance:  summary.OrderBalance(*order, payments),
	}, nil
}

// ListOrders returns the user's orders, newest first. Optional filters narrow
// by customer and status.
func (s *OrderService) ListOrders(ctx context.Context, userID, customerID string, status models.OrderStatus) ([]models.Order, error) {
	var constraints []query.Constraint
	if customerID != "" {
		constraints = append(constraints, query.Where("customerId", query.Eq, customerID))
	}
	if status != "" {
		if !status.Valid() {
			return nil, invalid("unknown status %q", status)
		}
		constraints = append(constraints, query.Where("status", query.Eq, string(status)))
	}
	constraints = append(constraints, query.OrderBy("createdAt", query.Desc))
	return s.Orders.List(ctx, userID, constraints...)
}

// UpdateOrder patches an order. Marking it collected without a status moves
// it to Completed; any other combination that leaves a collected order
// outside Completed is rejected.
func (s *OrderService) UpdateOrder(ctx context.Context, userID, id string, req *models.UpdateOrderRequest) (*models.Order, error) {
	if req.Style != nil && blank(*req.Style) {
		return nil, invalid("style cannot be empty")
	}
	for name, v := range map[string]*float64{
		"material cost":   req.MaterialCost,
		"total cost":      req.TotalCost,
		"initial payment": req.InitialPayment,
	} {
		if err := validateMoney(name, v); err != nil {
			return nil, err
		}
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, invalid("unknown status %q", *req.Status)
	}
	if req.Collected != nil && *req.Collected && req.Status == nil {
		completed := models.StatusCompleted
		req.Status = &completed
	}
	fields := req.Fields()
	if len(fields) == 0 {
		return nil, invalid("no fields to update")
	}

	existing, err := s.Orders.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	collected, status := existing.Collected, existing.Status
	if req.Collected != nil {
		collected = *req.Collected
	}
	if req.Status != nil {
		status = *req.Status
	}
	if collected && status != models.StatusCompleted {
		return nil, invalid("a collected order must be %s", models.StatusCompleted)
	}
	if req.MeasurementID != nil {
		if err := s.checkMeasurement(ctx, userID, *req.MeasurementID, existing.CustomerID); err != nil {
			return nil, err
		}
	}

	steps := []step{{
		name: "update order",
		run:  func(ctx context.Context) error { return s.Orders.Update(ctx, id, fields) },
	}}
	if req.InitialPayment != nil && *req.InitialPayment != existing.InitialPayment {
		amount := *req.InitialPayment
		steps = append(steps, step{
			name: "sync deposit payment",
			run: func(ctx context.Context) error {
				return s.syncDeposit(ctx, userID, existing, amount)
			},
		})
	}
	err = runSteps(ctx, "update order", steps)
	s.Cache.InvalidateUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Orders.Get(ctx, id)
}

// checkMeasurement verifies an order's measurement reference: it must be the
// caller's and taken for the order's customer. An empty id is allowed.
func (s *OrderService) checkMeasurement(ctx context.Context, userID, measurementID, customerID string) error {
	if measurementID == "" {
		return nil
	}
	m, err := s.Measurements.GetOwned(ctx, userID, measurementID)
	if err != nil {
		return err
	}
	if m.CustomerID != customerID {
		return invalid("measurement %s belongs to another customer", measurementID)
	}
	return nil
}

// syncDeposit makes the order's deposit payment match its initial payment.
// A zero amount removes the deposit; a positive amount updates it, or writes
// one when the order had none.
func (s *OrderService) syncDeposit(ctx context.Context, userID string, order *models.Order, amount float64) error {
	payments, err := s.paymentsFor(ctx, userID, order.ID)
	if err != nil {
		return err
	}
	var deposits []models.Payment
	for _, p := range payments {
		if p.Deposit {
			deposits = append(deposits, p)
		}
	}

	if amount == 0 {
		for _, p := range deposits {
			if err := s.Payments.Delete(ctx, p.ID); err != nil {
				return err
			}
		}
		return nil
	}
	if len(deposits) == 0 {
		_, err := s.Payments.Create(ctx, userID, map[string]any{
			"orderId": order.ID,
			"amount":  amount,
			"date":    order.ArrivalDate,
			"note":    "Deposit",
			"deposit": true,
		})
		return err
	}
	if err := s.Payments.Update(ctx, deposits[0].ID, map[string]any{"amount": amount}); err != nil {
		return err
	}
	for _, p := range deposits[1:] {
		if err := s.Payments.Delete(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// MarkCollected records hand-over: collected and Completed are set together.
func (s *OrderService) MarkCollected(ctx context.Context, userID, id string) (*models.Order, error) {
	if _, err := s.Orders.GetOwned(ctx, userID, id); err != nil {
		return nil, err
	}
	err := s.Orders.Update(ctx, id, map[string]any{
		"collected":      true,
		"status":         string(models.StatusCompleted),
		"collectionDate": now(),
	})
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateUser(ctx, userID)
	return s.Orders.Get(ctx, id)
}

// DeleteOrder deletes the order's payments one by one, then the order. The
// steps are not atomic: a failure leaves whatever was not yet deleted in
// place and is reported as a *StepError.
func (s *OrderService) DeleteOrder(ctx context.Context, userID, id string) error {
	if _, err := s.Orders.GetOwned(ctx, userID, id); err != nil {
		return err
	}
	payments, err := s.paymentsFor(ctx, userID, id)
	if err != nil {
		return err
	}

	steps := make([]step, 0, len(payments)+1)
	for _, p := range payments {
		paymentID := p.ID
		steps = append(steps, step{
			name: fmt.Sprintf("delete payment %s", paymentID),
			run:  func(ctx context.Context) error { return s.Payments.Delete(ctx, paymentID) },
		})
	}
	steps = append(steps, step{
		name: fmt.Sprintf("delete order %s", id),
		run:  func(ctx context.Context) error { return s.Orders.Delete(ctx, id) },
	})

	err = runSteps(ctx, "delete order", steps)
	s.Cache.InvalidateUser(ctx, userID)
	return err
}

func (s *OrderService) paymentsFor(ctx context.Context, userID, orderID string) ([]models.Payment, error) {
	return s.Payments.List(ctx, userID,
		query.Where("orderId", query.Eq, orderID),
		query.OrderBy("date", query.Asc),
	)
}
