package services

import (
	"context"

	"tailor-backend/internal/models"
	"tailor-backend/internal/query"
	"tailor-backend/internal/repositories"
)

// errDepositPayment rejects direct edits of a deposit. Its amount follows the
// order's initial payment, so it changes through the order.
var errDepositPayment = invalid("deposit payments follow the order's initial payment; update the order instead")

type PaymentService struct {
	Payments *repositories.Collection[models.Payment]
	Orders   *repositories.Collection[models.Order]
	Cache    Invalidator
}

func NewPaymentService(repos *Repos, cache Invalidator) *PaymentService {
	return &PaymentService{Payments: repos.Payments, Orders: repos.Orders, Cache: orNop(cache)}
}

func (s *PaymentService) CreatePayment(ctx context.Context, userID string, req *models.CreatePaymentRequest) (*models.Payment, error) {
	if blank(req.OrderID) {
		return nil, invalid("order is required")
	}
	if req.Amount <= 0 {
		return nil, invalid("amount must be greater than zero")
	}
	if req.Date.IsZero() {
		req.Date = now()
	}
	if _, err := s.Orders.GetOwned(ctx, userID, req.OrderID); err != nil {
		return nil, err
	}

	id, err := s.Payments.Create(ctx, userID, req.Fields())
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateUser(ctx, userID)
	return s.Payments.Get(ctx, id)
}

func (s *PaymentService) GetPayment(ctx context.Context, userID, id string) (*models.Payment, error) {
	return s.Payments.GetOwned(ctx, userID, id)
}

// ListPayments returns the user's payments, most recent first, optionally
// for a single order.
func (s *PaymentService) ListPayments(ctx context.Context, userID, orderID string) ([]models.Payment, error) {
	var constraints []query.Constraint
	if orderID != "" {
		constraints = append(constraints, query.Where("orderId", query.Eq, orderID))
	}
	constraints = append(constraints, query.OrderBy("date", query.Desc))
	return s.Payments.List(ctx, userID, constraints...)
}

func (s *PaymentService) UpdatePayment(ctx context.Context, userID, id string, req *models.UpdatePaymentRequest) (*models.Payment, error) {
	if req.Amount != nil && *req.Amount <= 0 {
		return nil, invalid("amount must be greater than zero")
	}
	fields := req.Fields()
	if len(fields) == 0 {
		return nil, invalid("no fields to update")
	}
	existing, err := s.Payments.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if existing.Deposit {
		return nil, errDepositPayment
	}
	if err := s.Payments.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	s.Cache.InvalidateUser(ctx, userID)
	return s.Payments.Get(ctx, id)
}

func (s *PaymentService) DeletePayment(ctx context.Context, userID, id string) error {
	existing, err := s.Payments.GetOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	if existing.Deposit {
		return errDepositPayment
	}
	if err := s.Payments.Delete(ctx, id); err != nil {
		return err
	}
	s.Cache.InvalidateUser(ctx, userID)
	return nil
}
