package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tailor-backend/internal/models"
	"tailor-backend/internal/repositories"
	"tailor-backend/internal/summary"
)

// DashboardService loads a user's records and folds them into summaries.
type DashboardService struct {
	Customers *repositories.Collection[models.Customer]
	Orders    *repositories.Collection[models.Order]
	Payments  *repositories.Collection[models.Payment]
}

func NewDashboardService(repos *Repos) *DashboardService {
	return &DashboardService{Customers: repos.Customers, Orders: repos.Orders, Payments: repos.Payments}
}

type snapshot struct {
	customers []models.Customer
	orders    []models.Order
	payments  []models.Payment
}

// load fetches the three collections in parallel. The first failure cancels
// the others.
func (s *DashboardService) load(ctx context.Context, userID string) (*snapshot, error) {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.customers, err = s.Customers.List(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.orders, err = s.Orders.List(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.payments, err = s.Payments.List(ctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *DashboardService) GetDashboard(ctx context.Context, userID string) (*summary.Dashboard, error) {
	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := summary.BuildDashboard(snap.customers, snap.orders, snap.payments, now())
	return &d, nil
}

func (s *DashboardService) GetBalances(ctx context.Context, userID string) ([]summary.CustomerBalance, error) {
	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summary.CustomerBalances(snap.customers, snap.orders, snap.payments), nil
}
