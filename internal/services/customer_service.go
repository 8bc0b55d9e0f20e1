package services

import (
	"context"

	"tailor-backend/internal/models"
	"tailor-backend/internal/query"
	"tailor-backend/internal/repositories"
)

type CustomerService struct {
	Repo  *repositories.Collection[models.Customer]
	Cache Invalidator
}

func NewCustomerService(repo *repositories.Collection[models.Customer], cache Invalidator) *CustomerService {
	return &CustomerService{Repo: repo, Cache: orNop(cache)}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, userID string, req *models.CreateCustomerRequest) (*models.Customer, error) {
	// Validate input
	if blank(req.Name) || blank(req.Phone) {
		return nil, invalid("name and phone are required")
	}
	if req.Gender != "" && !req.Gender.Valid() {
		return nil, invalid("unknown gender %q", req.Gender)
	}

	id, err := s.Repo.Create(ctx, userID, req.Fields())
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateUser(ctx, userID)
	return s.Repo.Get(ctx, id)
}

func (s *CustomerService) GetCustomer(ctx context.Context, userID, id string) (*models.Customer, error) {
	return s.Repo.GetOwned(ctx, userID, id)
}

// ListCustomers returns the user's customers ordered by name.
func (s *CustomerService) ListCustomers(ctx context.Context, userID string) ([]models.Customer, error) {
	return s.Repo.List(ctx, userID, query.OrderBy("name", query.Asc))
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, userID, id string, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	req.Name, req.Phone = trimmed(req.Name), trimmed(req.Phone)
	if (req.Name != nil && *req.Name == "") || (req.Phone != nil && *req.Phone == "") {
		return nil, invalid("name and phone cannot be empty")
	}
	if req.Gender != nil && !req.Gender.Valid() {
		return nil, invalid("unknown gender %q", *req.Gender)
	}
	fields := req.Fields()
	if len(fields) == 0 {
		return nil, invalid("no fields to update")
	}

	if _, err := s.Repo.GetOwned(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	s.Cache.InvalidateUser(ctx, userID)
	return s.Repo.Get(ctx, id)
}

// DeleteCustomer removes the customer only. Their orders stay and show the
// customer as unknown.
func (s *CustomerService) DeleteCustomer(ctx context.Context, userID, id string) error {
	if _, err := s.Repo.GetOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Cache.InvalidateUser(ctx, userID)
	return nil
}
