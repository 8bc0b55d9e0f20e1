package services

import (
	"context"
	"slices"
	"strings"

	"tailor-backend/internal/models"
	"tailor-backend/internal/query"
	"tailor-backend/internal/repositories"
)

type CustomMeasurementService struct {
	Repo *repositories.Collection[models.CustomMeasurement]
}

func NewCustomMeasurementService(repo *repositories.Collection[models.CustomMeasurement]) *CustomMeasurementService {
	return &CustomMeasurementService{Repo: repo}
}

// CreateCustomMeasurement adds a field to the user's set for a gender. Names
// that clash with a standard or existing custom field are rejected.
func (s *CustomMeasurementService) CreateCustomMeasurement(ctx context.Context, userID string, req *models.CreateCustomMeasurementRequest) (*models.CustomMeasurement, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, invalid("name is required")
	}
	if !req.Gender.Valid() {
		return nil, invalid("unknown gender %q", req.Gender)
	}
	if req.Unit != "" && !req.Unit.Valid() {
		return nil, invalid("unknown unit %q", req.Unit)
	}
	if slices.Contains(models.FieldsFor(req.Gender), req.Name) {
		return nil, invalid("%q is already a standard field", req.Name)
	}
	existing, err := s.Repo.List(ctx, userID,
		query.Where("gender", query.Eq, string(req.Gender)),
		query.Where("name", query.Eq, req.Name),
		query.Limit(1),
	)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, invalid("%q already exists", req.Name)
	}

	id, err := s.Repo.Create(ctx, userID, req.Fields())
	if err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, id)
}

func (s *CustomMeasurementService) ListCustomMeasurements(ctx context.Context, userID string, gender models.Gender) ([]models.CustomMeasurement, error) {
	var constraints []query.Constraint
	if gender != "" {
		constraints = append(constraints, query.Where("gender", query.Eq, string(gender)))
	}
	constraints = append(constraints, query.OrderBy("name", query.Asc))
	return s.Repo.List(ctx, userID, constraints...)
}

// DeleteCustomMeasurement removes the field definition. Values already
// recorded under it stay on their measurements.
func (s *CustomMeasurementService) DeleteCustomMeasurement(ctx context.Context, userID, id string) error {
	if _, err := s.Repo.GetOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}
