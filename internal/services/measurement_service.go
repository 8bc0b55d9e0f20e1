package services

import (
	"context"
	"sort"
	"strings"

	"tailor-backend/internal/models"
	"tailor-backend/internal/query"
	"tailor-backend/internal/repositories"
)

type MeasurementService struct {
	Repo      *repositories.Collection[models.Measurement]
	Customers *repositories.Collection[models.Customer]
	Custom    *repositories.Collection[models.CustomMeasurement]
}

func NewMeasurementService(repos *Repos) *MeasurementService {
	return &MeasurementService{
		Repo:      repos.Measurements,
		Customers: repos.Customers,
		Custom:    repos.CustomMeasurements,
	}
}

// AllowedFields returns the standard fields for gender followed by the user's
// custom fields for it.
func (s *MeasurementService) AllowedFields(ctx context.Context, userID string, gender models.Gender) ([]string, error) {
	custom, err := s.Custom.List(ctx, userID, query.Where("gender", query.Eq, string(gender)))
	if err != nil {
		return nil, err
	}
	standard := models.FieldsFor(gender)
	fields := make([]string, 0, len(standard)+len(custom))
	fields = append(fields, standard...)
	names := make([]string, 0, len(custom))
	for _, c := range custom {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return append(fields, names...), nil
}

func (s *MeasurementService) validateValues(ctx context.Context, userID string, gender models.Gender, values map[string]float64) error {
	if len(values) == 0 {
		return invalid("at least one measurement value is required")
	}
	allowed, err := s.AllowedFields(ctx, userID, gender)
	if err != nil {
		return err
	}
	set := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		set[f] = true
	}
	var unknown []string
	for k, v := range values {
		if !set[k] {
			unknown = append(unknown, k)
			continue
		}
		if v <= 0 {
			return invalid("%s must be greater than zero", k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return invalid("unknown %s measurement fields: %s", gender, strings.Join(unknown, ", "))
	}
	return nil
}

func (s *MeasurementService) CreateMeasurement(ctx context.Context, userID string, req *models.CreateMeasurementRequest) (*models.Measurement, error) {
	if blank(req.CustomerID) || blank(req.GarmentType) {
		return nil, invalid("customer and garment type are required")
	}
	if !req.Gender.Valid() {
		return nil, invalid("unknown gender %q", req.Gender)
	}
	if req.Unit == "" {
		req.Unit = models.UnitInches
	}
	if !req.Unit.Valid() {
		return nil, invalid("unknown unit %q", req.Unit)
	}
	if err := s.validateValues(ctx, userID, req.Gender, req.Values); err != nil {
		return nil, err
	}
	if _, err := s.Customers.GetOwned(ctx, userID, req.CustomerID); err != nil {
		return nil, err
	}

	id, err := s.Repo.Create(ctx, userID, req.Fields())
	if err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, id)
}

func (s *MeasurementService) GetMeasurement(ctx context.Context, userID, id string) (*models.Measurement, error) {
	return s.Repo.GetOwned(ctx, userID, id)
}

// ListMeasurements returns the user's measurements, newest first, optionally
// narrowed to one customer.
func (s *MeasurementService) ListMeasurements(ctx context.Context, userID, customerID string) ([]models.Measurement, error) {
	var constraints []query.Constraint
	if customerID != "" {
		constraints = append(constraints, query.Where("customerId", query.Eq, customerID))
	}
	constraints = append(constraints, query.OrderBy("createdAt", query.Desc))
	return s.Repo.List(ctx, userID, constraints...)
}

func (s *MeasurementService) UpdateMeasurement(ctx context.Context, userID, id string, req *models.UpdateMeasurementRequest) (*models.Measurement, error) {
	if req.GarmentType != nil && blank(*req.GarmentType) {
		return nil, invalid("garment type cannot be empty")
	}
	if req.Unit != nil && !req.Unit.Valid() {
		return nil, invalid("unknown unit %q", *req.Unit)
	}
	fields := req.Fields()
	if len(fields) == 0 {
		return nil, invalid("no fields to update")
	}

	existing, err := s.Repo.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Values != nil {
		if err := s.validateValues(ctx, userID, existing.Gender, req.Values); err != nil {
			return nil, err
		}
	}
	if err := s.Repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, id)
}

func (s *MeasurementService) DeleteMeasurement(ctx context.Context, userID, id string) error {
	if _, err := s.Repo.GetOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}
