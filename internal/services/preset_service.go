package services

import (
	"context"
	"strings"

	"tailor-backend/internal/models"
	"tailor-backend/internal/query"
	"tailor-backend/internal/repositories"
)

type PresetService struct {
	Repo *repositories.Collection[models.MeasurementPreset]
}

func NewPresetService(repo *repositories.Collection[models.MeasurementPreset]) *PresetService {
	return &PresetService{Repo: repo}
}

func (s *PresetService) SavePreset(ctx context.Context, userID string, req *models.SavePresetRequest) (*models.MeasurementPreset, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || blank(req.GarmentType) {
		return nil, invalid("name and garment type are required")
	}
	if !req.Gender.Valid() {
		return nil, invalid("unknown gender %q", req.Gender)
	}
	seen := map[string]bool{}
	fields := req.Fields[:0]
	for _, f := range req.Fields {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return nil, invalid("a preset needs at least one field")
	}
	req.Fields = fields

	id, err := s.Repo.Create(ctx, userID, req.FieldsMap())
	if err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, id)
}

// ListPresets returns the user's presets by name, optionally for one gender.
func (s *PresetService) ListPresets(ctx context.Context, userID string, gender models.Gender) ([]models.MeasurementPreset, error) {
	var constraints []query.Constraint
	if gender != "" {
		constraints = append(constraints, query.Where("gender", query.Eq, string(gender)))
	}
	constraints = append(constraints, query.OrderBy("name", query.Asc))
	return s.Repo.List(ctx, userID, constraints...)
}

func (s *PresetService) DeletePreset(ctx context.Context, userID, id string) error {
	if _, err := s.Repo.GetOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}
