package services

import (
	"context"
	"strings"

	"golang.org/x/text/currency"

	"tailor-backend/internal/models"
	"tailor-backend/internal/query"
	"tailor-backend/internal/repositories"
)

// ProfileService keeps one profile document per user.
type ProfileService struct {
	Repo            *repositories.Collection[models.UserProfile]
	DefaultCurrency string
}

func NewProfileService(repo *repositories.Collection[models.UserProfile], defaultCurrency string) *ProfileService {
	return &ProfileService{Repo: repo, DefaultCurrency: defaultCurrency}
}

// GetProfile returns the user's profile, or nil when none exists yet.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profiles, err := s.Repo.List(ctx, userID, query.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// EnsureProfile returns the user's profile, creating one with defaults on
// first sign-in.
func (s *ProfileService) EnsureProfile(ctx context.Context, user *models.User) (*models.UserProfile, error) {
	p, err := s.GetProfile(ctx, user.ID)
	if err != nil || p != nil {
		return p, err
	}
	id, err := s.Repo.Create(ctx, user.ID, map[string]any{
		"name":            user.Name,
		"email":           user.Email,
		"defaultUnit":     string(models.UnitInches),
		"defaultCurrency": s.DefaultCurrency,
	})
	if err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, id)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, user *models.User, req *models.UpdateProfileRequest) (*models.UserProfile, error) {
	if req.Name != nil && blank(*req.Name) {
		return nil, invalid("name cannot be empty")
	}
	if req.DefaultUnit != nil && !req.DefaultUnit.Valid() {
		return nil, invalid("unknown unit %q", *req.DefaultUnit)
	}
	if req.DefaultCurrency != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.DefaultCurrency))
		if _, err := currency.ParseISO(code); err != nil {
			return nil, invalid("unknown currency %q", *req.DefaultCurrency)
		}
		req.DefaultCurrency = &code
	}
	fields := req.Fields()
	if len(fields) == 0 {
		return nil, invalid("no fields to update")
	}

	p, err := s.EnsureProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, p.ID, fields); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, p.ID)
}
