package services

import (
	"context"
	"strings"

	"tailor-backend/internal/docstore"
	"tailor-backend/internal/models"
	"tailor-backend/internal/repositories"
	"tailor-backend/internal/timeutil"
)

// Invalidator drops cached derived data for a user after a mutation.
type Invalidator interface {
	InvalidateUser(ctx context.Context, userID string)
}

// Repos bundles the typed collections services read and write.
type Repos struct {
	Customers          *repositories.Collection[models.Customer]
	Measurements       *repositories.Collection[models.Measurement]
	Orders             *repositories.Collection[models.Order]
	Payments           *repositories.Collection[models.Payment]
	Profiles           *repositories.Collection[models.UserProfile]
	Presets            *repositories.Collection[models.MeasurementPreset]
	CustomMeasurements *repositories.Collection[models.CustomMeasurement]
}

func NewRepos(store docstore.Client) *Repos {
	return &Repos{
		Customers:          repositories.NewCollection[models.Customer](store, models.CustomersCollection),
		Measurements:       repositories.NewCollection[models.Measurement](store, models.MeasurementsCollection),
		Orders:             repositories.NewCollection[models.Order](store, models.OrdersCollection),
		Payments:           repositories.NewCollection[models.Payment](store, models.PaymentsCollection),
		Profiles:           repositories.NewCollection[models.UserProfile](store, models.ProfilesCollection),
		Presets:            repositories.NewCollection[models.MeasurementPreset](store, models.PresetsCollection),
		CustomMeasurements: repositories.NewCollection[models.CustomMeasurement](store, models.CustomMeasurementsCollection),
	}
}

type nopInvalidator struct{}

func (nopInvalidator) InvalidateUser(context.Context, string) {}

func orNop(inv Invalidator) Invalidator {
	if inv == nil {
		return nopInvalidator{}
	}
	return inv
}

var now = timeutil.Now

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
