package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailor-backend/internal/docstore"
	"tailor-backend/internal/models"
)

// faultyStore wraps a store, failing writes to chosen collections and
// recording every write it sees.
type faultyStore struct {
	docstore.Client
	mu         sync.Mutex
	failInsert map[string]bool
	failDelete map[string]bool
	writes     []string
}

var errInjected = errors.New("connection reset")

func (s *faultyStore) record(op, path string) {
	s.mu.Lock()
	s.writes = append(s.writes, op+" "+path)
	s.mu.Unlock()
}

func (s *faultyStore) Insert(ctx context.Context, path string, fields map[string]any) (string, error) {
	s.record("insert", path)
	if s.failInsert[path] {
		return "", errInjected
	}
	return s.Client.Insert(ctx, path, fields)
}

func (s *faultyStore) Update(ctx context.Context, path, id string, fields map[string]any) error {
	s.record("update", path)
	return s.Client.Update(ctx, path, id, fields)
}

func (s *faultyStore) Delete(ctx context.Context, path, id string) error {
	s.record("delete", path)
	if s.failDelete[path] {
		return errInjected
	}
	return s.Client.Delete(ctx, path, id)
}

type invalidations struct {
	mu    sync.Mutex
	users []string
}

func (i *invalidations) InvalidateUser(_ context.Context, userID string) {
	i.mu.Lock()
	i.users = append(i.users, userID)
	i.mu.Unlock()
}

type fixture struct {
	store     *faultyStore
	repos     *Repos
	cache     *invalidations
	customers *CustomerService
	orders    *OrderService
	payments  *PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &faultyStore{
		Client:     docstore.NewMemoryStore(),
		failInsert: map[string]bool{},
		failDelete: map[string]bool{},
	}
	repos := NewRepos(store)
	cache := &invalidations{}
	return &fixture{
		store:     store,
		repos:     repos,
		cache:     cache,
		customers: NewCustomerService(repos.Customers, cache),
		orders:    NewOrderService(repos, cache),
		payments:  NewPaymentService(repos, cache),
	}
}

func (f *fixture) customer(t *testing.T, userID, name string) *models.Customer {
	t.Helper()
	c, err := f.customers.CreateCustomer(context.Background(), userID, &models.CreateCustomerRequest{
		Name: name, Phone: "555-0100", Gender: models.GenderFemale,
	})
	require.NoError(t, err)
	return c
}

func ptr[T any](v T) *T { return &v }

func TestCustomerService_ValidationBeforeStore(t *testing.T) {
	f := newFixture(t)

	_, err := f.customers.CreateCustomer(context.Background(), "u1", &models.CreateCustomerRequest{Name: "  "})
	assert.True(t, IsValidation(err))

	_, err = f.customers.CreateCustomer(context.Background(), "u1", &models.CreateCustomerRequest{Name: "Ada", Phone: "1", Gender: "other"})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, f.store.writes)
}

func TestCustomerService_CreateAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "u1", "Ada")

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "u1", c.UserID)
	require.NotNil(t, c.CreatedAt)
	require.NotNil(t, c.UpdatedAt)

	updated, err := f.customers.UpdateCustomer(ctx, "u1", c.ID, &models.UpdateCustomerRequest{Phone: ptr("555-0199")})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.Name)
	assert.Equal(t, "555-0199", updated.Phone)
	assert.Equal(t, c.CreatedAt, updated.CreatedAt)

	_, err = f.customers.UpdateCustomer(ctx, "u1", c.ID, &models.UpdateCustomerRequest{Name: ptr("")})
	assert.True(t, IsValidation(err))
}

func TestCustomerService_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "u1", "Ada")

	_, err := f.customers.GetCustomer(ctx, "u2", c.ID)
	assert.True(t, docstore.IsPermissionDenied(err))

	err = f.customers.DeleteCustomer(ctx, "u2", c.ID)
	assert.True(t, docstore.IsPermissionDenied(err))

	_, err = f.customers.UpdateCustomer(ctx, "u1", "missing", &models.UpdateCustomerRequest{Name: ptr("x")})
	assert.True(t, docstore.IsNotFound(err))

	list, err := f.customers.ListCustomers(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "u1", "Ada")

	req := func() *models.UpdateCustomerRequest {
		return &models.UpdateCustomerRequest{Address: ptr("12 Loom St"), Notes: ptr("prefers slim fit")}
	}
	first, err := f.customers.UpdateCustomer(ctx, "u1", c.ID, req())
	require.NoError(t, err)
	second, err := f.customers.UpdateCustomer(ctx, "u1", c.ID, req())
	require.NoError(t, err)

	first.UpdatedAt, second.UpdatedAt = nil, nil
	assert.Equal(t, first, second)
}

func TestOrderService_CreateWithDeposit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "u1", "Ada")

	o, err := f.orders.CreateOrder(ctx, "u1", &models.CreateOrderRequest{
		CustomerID:     c.ID,
		Style:          "Three-piece suit",
		TotalCost:      ptr(100.0),
		InitialPayment: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, o.Status)
	assert.False(t, o.Collected)
	assert.False(t, o.ArrivalDate.IsZero())

	detail, err := f.orders.GetOrderDetail(ctx, "u1", o.ID)
	require.NoError(t, err)
	require.Len(t, detail.Payments, 1)
	assert.True(t, detail.Payments[0].Deposit)
	assert.Equal(t, 20.0, detail.Payments[0].Amount)
	assert.Equal(t, "80", detail.Balance.Outstanding.String())

	_, err = f.payments.CreatePayment(ctx, "u1", &models.CreatePaymentRequest{OrderID: o.ID, Amount: 30})
	require.NoError(t, err)
	detail, err = f.orders.GetOrderDetail(ctx, "u1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, "50", detail.Balance.Outstanding.String())
	assert.Contains(t, f.cache.users, "u1")
}

func TestOrderService_CreateWithoutDepositWritesOnce(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "u1", "Ada")
	f.store.writes = nil

	_, err := f.orders.CreateOrder(context.Background(), "u1", &models.CreateOrderRequest{CustomerID: c.ID, Style: "Shirt", MaterialCost: 40})
	require.NoError(t, err)
	assert.Equal(t, []string{"insert orders"}, f.store.writes)
}

func TestOrderService_DepositFailureLeavesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "u1", "Ada")
	f.store.failInsert[models.PaymentsCollection] = true

	_, err := f.orders.CreateOrder(ctx, "u1", &models.CreateOrderRequest{CustomerID: c.ID, Style: "Gown", TotalCost: ptr(300.0), InitialPayment: 50})
	se, ok := AsStepError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"insert order"}, se.Completed)
	assert.Equal(t, "insert deposit payment", se.Failed)
	assert.ErrorIs(t, err, errInjected)

	orders, err := f.orders.ListOrders(ctx, "u1", "", "")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	payments, err := f.payments.ListPayments(ctx, "u1", orders[0].ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestOrderService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "u1", "Ada")
	f.store.writes = nil

	tests := []struct {
		name string
		req  models.CreateOrderRequest
	}{
		{"missing style", models.CreateOrderRequest{CustomerID: c.ID}},
		{"negative cost", models.CreateOrderRequest{CustomerID: c.ID, Style: "x", MaterialCost: -1}},
		{"negative deposit", models.CreateOrderRequest{CustomerID: c.ID, Style: "x", InitialPayment: -5}},
		{"bad status", models.CreateOrderRequest{CustomerID: c.ID, Style: "x", Status: "Lost"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(context.Background(), "u1", &tt.req)
			assert.True(t, IsValidation(err))
		})
	}
	assert.Empty(t, f.store.writes)

	_, err := f.orders.CreateOrder(context.Background(), "u2", &models.CreateOrderRequest{CustomerID: c.ID, Style: "x"})
	assert.True(t, docstore.IsPermissionDenied(err))
}

func TestOrderService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "u1", "Ada")
	o, err := f.orders.CreateOrder(ctx, "u1", &models.CreateOrderRequest{CustomerID: c.ID, Style: "Suit", TotalCost: ptr(100.0), InitialPayment: 20})
	require.NoError(t, err)
	_, err = f.payments.CreatePayment(ctx, "u1", &models.CreatePaymentRequest{OrderID: o.ID, Amount: 30})
	require.NoError(t, err)

	require.NoError(t, f.orders.DeleteOrder(ctx, "u1", o.ID))

	_, err = f.orders.GetOrder(ctx, "u1", o.ID)
	assert.True(t, docstore.IsNotFound(err))
	payments, err := f.payments.ListPayments(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestOrderService_DeleteInterruptedLeavesOrphanOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "u1", "Ada")
	o, err := f.orders.CreateOrder(ctx, "u1", &models.CreateOrderRequest{CustomerID: c.ID, Style: "Suit", TotalCost: ptr(100.0)})
	require.NoError(t, err)
	for _, amt := range []float64{30, 40} {
		_, err = f.payments.CreatePayment(ctx, "u1", &models.CreatePaymentRequest{OrderID: o.ID, Amount: amt})
		require.NoError(t, err)
	}
	f.store.failDelete[models.OrdersCollection] = true

	err = f.orders.DeleteOrder(ctx, "u1", o.ID)
	se, ok := AsStepError(err)
	require.True(t, ok)
	assert.Len(t, se.Completed, 2)
	assert.Equal(t, "delete order "+o.ID, se.Failed)

	// The order survives with no payments; it is visible, not hidden.
	detail, err := f.orders.GetOrderDetail(ctx, "u1", o.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Payments)
	assert.Equal(t, "100", detail.Balance.Outstanding.String())

	// Retrying once the store recovers finishes the job.
	f.store.failDelete[models.OrdersCollection] = false
	require.NoError(t, f.orders.DeleteOrder(ctx, "u1", o.ID))
}

func TestOrderService_CollectedImpliesCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "u1", "Ada")
	o, err := f.orders.CreateOrder(ctx, "u1", &models.CreateOrderRequest{CustomerID: c.ID, Style: "Suit", MaterialCost: 10})
	require.NoError(t, err)

	_, err = f.orders.UpdateOrder(ctx, "u1", o.ID, &models.UpdateOrderRequest{Collected: ptr(true), Status: ptr(models.StatusInProgress)})
	assert.True(t, IsValidation(err))

	updated, err := f.orders.UpdateOrder(ctx, "u1", o.ID, &models.UpdateOrderRequest{Collected: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.Collected)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	_, err = f.orders.UpdateOrder(ctx, "u1", o.ID, &models.UpdateOrderRequest{Status: ptr(models.StatusReadyForFitting)})
	assert.True(t, IsValidation(err))
}

func TestOrderService_MarkCollected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "u1", "Ada")
	o, err := f.orders.CreateOrder(ctx, "u1", &models.CreateOrderRequest{CustomerID: c.ID, Style: "Suit", Status: models.StatusReadyForFitting})
	require.NoError(t, err)

	done, err := f.orders.MarkCollected(ctx, "u1", o.ID)
	require.NoError(t, err)
	assert.True(t, done.Collected)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.NotNil(t, done.CollectionDate)

	list, err := f.orders.ListOrders(ctx, "u1", "", models.StatusCompleted)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func (f *fixture) depositOrder(t *testing.T, userID string) *models.Order {
	t.Helper()
	c := f.customer(t, userID, "Ada")
	o, err := f.orders.CreateOrder(context.Background(), userID, &models.CreateOrderRequest{
		CustomerID: c.ID, Style: "Suit", TotalCost: ptr(100.0), InitialPayment: 20,
	})
	require.NoError(t, err)
	return o
}

func depositOf(t *testing.T, detail *OrderDetail) *models.Payment {
	t.Helper()
	for i := range detail.Payments {
		if detail.Payments[i].Deposit {
			return &detail.Payments[i]
		}
	}
	return nil
}

func TestPaymentService_DepositFollowsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.depositOrder(t, "u1")
	detail, err := f.orders.GetOrderDetail(ctx, "u1", o.ID)
	require.NoError(t, err)
	deposit := depositOf(t, detail)
	require.NotNil(t, deposit)

	_, err = f.payments.UpdatePayment(ctx, "u1", deposit.ID, &models.UpdatePaymentRequest{Amount: ptr(50.0)})
	assert.True(t, IsValidation(err))
	assert.True(t, IsValidation(f.payments.DeletePayment(ctx, "u1", deposit.ID)))

	detail, err = f.orders.GetOrderDetail(ctx, "u1", o.ID)
	require.NoError(t, err)
	require.Len(t, detail.Payments, 1)
	assert.Equal(t, 20.0, detail.Payments[0].Amount)
	assert.Equal(t, "80", detail.Balance.Outstanding.String())
}

func TestOrderService_InitialPaymentSyncsDeposit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.depositOrder(t, "u1")

	tests := []struct {
		name        string
		initial     float64
		deposit     float64
		outstanding string
	}{
		{"raise", 50, 50, "50"},
		{"clear", 0, 0, "100"},
		{"restore", 30, 30, "70"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.UpdateOrder(ctx, "u1", o.ID, &models.UpdateOrderRequest{InitialPayment: ptr(tt.initial)})
			require.NoError(t, err)

			detail, err := f.orders.GetOrderDetail(ctx, "u1", o.ID)
			require.NoError(t, err)
			deposit := depositOf(t, detail)
			if tt.deposit == 0 {
				assert.Nil(t, deposit)
			} else {
				require.NotNil(t, deposit)
				assert.Equal(t, tt.deposit, deposit.Amount)
			}
			assert.Equal(t, tt.outstanding, detail.Balance.Outstanding.String())
		})
	}
}

func TestOrderService_DepositSyncFailureIsReported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.depositOrder(t, "u1")
	f.store.failDelete[models.PaymentsCollection] = true

	_, err := f.orders.UpdateOrder(ctx, "u1", o.ID, &models.UpdateOrderRequest{InitialPayment: ptr(0.0)})
	se, ok := AsStepError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"update order"}, se.Completed)
	assert.Equal(t, "sync deposit payment", se.Failed)
}

func TestOrderService_MeasurementMustMatchCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	measurements := NewMeasurementService(f.repos)
	ada := f.customer(t, "u1", "Ada")
	grace := f.customer(t, "u1", "Grace")
	other := f.customer(t, "u2", "Linus")

	measure := func(userID, customerID string) string {
		m, err := measurements.CreateMeasurement(ctx, userID, &models.CreateMeasurementRequest{
			CustomerID: customerID, GarmentType: "blouse", Gender: models.GenderFemale,
			Values: map[string]float64{"bust": 34},
		})
		require.NoError(t, err)
		return m.ID
	}
	adas := measure("u1", ada.ID)
	graces := measure("u1", grace.ID)
	foreign := measure("u2", other.ID)

	_, err := f.orders.CreateOrder(ctx, "u1", &models.CreateOrderRequest{CustomerID: ada.ID, Style: "Blouse", MeasurementID: "missing"})
	assert.True(t, docstore.IsNotFound(err))

	_, err = f.orders.CreateOrder(ctx, "u1", &models.CreateOrderRequest{CustomerID: ada.ID, Style: "Blouse", MeasurementID: foreign})
	assert.True(t, docstore.IsPermissionDenied(err))

	_, err = f.orders.CreateOrder(ctx, "u1", &models.CreateOrderRequest{CustomerID: ada.ID, Style: "Blouse", MeasurementID: graces})
	assert.True(t, IsValidation(err))

	o, err := f.orders.CreateOrder(ctx, "u1", &models.CreateOrderRequest{CustomerID: ada.ID, Style: "Blouse", MeasurementID: adas})
	require.NoError(t, err)
	assert.Equal(t, adas, o.MeasurementID)

	_, err = f.orders.UpdateOrder(ctx, "u1", o.ID, &models.UpdateOrderRequest{MeasurementID: ptr(graces)})
	assert.True(t, IsValidation(err))
	_, err = f.orders.UpdateOrder(ctx, "u1", o.ID, &models.UpdateOrderRequest{MeasurementID: ptr("")})
	require.NoError(t, err)
}

func TestPaymentService_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.payments.CreatePayment(ctx, "u1", &models.CreatePaymentRequest{OrderID: "o1", Amount: 0})
	assert.True(t, IsValidation(err))

	_, err = f.payments.CreatePayment(ctx, "u1", &models.CreatePaymentRequest{OrderID: "missing", Amount: 10})
	assert.True(t, docstore.IsNotFound(err))

	_, err = f.payments.UpdatePayment(ctx, "u1", "p1", &models.UpdatePaymentRequest{Amount: ptr(-3.0)})
	assert.True(t, IsValidation(err))
}

func TestMeasurementService_Fields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "u1", "Ada")
	measurements := NewMeasurementService(f.repos)
	custom := NewCustomMeasurementService(f.repos.CustomMeasurements)

	_, err := measurements.CreateMeasurement(ctx, "u1", &models.CreateMeasurementRequest{
		CustomerID: c.ID, GarmentType: "blouse", Gender: models.GenderFemale,
		Values: map[string]float64{"bust": 34, "chest": 36},
	})
	assert.True(t, IsValidation(err), "chest is a male field")

	_, err = measurements.CreateMeasurement(ctx, "u1", &models.CreateMeasurementRequest{
		CustomerID: c.ID, GarmentType: "blouse", Gender: models.GenderFemale,
		Values: map[string]float64{"bust": 0},
	})
	assert.True(t, IsValidation(err))

	_, err = custom.CreateCustomMeasurement(ctx, "u1", &models.CreateCustomMeasurementRequest{Name: "backWidth", Gender: models.GenderFemale})
	require.NoError(t, err)
	_, err = custom.CreateCustomMeasurement(ctx, "u1", &models.CreateCustomMeasurementRequest{Name: "backWidth", Gender: models.GenderFemale})
	assert.True(t, IsValidation(err))
	_, err = custom.CreateCustomMeasurement(ctx, "u1", &models.CreateCustomMeasurementRequest{Name: "bust", Gender: models.GenderFemale})
	assert.True(t, IsValidation(err))

	m, err := measurements.CreateMeasurement(ctx, "u1", &models.CreateMeasurementRequest{
		CustomerID: c.ID, GarmentType: "blouse", Gender: models.GenderFemale,
		Values: map[string]float64{"bust": 34, "backWidth": 14.5},
	})
	require.NoError(t, err)
	assert.Equal(t, models.UnitInches, m.Unit)
	assert.Equal(t, 14.5, m.Values["backWidth"])

	// Another user's custom fields do not apply.
	_, err = measurements.CreateMeasurement(ctx, "u2", &models.CreateMeasurementRequest{
		CustomerID: c.ID, GarmentType: "blouse", Gender: models.GenderFemale,
		Values: map[string]float64{"backWidth": 14.5},
	})
	assert.True(t, IsValidation(err))

	updated, err := measurements.UpdateMeasurement(ctx, "u1", m.ID, &models.UpdateMeasurementRequest{Values: map[string]float64{"bust": 35}})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"bust": 35}, updated.Values)

	fields, err := measurements.AllowedFields(ctx, "u1", models.GenderFemale)
	require.NoError(t, err)
	assert.Equal(t, "backWidth", fields[len(fields)-1])
}

func TestProfileService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profiles := NewProfileService(f.repos.Profiles, "USD")
	user := &models.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}

	p, err := profiles.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = profiles.EnsureProfile(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "USD", p.DefaultCurrency)
	assert.Equal(t, models.UnitInches, p.DefaultUnit)

	again, err := profiles.EnsureProfile(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)

	_, err = profiles.UpdateProfile(ctx, user, &models.UpdateProfileRequest{DefaultCurrency: ptr("ZZZZ")})
	assert.True(t, IsValidation(err))

	updated, err := profiles.UpdateProfile(ctx, user, &models.UpdateProfileRequest{DefaultCurrency: ptr("inr"), BusinessName: ptr("Stitch & Co")})
	require.NoError(t, err)
	assert.Equal(t, "INR", updated.DefaultCurrency)
	assert.Equal(t, "Stitch & Co", updated.BusinessName)
}

func TestPresetService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	presets := NewPresetService(f.repos.Presets)

	_, err := presets.SavePreset(ctx, "u1", &models.SavePresetRequest{Name: "Suit", Gender: models.GenderMale, GarmentType: "suit"})
	assert.True(t, IsValidation(err))

	p, err := presets.SavePreset(ctx, "u1", &models.SavePresetRequest{
		Name: "Suit", Gender: models.GenderMale, GarmentType: "suit",
		Fields: []string{"chest", " waist ", "chest", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"chest", "waist"}, p.Fields)

	list, err := presets.ListPresets(ctx, "u1", models.GenderFemale)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, presets.DeletePreset(ctx, "u1", p.ID))
}

func TestDashboardService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dash := NewDashboardService(f.repos)
	c := f.customer(t, "u1", "Ada")
	f.customer(t, "u2", "Grace")

	_, err := f.orders.CreateOrder(ctx, "u1", &models.CreateOrderRequest{CustomerID: c.ID, Style: "Suit", TotalCost: ptr(100.0), InitialPayment: 20})
	require.NoError(t, err)

	d, err := dash.GetDashboard(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, d.TotalCustomers)
	assert.Equal(t, 1, d.TotalOrders)
	assert.Equal(t, 1, d.TotalPayments)
	assert.Equal(t, "80", d.TotalOutstanding.String())
	assert.Equal(t, "20", d.TotalCollected.String())
	assert.WithinDuration(t, time.Now(), d.GeneratedAt, time.Minute)

	balances, err := dash.GetBalances(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "Ada", balances[0].Name)
}

func TestDashboardService_PropagatesErrors(t *testing.T) {
	store := docstore.NewMemoryStore()
	dash := NewDashboardService(NewRepos(store))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dash.GetDashboard(ctx, "u1")
	assert.Equal(t, docstore.CodeUnavailable, docstore.CodeOf(err))
}

func TestRunSteps_StopsAtFirstFailure(t *testing.T) {
	var ran []string
	mk := func(name string, err error) step {
		return step{name: name, run: func(context.Context) error {
			ran = append(ran, name)
			return err
		}}
	}
	err := runSteps(context.Background(), "demo", []step{mk("a", nil), mk("b", errInjected), mk("c", nil)})

	se, ok := AsStepError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, se.Completed)
	assert.Equal(t, "b", se.Failed)
	assert.Equal(t, []string{"a", "b"}, ran)
	assert.Contains(t, err.Error(), `step "b" failed after [a]`)

	assert.NoError(t, runSteps(context.Background(), "empty", nil))
}
