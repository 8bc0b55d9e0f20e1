package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailor-backend/internal/format"
	"tailor-backend/internal/models"
	"tailor-backend/internal/summary"
)

func TestReceiptService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fm, err := format.New("en-US", "USD")
	require.NoError(t, err)
	profiles := NewProfileService(f.repos.Profiles, "USD")
	receipts := NewReceiptService(f.orders, f.customers, profiles, fm)

	c := f.customer(t, "u1", "Zoë")
	o, err := f.orders.CreateOrder(ctx, "u1", &models.CreateOrderRequest{
		CustomerID: c.ID, Style: "Bridal gown", TotalCost: ptr(500.0), InitialPayment: 100,
	})
	require.NoError(t, err)
	_, err = profiles.UpdateProfile(ctx, &models.User{ID: "u1", Name: "Ada"}, &models.UpdateProfileRequest{
		BusinessName: ptr("Ada's Atelier"), BusinessPhone: ptr("555-0100"),
	})
	require.NoError(t, err)

	data, err := receipts.GetReceiptData(ctx, "u1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada's Atelier", data.Business)
	assert.Equal(t, "Zoë", data.CustomerName)
	assert.Equal(t, "400", data.Detail.Balance.Outstanding.String())

	pdf, err := receipts.GenerateReceiptPDF(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	// A deleted customer still yields a receipt.
	require.NoError(t, f.customers.DeleteCustomer(ctx, "u1", c.ID))
	data, err = receipts.GetReceiptData(ctx, "u1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, summary.UnknownName, data.CustomerName)

	_, err = receipts.GetReceiptData(ctx, "u2", o.ID)
	assert.Error(t, err)
}
