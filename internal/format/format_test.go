package format

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsBadInput(t *testing.T) {
	_, err := New("not a locale!", "USD")
	assert.Error(t, err)

	_, err = New("en-US", "XYZW")
	assert.Error(t, err)
}

func TestMoney(t *testing.T) {
	f, err := New("en-US", "USD")
	require.NoError(t, err)

	out := f.Money(decimal.RequireFromString("1250.5"), "")
	assert.True(t, strings.HasPrefix(out, "$"), out)
	assert.Contains(t, out, "1,250.50")

	iso := f.MoneyISO(decimal.RequireFromString("99"), "EUR")
	assert.True(t, strings.HasPrefix(iso, "EUR"), iso)
	assert.Contains(t, iso, "99.00")

	assert.Equal(t, f.Currency("USD"), f.Currency("bogus"))
}

func TestNumberAndDate(t *testing.T) {
	f, err := New("en-US", "USD")
	require.NoError(t, err)

	assert.Equal(t, "38.25", f.Number(38.25))
	assert.Equal(t, "03 Feb 2026", f.Date(time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)))
}
