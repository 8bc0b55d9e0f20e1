package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayBoundaries(t *testing.T) {
	require.NoError(t, SetLocation("Asia/Kolkata"))
	t.Cleanup(func() { _ = SetLocation("UTC") })

	// 20:00 UTC is already the next day in Kolkata.
	instant := time.Date(2026, 4, 10, 20, 0, 0, 0, time.UTC)

	start := StartOfDay(instant)
	assert.Equal(t, "2026-04-11 00:00:00", start.Format(DateTimeLayout))
	assert.Equal(t, "2026-04-11 23:59:59", EndOfDay(instant).Format(DateTimeLayout))
	assert.Equal(t, "11 Apr 2026", Format(instant, DisplayDate))
}

func TestSetLocation_Unknown(t *testing.T) {
	assert.Error(t, SetLocation("Mars/Olympus"))
	assert.Equal(t, "UTC", Location().String())
}
