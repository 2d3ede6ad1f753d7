package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsEligibleToDonate_NeverDonated(t *testing.T) {
	assert.True(t, IsEligibleToDonate(nil, date("2025-09-10")))
	assert.Equal(t, DaysNeverDonated, DaysSinceLastDonation(nil, date("2025-09-10")))
	assert.Equal(t, 0, DaysUntilEligible(nil, date("2025-09-10")))
}

func TestIsEligibleToDonate_Boundary(t *testing.T) {
	last := date("2025-06-01")

	// 89 days after: not yet eligible
	assert.False(t, IsEligibleToDonate(&last, date("2025-08-29")))
	// exactly 90 days: eligible
	assert.True(t, IsEligibleToDonate(&last, date("2025-08-30")))
}

func TestDaysUntilEligible(t *testing.T) {
	last := date("2025-06-01")
	// 14 days since donation: 76 remaining
	assert.Equal(t, 76, DaysUntilEligible(&last, date("2025-06-15")))
	// past the window: 0
	assert.Equal(t, 0, DaysUntilEligible(&last, date("2025-09-10")))
}

func TestComputeExpiryDate(t *testing.T) {
	assert.Equal(t, date("2025-10-22"), ComputeExpiryDate(date("2025-09-10")))
	assert.Equal(t, date("2025-10-13"), ComputeExpiryDate(date("2025-09-01")))
}

func TestDaysUntilExpiry_NegativeWhenExpired(t *testing.T) {
	assert.Equal(t, -3, DaysUntilExpiry(date("2025-09-01"), date("2025-09-04")))
	assert.Equal(t, 5, DaysUntilExpiry(date("2025-09-09"), date("2025-09-04")))
}

func TestFreshness(t *testing.T) {
	cases := []struct {
		name   string
		expiry string
		asOf   string
		want   FreshnessStatus
	}{
		{"fresh", "2025-10-22", "2025-09-10", FreshnessFresh},
		{"expiring boundary 7 days", "2025-09-17", "2025-09-10", FreshnessExpiringSoon},
		{"expiring 1 day", "2025-09-11", "2025-09-10", FreshnessExpiringSoon},
		{"expired today", "2025-09-10", "2025-09-10", FreshnessExpired},
		{"long expired", "2025-08-01", "2025-09-10", FreshnessExpired},
		{"8 days still fresh", "2025-09-18", "2025-09-10", FreshnessFresh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Freshness(date(tc.expiry), date(tc.asOf)))
		})
	}
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	from := time.Date(2025, 6, 1, 23, 50, 0, 0, time.UTC)
	to := time.Date(2025, 6, 2, 0, 10, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(from, to))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-09-10")
	require.NoError(t, err)
	assert.Equal(t, date("2025-09-10"), d)

	_, err = ParseDate("10/09/2025")
	require.Error(t, err)
	assert.Equal(t, ErrInvalidInput, KindOf(err))
}

func TestNextEligibleDate(t *testing.T) {
	assert.Equal(t, date("2025-12-09"), NextEligibleDate(date("2025-09-10")))
}
