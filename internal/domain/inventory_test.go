package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_AllowedPaths(t *testing.T) {
	cases := []struct {
		from, to UnitStatus
	}{
		{UnitAvailable, UnitReserved},
		{UnitAvailable, UnitUsed},
		{UnitAvailable, UnitExpired},
		{UnitReserved, UnitAvailable},
		{UnitReserved, UnitUsed},
		{UnitReserved, UnitExpired},
		{UnitExpired, UnitReserved},
		{UnitExpired, UnitExpired},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			assert.NoError(t, CanTransition(tc.from, tc.to))
		})
	}
}

func TestCanTransition_UsedIsTerminal(t *testing.T) {
	for _, to := range []UnitStatus{UnitAvailable, UnitReserved, UnitExpired, UnitUsed} {
		err := CanTransition(UnitUsed, to)
		require.Error(t, err, "used -> %s must be rejected", to)
		assert.Equal(t, ErrInvalidTransition, KindOf(err))
	}
}

func TestCanTransition_ExpiredCannotReturnToAvailable(t *testing.T) {
	err := CanTransition(UnitExpired, UnitAvailable)
	require.Error(t, err)
	assert.Equal(t, ErrInvalidTransition, KindOf(err))
}

func TestCanTransition_InvalidTarget(t *testing.T) {
	err := CanTransition(UnitAvailable, "destroyed")
	require.Error(t, err)
	assert.Equal(t, ErrInvalidInput, KindOf(err))
}

func TestValidateUnitDates(t *testing.T) {
	today := date("2025-09-10")

	// normal 42-day shelf life
	assert.NoError(t, ValidateUnitDates(date("2025-09-01"), date("2025-10-13"), today))

	// shelf life over 42 days (collection 2025-09-01, expiry 2025-10-20 = 49 days)
	err := ValidateUnitDates(date("2025-09-01"), date("2025-10-20"), today)
	require.Error(t, err)
	assert.Equal(t, ErrInvalidInput, KindOf(err))

	// expiry before collection
	err = ValidateUnitDates(date("2025-09-01"), date("2025-08-30"), today)
	require.Error(t, err)

	// expiry equal to collection (shelf life must be >= 1 day)
	err = ValidateUnitDates(date("2025-09-01"), date("2025-09-01"), today)
	require.Error(t, err)

	// collection in the future
	err = ValidateUnitDates(date("2025-09-11"), date("2025-10-01"), today)
	require.Error(t, err)
}

func TestUnitFreshnessProjection(t *testing.T) {
	u := &InventoryUnit{
		BloodGroup:     OPos,
		CollectionDate: date("2025-08-01"),
		ExpiryDate:     date("2025-09-12"),
		Status:         UnitAvailable,
	}
	// stored status stays available even when the unit is date-expired
	assert.Equal(t, FreshnessExpired, u.Freshness(date("2025-09-20")))
	assert.Equal(t, UnitAvailable, u.Status)

	m := u.ToJSON(date("2025-09-10"))
	assert.Equal(t, "expiring_soon", m["freshness_status"])
	assert.Equal(t, "available", m["status"])
	assert.Equal(t, 2, m["days_to_expiry"])
}
