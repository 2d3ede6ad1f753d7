package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDonationDate(t *testing.T) {
	today := date("2025-09-10")

	assert.NoError(t, ValidateDonationDate(date("2025-09-10"), today))
	assert.NoError(t, ValidateDonationDate(date("2025-01-15"), today))

	err := ValidateDonationDate(date("2025-09-11"), today)
	require.Error(t, err)
	assert.Equal(t, ErrInvalidInput, KindOf(err))

	err = ValidateDonationDate(date("2024-06-01"), today)
	require.Error(t, err)
}

func TestValidateUnitsDonated(t *testing.T) {
	assert.Error(t, ValidateUnitsDonated(0))
	assert.NoError(t, ValidateUnitsDonated(1))
	assert.NoError(t, ValidateUnitsDonated(3))
	assert.Error(t, ValidateUnitsDonated(4))
}

func TestTooSoonCarriesRemainingDays(t *testing.T) {
	err := TooSoon(76)
	assert.Equal(t, ErrDonationTooSoon, KindOf(err))
	assert.Equal(t, 76, err.RemainingDays)
	assert.Contains(t, err.Error(), "76 more days")
}

func TestUrgencyRank(t *testing.T) {
	assert.True(t, UrgencyCritical.Rank() < UrgencyHigh.Rank())
	assert.True(t, UrgencyHigh.Rank() < UrgencyMedium.Rank())
	assert.True(t, UrgencyMedium.Rank() < UrgencyLow.Rank())
}
