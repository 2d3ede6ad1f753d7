package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bloodlink/internal/domain"
	"bloodlink/internal/repository"
)

var monitorTestNow = time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)

type monitorFixture struct {
	requests  *repository.MemoryRequestsRepo
	donors    *repository.MemoryDonorsRepo
	inventory *repository.MemoryInventoryRepo
	svc       MonitorService
}

func setupMonitorService(t *testing.T) *monitorFixture {
	requests := repository.NewMemoryRequestsRepo()
	donors := repository.NewMemoryDonorsRepo()
	inventory := repository.NewMemoryInventoryRepo()
	svc := NewMonitorService(requests, donors, inventory, zap.NewNop()).(*monitorService)
	svc.now = func() time.Time { return monitorTestNow }
	return &monitorFixture{requests: requests, donors: donors, inventory: inventory, svc: svc}
}

func TestOverview_CompatibleDonorsAndSummary(t *testing.T) {
	f := setupMonitorService(t)
	ctx := context.Background()

	_, err := f.requests.CreateRequest(ctx, &domain.BloodRequest{
		RequesterName: "Mary Jones", RequesterContact: "+1 555 000 4444",
		RequesterEmail: "mary@example.com", BloodGroup: domain.APos,
		Location: "Springfield", Urgency: domain.UrgencyHigh,
		Hospital: "City Hospital", RequiredDate: monitorTestNow.AddDate(0, 0, 5),
		UnitsNeeded: 2, Status: domain.RequestPending,
	})
	require.NoError(t, err)

	// O- donor can give to A+; donated 30 days ago so 26 more to the 56-day window
	last := monitorTestNow.AddDate(0, 0, -30)
	_, err = f.donors.CreateDonor(ctx, &domain.Donor{
		Name: "John Smith", Age: 30, Gender: domain.GenderMale,
		BloodGroup: domain.ONeg, Contact: "+1 555 000 1111",
		Location: "Springfield", Email: "john@example.com",
		PasswordHash: "x", Verified: true, LastDonationDate: &last,
	})
	require.NoError(t, err)
	// B+ cannot give to A+: excluded
	_, err = f.donors.CreateDonor(ctx, &domain.Donor{
		Name: "Paul Brown", Age: 35, Gender: domain.GenderMale,
		BloodGroup: domain.BPos, Contact: "+1 555 000 5555",
		Location: "Springfield", Email: "paul@example.com",
		PasswordHash: "x", Verified: true,
	})
	require.NoError(t, err)

	collection := monitorTestNow.AddDate(0, 0, -10)
	_, err = f.inventory.CreateUnit(ctx, &domain.InventoryUnit{
		BloodGroup: domain.APos, CollectionDate: collection,
		ExpiryDate: domain.ComputeExpiryDate(collection),
		Status:     domain.UnitAvailable, Location: "Springfield",
	})
	require.NoError(t, err)

	resp, err := f.svc.Overview(ctx, OverviewRequest{RequesterEmail: "mary@example.com"})
	require.NoError(t, err)

	require.Len(t, resp.Requests, 1)
	require.Len(t, resp.CompatibleDonors, 1)
	assert.Equal(t, "O-", resp.CompatibleDonors[0]["blood_group"])
	assert.Equal(t, "Available in 26 days", resp.CompatibleDonors[0]["availability"])

	require.Len(t, resp.InventorySummary, 1)
	assert.Equal(t, domain.APos, resp.InventorySummary[0].BloodGroup)
	assert.Equal(t, 1, resp.InventorySummary[0].UnitsAvailable)
}

func TestOverview_RequesterOwnDonorRecordExcluded(t *testing.T) {
	f := setupMonitorService(t)
	ctx := context.Background()

	_, err := f.requests.CreateRequest(ctx, &domain.BloodRequest{
		RequesterName: "Mary Jones", RequesterContact: "+1 555 000 4444",
		RequesterEmail: "mary@example.com", BloodGroup: domain.ONeg,
		Location: "Springfield", Urgency: domain.UrgencyHigh,
		Hospital: "City Hospital", RequiredDate: monitorTestNow.AddDate(0, 0, 5),
		UnitsNeeded: 1, Status: domain.RequestPending,
	})
	require.NoError(t, err)

	// the requester is also a registered O- donor; she should not be
	// suggested to herself
	_, err = f.donors.CreateDonor(ctx, &domain.Donor{
		Name: "Mary Jones", Age: 28, Gender: domain.GenderFemale,
		BloodGroup: domain.ONeg, Contact: "+1 555 000 4444",
		Location: "Springfield", Email: "mary@example.com",
		PasswordHash: "x", Verified: true,
	})
	require.NoError(t, err)

	resp, err := f.svc.Overview(ctx, OverviewRequest{RequesterEmail: "mary@example.com"})
	require.NoError(t, err)
	assert.Empty(t, resp.CompatibleDonors)
}

func TestOverview_NoRequests(t *testing.T) {
	f := setupMonitorService(t)

	resp, err := f.svc.Overview(context.Background(), OverviewRequest{RequesterEmail: "mary@example.com"})
	require.NoError(t, err)
	assert.Empty(t, resp.Requests)
	assert.Empty(t, resp.CompatibleDonors)
	assert.Empty(t, resp.InventorySummary)
}

func TestDashboardStats(t *testing.T) {
	f := setupMonitorService(t)
	ctx := context.Background()

	_, err := f.donors.CreateDonor(ctx, &domain.Donor{
		Name: "John Smith", Age: 30, Gender: domain.GenderMale,
		BloodGroup: domain.OPos, Contact: "+1 555 000 1111",
		Location: "Springfield", Email: "john@example.com",
		PasswordHash: "x", Verified: true,
	})
	require.NoError(t, err)

	_, err = f.requests.CreateRequest(ctx, &domain.BloodRequest{
		RequesterName: "Mary Jones", RequesterEmail: "mary@example.com",
		RequesterContact: "+1 555 000 4444", BloodGroup: domain.APos,
		Location: "Springfield", Urgency: domain.UrgencyCritical,
		Hospital: "City Hospital", RequiredDate: monitorTestNow.AddDate(0, 0, 2),
		UnitsNeeded: 2, Status: domain.RequestPending,
	})
	require.NoError(t, err)

	collection := monitorTestNow.AddDate(0, 0, -10)
	_, err = f.inventory.CreateUnit(ctx, &domain.InventoryUnit{
		BloodGroup: domain.OPos, CollectionDate: collection,
		ExpiryDate: domain.ComputeExpiryDate(collection),
		Status:     domain.UnitAvailable, Location: "Springfield",
	})
	require.NoError(t, err)

	stats, err := f.svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Donors.Total)
	assert.Equal(t, 1, stats.Donors.Verified)
	assert.Equal(t, 1, stats.Requests.Pending)
	assert.Equal(t, 1, stats.Requests.Critical)
	assert.Equal(t, 1, stats.Inventory.Available)
	require.Len(t, stats.Distribution, 1)
	assert.Equal(t, domain.OPos, stats.Distribution[0].BloodGroup)
}
