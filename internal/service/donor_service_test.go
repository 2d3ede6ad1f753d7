package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"bloodlink/internal/domain"
	"bloodlink/internal/repository"
)

var donorTestNow = time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)

func setupDonorService(t *testing.T) (*repository.MemoryDonorsRepo, *repository.MemoryInventoryRepo, DonorService) {
	donors := repository.NewMemoryDonorsRepo()
	inventory := repository.NewMemoryInventoryRepo()
	svc := NewDonorService(donors, inventory, zap.NewNop()).(*donorService)
	svc.now = func() time.Time { return donorTestNow }
	return donors, inventory, svc
}

func validRegistration() RegisterDonorRequest {
	return RegisterDonorRequest{
		Name:       "Jane Doe",
		Age:        25,
		Gender:     domain.GenderFemale,
		BloodGroup: "A-",
		Contact:    "+1 555 000 2222",
		Location:   "Springfield",
		Email:      "jane@example.com",
		Password:   "secret123",
	}
}

func TestRegister_Success(t *testing.T) {
	donors, _, svc := setupDonorService(t)

	resp, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.DonorID)

	stored, err := donors.GetDonorByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.True(t, stored.Verified)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	_, _, svc := setupDonorService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = svc.Register(ctx, validRegistration())
	assert.Equal(t, domain.ErrEmailTaken, domain.KindOf(err))
}

func TestRegister_Validation(t *testing.T) {
	_, _, svc := setupDonorService(t)

	cases := []struct {
		name   string
		mutate func(*RegisterDonorRequest)
		kind   domain.ErrorKind
	}{
		{"too young", func(r *RegisterDonorRequest) { r.Age = 17 }, domain.ErrInvalidInput},
		{"too old", func(r *RegisterDonorRequest) { r.Age = 66 }, domain.ErrInvalidInput},
		{"bad blood group", func(r *RegisterDonorRequest) { r.BloodGroup = "AB" }, domain.ErrInvalidBloodType},
		{"bad gender", func(r *RegisterDonorRequest) { r.Gender = "unknown" }, domain.ErrInvalidInput},
		{"bad email", func(r *RegisterDonorRequest) { r.Email = "not-an-email" }, domain.ErrInvalidInput},
		{"short password", func(r *RegisterDonorRequest) { r.Password = "abc" }, domain.ErrInvalidInput},
		{"bad contact", func(r *RegisterDonorRequest) { r.Contact = "123" }, domain.ErrInvalidInput},
		{"numeric name", func(r *RegisterDonorRequest) { r.Name = "J4ne" }, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegistration()
			tc.mutate(&req)
			_, err := svc.Register(context.Background(), req)
			assert.Equal(t, tc.kind, domain.KindOf(err))
		})
	}
}

func TestSearch_DonorsAndInventory(t *testing.T) {
	donors, inventory, svc := setupDonorService(t)
	ctx := context.Background()

	last := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC) // 45 days before test now
	_, err := donors.CreateDonor(ctx, &domain.Donor{
		Name: "John Smith", Age: 30, Gender: domain.GenderMale,
		BloodGroup: domain.OPos, Contact: "+1 555 000 1111",
		Location: "Springfield", Email: "john@example.com",
		PasswordHash: "x", Verified: true, LastDonationDate: &last,
	})
	require.NoError(t, err)

	// unverified donors never appear
	_, err = donors.CreateDonor(ctx, &domain.Donor{
		Name: "Hidden Donor", Age: 40, Gender: domain.GenderMale,
		BloodGroup: domain.OPos, Contact: "+1 555 000 3333",
		Location: "Springfield", Email: "hidden@example.com",
		PasswordHash: "x", Verified: false,
	})
	require.NoError(t, err)

	collection := donorTestNow.AddDate(0, 0, -10)
	_, err = inventory.CreateUnit(ctx, &domain.InventoryUnit{
		BloodGroup:     domain.OPos,
		CollectionDate: collection,
		ExpiryDate:     domain.ComputeExpiryDate(collection),
		Status:         domain.UnitAvailable,
		Location:       "Springfield",
	})
	require.NoError(t, err)
	// expired unit filtered out
	oldCollection := donorTestNow.AddDate(0, 0, -60)
	_, err = inventory.CreateUnit(ctx, &domain.InventoryUnit{
		BloodGroup:     domain.OPos,
		CollectionDate: oldCollection,
		ExpiryDate:     domain.ComputeExpiryDate(oldCollection),
		Status:         domain.UnitAvailable,
		Location:       "Springfield",
	})
	require.NoError(t, err)

	resp, err := svc.Search(ctx, SearchRequest{BloodGroup: "O+", SearchType: SearchAll})
	require.NoError(t, err)

	require.Len(t, resp.Donors, 1)
	// 45 days since last donation: 45 more to the 90-day rule
	assert.Equal(t, "Wait 45 days", resp.Donors[0]["eligibility"])
	require.Len(t, resp.Inventory, 1)

	donateTo := resp.Compatibility["can_donate_to"].([]domain.BloodType)
	assert.Equal(t, []domain.BloodType{domain.APos, domain.BPos, domain.ABPos, domain.OPos}, donateTo)
}

func TestSearch_InvalidBloodGroup(t *testing.T) {
	_, _, svc := setupDonorService(t)
	_, err := svc.Search(context.Background(), SearchRequest{BloodGroup: "Z+"})
	assert.Equal(t, domain.ErrInvalidBloodType, domain.KindOf(err))
}

func TestListDonors_VerifiedFilter(t *testing.T) {
	donors, _, svc := setupDonorService(t)
	ctx := context.Background()

	for _, d := range []struct {
		email    string
		verified bool
	}{
		{"a@example.com", true},
		{"b@example.com", false},
	} {
		_, err := donors.CreateDonor(ctx, &domain.Donor{
			Name: "John Smith", Age: 30, Gender: domain.GenderMale,
			BloodGroup: domain.APos, Contact: "+1 555 000 1111",
			Location: "Springfield", Email: d.email,
			PasswordHash: "x", Verified: d.verified,
		})
		require.NoError(t, err)
	}

	pending := false
	resp, err := svc.ListDonors(ctx, ListDonorsRequest{Verified: &pending})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "b@example.com", resp.Donors[0]["email"])
}
