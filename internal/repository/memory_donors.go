package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bloodlink/internal/domain"

	"github.com/google/uuid"
)

// MemoryDonorsRepo supports dev and handler tests when DB is disabled.
type MemoryDonorsRepo struct {
	mu     sync.RWMutex
	donors map[string]*domain.Donor
}

func NewMemoryDonorsRepo() *MemoryDonorsRepo {
	return &MemoryDonorsRepo{donors: map[string]*domain.Donor{}}
}

func (r *MemoryDonorsRepo) GetDonor(_ context.Context, donorID string) (*domain.Donor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.donors[donorID]
	if !ok {
		return nil, domain.NewError(domain.ErrDonorNotFound, "donor %s not found", donorID)
	}
	cp := *d
	return &cp, nil
}

func (r *MemoryDonorsRepo) GetDonorByEmail(_ context.Context, email string) (*domain.Donor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.donors {
		if strings.EqualFold(d.Email, email) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.NewError(domain.ErrDonorNotFound, "donor with email %s not found", email)
}

func (r *MemoryDonorsRepo) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.donors {
		if strings.EqualFold(d.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryDonorsRepo) CreateDonor(_ context.Context, donor *domain.Donor) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *donor
	cp.DonorID = uuid.New().String()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.donors[cp.DonorID] = &cp
	return cp.DonorID, nil
}

func (r *MemoryDonorsRepo) ListDonors(_ context.Context, filters DonorFilters) ([]*domain.Donor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Donor{}
	for _, d := range r.donors {
		if len(filters.BloodGroups) > 0 && !containsGroup(filters.BloodGroups, d.BloodGroup) {
			continue
		}
		if filters.Location != "" && !strings.Contains(strings.ToLower(d.Location), strings.ToLower(filters.Location)) {
			continue
		}
		if filters.Verified != nil && d.Verified != *filters.Verified {
			continue
		}
		if filters.ExcludeEmail != "" && strings.EqualFold(d.Email, filters.ExcludeEmail) {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	// never-donated first, then oldest donation first
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastDonationDate, out[j].LastDonationDate
		if a == nil && b == nil {
			return out[i].Name < out[j].Name
		}
		if a == nil {
			return true
		}
		if b == nil {
			return false
		}
		return a.Before(*b)
	})
	return out, nil
}

func (r *MemoryDonorsRepo) SetVerified(_ context.Context, donorID string, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donors[donorID]
	if !ok {
		return domain.NewError(domain.ErrDonorNotFound, "donor %s not found", donorID)
	}
	d.Verified = verified
	d.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryDonorsRepo) Stats(_ context.Context) (*DonorStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := &DonorStats{}
	for _, d := range r.donors {
		s.Total++
		if d.Verified {
			s.Verified++
		} else {
			s.Pending++
		}
	}
	return s, nil
}

// setLastDonation is used by MemoryDonationsRepo inside its write lock.
func (r *MemoryDonorsRepo) setLastDonation(donorID string, date time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.donors[donorID]; ok {
		t := date
		d.LastDonationDate = &t
		d.UpdatedAt = time.Now()
	}
}

func containsGroup(groups []domain.BloodType, g domain.BloodType) bool {
	for _, x := range groups {
		if x == g {
			return true
		}
	}
	return false
}
