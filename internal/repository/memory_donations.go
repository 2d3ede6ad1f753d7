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

// MemoryDonationsRepo 需要 donors/inventory 内存仓库来模拟三写事务。
type MemoryDonationsRepo struct {
	mu        sync.RWMutex
	donations map[string]*domain.Donation
	donors    *MemoryDonorsRepo
	inventory *MemoryInventoryRepo
}

func NewMemoryDonationsRepo(donors *MemoryDonorsRepo, inventory *MemoryInventoryRepo) *MemoryDonationsRepo {
	return &MemoryDonationsRepo{
		donations: map[string]*domain.Donation{},
		donors:    donors,
		inventory: inventory,
	}
}

func (r *MemoryDonationsRepo) RecordDonation(ctx context.Context, donation *domain.Donation, unit *domain.InventoryUnit) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	donor, err := r.donors.GetDonor(ctx, donation.DonorID)
	if err != nil {
		return "", err
	}
	if !donor.Verified {
		return "", domain.NewError(domain.ErrDonorNotFound, "donor %s is not verified", donation.DonorID)
	}
	days := domain.DaysSinceLastDonation(donor.LastDonationDate, donation.DonationDate)
	if days != domain.DaysNeverDonated && days < domain.MinDonationIntervalDays {
		return "", domain.TooSoon(domain.MinDonationIntervalDays - days)
	}

	cp := *donation
	cp.DonationID = uuid.New().String()
	cp.CreatedAt = time.Now()
	r.donations[cp.DonationID] = &cp

	if cp.MedicalCheckupPassed && unit != nil {
		if _, err := r.inventory.CreateUnit(ctx, unit); err != nil {
			delete(r.donations, cp.DonationID)
			return "", err
		}
	}

	// 献血人更新放在最后一写：入库失败回滚时无需补偿 last_donation_date
	r.donors.setLastDonation(cp.DonorID, cp.DonationDate)
	return cp.DonationID, nil
}

func (r *MemoryDonationsRepo) ListDonations(ctx context.Context, filters DonationFilters) ([]*DonationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*DonationRecord{}
	for _, d := range r.donations {
		if filters.DonorID != "" && d.DonorID != filters.DonorID {
			continue
		}
		if filters.BloodGroup != "" && d.BloodGroup != filters.BloodGroup {
			continue
		}
		if filters.Location != "" && !strings.Contains(strings.ToLower(d.Location), strings.ToLower(filters.Location)) {
			continue
		}
		if filters.StartDate != nil && d.DonationDate.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && d.DonationDate.After(*filters.EndDate) {
			continue
		}
		rec := &DonationRecord{Donation: *d}
		if donor, err := r.donors.GetDonor(ctx, d.DonorID); err == nil {
			rec.DonorName = donor.Name
			rec.DonorEmail = donor.Email
			rec.DonorContact = donor.Contact
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DonationDate.After(out[j].DonationDate)
	})
	return out, nil
}
