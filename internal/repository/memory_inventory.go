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

type MemoryInventoryRepo struct {
	mu    sync.RWMutex
	units map[string]*domain.InventoryUnit
}

func NewMemoryInventoryRepo() *MemoryInventoryRepo {
	return &MemoryInventoryRepo{units: map[string]*domain.InventoryUnit{}}
}

func (r *MemoryInventoryRepo) GetUnit(_ context.Context, unitID string) (*domain.InventoryUnit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[unitID]
	if !ok {
		return nil, domain.NewError(domain.ErrNotFound, "inventory unit %s not found", unitID)
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryInventoryRepo) CreateUnit(_ context.Context, unit *domain.InventoryUnit) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *unit
	cp.UnitID = uuid.New().String()
	if cp.Status == "" {
		cp.Status = domain.UnitAvailable
	}
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.units[cp.UnitID] = &cp
	return cp.UnitID, nil
}

func matchUnit(u *domain.InventoryUnit, filters InventoryFilters, asOf time.Time) bool {
	if filters.Status != "" && u.Status != filters.Status {
		return false
	}
	if len(filters.BloodGroups) > 0 && !containsGroup(filters.BloodGroups, u.BloodGroup) {
		return false
	}
	if filters.Location != "" && !strings.Contains(strings.ToLower(u.Location), strings.ToLower(filters.Location)) {
		return false
	}
	expired := domain.DaysUntilExpiry(u.ExpiryDate, asOf) <= 0
	if filters.ExpiredOnly && !expired {
		return false
	}
	if filters.AvailableOnly && (u.Status != domain.UnitAvailable || expired) {
		return false
	}
	return true
}

func (r *MemoryInventoryRepo) ListUnits(_ context.Context, filters InventoryFilters, asOf time.Time) ([]*domain.InventoryUnit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.InventoryUnit{}
	for _, u := range r.units {
		if !matchUnit(u, filters, asOf) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpiryDate.Before(out[j].ExpiryDate)
	})
	return out, nil
}

func (r *MemoryInventoryRepo) SetStatus(_ context.Context, unitID string, from, to domain.UnitStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[unitID]
	if !ok {
		return domain.NewError(domain.ErrNotFound, "inventory unit %s not found", unitID)
	}
	if u.Status != from {
		return domain.NewError(domain.ErrInvalidTransition,
			"inventory unit %s is no longer %s", unitID, string(from))
	}
	u.Status = to
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryInventoryRepo) Stats(_ context.Context, asOf time.Time) (*InventoryStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := &InventoryStats{}
	for _, u := range r.units {
		s.Total++
		days := domain.DaysUntilExpiry(u.ExpiryDate, asOf)
		if days <= 0 {
			s.Expired++
			continue
		}
		if u.Status == domain.UnitAvailable {
			s.Available++
		}
		if days <= domain.ExpiringSoonThresholdDays {
			s.ExpiringSoon++
		}
	}
	return s, nil
}

func (r *MemoryInventoryRepo) AvailableByGroup(_ context.Context, asOf time.Time) ([]GroupCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[domain.BloodType]int{}
	for _, u := range r.units {
		if u.Status == domain.UnitAvailable && domain.DaysUntilExpiry(u.ExpiryDate, asOf) > 0 {
			counts[u.BloodGroup]++
		}
	}
	out := []GroupCount{}
	for _, bt := range domain.BloodTypes {
		if n, ok := counts[bt]; ok {
			out = append(out, GroupCount{BloodGroup: bt, Count: n})
		}
	}
	return out, nil
}

func (r *MemoryInventoryRepo) SummaryForGroups(_ context.Context, groups []domain.BloodType, asOf time.Time) ([]GroupSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type key struct {
		group    domain.BloodType
		location string
	}
	agg := map[key]*GroupSummary{}
	for _, u := range r.units {
		if !containsGroup(groups, u.BloodGroup) {
			continue
		}
		if u.Status != domain.UnitAvailable || domain.DaysUntilExpiry(u.ExpiryDate, asOf) <= 0 {
			continue
		}
		k := key{u.BloodGroup, u.Location}
		s, ok := agg[k]
		if !ok {
			s = &GroupSummary{BloodGroup: u.BloodGroup, Location: u.Location, EarliestExpiry: u.ExpiryDate}
			agg[k] = s
		}
		s.UnitsAvailable++
		if u.ExpiryDate.Before(s.EarliestExpiry) {
			s.EarliestExpiry = u.ExpiryDate
		}
	}
	out := []GroupSummary{}
	for _, s := range agg {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BloodGroup != out[j].BloodGroup {
			return out[i].BloodGroup < out[j].BloodGroup
		}
		return out[i].Location < out[j].Location
	})
	return out, nil
}
