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

type MemoryRequestsRepo struct {
	mu       sync.RWMutex
	requests map[string]*domain.BloodRequest
}

func NewMemoryRequestsRepo() *MemoryRequestsRepo {
	return &MemoryRequestsRepo{requests: map[string]*domain.BloodRequest{}}
}

func (r *MemoryRequestsRepo) GetRequest(_ context.Context, requestID string) (*domain.BloodRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[requestID]
	if !ok {
		return nil, domain.NewError(domain.ErrNotFound, "request %s not found", requestID)
	}
	cp := *req
	return &cp, nil
}

func (r *MemoryRequestsRepo) CreateRequest(_ context.Context, req *domain.BloodRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *req
	cp.RequestID = uuid.New().String()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.requests[cp.RequestID] = &cp
	return cp.RequestID, nil
}

func (r *MemoryRequestsRepo) ListRequests(_ context.Context, filters RequestFilters) ([]*domain.BloodRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.BloodRequest{}
	for _, req := range r.requests {
		if filters.Status != "" && req.Status != filters.Status {
			continue
		}
		if filters.Urgency != "" && req.Urgency != filters.Urgency {
			continue
		}
		if filters.BloodGroup != "" && req.BloodGroup != filters.BloodGroup {
			continue
		}
		if filters.Location != "" && !strings.Contains(strings.ToLower(req.Location), strings.ToLower(filters.Location)) {
			continue
		}
		if filters.RequesterEmail != "" && !strings.EqualFold(req.RequesterEmail, filters.RequesterEmail) {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}
	// most urgent first, earliest required date within a tier
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].Urgency.Rank(), out[j].Urgency.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].RequiredDate.Before(out[j].RequiredDate)
	})
	return out, nil
}

func (r *MemoryRequestsRepo) SetStatus(_ context.Context, requestID string, status domain.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok {
		return domain.NewError(domain.ErrNotFound, "request %s not found", requestID)
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRequestsRepo) DeleteRequest(_ context.Context, requestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[requestID]; !ok {
		return domain.NewError(domain.ErrNotFound, "request %s not found", requestID)
	}
	delete(r.requests, requestID)
	return nil
}

func (r *MemoryRequestsRepo) Stats(_ context.Context) (*RequestStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := &RequestStats{}
	for _, req := range r.requests {
		s.Total++
		switch req.Status {
		case domain.RequestPending:
			s.Pending++
			if req.Urgency == domain.UrgencyCritical {
				s.Critical++
			}
		case domain.RequestFulfilled:
			s.Fulfilled++
		}
	}
	return s, nil
}
