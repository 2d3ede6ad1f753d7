package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"bloodlink/internal/domain"

	"github.com/google/uuid"
)

type MemoryAdminsRepo struct {
	mu     sync.RWMutex
	admins map[string]*domain.Admin
}

func NewMemoryAdminsRepo() *MemoryAdminsRepo {
	return &MemoryAdminsRepo{admins: map[string]*domain.Admin{}}
}

func (r *MemoryAdminsRepo) GetAdminByUsername(_ context.Context, username string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.admins {
		if strings.EqualFold(a.Username, username) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.NewError(domain.ErrNotFound, "admin %s not found", username)
}

func (r *MemoryAdminsRepo) CreateAdmin(_ context.Context, admin *domain.Admin) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *admin
	cp.AdminID = uuid.New().String()
	cp.CreatedAt = time.Now()
	r.admins[cp.AdminID] = &cp
	return cp.AdminID, nil
}
