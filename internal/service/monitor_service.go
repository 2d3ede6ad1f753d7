package service

import (
	"context"
	"strings"
	"time"

	"bloodlink/internal/domain"
	"bloodlink/internal/repository"

	"go.uber.org/zap"
)

// MonitorService 请求方监控页 + 管理端仪表盘
type MonitorService interface {
	// Overview 登录请求者的监控视图：自己的请求、每个请求血型的
	// 相容认证捐献者（56 天可用性文案）与可用库存汇总
	Overview(ctx context.Context, req OverviewRequest) (*OverviewResponse, error)

	// DashboardStats 管理端仪表盘统计
	DashboardStats(ctx context.Context) (*DashboardStatsResponse, error)
}

type monitorService struct {
	requestsRepo  repository.RequestsRepository
	donorsRepo    repository.DonorsRepository
	inventoryRepo repository.InventoryRepository
	logger        *zap.Logger
	now           func() time.Time // overridable in tests
}

func NewMonitorService(
	requestsRepo repository.RequestsRepository,
	donorsRepo repository.DonorsRepository,
	inventoryRepo repository.InventoryRepository,
	logger *zap.Logger,
) MonitorService {
	return &monitorService{
		requestsRepo:  requestsRepo,
		donorsRepo:    donorsRepo,
		inventoryRepo: inventoryRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

// OverviewRequest 监控视图请求
type OverviewRequest struct {
	RequesterEmail string // 会话中的邮箱
}

// OverviewResponse 监控视图响应
type OverviewResponse struct {
	Requests         []map[string]any          `json:"requests"`
	CompatibleDonors []map[string]any          `json:"compatible_donors"`
	InventorySummary []repository.GroupSummary `json:"inventory_summary"`
}

// DashboardStatsResponse 管理端仪表盘响应
type DashboardStatsResponse struct {
	Donors       *repository.DonorStats     `json:"donors"`
	Requests     *repository.RequestStats   `json:"requests"`
	Inventory    *repository.InventoryStats `json:"inventory"`
	Distribution []repository.GroupCount    `json:"blood_group_distribution"`
}

func (s *monitorService) Overview(ctx context.Context, req OverviewRequest) (*OverviewResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.RequesterEmail))
	if email == "" {
		return nil, domain.NewError(domain.ErrUnauthorized, "requester email is required")
	}

	requests, err := s.requestsRepo.ListRequests(ctx, repository.RequestFilters{RequesterEmail: email})
	if err != nil {
		return nil, err
	}

	now := s.now()
	resp := &OverviewResponse{
		Requests:         make([]map[string]any, 0, len(requests)),
		CompatibleDonors: []map[string]any{},
		InventorySummary: []repository.GroupSummary{},
	}

	// Collect the donor blood types compatible with any requested group.
	requestedGroups := []domain.BloodType{}
	donorGroupSet := map[domain.BloodType]bool{}
	seenRequested := map[domain.BloodType]bool{}
	for _, r := range requests {
		resp.Requests = append(resp.Requests, r.ToJSON())
		if seenRequested[r.BloodGroup] {
			continue
		}
		seenRequested[r.BloodGroup] = true
		requestedGroups = append(requestedGroups, r.BloodGroup)
		compatible, err := domain.CompatibleDonorTypes(r.BloodGroup)
		if err != nil {
			return nil, err
		}
		for _, g := range compatible {
			donorGroupSet[g] = true
		}
	}
	if len(requestedGroups) == 0 {
		return resp, nil
	}

	donorGroups := make([]domain.BloodType, 0, len(donorGroupSet))
	for _, bt := range domain.BloodTypes {
		if donorGroupSet[bt] {
			donorGroups = append(donorGroups, bt)
		}
	}

	verified := true
	donors, err := s.donorsRepo.ListDonors(ctx, repository.DonorFilters{
		BloodGroups:  donorGroups,
		Verified:     &verified,
		ExcludeEmail: email,
	})
	if err != nil {
		return nil, err
	}
	for _, d := range donors {
		m := d.ToJSON()
		m["availability"] = d.AvailabilityText(now)
		resp.CompatibleDonors = append(resp.CompatibleDonors, m)
	}

	summary, err := s.inventoryRepo.SummaryForGroups(ctx, requestedGroups, now)
	if err != nil {
		return nil, err
	}
	resp.InventorySummary = summary
	return resp, nil
}

func (s *monitorService) DashboardStats(ctx context.Context) (*DashboardStatsResponse, error) {
	now := s.now()

	donorStats, err := s.donorsRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	requestStats, err := s.requestsRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	inventoryStats, err := s.inventoryRepo.Stats(ctx, now)
	if err != nil {
		return nil, err
	}
	distribution, err := s.inventoryRepo.AvailableByGroup(ctx, now)
	if err != nil {
		return nil, err
	}

	return &DashboardStatsResponse{
		Donors:       donorStats,
		Requests:     requestStats,
		Inventory:    inventoryStats,
		Distribution: distribution,
	}, nil
}
