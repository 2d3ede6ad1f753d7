package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"bloodlink/internal/domain"
	"bloodlink/internal/repository"

	"go.uber.org/zap"
)

// InventoryService 库存管理服务接口
type InventoryService interface {
	// AddUnit 手动入库（血库直接录入）
	AddUnit(ctx context.Context, req AddUnitRequest) (*AddUnitResponse, error)

	// UpdateStatus 状态流转（经过状态机校验）
	UpdateStatus(ctx context.Context, unitID, status string) (*UpdateUnitResponse, error)

	// ListUnits 库存列表，含派生字段与汇总统计
	ListUnits(ctx context.Context, req ListUnitsRequest) (*ListUnitsResponse, error)
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	donorsRepo    repository.DonorsRepository
	logger        *zap.Logger
	now           func() time.Time // overridable in tests
}

func NewInventoryService(inventoryRepo repository.InventoryRepository, donorsRepo repository.DonorsRepository, logger *zap.Logger) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		donorsRepo:    donorsRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

// AddUnitRequest 手动入库请求
type AddUnitRequest struct {
	BloodGroup     string `json:"blood_group"`
	DonorID        string `json:"donor_id"` // 可空
	CollectionDate string `json:"collection_date"`
	ExpiryDate     string `json:"expiry_date"` // 可空，默认采集日 + 42 天
	Location       string `json:"location"`
	Notes          string `json:"notes"`
}

// AddUnitResponse 入库响应
type AddUnitResponse struct {
	UnitID     string `json:"unit_id"`
	BloodGroup string `json:"blood_group"`
	ExpiryDate string `json:"expiry_date"`
	Status     string `json:"status"`
}

// UpdateUnitResponse 状态更新响应
type UpdateUnitResponse struct {
	UnitID     string `json:"unit_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// ListUnitsRequest 库存列表过滤
type ListUnitsRequest struct {
	Status      string
	BloodGroup  string
	Location    string
	ExpiredOnly bool
}

// ListUnitsResponse 库存列表响应
type ListUnitsResponse struct {
	Units []map[string]any           `json:"units"`
	Total int                        `json:"total"`
	Stats *repository.InventoryStats `json:"stats"`
}

// AddUnit 创建校验全部在这里完成：血型、日期窗口（保质期 1..42 天、
// 采集日不在未来）、捐献者引用必须是认证捐献者且血型一致。
func (s *inventoryService) AddUnit(ctx context.Context, req AddUnitRequest) (*AddUnitResponse, error) {
	bloodGroup, err := domain.ParseBloodType(req.BloodGroup)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateLocation(req.Location); err != nil {
		return nil, err
	}
	collectionDate, err := domain.ParseDate(req.CollectionDate)
	if err != nil {
		return nil, err
	}

	expiryDate := domain.ComputeExpiryDate(collectionDate)
	if req.ExpiryDate != "" {
		expiryDate, err = domain.ParseDate(req.ExpiryDate)
		if err != nil {
			return nil, err
		}
	}
	if err := domain.ValidateUnitDates(collectionDate, expiryDate, s.now()); err != nil {
		return nil, err
	}

	unit := &domain.InventoryUnit{
		BloodGroup:     bloodGroup,
		CollectionDate: collectionDate,
		ExpiryDate:     expiryDate,
		Status:         domain.UnitAvailable,
		Location:       strings.TrimSpace(req.Location),
	}

	if donorID := strings.TrimSpace(req.DonorID); donorID != "" {
		donor, err := s.donorsRepo.GetDonor(ctx, donorID)
		if err != nil {
			return nil, err
		}
		if !donor.Verified {
			return nil, domain.NewError(domain.ErrDonorNotFound, "donor %s is not verified", donorID)
		}
		if donor.BloodGroup != bloodGroup {
			return nil, domain.NewError(domain.ErrBloodGroupMismatch,
				"unit blood group %s does not match donor record %s",
				string(bloodGroup), string(donor.BloodGroup))
		}
		unit.DonorID = sql.NullString{String: donorID, Valid: true}
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		unit.Notes = sql.NullString{String: notes, Valid: true}
	}

	unitID, err := s.inventoryRepo.CreateUnit(ctx, unit)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Inventory unit added",
		zap.String("unit_id", unitID),
		zap.String("blood_group", string(bloodGroup)),
		zap.String("expiry_date", expiryDate.Format(domain.DateLayout)),
	)
	return &AddUnitResponse{
		UnitID:     unitID,
		BloodGroup: string(bloodGroup),
		ExpiryDate: expiryDate.Format(domain.DateLayout),
		Status:     string(domain.UnitAvailable),
	}, nil
}

// UpdateStatus 先读当前状态，经 CanTransition 校验后条件落库：
// 写入以读到的状态为前置条件，读写之间发生并发流转时返回 InvalidTransition。
// 校验失败时不发生任何写入。
func (s *inventoryService) UpdateStatus(ctx context.Context, unitID, status string) (*UpdateUnitResponse, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "unit_id is required")
	}
	unit, err := s.inventoryRepo.GetUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	to := domain.UnitStatus(status)
	if err := domain.CanTransition(unit.Status, to); err != nil {
		return nil, err
	}
	if err := s.inventoryRepo.SetStatus(ctx, unitID, unit.Status, to); err != nil {
		return nil, err
	}

	s.logger.Info("Inventory status updated",
		zap.String("unit_id", unitID),
		zap.String("from", string(unit.Status)),
		zap.String("to", string(to)),
	)
	return &UpdateUnitResponse{
		UnitID:     unitID,
		FromStatus: string(unit.Status),
		ToStatus:   string(to),
	}, nil
}

func (s *inventoryService) ListUnits(ctx context.Context, req ListUnitsRequest) (*ListUnitsResponse, error) {
	now := s.now()
	filters := repository.InventoryFilters{
		Location:    strings.TrimSpace(req.Location),
		ExpiredOnly: req.ExpiredOnly,
	}
	if req.Status != "" {
		status := domain.UnitStatus(req.Status)
		if !status.Valid() {
			return nil, domain.NewError(domain.ErrInvalidInput, "invalid inventory status %q", req.Status)
		}
		filters.Status = status
	}
	if req.BloodGroup != "" {
		bg, err := domain.ParseBloodType(req.BloodGroup)
		if err != nil {
			return nil, err
		}
		filters.BloodGroups = []domain.BloodType{bg}
	}

	units, err := s.inventoryRepo.ListUnits(ctx, filters, now)
	if err != nil {
		return nil, err
	}
	stats, err := s.inventoryRepo.Stats(ctx, now)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(units))
	for _, u := range units {
		out = append(out, u.ToJSON(now))
	}
	return &ListUnitsResponse{Units: out, Total: len(out), Stats: stats}, nil
}
