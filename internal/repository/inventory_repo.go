package repository

import (
	"context"
	"time"

	"bloodlink/internal/domain"
)

// InventoryFilters 库存查询过滤器
type InventoryFilters struct {
	Status        domain.UnitStatus  // 为空表示不过滤
	BloodGroups   []domain.BloodType // 血型 IN (...)
	Location      string             // 模糊匹配
	ExpiredOnly   bool               // 仅已过期（按日期）
	AvailableOnly bool               // status=available 且未过期（搜索用）
}

// InventoryStats 管理端仪表盘的库存统计
type InventoryStats struct {
	Total        int `json:"total_units"`
	Available    int `json:"available_units"` // available 且未过期
	Expired      int `json:"expired_units"`   // 按日期过期（与存储状态无关）
	ExpiringSoon int `json:"expiring_soon"`
}

// GroupCount 按血型的可用单位数
type GroupCount struct {
	BloodGroup domain.BloodType `json:"blood_group"`
	Count      int              `json:"count"`
}

// GroupSummary monitor 页面的按血型库存汇总
type GroupSummary struct {
	BloodGroup     domain.BloodType `json:"blood_group"`
	Location       string           `json:"location"`
	UnitsAvailable int              `json:"units_available"`
	EarliestExpiry time.Time        `json:"earliest_expiry"`
}

// InventoryRepository 血液库存 Repository 接口
type InventoryRepository interface {
	// GetUnit 按 ID 查询
	GetUnit(ctx context.Context, unitID string) (*domain.InventoryUnit, error)

	// CreateUnit 手动入库，返回新 ID（创建校验在 service 层完成）
	CreateUnit(ctx context.Context, unit *domain.InventoryUnit) (string, error)

	// ListUnits 过滤查询，按过期日升序
	ListUnits(ctx context.Context, filters InventoryFilters, asOf time.Time) ([]*domain.InventoryUnit, error)

	// SetStatus 状态流转落库（状态机校验在 service 层完成），刷新 updated_at。
	// 仅当当前状态仍为 from 时更新；状态已被并发流转时返回 InvalidTransition，
	// 保证 used 等终态不会被基于过期读的写入覆盖。
	SetStatus(ctx context.Context, unitID string, from, to domain.UnitStatus) error

	// Stats 仪表盘统计（asOf 用于按日期判定过期）
	Stats(ctx context.Context, asOf time.Time) (*InventoryStats, error)

	// AvailableByGroup 可用且未过期的单位数按血型分布
	AvailableByGroup(ctx context.Context, asOf time.Time) ([]GroupCount, error)

	// SummaryForGroups monitor：指定血型的可用库存按 (血型, 地点) 汇总
	SummaryForGroups(ctx context.Context, groups []domain.BloodType, asOf time.Time) ([]GroupSummary, error)
}
