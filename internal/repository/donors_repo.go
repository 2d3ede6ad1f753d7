package repository

import (
	"context"

	"bloodlink/internal/domain"
)

// DonorFilters 捐献者查询过滤器
type DonorFilters struct {
	BloodGroups  []domain.BloodType // 血型 IN (...)
	Location     string             // 地区模糊匹配
	Verified     *bool              // 认证状态（nil 表示不过滤）
	ExcludeEmail string             // 排除某个邮箱（monitor 匹配时排除请求者本人）
}

// DonorStats 管理端仪表盘的捐献者统计
type DonorStats struct {
	Total    int `json:"total_donors"`
	Verified int `json:"verified_donors"`
	Pending  int `json:"pending_donors"`
}

// DonorsRepository 捐献者 Repository 接口
type DonorsRepository interface {
	// GetDonor 按 ID 查询
	GetDonor(ctx context.Context, donorID string) (*domain.Donor, error)

	// GetDonorByEmail 按邮箱查询（登录用，包含密码散列）
	GetDonorByEmail(ctx context.Context, email string) (*domain.Donor, error)

	// EmailExists 注册查重
	EmailExists(ctx context.Context, email string) (bool, error)

	// CreateDonor 创建捐献者，返回新 ID
	CreateDonor(ctx context.Context, donor *domain.Donor) (string, error)

	// ListDonors 按过滤器查询（搜索、管理端列表共用）
	ListDonors(ctx context.Context, filters DonorFilters) ([]*domain.Donor, error)

	// SetVerified 管理端认证开关
	SetVerified(ctx context.Context, donorID string, verified bool) error

	// Stats 仪表盘统计
	Stats(ctx context.Context) (*DonorStats, error)
}
