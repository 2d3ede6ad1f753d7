package repository

import (
	"context"

	"bloodlink/internal/domain"
)

// AdminsRepository 管理员账号 Repository 接口
type AdminsRepository interface {
	// GetAdminByUsername 登录查询（包含密码散列）
	GetAdminByUsername(ctx context.Context, username string) (*domain.Admin, error)

	// CreateAdmin 创建管理员（setup-db 种子数据用）
	CreateAdmin(ctx context.Context, admin *domain.Admin) (string, error)
}
