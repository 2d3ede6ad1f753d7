package repository

import (
	"context"

	"bloodlink/internal/domain"
)

// RequestFilters 血液请求查询过滤器
type RequestFilters struct {
	Status         domain.RequestStatus // 为空表示不过滤
	BloodGroup     domain.BloodType
	Urgency        domain.Urgency
	Location       string // 模糊匹配
	RequesterEmail string // monitor：按请求者邮箱
}

// RequestStats 管理端仪表盘的请求统计
type RequestStats struct {
	Total     int `json:"total_requests"`
	Pending   int `json:"pending_requests"`
	Fulfilled int `json:"fulfilled_requests"`
	Critical  int `json:"critical_requests"` // pending 且 Critical
}

// RequestsRepository 血液请求 Repository 接口
type RequestsRepository interface {
	// GetRequest 按 ID 查询
	GetRequest(ctx context.Context, requestID string) (*domain.BloodRequest, error)

	// CreateRequest 创建请求，返回新 ID
	CreateRequest(ctx context.Context, req *domain.BloodRequest) (string, error)

	// ListRequests 过滤查询，按紧急程度 + 需求日期排序
	ListRequests(ctx context.Context, filters RequestFilters) ([]*domain.BloodRequest, error)

	// SetStatus 状态更新（pending → fulfilled | cancelled），同时刷新 updated_at
	SetStatus(ctx context.Context, requestID string, status domain.RequestStatus) error

	// DeleteRequest 管理端删除
	DeleteRequest(ctx context.Context, requestID string) error

	// Stats 仪表盘统计
	Stats(ctx context.Context) (*RequestStats, error)
}
