package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"bloodlink/internal/domain"
	"bloodlink/internal/notify"
	"bloodlink/internal/repository"

	"go.uber.org/zap"
)

// RequestService 血液请求服务接口
type RequestService interface {
	// CreateRequest 创建请求；Critical 请求触发 webhook 通知
	CreateRequest(ctx context.Context, req CreateRequestRequest) (*CreateRequestResponse, error)

	// ListRequests 过滤查询
	ListRequests(ctx context.Context, req ListRequestsRequest) (*ListRequestsResponse, error)

	// UpdateStatus 管理端状态更新（pending → fulfilled | cancelled）
	UpdateStatus(ctx context.Context, requestID, status string) error

	// DeleteRequest 管理端删除
	DeleteRequest(ctx context.Context, requestID string) error
}

type requestService struct {
	requestsRepo repository.RequestsRepository
	notifier     notify.Notifier
	logger       *zap.Logger
	now          func() time.Time // overridable in tests
}

func NewRequestService(requestsRepo repository.RequestsRepository, notifier notify.Notifier, logger *zap.Logger) RequestService {
	return &requestService{
		requestsRepo: requestsRepo,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

// CreateRequestRequest 创建血液请求
type CreateRequestRequest struct {
	RequesterName    string `json:"requester_name"`
	RequesterContact string `json:"requester_contact"`
	RequesterEmail   string `json:"requester_email"`
	BloodGroup       string `json:"blood_group"`
	Location         string `json:"location"`
	Urgency          string `json:"urgency"`
	Hospital         string `json:"hospital"`
	RequiredDate     string `json:"required_date"` // YYYY-MM-DD
	UnitsNeeded      int    `json:"units_needed"`
	Notes            string `json:"notes"`
}

// CreateRequestResponse 创建响应
type CreateRequestResponse struct {
	RequestID  string `json:"request_id"`
	BloodGroup string `json:"blood_group"`
	Urgency    string `json:"urgency"`
	Status     string `json:"status"`
}

// ListRequestsRequest 请求列表过滤
type ListRequestsRequest struct {
	Status     string
	BloodGroup string
	Urgency    string
	Location   string
}

// ListRequestsResponse 请求列表响应
type ListRequestsResponse struct {
	Requests []map[string]any `json:"requests"`
	Total    int              `json:"total"`
}

func (s *requestService) CreateRequest(ctx context.Context, req CreateRequestRequest) (*CreateRequestResponse, error) {
	req.RequesterName = strings.TrimSpace(req.RequesterName)
	req.RequesterEmail = strings.ToLower(strings.TrimSpace(req.RequesterEmail))

	if err := domain.ValidateName(req.RequesterName); err != nil {
		return nil, err
	}
	if err := domain.ValidateContact(req.RequesterContact); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(req.RequesterEmail); err != nil {
		return nil, err
	}
	bloodGroup, err := domain.ParseBloodType(req.BloodGroup)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateLocation(req.Location); err != nil {
		return nil, err
	}
	urgency := domain.Urgency(req.Urgency)
	if !urgency.Valid() {
		return nil, domain.NewError(domain.ErrInvalidInput, "urgency must be Low, Medium, High or Critical")
	}
	hospital := strings.TrimSpace(req.Hospital)
	if hospital == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "hospital is required")
	}
	requiredDate, err := domain.ParseDate(req.RequiredDate)
	if err != nil {
		return nil, err
	}
	if domain.DaysBetween(requiredDate, s.now()) > 0 {
		return nil, domain.NewError(domain.ErrInvalidInput, "required date cannot be in the past")
	}
	if req.UnitsNeeded < domain.MinUnitsNeeded || req.UnitsNeeded > domain.MaxUnitsNeeded {
		return nil, domain.NewError(domain.ErrInvalidInput,
			"units needed must be between %d and %d", domain.MinUnitsNeeded, domain.MaxUnitsNeeded)
	}

	request := &domain.BloodRequest{
		RequesterName:    req.RequesterName,
		RequesterContact: strings.TrimSpace(req.RequesterContact),
		RequesterEmail:   req.RequesterEmail,
		BloodGroup:       bloodGroup,
		Location:         strings.TrimSpace(req.Location),
		Urgency:          urgency,
		Hospital:         hospital,
		RequiredDate:     requiredDate,
		UnitsNeeded:      req.UnitsNeeded,
		Status:           domain.RequestPending,
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		request.Notes = sql.NullString{String: notes, Valid: true}
	}

	requestID, err := s.requestsRepo.CreateRequest(ctx, request)
	if err != nil {
		return nil, err
	}
	request.RequestID = requestID

	s.logger.Info("Blood request created",
		zap.String("request_id", requestID),
		zap.String("blood_group", string(bloodGroup)),
		zap.String("urgency", string(urgency)),
		zap.Int("units_needed", req.UnitsNeeded),
	)

	if urgency == domain.UrgencyCritical {
		s.notifier.CriticalRequest(ctx, request)
	}

	return &CreateRequestResponse{
		RequestID:  requestID,
		BloodGroup: string(bloodGroup),
		Urgency:    string(urgency),
		Status:     string(domain.RequestPending),
	}, nil
}

func (s *requestService) ListRequests(ctx context.Context, req ListRequestsRequest) (*ListRequestsResponse, error) {
	filters := repository.RequestFilters{
		Location: strings.TrimSpace(req.Location),
	}
	if req.Status != "" {
		status := domain.RequestStatus(req.Status)
		if !status.Valid() {
			return nil, domain.NewError(domain.ErrInvalidInput, "invalid request status %q", req.Status)
		}
		filters.Status = status
	}
	if req.BloodGroup != "" {
		bg, err := domain.ParseBloodType(req.BloodGroup)
		if err != nil {
			return nil, err
		}
		filters.BloodGroup = bg
	}
	if req.Urgency != "" {
		urgency := domain.Urgency(req.Urgency)
		if !urgency.Valid() {
			return nil, domain.NewError(domain.ErrInvalidInput, "invalid urgency %q", req.Urgency)
		}
		filters.Urgency = urgency
	}

	requests, err := s.requestsRepo.ListRequests(ctx, filters)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(requests))
	for _, r := range requests {
		out = append(out, r.ToJSON())
	}
	return &ListRequestsResponse{Requests: out, Total: len(out)}, nil
}

func (s *requestService) UpdateStatus(ctx context.Context, requestID, status string) error {
	st := domain.RequestStatus(status)
	if !st.Valid() {
		return domain.NewError(domain.ErrInvalidInput, "invalid request status %q", status)
	}
	if err := s.requestsRepo.SetStatus(ctx, requestID, st); err != nil {
		return err
	}
	s.logger.Info("Request status updated",
		zap.String("request_id", requestID),
		zap.String("status", status),
	)
	return nil
}

func (s *requestService) DeleteRequest(ctx context.Context, requestID string) error {
	if err := s.requestsRepo.DeleteRequest(ctx, requestID); err != nil {
		return err
	}
	s.logger.Info("Request deleted", zap.String("request_id", requestID))
	return nil
}
