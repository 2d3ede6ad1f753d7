package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"bloodlink/internal/domain"
	"bloodlink/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DonorService 捐献者服务接口
type DonorService interface {
	// Register 注册新捐献者
	Register(ctx context.Context, req RegisterDonorRequest) (*RegisterDonorResponse, error)

	// GetDonor 按 ID 查询（搜索结果详情、profile 刷新共用）
	GetDonor(ctx context.Context, donorID string) (map[string]any, error)

	// ListDonors 管理端列表（verified 过滤）
	ListDonors(ctx context.Context, req ListDonorsRequest) (*ListDonorsResponse, error)

	// SetVerified 管理端认证开关
	SetVerified(ctx context.Context, donorID string, verified bool) error

	// Search 捐献者/库存搜索（按血型 + 地区）
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

type donorService struct {
	donorsRepo    repository.DonorsRepository
	inventoryRepo repository.InventoryRepository
	logger        *zap.Logger
	now           func() time.Time // overridable in tests
}

func NewDonorService(donorsRepo repository.DonorsRepository, inventoryRepo repository.InventoryRepository, logger *zap.Logger) DonorService {
	return &donorService{
		donorsRepo:    donorsRepo,
		inventoryRepo: inventoryRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

// RegisterDonorRequest 注册请求
type RegisterDonorRequest struct {
	Name           string `json:"name"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	BloodGroup     string `json:"blood_group"`
	Contact        string `json:"contact"`
	Location       string `json:"location"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	MedicalHistory string `json:"medical_history"`
}

// RegisterDonorResponse 注册响应
type RegisterDonorResponse struct {
	DonorID string `json:"donor_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// ListDonorsRequest 管理端捐献者列表请求
type ListDonorsRequest struct {
	Verified   *bool
	BloodGroup string
	Location   string
}

// ListDonorsResponse 管理端捐献者列表响应
type ListDonorsResponse struct {
	Donors []map[string]any `json:"donors"`
	Total  int              `json:"total"`
}

// SearchType 搜索类型
const (
	SearchDonors    = "donors"
	SearchInventory = "inventory"
	SearchAll       = "all"
)

// SearchRequest 搜索请求
type SearchRequest struct {
	BloodGroup string // 必填
	Location   string // 可空，模糊匹配
	SearchType string // donors | inventory | all（默认）
}

// SearchResponse 搜索响应；包含所查血型的兼容性信息
type SearchResponse struct {
	BloodGroup    string           `json:"blood_group"`
	Donors        []map[string]any `json:"donors,omitempty"`
	Inventory     []map[string]any `json:"inventory,omitempty"`
	Compatibility map[string]any   `json:"compatibility"`
}

const minPasswordLen = 6

func (s *donorService) Register(ctx context.Context, req RegisterDonorRequest) (*RegisterDonorResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := domain.ValidateName(req.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateAge(req.Age); err != nil {
		return nil, err
	}
	if !domain.ValidGender(req.Gender) {
		return nil, domain.NewError(domain.ErrInvalidInput, "gender must be Male, Female or Other")
	}
	bloodGroup, err := domain.ParseBloodType(req.BloodGroup)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateContact(req.Contact); err != nil {
		return nil, err
	}
	if err := domain.ValidateLocation(req.Location); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLen {
		return nil, domain.NewError(domain.ErrInvalidInput, "password must be at least %d characters", minPasswordLen)
	}

	exists, err := s.donorsRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewError(domain.ErrEmailTaken, "email %s is already registered", req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	donor := &domain.Donor{
		Name:         req.Name,
		Age:          req.Age,
		Gender:       req.Gender,
		BloodGroup:   bloodGroup,
		Contact:      strings.TrimSpace(req.Contact),
		Location:     strings.TrimSpace(req.Location),
		Email:        req.Email,
		PasswordHash: string(hash),
		Verified:     true, // registered donors are usable immediately; admin can unverify
	}
	if mh := strings.TrimSpace(req.MedicalHistory); mh != "" {
		donor.MedicalHistory = sql.NullString{String: mh, Valid: true}
	}

	donorID, err := s.donorsRepo.CreateDonor(ctx, donor)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Donor registered",
		zap.String("donor_id", donorID),
		zap.String("blood_group", string(bloodGroup)),
		zap.String("location", donor.Location),
	)
	return &RegisterDonorResponse{DonorID: donorID, Name: donor.Name, Email: donor.Email}, nil
}

func (s *donorService) GetDonor(ctx context.Context, donorID string) (map[string]any, error) {
	donor, err := s.donorsRepo.GetDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	m := donor.ToJSON()
	m["eligibility"] = donor.EligibilityText(s.now())
	return m, nil
}

func (s *donorService) ListDonors(ctx context.Context, req ListDonorsRequest) (*ListDonorsResponse, error) {
	filters := repository.DonorFilters{
		Location: strings.TrimSpace(req.Location),
		Verified: req.Verified,
	}
	if req.BloodGroup != "" {
		bg, err := domain.ParseBloodType(req.BloodGroup)
		if err != nil {
			return nil, err
		}
		filters.BloodGroups = []domain.BloodType{bg}
	}

	donors, err := s.donorsRepo.ListDonors(ctx, filters)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]map[string]any, 0, len(donors))
	for _, d := range donors {
		m := d.ToJSON()
		m["eligibility"] = d.EligibilityText(now)
		out = append(out, m)
	}
	return &ListDonorsResponse{Donors: out, Total: len(out)}, nil
}

func (s *donorService) SetVerified(ctx context.Context, donorID string, verified bool) error {
	if err := s.donorsRepo.SetVerified(ctx, donorID, verified); err != nil {
		return err
	}
	s.logger.Info("Donor verification updated",
		zap.String("donor_id", donorID),
		zap.Bool("verified", verified),
	)
	return nil
}

// Search 搜索指定血型的捐献者与可用库存。
// 捐献者结果限认证用户并附 90 天 eligibility 文案；
// 库存结果限 available 且未过期。
func (s *donorService) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	bloodGroup, err := domain.ParseBloodType(req.BloodGroup)
	if err != nil {
		return nil, err
	}
	searchType := req.SearchType
	if searchType == "" {
		searchType = SearchAll
	}
	if searchType != SearchDonors && searchType != SearchInventory && searchType != SearchAll {
		return nil, domain.NewError(domain.ErrInvalidInput, "search type must be donors, inventory or all")
	}

	compat, err := domain.CompatibilityFor(bloodGroup)
	if err != nil {
		return nil, err
	}
	resp := &SearchResponse{
		BloodGroup: string(bloodGroup),
		Compatibility: map[string]any{
			"can_donate_to":    compat.CanDonateTo,
			"can_receive_from": compat.CanReceiveFrom,
		},
	}
	now := s.now()
	location := strings.TrimSpace(req.Location)

	if searchType == SearchDonors || searchType == SearchAll {
		verified := true
		donors, err := s.donorsRepo.ListDonors(ctx, repository.DonorFilters{
			BloodGroups: []domain.BloodType{bloodGroup},
			Location:    location,
			Verified:    &verified,
		})
		if err != nil {
			return nil, err
		}
		resp.Donors = make([]map[string]any, 0, len(donors))
		for _, d := range donors {
			m := d.ToJSON()
			m["eligibility"] = d.EligibilityText(now)
			resp.Donors = append(resp.Donors, m)
		}
	}

	if searchType == SearchInventory || searchType == SearchAll {
		units, err := s.inventoryRepo.ListUnits(ctx, repository.InventoryFilters{
			BloodGroups:   []domain.BloodType{bloodGroup},
			Location:      location,
			AvailableOnly: true,
		}, now)
		if err != nil {
			return nil, err
		}
		resp.Inventory = make([]map[string]any, 0, len(units))
		for _, u := range units {
			resp.Inventory = append(resp.Inventory, u.ToJSON(now))
		}
	}
	return resp, nil
}
