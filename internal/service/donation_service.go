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

// DonationService 捐献记录服务接口
type DonationService interface {
	// RecordDonation 记录一次完成的捐献（DonationRecorder）
	RecordDonation(ctx context.Context, req RecordDonationRequest) (*RecordDonationResponse, error)

	// ListDonations 捐献历史查询
	ListDonations(ctx context.Context, req ListDonationsRequest) (*ListDonationsResponse, error)
}

type donationService struct {
	donationsRepo repository.DonationsRepository
	donorsRepo    repository.DonorsRepository
	logger        *zap.Logger
	now           func() time.Time // overridable in tests
}

func NewDonationService(donationsRepo repository.DonationsRepository, donorsRepo repository.DonorsRepository, logger *zap.Logger) DonationService {
	return &donationService{
		donationsRepo: donationsRepo,
		donorsRepo:    donorsRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

// RecordDonationRequest 捐献记录请求
type RecordDonationRequest struct {
	DonorID              string `json:"donor_id"`
	DonationDate         string `json:"donation_date"` // YYYY-MM-DD
	BloodGroup           string `json:"blood_group"`
	UnitsDonated         int    `json:"units_donated"`
	Location             string `json:"location"`
	MedicalCheckupPassed bool   `json:"medical_checkup_passed"`
	Notes                string `json:"notes"`
}

// RecordDonationResponse 捐献记录响应
type RecordDonationResponse struct {
	DonationID       string `json:"donation_id"`
	DonorName        string `json:"donor_name"`
	BloodGroup       string `json:"blood_group"`
	UnitsDonated     int    `json:"units_donated"`
	DonationDate     string `json:"donation_date"`
	NextEligibleDate string `json:"next_eligible_date"`
	UnitAdded        bool   `json:"unit_added"` // 体检通过时入库
}

// ListDonationsRequest 捐献历史查询请求
type ListDonationsRequest struct {
	DonorID    string
	BloodGroup string
	Location   string
	StartDate  string // YYYY-MM-DD，可空
	EndDate    string
}

// ListDonationsResponse 捐献历史查询响应
type ListDonationsResponse struct {
	Donations  []map[string]any `json:"donations"`
	Total      int              `json:"total"`
	TotalUnits int              `json:"total_units"`
}

// RecordDonation 校验全部通过后才发起任何写入；三个写入在仓库层
// 以单事务完成，任一步失败整体回滚。
func (s *donationService) RecordDonation(ctx context.Context, req RecordDonationRequest) (*RecordDonationResponse, error) {
	req.DonorID = strings.TrimSpace(req.DonorID)
	req.Location = strings.TrimSpace(req.Location)
	if req.DonorID == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "donor_id is required")
	}
	if req.Location == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "location is required")
	}

	bloodGroup, err := domain.ParseBloodType(req.BloodGroup)
	if err != nil {
		return nil, err
	}
	donationDate, err := domain.ParseDate(req.DonationDate)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateDonationDate(donationDate, s.now()); err != nil {
		return nil, err
	}
	if err := domain.ValidateUnitsDonated(req.UnitsDonated); err != nil {
		return nil, err
	}

	donor, err := s.donorsRepo.GetDonor(ctx, req.DonorID)
	if err != nil {
		return nil, err
	}
	if !donor.Verified {
		return nil, domain.NewError(domain.ErrDonorNotFound, "donor %s is not verified", req.DonorID)
	}
	if donor.BloodGroup != bloodGroup {
		return nil, domain.NewError(domain.ErrBloodGroupMismatch,
			"declared blood group %s does not match donor record %s",
			string(bloodGroup), string(donor.BloodGroup))
	}
	if !domain.IsEligibleToDonate(donor.LastDonationDate, donationDate) {
		return nil, domain.TooSoon(domain.DaysUntilEligible(donor.LastDonationDate, donationDate))
	}

	donation := &domain.Donation{
		DonorID:              req.DonorID,
		DonationDate:         donationDate,
		BloodGroup:           bloodGroup,
		UnitsDonated:         req.UnitsDonated,
		Location:             req.Location,
		MedicalCheckupPassed: req.MedicalCheckupPassed,
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		donation.Notes = sql.NullString{String: notes, Valid: true}
	}

	var unit *domain.InventoryUnit
	if req.MedicalCheckupPassed {
		unit = &domain.InventoryUnit{
			BloodGroup:     bloodGroup,
			DonorID:        sql.NullString{String: req.DonorID, Valid: true},
			CollectionDate: donationDate,
			ExpiryDate:     domain.ComputeExpiryDate(donationDate),
			Status:         domain.UnitAvailable,
			Location:       req.Location,
		}
	}

	donationID, err := s.donationsRepo.RecordDonation(ctx, donation, unit)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Donation recorded",
		zap.String("donation_id", donationID),
		zap.String("donor_id", req.DonorID),
		zap.String("blood_group", string(bloodGroup)),
		zap.Int("units", req.UnitsDonated),
		zap.Bool("unit_added", unit != nil),
	)

	return &RecordDonationResponse{
		DonationID:       donationID,
		DonorName:        donor.Name,
		BloodGroup:       string(bloodGroup),
		UnitsDonated:     req.UnitsDonated,
		DonationDate:     donationDate.Format(domain.DateLayout),
		NextEligibleDate: domain.NextEligibleDate(donationDate).Format(domain.DateLayout),
		UnitAdded:        unit != nil,
	}, nil
}

func (s *donationService) ListDonations(ctx context.Context, req ListDonationsRequest) (*ListDonationsResponse, error) {
	filters := repository.DonationFilters{
		DonorID:  strings.TrimSpace(req.DonorID),
		Location: strings.TrimSpace(req.Location),
	}
	if req.BloodGroup != "" {
		bg, err := domain.ParseBloodType(req.BloodGroup)
		if err != nil {
			return nil, err
		}
		filters.BloodGroup = bg
	}
	if req.StartDate != "" {
		t, err := domain.ParseDate(req.StartDate)
		if err != nil {
			return nil, err
		}
		filters.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := domain.ParseDate(req.EndDate)
		if err != nil {
			return nil, err
		}
		filters.EndDate = &t
	}

	records, err := s.donationsRepo.ListDonations(ctx, filters)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(records))
	totalUnits := 0
	for _, rec := range records {
		m := rec.ToJSON()
		m["donor_name"] = rec.DonorName
		m["donor_email"] = rec.DonorEmail
		m["donor_contact"] = rec.DonorContact
		out = append(out, m)
		totalUnits += rec.UnitsDonated
	}
	return &ListDonationsResponse{
		Donations:  out,
		Total:      len(records),
		TotalUnits: totalUnits,
	}, nil
}
