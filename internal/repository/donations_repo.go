package repository

import (
	"context"
	"time"

	"bloodlink/internal/domain"
)

// DonationFilters 捐献记录查询过滤器
type DonationFilters struct {
	DonorID    string
	BloodGroup domain.BloodType
	Location   string // 模糊匹配
	StartDate  *time.Time
	EndDate    *time.Time
}

// DonationRecord 列表查询结果（JOIN 捐献者姓名/联系方式）
type DonationRecord struct {
	domain.Donation
	DonorName    string `json:"donor_name"`
	DonorEmail   string `json:"donor_email"`
	DonorContact string `json:"donor_contact"`
}

// DonationsRepository 捐献记录 Repository 接口
type DonationsRepository interface {
	// RecordDonation 单事务完成三个写入：
	//   1. INSERT donations
	//   2. UPDATE donors.last_donation_date
	//   3. 体检通过时 INSERT inventory
	// 捐献者行在事务内 FOR UPDATE 加锁，并在锁内复核捐献间隔，
	// 防止同一捐献者的并发记录双双通过读时校验。
	// 任一步失败则整体回滚。
	RecordDonation(ctx context.Context, donation *domain.Donation, unit *domain.InventoryUnit) (string, error)

	// ListDonations 过滤查询（JOIN donors），按捐献日期降序
	ListDonations(ctx context.Context, filters DonationFilters) ([]*DonationRecord, error)
}
