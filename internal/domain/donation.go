package domain

import (
	"database/sql"
	"time"
)

const (
	MinUnitsDonated = 1
	MaxUnitsDonated = 3
)

// Donation 捐献记录领域模型（对应 donations 表，创建后不可变）
type Donation struct {
	DonationID           string         `db:"donation_id"`
	DonorID              string         `db:"donor_id"`
	DonationDate         time.Time      `db:"donation_date"`
	BloodGroup           BloodType      `db:"blood_group"`
	UnitsDonated         int            `db:"units_donated"` // 1-3
	Location             string         `db:"location"`
	MedicalCheckupPassed bool           `db:"medical_checkup_passed"`
	Notes                sql.NullString `db:"notes"`
	CreatedAt            time.Time      `db:"created_at"`
}

// ToJSON HTTP 响应格式
func (d *Donation) ToJSON() map[string]any {
	m := map[string]any{
		"donation_id":            d.DonationID,
		"donor_id":               d.DonorID,
		"donation_date":          d.DonationDate.Format(DateLayout),
		"blood_group":            string(d.BloodGroup),
		"units_donated":          d.UnitsDonated,
		"location":               d.Location,
		"medical_checkup_passed": d.MedicalCheckupPassed,
	}
	if d.Notes.Valid {
		m["notes"] = d.Notes.String
	}
	if !d.CreatedAt.IsZero() {
		m["created_at"] = d.CreatedAt.Format(time.RFC3339)
	}
	return m
}

// ValidateDonationDate 捐献日不能在未来，也不能早于一年前
func ValidateDonationDate(donationDate, today time.Time) error {
	if DaysBetween(today, donationDate) > 0 {
		return NewError(ErrInvalidInput, "donation date cannot be in the future")
	}
	if DaysBetween(donationDate, today) > MaxDonationBackdateDays {
		return NewError(ErrInvalidInput, "donation date cannot be more than 1 year in the past")
	}
	return nil
}

// ValidateUnitsDonated 单次捐献 1-3 个单位
func ValidateUnitsDonated(units int) error {
	if units < MinUnitsDonated || units > MaxUnitsDonated {
		return NewError(ErrInvalidInput, "units donated must be between %d and %d", MinUnitsDonated, MaxUnitsDonated)
	}
	return nil
}
