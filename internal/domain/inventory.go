package domain

import (
	"database/sql"
	"time"
)

// UnitStatus 库存单位的持久化状态（与派生 freshness 区分）
type UnitStatus string

const (
	UnitAvailable UnitStatus = "available"
	UnitReserved  UnitStatus = "reserved"
	UnitUsed      UnitStatus = "used"
	UnitExpired   UnitStatus = "expired"
)

func (s UnitStatus) Valid() bool {
	switch s {
	case UnitAvailable, UnitReserved, UnitUsed, UnitExpired:
		return true
	}
	return false
}

// InventoryUnit 血液库存单位领域模型（对应 inventory 表）
type InventoryUnit struct {
	UnitID         string         `db:"unit_id"`
	BloodGroup     BloodType      `db:"blood_group"`     // NOT NULL
	DonorID        sql.NullString `db:"donor_id"`        // nullable，弱引用
	CollectionDate time.Time      `db:"collection_date"` // NOT NULL
	ExpiryDate     time.Time      `db:"expiry_date"`     // NOT NULL, > collection_date
	Status         UnitStatus     `db:"status"`          // default 'available'
	Location       string         `db:"location"`        // NOT NULL
	Notes          sql.NullString `db:"notes"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// CanTransition 状态机规则：
//   - used 为终态，任何后续变更（包括重复置 used）都拒绝
//   - expired 不允许回到 available
//   - 其余 {available, reserved, expired} 之间的变更全部允许
func CanTransition(from, to UnitStatus) error {
	if !to.Valid() {
		return NewError(ErrInvalidInput, "invalid inventory status %q", string(to))
	}
	if from == UnitUsed {
		return NewError(ErrInvalidTransition, "unit is already used; no further status change is permitted")
	}
	if from == UnitExpired && to == UnitAvailable {
		return NewError(ErrInvalidTransition, "expired unit cannot return to available")
	}
	return nil
}

// ValidateUnitDates 创建校验：采集日不晚于今天，保质期 1..42 天
func ValidateUnitDates(collectionDate, expiryDate, today time.Time) error {
	if DaysBetween(today, collectionDate) > 0 {
		return NewError(ErrInvalidInput, "collection date cannot be in the future")
	}
	shelfLife := DaysBetween(collectionDate, expiryDate)
	if shelfLife < 1 {
		return NewError(ErrInvalidInput, "expiry date must be after collection date")
	}
	if shelfLife > ShelfLifeDays {
		return NewError(ErrInvalidInput, "shelf life cannot exceed %d days", ShelfLifeDays)
	}
	return nil
}

// Freshness 该单位当前的派生新鲜度
func (u *InventoryUnit) Freshness(asOf time.Time) FreshnessStatus {
	return Freshness(u.ExpiryDate, asOf)
}

// ToJSON HTTP 响应格式，附带派生字段
func (u *InventoryUnit) ToJSON(asOf time.Time) map[string]any {
	m := map[string]any{
		"unit_id":          u.UnitID,
		"blood_group":      string(u.BloodGroup),
		"collection_date":  u.CollectionDate.Format(DateLayout),
		"expiry_date":      u.ExpiryDate.Format(DateLayout),
		"status":           string(u.Status),
		"location":         u.Location,
		"days_to_expiry":   DaysUntilExpiry(u.ExpiryDate, asOf),
		"freshness_status": string(u.Freshness(asOf)),
	}
	if u.DonorID.Valid {
		m["donor_id"] = u.DonorID.String
	} else {
		m["donor_id"] = nil
	}
	if u.Notes.Valid {
		m["notes"] = u.Notes.String
	}
	return m
}
