package domain

import (
	"database/sql"
	"time"
)

// Urgency 血液请求紧急程度
type Urgency string

const (
	UrgencyLow      Urgency = "Low"
	UrgencyMedium   Urgency = "Medium"
	UrgencyHigh     Urgency = "High"
	UrgencyCritical Urgency = "Critical"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Rank 排序权重（Critical 最优先）
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 1
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 3
	default:
		return 4
	}
}

// RequestStatus 请求状态；实践中单向：pending → fulfilled | cancelled
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestFulfilled RequestStatus = "fulfilled"
	RequestCancelled RequestStatus = "cancelled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestFulfilled, RequestCancelled:
		return true
	}
	return false
}

const (
	MinUnitsNeeded = 1
	MaxUnitsNeeded = 10
)

// BloodRequest 血液请求领域模型（对应 requests 表）
type BloodRequest struct {
	RequestID        string         `db:"request_id"`
	RequesterName    string         `db:"requester_name"`
	RequesterContact string         `db:"requester_contact"`
	RequesterEmail   string         `db:"requester_email"`
	BloodGroup       BloodType      `db:"blood_group"`
	Location         string         `db:"location"`
	Urgency          Urgency        `db:"urgency"`
	Hospital         string         `db:"hospital"`
	RequiredDate     time.Time      `db:"required_date"`
	UnitsNeeded      int            `db:"units_needed"` // 1-10
	Status           RequestStatus  `db:"status"`       // default 'pending'
	Notes            sql.NullString `db:"notes"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// ToJSON HTTP 响应格式
func (r *BloodRequest) ToJSON() map[string]any {
	m := map[string]any{
		"request_id":        r.RequestID,
		"requester_name":    r.RequesterName,
		"requester_contact": r.RequesterContact,
		"requester_email":   r.RequesterEmail,
		"blood_group":       string(r.BloodGroup),
		"location":          r.Location,
		"urgency":           string(r.Urgency),
		"hospital":          r.Hospital,
		"required_date":     r.RequiredDate.Format(DateLayout),
		"units_needed":      r.UnitsNeeded,
		"status":            string(r.Status),
	}
	if r.Notes.Valid {
		m["notes"] = r.Notes.String
	}
	if !r.CreatedAt.IsZero() {
		m["created_at"] = r.CreatedAt.Format(time.RFC3339)
	}
	return m
}
