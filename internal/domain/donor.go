package domain

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Donor 捐献者领域模型（对应 donors 表）
type Donor struct {
	DonorID          string         `db:"donor_id"`
	Name             string         `db:"name"`          // NOT NULL
	Age              int            `db:"age"`           // 18-65
	Gender           string         `db:"gender"`        // Male | Female | Other
	BloodGroup       BloodType      `db:"blood_group"`   // NOT NULL
	Contact          string         `db:"contact"`       // NOT NULL
	Location         string         `db:"location"`      // NOT NULL
	Email            string         `db:"email"`         // UNIQUE NOT NULL
	PasswordHash     string         `db:"password_hash"` // bcrypt
	Verified         bool           `db:"verified"`      // default true（原系统演示策略）
	LastDonationDate *time.Time     `db:"last_donation_date"`
	MedicalHistory   sql.NullString `db:"medical_history"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

const (
	MinDonorAge = 18
	MaxDonorAge = 65
)

var (
	nameRe     = regexp.MustCompile(`^[a-zA-Z\s.]+$`)
	locationRe = regexp.MustCompile(`^[a-zA-Z0-9\s.\-,]+$`)
	contactRe  = regexp.MustCompile(`^[+]?[\d\s\-()]{10,}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidGender 性别枚举校验
func ValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// ValidateName 至少 2 个字符，仅字母/空格/点号
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 || !nameRe.MatchString(name) {
		return NewError(ErrInvalidInput, "name must be at least 2 characters and contain only letters")
	}
	return nil
}

// ValidateLocation 至少 2 个字符，仅字母数字与常见地址符号
func ValidateLocation(location string) error {
	location = strings.TrimSpace(location)
	if len(location) < 2 || !locationRe.MatchString(location) {
		return NewError(ErrInvalidInput, "location must be at least 2 characters and contain valid characters")
	}
	return nil
}

// ValidateContact 电话号码（至少 10 位数字，允许 +、空格、-、括号）
func ValidateContact(contact string) error {
	if !contactRe.MatchString(strings.TrimSpace(contact)) {
		return NewError(ErrInvalidInput, "please enter a valid phone number (minimum 10 digits)")
	}
	return nil
}

// ValidateEmail 邮箱格式
func ValidateEmail(email string) error {
	if !emailRe.MatchString(strings.TrimSpace(email)) {
		return NewError(ErrInvalidInput, "please enter a valid email address")
	}
	return nil
}

// ValidateAge 年龄 18-65（含边界）
func ValidateAge(age int) error {
	if age < MinDonorAge || age > MaxDonorAge {
		return NewError(ErrInvalidInput, "age must be between %d and %d years", MinDonorAge, MaxDonorAge)
	}
	return nil
}

// EligibilityText 搜索结果中的 eligibility 文案（90 天规则）
func (d *Donor) EligibilityText(asOf time.Time) string {
	days := DaysSinceLastDonation(d.LastDonationDate, asOf)
	switch {
	case days == DaysNeverDonated:
		return "Never donated"
	case days >= MinDonationIntervalDays:
		return "Eligible"
	default:
		return "Wait " + strconv.Itoa(MinDonationIntervalDays-days) + " days"
	}
}

// AvailabilityText monitor 页面的 availability 文案（56 天窗口，与 90 天规则并存）
func (d *Donor) AvailabilityText(asOf time.Time) string {
	days := DaysSinceLastDonation(d.LastDonationDate, asOf)
	switch {
	case days == DaysNeverDonated, days >= AvailabilityIntervalDays:
		return "Available"
	default:
		return "Available in " + strconv.Itoa(AvailabilityIntervalDays-days) + " days"
	}
}

// ToJSON HTTP 响应格式（不暴露密码散列）
func (d *Donor) ToJSON() map[string]any {
	m := map[string]any{
		"donor_id":    d.DonorID,
		"name":        d.Name,
		"age":         d.Age,
		"gender":      d.Gender,
		"blood_group": string(d.BloodGroup),
		"contact":     d.Contact,
		"location":    d.Location,
		"email":       d.Email,
		"verified":    d.Verified,
	}
	if d.LastDonationDate != nil {
		m["last_donation_date"] = d.LastDonationDate.Format(DateLayout)
	} else {
		m["last_donation_date"] = nil
	}
	if d.MedicalHistory.Valid {
		m["medical_history"] = d.MedicalHistory.String
	}
	if !d.CreatedAt.IsZero() {
		m["created_at"] = d.CreatedAt.Format(time.RFC3339)
	}
	return m
}
