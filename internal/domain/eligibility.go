package domain

import "time"

// 捐献与库存的时间规则常量。
// 注意：90 天用于捐献记录校验与搜索的 eligibility 判定；
// 56 天仅用于 monitor 页面的 availability 展示文案。
// 两个窗口在原有业务中同时存在，这里保留为两个命名常量，待产品侧统一。
const (
	MinDonationIntervalDays   = 90
	AvailabilityIntervalDays  = 56
	ShelfLifeDays             = 42
	ExpiringSoonThresholdDays = 7
	MaxDonationBackdateDays   = 365
	SessionDefaultTTL         = time.Hour
)

// DateLayout 所有日历日字段的 ISO 8601 格式
const DateLayout = "2006-01-02"

// ParseDate 解析 ISO 8601 日历日；非法输入返回 InvalidInput
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, NewError(ErrInvalidInput, "invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FreshnessStatus 库存单位的派生新鲜度（只读投影，永远不会写回 status 字段）
type FreshnessStatus string

const (
	FreshnessFresh        FreshnessStatus = "fresh"
	FreshnessExpiringSoon FreshnessStatus = "expiring_soon"
	FreshnessExpired      FreshnessStatus = "expired"
)

// DaysNeverDonated daysSinceLastDonation 的"从未捐献"哨兵值
const DaysNeverDonated = -1

// truncateDay 归一化到日历日（丢弃时分秒与时区差异）
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween 日历日差值 to-from（to 在 from 之前时为负）
func DaysBetween(from, to time.Time) int {
	return int(truncateDay(to).Sub(truncateDay(from)).Hours() / 24)
}

// DaysSinceLastDonation 距上次捐献的天数；从未捐献返回 DaysNeverDonated
func DaysSinceLastDonation(lastDonation *time.Time, asOf time.Time) int {
	if lastDonation == nil {
		return DaysNeverDonated
	}
	return DaysBetween(*lastDonation, asOf)
}

// IsEligibleToDonate 是否满足最小捐献间隔（从未捐献恒为 true）
func IsEligibleToDonate(lastDonation *time.Time, asOf time.Time) bool {
	days := DaysSinceLastDonation(lastDonation, asOf)
	return days == DaysNeverDonated || days >= MinDonationIntervalDays
}

// DaysUntilEligible 距下次可捐献的剩余天数（已可捐献返回 0）
func DaysUntilEligible(lastDonation *time.Time, asOf time.Time) int {
	days := DaysSinceLastDonation(lastDonation, asOf)
	if days == DaysNeverDonated || days >= MinDonationIntervalDays {
		return 0
	}
	return MinDonationIntervalDays - days
}

// ComputeExpiryDate 采集日 + 保质期（42 天）
func ComputeExpiryDate(collectionDate time.Time) time.Time {
	return truncateDay(collectionDate).AddDate(0, 0, ShelfLifeDays)
}

// DaysUntilExpiry 距过期天数（已过期为负数）
func DaysUntilExpiry(expiryDate, asOf time.Time) int {
	return DaysBetween(asOf, expiryDate)
}

// Freshness 派生新鲜度：expired（剩余 ≤0）/ expiring_soon（剩余 ≤7）/ fresh
func Freshness(expiryDate, asOf time.Time) FreshnessStatus {
	remaining := DaysUntilExpiry(expiryDate, asOf)
	switch {
	case remaining <= 0:
		return FreshnessExpired
	case remaining <= ExpiringSoonThresholdDays:
		return FreshnessExpiringSoon
	default:
		return FreshnessFresh
	}
}

// NextEligibleDate 下次可捐献日期（捐献日 + 90 天）
func NextEligibleDate(donationDate time.Time) time.Time {
	return truncateDay(donationDate).AddDate(0, 0, MinDonationIntervalDays)
}
