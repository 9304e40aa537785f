package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/calendar"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
)

// Stats 报表窗口的营收/出租率汇总
type Stats struct {
	WindowStart           time.Time       `json:"window_start"`
	WindowEnd             time.Time       `json:"window_end"`
	DeskCount             int             `json:"desk_count"`
	TotalDeskDays         int             `json:"total_desk_days"`
	OccupiedDays          int             `json:"occupied_days"`
	OccupancyRate         float64         `json:"occupancy_rate"`
	ConfirmedRevenue      float64         `json:"confirmed_revenue"`
	ExpectedRevenue       float64         `json:"expected_revenue"`
	TotalRevenue          float64         `json:"total_revenue"`
	RevenuePerOccupiedDay float64         `json:"revenue_per_occupied_day"`
	Currency              domain.Currency `json:"currency"`
}

// AccrualCalculator 把一批日记录 + 报表窗口换算成营收和出租率。
// 纯计算，不做 I/O；金额一律浮点、不做舍入，展示层自己四舍五入——
// 这样月报拆成两个半月窗口后相加仍然守恒（浮点误差以内）
type AccrualCalculator struct {
	logger *zap.Logger
}

func NewAccrualCalculator(logger *zap.Logger) *AccrualCalculator {
	return &AccrualCalculator{logger: logger}
}

// Compute 统计口径：
//   - 出租：按“日”直接计数（不按比例分摊），booked/assigned 的工作日记录各算 1 天
//   - 营收：按“预订”去重后解析分摊——每个预订只取头一条代表记录，
//     price * 窗口内工作日数 / 预订自身工作日总数。
//     同一预订每天都冗余同样的 price/range，逐日累加会重复计数，去重后
//     解析计算也省得把长预订的每一天再扫一遍
//
// records 传未过滤的全量也是对的：窗口外预订 overlap 为 0，贡献为 0
func (a *AccrualCalculator) Compute(records []domain.BookingRecord, windowStart, windowEnd time.Time, deskCount int, currency domain.Currency) (Stats, error) {
	if windowStart.IsZero() || windowEnd.IsZero() {
		return Stats{}, &ValidationError{Field: "window", Message: "start and end are required"}
	}
	windowStart = calendar.Normalize(windowStart)
	windowEnd = calendar.Normalize(windowEnd)
	if windowStart.After(windowEnd) {
		return Stats{}, &ValidationError{Field: "window", Message: "start is after end"}
	}
	if deskCount < 0 {
		return Stats{}, &ValidationError{Field: "desk_count", Message: "must not be negative"}
	}

	businessDays := calendar.BusinessDayList(windowStart, windowEnd)
	inWindow := make(map[string]bool, len(businessDays))
	for _, d := range businessDays {
		inWindow[calendar.DateKey(d)] = true
	}

	stats := Stats{
		WindowStart:   windowStart,
		WindowEnd:     windowEnd,
		DeskCount:     deskCount,
		TotalDeskDays: deskCount * len(businessDays),
		Currency:      currency,
	}

	// 出租天数：日粒度事实，直接数
	for _, rec := range records {
		if rec.Status.Occupies() && inWindow[calendar.DateKey(rec.Day)] {
			stats.OccupiedDays++
		}
	}

	// 营收：按预订去重 + 解析分摊
	visited := map[string]bool{}
	for _, rec := range records {
		key := domain.ReservationKey(rec.DeskID, rec.RangeStart)
		if visited[key] {
			continue
		}
		visited[key] = true

		totalSpanDays := calendar.BusinessDaysBetween(rec.RangeStart, rec.RangeEnd)
		if totalSpanDays <= 0 {
			continue
		}

		overlapStart := maxDay(calendar.Normalize(rec.RangeStart), windowStart)
		overlapEnd := minDay(calendar.Normalize(rec.RangeEnd), windowEnd)
		if overlapStart.After(overlapEnd) {
			continue
		}
		overlapDays := calendar.BusinessDaysBetween(overlapStart, overlapEnd)

		prorated := rec.Price * float64(overlapDays) / float64(totalSpanDays)
		switch rec.Status {
		case domain.StatusAssigned:
			stats.ConfirmedRevenue += prorated
		case domain.StatusBooked:
			stats.ExpectedRevenue += prorated
		}
	}

	stats.TotalRevenue = stats.ConfirmedRevenue + stats.ExpectedRevenue
	if stats.TotalDeskDays > 0 {
		stats.OccupancyRate = float64(stats.OccupiedDays) / float64(stats.TotalDeskDays) * 100
	}
	if stats.OccupiedDays > 0 {
		stats.RevenuePerOccupiedDay = stats.TotalRevenue / float64(stats.OccupiedDays)
	}

	a.logger.Debug("computed accrual stats",
		zap.String("window_start", calendar.DateKey(windowStart)),
		zap.String("window_end", calendar.DateKey(windowEnd)),
		zap.Int("occupied_days", stats.OccupiedDays),
		zap.Float64("total_revenue", stats.TotalRevenue))

	return stats, nil
}

func maxDay(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDay(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
