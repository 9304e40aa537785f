package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/calendar"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/repository"
)

// 扫描边界：最坏情况（连续几个月没有任何预订）也要有界，
// 常见情况尽快凑满就提前停
const (
	horizonCalendarDays   = 90 // 硬上限按“日历日”数，不是工作日
	availableDatesTarget  = 5
	bookedDatesTarget     = 3
	expiringLookaheadDays = 10 // 工作日
)

// BookedDate 某天存在未付款预订，附当天出现的去重后的客户名单
type BookedDate struct {
	Day           time.Time `json:"day"`
	OccupantNames []string  `json:"occupant_names"`
}

// ExpiringAssignment 即将到期的已付款预订
type ExpiringAssignment struct {
	DeskID       string    `json:"desk_id"`
	DeskLabel    string    `json:"desk_label"`
	OccupantName string    `json:"occupant_name"`
	EndsOn       time.Time `json:"ends_on"`
}

// HorizonResult 近期概览：最多 5 个可用日、3 组 booked 日，
// 到期名单不截断
type HorizonResult struct {
	AvailableDates      []time.Time          `json:"available_dates"`
	BookedDates         []BookedDate         `json:"booked_dates"`
	ExpiringAssignments []ExpiringAssignment `json:"expiring_assignments"`
}

// HorizonScanner 从明天起逐日向前扫，汇总近期可用性。
// 只在开头做一次批量读取，之后全是内存计算
type HorizonScanner struct {
	store  repository.BookingStore
	logger *zap.Logger
}

func NewHorizonScanner(store repository.BookingStore, logger *zap.Logger) *HorizonScanner {
	return &HorizonScanner{
		store:  store,
		logger: logger,
	}
}

// Scan 从 today+1 开始，跳过周末，最多扫 90 个日历日；
// 可用日凑满 5 个且 booked 日凑满 3 组即提前停。
// 到期扫描独立进行：未来 10 个工作日内 RangeEnd 恰好落在当天的 assigned 预订
func (h *HorizonScanner) Scan(ctx context.Context, today time.Time, desks []domain.Desk) (HorizonResult, error) {
	result := HorizonResult{
		AvailableDates:      []time.Time{},
		BookedDates:         []BookedDate{},
		ExpiringAssignments: []ExpiringAssignment{},
	}

	start := calendar.Normalize(today).AddDate(0, 0, 1)
	end := calendar.Normalize(today).AddDate(0, 0, horizonCalendarDays)

	records, err := h.store.GetAll(ctx, start, end)
	if err != nil {
		return HorizonResult{}, fmt.Errorf("failed to load booking records for horizon scan: %w", err)
	}

	// day -> deskID -> record
	byDay := map[string]map[string]domain.BookingRecord{}
	for _, rec := range records {
		key := calendar.DateKey(rec.Day)
		if byDay[key] == nil {
			byDay[key] = map[string]domain.BookingRecord{}
		}
		byDay[key][rec.DeskID] = rec
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !calendar.IsBusinessDay(d) {
			continue
		}
		if len(result.AvailableDates) >= availableDatesTarget && len(result.BookedDates) >= bookedDatesTarget {
			break
		}

		dayRecords := byDay[calendar.DateKey(d)]

		if len(result.AvailableDates) < availableDatesTarget {
			for _, desk := range desks {
				rec, ok := dayRecords[desk.DeskID]
				if !ok || rec.Status == domain.StatusAvailable {
					result.AvailableDates = append(result.AvailableDates, d)
					break
				}
			}
		}

		if len(result.BookedDates) < bookedDatesTarget {
			names := []string{}
			seen := map[string]bool{}
			for _, desk := range desks {
				rec, ok := dayRecords[desk.DeskID]
				if !ok || rec.Status != domain.StatusBooked || rec.OccupantName == "" {
					continue
				}
				if seen[rec.OccupantName] {
					continue
				}
				seen[rec.OccupantName] = true
				names = append(names, rec.OccupantName)
			}
			if len(names) > 0 {
				result.BookedDates = append(result.BookedDates, BookedDate{Day: d, OccupantNames: names})
			}
		}
	}

	// 到期扫描：不与上面的提前停共享进度
	expiringDays := 0
	for d := start; !d.After(end) && expiringDays < expiringLookaheadDays; d = d.AddDate(0, 0, 1) {
		if !calendar.IsBusinessDay(d) {
			continue
		}
		expiringDays++

		dayRecords := byDay[calendar.DateKey(d)]
		for _, desk := range desks {
			rec, ok := dayRecords[desk.DeskID]
			if !ok || rec.Status != domain.StatusAssigned || !rec.RangeEnd.Equal(d) {
				continue
			}
			result.ExpiringAssignments = append(result.ExpiringAssignments, ExpiringAssignment{
				DeskID:       desk.DeskID,
				DeskLabel:    desk.Label,
				OccupantName: rec.OccupantName,
				EndsOn:       d,
			})
		}
	}

	h.logger.Debug("horizon scan finished",
		zap.Int("available_dates", len(result.AvailableDates)),
		zap.Int("booked_dates", len(result.BookedDates)),
		zap.Int("expiring", len(result.ExpiringAssignments)))

	return result, nil
}
