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

// ConflictChecker 判断一段新预订能否落在某个工位上而不覆盖别人的预订。
// 只读，不会写存储
type ConflictChecker struct {
	store  repository.BookingStore
	logger *zap.Logger
}

func NewConflictChecker(store repository.BookingStore, logger *zap.Logger) *ConflictChecker {
	return &ConflictChecker{
		store:  store,
		logger: logger,
	}
}

// Check 检查 [newStart, newEnd] 内每个“日历日”（含周末，保守口径：
// 收入/产能统计跳过周末，但冲突检查不跳）。
// excluding 给出正在编辑的预订时，新旧区间都覆盖的日子视为自己占自己，跳过。
// 返回全部冲突（按日期升序），而不是发现第一条就停
func (c *ConflictChecker) Check(ctx context.Context, deskID string, newStart, newEnd time.Time, excluding *domain.Reservation) ([]Conflict, error) {
	newDays := calendar.AllDaysBetween(newStart, newEnd)

	oldDays := map[string]bool{}
	if excluding != nil && excluding.DeskID == deskID {
		for _, d := range calendar.AllDaysBetween(excluding.RangeStart, excluding.RangeEnd) {
			oldDays[calendar.DateKey(d)] = true
		}
	}

	conflicts := []Conflict{}
	for _, day := range newDays {
		if oldDays[calendar.DateKey(day)] {
			continue
		}
		rec, err := c.store.Get(ctx, deskID, day)
		if err != nil {
			return nil, fmt.Errorf("failed to read booking record for conflict check: %w", err)
		}
		if rec == nil || rec.Status == domain.StatusAvailable {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Day:          day,
			OccupantName: rec.OccupantName,
			Status:       rec.Status,
		})
	}

	if len(conflicts) > 0 {
		c.logger.Debug("conflict check found occupied days",
			zap.String("desk_id", deskID),
			zap.Int("conflicts", len(conflicts)))
	}
	return conflicts, nil
}
