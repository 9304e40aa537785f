package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/calendar"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/metrics"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/repository"
)

// SaveRequest 创建/编辑一段预订
// Existing 非空表示编辑已有预订（旧区间用于 day-set diff 和冲突豁免）
type SaveRequest struct {
	DeskID       string
	Start        time.Time
	End          time.Time
	Status       domain.Status
	Price        float64
	OccupantName string
	Title        string
	Currency     domain.Currency
	Existing     *domain.Reservation
}

// BookingService 预订操作编排：Save / BulkApply / Discard / QuickCycle。
// 每个操作都是“读完再写”：冲突评估全部完成后才发出任何写入，绝不交错。
// 两个并发 Save 之间不做串行化（last-check-wins，源设计如此，存储层是最后防线）
type BookingService struct {
	store   repository.BookingStore
	checker *ConflictChecker
	logger  *zap.Logger
	metrics *metrics.Metrics // 可为 nil（测试）
	now     func() time.Time
}

func NewBookingService(store repository.BookingStore, checker *ConflictChecker, m *metrics.Metrics, logger *zap.Logger) *BookingService {
	return &BookingService{
		store:   store,
		checker: checker,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// WithNow 注入时钟（测试用）
func (s *BookingService) WithNow(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// Save 创建或编辑预订：
//  1. 校验入参（任何存储访问之前）
//  2. 冲突检查（编辑时豁免新旧区间的交集日）
//  3. 新区间每一天写一条记录，携带同样的总价/状态/客户；
//     旧区间里已存在的日子保留 CreatedAt，新加入的日子用当前时间
//  4. 离开区间的日子删除
//
// 写入是一个逻辑批次：PutMany 整批生效，随后的 DeleteMany 失败时
// 对刚写入的“纯新增”日做补偿删除再报错，不留半写状态
func (s *BookingService) Save(ctx context.Context, req SaveRequest) error {
	if err := validateSave(req); err != nil {
		s.countSave("invalid")
		return err
	}

	start := calendar.Normalize(req.Start)
	end := calendar.Normalize(req.End)

	conflicts, err := s.checker.Check(ctx, req.DeskID, start, end, req.Existing)
	if err != nil {
		s.countSave("store_error")
		s.countStoreError()
		return err
	}
	if len(conflicts) > 0 {
		s.countSave("conflict")
		if s.metrics != nil {
			s.metrics.ConflictsTotal.Add(float64(len(conflicts)))
		}
		return &ConflictError{DeskID: req.DeskID, Conflicts: conflicts}
	}

	newDays := calendar.AllDaysBetween(start, end)
	newSet := daySet(newDays)

	var oldDays []time.Time
	if req.Existing != nil {
		oldDays = calendar.AllDaysBetween(req.Existing.RangeStart, req.Existing.RangeEnd)
	}
	oldSet := daySet(oldDays)

	// 编辑时读取旧记录拿 CreatedAt（同一预订身份下保持不变）
	createdAt := map[string]time.Time{}
	if req.Existing != nil {
		lo, hi := rangeUnion(start, end, calendar.Normalize(req.Existing.RangeStart), calendar.Normalize(req.Existing.RangeEnd))
		existing, err := s.store.GetAll(ctx, lo, hi)
		if err != nil {
			s.countSave("store_error")
			s.countStoreError()
			return fmt.Errorf("failed to read existing reservation records: %w", err)
		}
		for _, rec := range existing {
			if rec.DeskID == req.DeskID {
				createdAt[calendar.DateKey(rec.Day)] = rec.CreatedAt
			}
		}
	}

	now := s.now()
	records := make([]domain.BookingRecord, 0, len(newDays))
	for _, day := range newDays {
		ts := now
		if t, ok := createdAt[calendar.DateKey(day)]; ok && oldSet[calendar.DateKey(day)] {
			ts = t
		}
		records = append(records, domain.BookingRecord{
			ID:           domain.RecordID(req.DeskID, day),
			DeskID:       req.DeskID,
			Day:          day,
			RangeStart:   start,
			RangeEnd:     end,
			Status:       req.Status,
			OccupantName: req.OccupantName,
			Title:        req.Title,
			Price:        req.Price,
			Currency:     req.Currency,
			CreatedAt:    ts,
		})
	}

	var toDelete []repository.RecordKey
	for _, day := range oldDays {
		if !newSet[calendar.DateKey(day)] {
			toDelete = append(toDelete, repository.RecordKey{DeskID: req.DeskID, Day: day})
		}
	}

	if err := s.store.PutMany(ctx, records); err != nil {
		// all-or-nothing：此时什么都没写进去
		s.countSave("store_error")
		s.countStoreError()
		return fmt.Errorf("failed to write reservation records: %w", err)
	}

	if err := s.store.DeleteMany(ctx, toDelete); err != nil {
		// 补偿：撤掉刚写入的纯新增日，旧日保持覆盖后的内容
		var compensate []repository.RecordKey
		for _, day := range newDays {
			if !oldSet[calendar.DateKey(day)] {
				compensate = append(compensate, repository.RecordKey{DeskID: req.DeskID, Day: day})
			}
		}
		if cerr := s.store.DeleteMany(ctx, compensate); cerr != nil {
			s.logger.Error("compensating delete failed after batch failure",
				zap.String("desk_id", req.DeskID), zap.Error(cerr))
		}
		s.countSave("store_error")
		s.countStoreError()
		return fmt.Errorf("failed to remove departed reservation days: %w", err)
	}

	s.countSave("ok")
	s.logger.Info("reservation saved",
		zap.String("desk_id", req.DeskID),
		zap.String("start", calendar.DateKey(start)),
		zap.String("end", calendar.DateKey(end)),
		zap.String("status", string(req.Status)),
		zap.Bool("edit", req.Existing != nil))
	return nil
}

// BulkApply 管理性批量覆写：对 deskIDs × [start,end] 的笛卡尔积逐日写单日记录，
// status == available 则整批删除。不做冲突检查，无条件覆盖
func (s *BookingService) BulkApply(ctx context.Context, deskIDs []string, start, end time.Time, status domain.Status) error {
	if len(deskIDs) == 0 {
		return &ValidationError{Field: "desk_ids", Message: "at least one desk is required"}
	}
	if err := validateRange(start, end); err != nil {
		return err
	}
	if !status.Valid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	days := calendar.AllDaysBetween(start, end)
	now := s.now()

	if status == domain.StatusAvailable {
		keys := make([]repository.RecordKey, 0, len(deskIDs)*len(days))
		for _, deskID := range deskIDs {
			for _, day := range days {
				keys = append(keys, repository.RecordKey{DeskID: deskID, Day: day})
			}
		}
		if err := s.store.DeleteMany(ctx, keys); err != nil {
			s.countStoreError()
			return fmt.Errorf("failed to bulk-clear booking records: %w", err)
		}
	} else {
		records := make([]domain.BookingRecord, 0, len(deskIDs)*len(days))
		for _, deskID := range deskIDs {
			for _, day := range days {
				records = append(records, domain.BookingRecord{
					ID:         domain.RecordID(deskID, day),
					DeskID:     deskID,
					Day:        day,
					RangeStart: day,
					RangeEnd:   day,
					Status:     status,
					Currency:   domain.CurrencyUSD,
					CreatedAt:  now,
				})
			}
		}
		if err := s.store.PutMany(ctx, records); err != nil {
			s.countStoreError()
			return fmt.Errorf("failed to bulk-write booking records: %w", err)
		}
	}

	if s.metrics != nil {
		s.metrics.BulkAppliesTotal.Inc()
	}
	s.logger.Info("bulk status applied",
		zap.Int("desks", len(deskIDs)),
		zap.Int("days", len(days)),
		zap.String("status", string(status)))
	return nil
}

// Discard 删除整个预订的全部日记录
func (s *BookingService) Discard(ctx context.Context, res domain.Reservation) error {
	if res.DeskID == "" {
		return &ValidationError{Field: "desk_id", Message: "desk id is required"}
	}
	if err := validateRange(res.RangeStart, res.RangeEnd); err != nil {
		return err
	}

	days := calendar.AllDaysBetween(res.RangeStart, res.RangeEnd)
	keys := make([]repository.RecordKey, 0, len(days))
	for _, day := range days {
		keys = append(keys, repository.RecordKey{DeskID: res.DeskID, Day: day})
	}
	if err := s.store.DeleteMany(ctx, keys); err != nil {
		s.countStoreError()
		return fmt.Errorf("failed to discard reservation: %w", err)
	}

	if s.metrics != nil {
		s.metrics.DiscardsTotal.Inc()
	}
	s.logger.Info("reservation discarded",
		zap.String("desk_id", res.DeskID),
		zap.String("start", calendar.DateKey(res.RangeStart)),
		zap.String("end", calendar.DateKey(res.RangeEnd)))
	return nil
}

// QuickCycle 单日快速切换：available → booked → available（两态开关）。
// assigned 不参与，只能通过 Save 进入/离开，这里原样返回。
// 已有记录上的客户/标题/价格元数据在切到 booked 时保留
func (s *BookingService) QuickCycle(ctx context.Context, deskID string, day time.Time) (domain.Status, error) {
	if deskID == "" {
		return "", &ValidationError{Field: "desk_id", Message: "desk id is required"}
	}
	day = calendar.Normalize(day)
	if !calendar.IsBusinessDay(day) {
		return "", &ValidationError{Field: "day", Message: "weekend days are not bookable"}
	}

	rec, err := s.store.Get(ctx, deskID, day)
	if err != nil {
		s.countStoreError()
		return "", fmt.Errorf("failed to read booking record: %w", err)
	}

	switch {
	case rec == nil || rec.Status == domain.StatusAvailable:
		next := domain.BookingRecord{
			ID:         domain.RecordID(deskID, day),
			DeskID:     deskID,
			Day:        day,
			RangeStart: day,
			RangeEnd:   day,
			Status:     domain.StatusBooked,
			Currency:   domain.CurrencyUSD,
			CreatedAt:  s.now(),
		}
		if rec != nil {
			next.OccupantName = rec.OccupantName
			next.Title = rec.Title
			next.Price = rec.Price
			next.Currency = rec.Currency
			next.CreatedAt = rec.CreatedAt
		}
		if err := s.store.Put(ctx, next); err != nil {
			s.countStoreError()
			return "", fmt.Errorf("failed to write booking record: %w", err)
		}
		s.countQuickCycle()
		return domain.StatusBooked, nil

	case rec.Status == domain.StatusBooked:
		if err := s.store.Delete(ctx, deskID, day); err != nil {
			s.countStoreError()
			return "", fmt.Errorf("failed to delete booking record: %w", err)
		}
		s.countQuickCycle()
		return domain.StatusAvailable, nil

	default: // assigned
		return domain.StatusAssigned, nil
	}
}

func validateSave(req SaveRequest) error {
	if req.DeskID == "" {
		return &ValidationError{Field: "desk_id", Message: "desk id is required"}
	}
	if err := validateRange(req.Start, req.End); err != nil {
		return err
	}
	if req.Status != domain.StatusBooked && req.Status != domain.StatusAssigned {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("save accepts booked or assigned, got %q", req.Status)}
	}
	if math.IsNaN(req.Price) || math.IsInf(req.Price, 0) {
		return &ValidationError{Field: "price", Message: "must be a finite number"}
	}
	if req.Price < 0 {
		return &ValidationError{Field: "price", Message: "must not be negative"}
	}
	if !req.Currency.Valid() {
		return &ValidationError{Field: "currency", Message: fmt.Sprintf("unknown currency %q", req.Currency)}
	}
	if req.Existing != nil {
		if req.Existing.DeskID != req.DeskID {
			return &ValidationError{Field: "existing", Message: "reservation belongs to a different desk"}
		}
		if err := validateRange(req.Existing.RangeStart, req.Existing.RangeEnd); err != nil {
			return err
		}
	}
	return nil
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return &ValidationError{Field: "range", Message: "start and end are required"}
	}
	if calendar.Normalize(start).After(calendar.Normalize(end)) {
		return &ValidationError{Field: "range", Message: "start is after end"}
	}
	return nil
}

func daySet(days []time.Time) map[string]bool {
	set := make(map[string]bool, len(days))
	for _, d := range days {
		set[calendar.DateKey(d)] = true
	}
	return set
}

func rangeUnion(aStart, aEnd, bStart, bEnd time.Time) (time.Time, time.Time) {
	lo := aStart
	if bStart.Before(lo) {
		lo = bStart
	}
	hi := aEnd
	if bEnd.After(hi) {
		hi = bEnd
	}
	return lo, hi
}

func (s *BookingService) countSave(outcome string) {
	if s.metrics != nil {
		s.metrics.SavesTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *BookingService) countQuickCycle() {
	if s.metrics != nil {
		s.metrics.QuickCyclesTotal.Inc()
	}
}

func (s *BookingService) countStoreError() {
	if s.metrics != nil {
		s.metrics.StoreErrorsTotal.Inc()
	}
}
