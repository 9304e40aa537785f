package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/calendar"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
)

// MemoryBookingStore 内存版日记录存储：用于 DB 未就绪时的本地联测和单测
// - key = deskID + "|" + YYYY-MM-DD
// - PutMany/DeleteMany 持锁一次性应用，天然 all-or-nothing
type MemoryBookingStore struct {
	mu      sync.RWMutex
	records map[string]domain.BookingRecord
}

func NewMemoryBookingStore() *MemoryBookingStore {
	return &MemoryBookingStore{
		records: map[string]domain.BookingRecord{},
	}
}

func recordKey(deskID string, day time.Time) string {
	return deskID + "|" + calendar.DateKey(day)
}

func (s *MemoryBookingStore) Get(_ context.Context, deskID string, day time.Time) (*domain.BookingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[recordKey(deskID, day)]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (s *MemoryBookingStore) GetAll(_ context.Context, start, end time.Time) ([]domain.BookingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.BookingRecord{}
	for _, rec := range s.records {
		if !start.IsZero() && rec.Day.Before(calendar.Normalize(start)) {
			continue
		}
		if !end.IsZero() && rec.Day.After(calendar.Normalize(end)) {
			continue
		}
		out = append(out, rec)
	}
	// 遍历 map 无序，按 (day, desk) 排序保证结果确定
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return out[i].DeskID < out[j].DeskID
	})
	return out, nil
}

func (s *MemoryBookingStore) Put(_ context.Context, record domain.BookingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(record)
	return nil
}

func (s *MemoryBookingStore) PutMany(_ context.Context, records []domain.BookingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		s.put(rec)
	}
	return nil
}

func (s *MemoryBookingStore) put(record domain.BookingRecord) {
	record.Day = calendar.Normalize(record.Day)
	record.RangeStart = calendar.Normalize(record.RangeStart)
	record.RangeEnd = calendar.Normalize(record.RangeEnd)
	if record.ID == "" {
		record.ID = domain.RecordID(record.DeskID, record.Day)
	}
	s.records[recordKey(record.DeskID, record.Day)] = record
}

func (s *MemoryBookingStore) Delete(_ context.Context, deskID string, day time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, recordKey(deskID, day))
	return nil
}

func (s *MemoryBookingStore) DeleteMany(_ context.Context, keys []RecordKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.records, recordKey(k.DeskID, k.Day))
	}
	return nil
}

// Len 当前记录条数（测试用）
func (s *MemoryBookingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
