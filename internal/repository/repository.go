package repository

import (
	"context"
	"time"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
)

// RecordKey 日记录主键 (desk, day)
type RecordKey struct {
	DeskID string
	Day    time.Time
}

// BookingStore 日记录存取接口（预订引擎的唯一共享可变资源）
// 约定：没有记录 == available，Get 未命中返回 (nil, nil) 而不是错误；
// PutMany / DeleteMany 单次调用内要求 all-or-nothing
type BookingStore interface {
	// Get 查询单条日记录，未命中返回 (nil, nil)
	Get(ctx context.Context, deskID string, day time.Time) (*domain.BookingRecord, error)
	// GetAll 按日期范围查询，start/end 为零值时不限定该侧边界
	GetAll(ctx context.Context, start, end time.Time) ([]domain.BookingRecord, error)
	Put(ctx context.Context, record domain.BookingRecord) error
	PutMany(ctx context.Context, records []domain.BookingRecord) error
	Delete(ctx context.Context, deskID string, day time.Time) error
	DeleteMany(ctx context.Context, keys []RecordKey) error
}

// DeskRepository 工位参考数据（由开通流程写入，引擎侧只读）
type DeskRepository interface {
	ListDesks(ctx context.Context) ([]domain.Desk, error)
	GetDesk(ctx context.Context, deskID string) (*domain.Desk, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	CreateRoom(ctx context.Context, room domain.Room) (string, error)
	CreateDesk(ctx context.Context, desk domain.Desk) (string, error)
}
