package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
)

// MemoryDeskRepo 内存版工位数据：DB 未就绪时的联测兜底
// IDs 使用 uuid
type MemoryDeskRepo struct {
	mu    sync.RWMutex
	rooms map[string]domain.Room
	desks map[string]domain.Desk
}

func NewMemoryDeskRepo() *MemoryDeskRepo {
	return &MemoryDeskRepo{
		rooms: map[string]domain.Room{},
		desks: map[string]domain.Desk{},
	}
}

func (r *MemoryDeskRepo) ListDesks(_ context.Context) ([]domain.Desk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Desk, 0, len(r.desks))
	for _, d := range r.desks {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (r *MemoryDeskRepo) GetDesk(_ context.Context, deskID string) (*domain.Desk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.desks[deskID]
	if !ok {
		return nil, nil
	}
	out := d
	return &out, nil
}

func (r *MemoryDeskRepo) ListRooms(_ context.Context) ([]domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomName < out[j].RoomName })
	return out, nil
}

func (r *MemoryDeskRepo) CreateRoom(_ context.Context, room domain.Room) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room.RoomID == "" {
		room.RoomID = uuid.NewString()
	}
	r.rooms[room.RoomID] = room
	return room.RoomID, nil
}

func (r *MemoryDeskRepo) CreateDesk(_ context.Context, desk domain.Desk) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if desk.DeskID == "" {
		desk.DeskID = uuid.NewString()
	}
	r.desks[desk.DeskID] = desk
	return desk.DeskID, nil
}
