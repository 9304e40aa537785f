package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
)

// PostgresDeskRepo rooms/desks 表存取
type PostgresDeskRepo struct {
	db *sql.DB
}

func NewPostgresDeskRepo(db *sql.DB) *PostgresDeskRepo {
	return &PostgresDeskRepo{db: db}
}

// EnsureSchema 建表（幂等）
func (r *PostgresDeskRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS rooms (
			room_id   text PRIMARY KEY,
			room_name text NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure rooms schema: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS desks (
			desk_id text PRIMARY KEY,
			room_id text NOT NULL REFERENCES rooms(room_id),
			label   text NOT NULL,
			notes   text
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure desks schema: %w", err)
	}
	return nil
}

func (r *PostgresDeskRepo) ListDesks(ctx context.Context) ([]domain.Desk, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT desk_id, room_id, label, notes FROM desks ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Desk{}
	for rows.Next() {
		var d domain.Desk
		if err := rows.Scan(&d.DeskID, &d.RoomID, &d.Label, &d.Notes); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresDeskRepo) GetDesk(ctx context.Context, deskID string) (*domain.Desk, error) {
	var d domain.Desk
	err := r.db.QueryRowContext(ctx,
		`SELECT desk_id, room_id, label, notes FROM desks WHERE desk_id = $1`,
		deskID).Scan(&d.DeskID, &d.RoomID, &d.Label, &d.Notes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PostgresDeskRepo) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT room_id, room_name FROM rooms ORDER BY room_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Room{}
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.RoomID, &room.RoomName); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func (r *PostgresDeskRepo) CreateRoom(ctx context.Context, room domain.Room) (string, error) {
	if room.RoomID == "" {
		room.RoomID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (room_id, room_name)
		 VALUES ($1, $2)
		 ON CONFLICT (room_id) DO UPDATE SET room_name = EXCLUDED.room_name`,
		room.RoomID, room.RoomName)
	if err != nil {
		return "", err
	}
	return room.RoomID, nil
}

func (r *PostgresDeskRepo) CreateDesk(ctx context.Context, desk domain.Desk) (string, error) {
	if desk.DeskID == "" {
		desk.DeskID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO desks (desk_id, room_id, label, notes)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (desk_id) DO UPDATE SET room_id = EXCLUDED.room_id, label = EXCLUDED.label, notes = EXCLUDED.notes`,
		desk.DeskID, desk.RoomID, desk.Label, desk.Notes)
	if err != nil {
		return "", err
	}
	return desk.DeskID, nil
}
