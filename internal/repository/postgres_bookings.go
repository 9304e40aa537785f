package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/calendar"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
)

// PostgresBookingStore booking_records 表存取（database/sql + lib/pq）
type PostgresBookingStore struct {
	db *sql.DB
}

func NewPostgresBookingStore(db *sql.DB) *PostgresBookingStore {
	return &PostgresBookingStore{db: db}
}

const bookingColumns = `record_id, desk_id, day, range_start, range_end, status, occupant_name, title, price, currency, created_at`

// EnsureSchema 建表（幂等）。正式环境走迁移脚本，本地 `go run` 起服务时兜底
func (s *PostgresBookingStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS booking_records (
			record_id     text PRIMARY KEY,
			desk_id       text NOT NULL,
			day           date NOT NULL,
			range_start   date NOT NULL,
			range_end     date NOT NULL,
			status        text NOT NULL,
			occupant_name text NOT NULL DEFAULT '',
			title         text NOT NULL DEFAULT '',
			price         double precision NOT NULL DEFAULT 0,
			currency      text NOT NULL DEFAULT 'USD',
			created_at    timestamptz NOT NULL,
			UNIQUE (desk_id, day)
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure booking_records schema: %w", err)
	}
	return nil
}

func (s *PostgresBookingStore) Get(ctx context.Context, deskID string, day time.Time) (*domain.BookingRecord, error) {
	q := `SELECT ` + bookingColumns + ` FROM booking_records WHERE desk_id = $1 AND day = $2`
	row := s.db.QueryRowContext(ctx, q, deskID, calendar.Normalize(day))

	rec, err := scanBookingRecord(row)
	if err == sql.ErrNoRows {
		// 没有记录 == available
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PostgresBookingStore) GetAll(ctx context.Context, start, end time.Time) ([]domain.BookingRecord, error) {
	q := `SELECT ` + bookingColumns + ` FROM booking_records`
	where := ""
	args := []any{}
	argIdx := 1
	if !start.IsZero() {
		where += fmt.Sprintf(" day >= $%d", argIdx)
		args = append(args, calendar.Normalize(start))
		argIdx++
	}
	if !end.IsZero() {
		if where != "" {
			where += " AND"
		}
		where += fmt.Sprintf(" day <= $%d", argIdx)
		args = append(args, calendar.Normalize(end))
		argIdx++
	}
	if where != "" {
		q += " WHERE" + where
	}
	q += " ORDER BY day, desk_id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.BookingRecord{}
	for rows.Next() {
		rec, err := scanBookingRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

const upsertBookingSQL = `
	INSERT INTO booking_records (` + bookingColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (desk_id, day)
	DO UPDATE SET record_id     = EXCLUDED.record_id,
	              range_start   = EXCLUDED.range_start,
	              range_end     = EXCLUDED.range_end,
	              status        = EXCLUDED.status,
	              occupant_name = EXCLUDED.occupant_name,
	              title         = EXCLUDED.title,
	              price         = EXCLUDED.price,
	              currency      = EXCLUDED.currency,
	              created_at    = EXCLUDED.created_at`

func (s *PostgresBookingStore) Put(ctx context.Context, record domain.BookingRecord) error {
	_, err := s.db.ExecContext(ctx, upsertBookingSQL, upsertArgs(record)...)
	return err
}

// PutMany 单事务写入，整批成功或整批回滚
func (s *PostgresBookingStore) PutMany(ctx context.Context, records []domain.BookingRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, upsertBookingSQL, upsertArgs(rec)...); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresBookingStore) Delete(ctx context.Context, deskID string, day time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM booking_records WHERE desk_id = $1 AND day = $2`,
		deskID, calendar.Normalize(day))
	return err
}

// DeleteMany 单事务删除，整批成功或整批回滚
func (s *PostgresBookingStore) DeleteMany(ctx context.Context, keys []RecordKey) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM booking_records WHERE desk_id = $1 AND day = $2`,
			k.DeskID, calendar.Normalize(k.Day)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func upsertArgs(rec domain.BookingRecord) []any {
	day := calendar.Normalize(rec.Day)
	id := rec.ID
	if id == "" {
		id = domain.RecordID(rec.DeskID, day)
	}
	return []any{
		id,
		rec.DeskID,
		day,
		calendar.Normalize(rec.RangeStart),
		calendar.Normalize(rec.RangeEnd),
		string(rec.Status),
		rec.OccupantName,
		rec.Title,
		rec.Price,
		string(rec.Currency),
		rec.CreatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookingRecord(row rowScanner) (*domain.BookingRecord, error) {
	var rec domain.BookingRecord
	var status, currency string
	if err := row.Scan(
		&rec.ID,
		&rec.DeskID,
		&rec.Day,
		&rec.RangeStart,
		&rec.RangeEnd,
		&status,
		&rec.OccupantName,
		&rec.Title,
		&rec.Price,
		&currency,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	rec.Status = domain.Status(status)
	rec.Currency = domain.Currency(currency)
	// date 列扫描出来可能带时区，统一归一化
	rec.Day = calendar.Normalize(rec.Day)
	rec.RangeStart = calendar.Normalize(rec.RangeStart)
	rec.RangeEnd = calendar.Normalize(rec.RangeEnd)
	return &rec, nil
}
